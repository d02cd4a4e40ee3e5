package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"oficina-system/migrations"
	"oficina-system/pkg/database/postgresql"
)

func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Gerencia o esquema do banco de dados",
	}

	for _, command := range []struct{ use, short string }{
		{"up", "Aplica todas as migrações pendentes"},
		{"status", "Mostra o estado das migrações"},
		{"down", "Reverte a última migração"},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:          command.use,
			Short:        command.short,
			Args:         cobra.NoArgs,
			SilenceUsage: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				pool, err := rootOpts.connect(ctx)
				if err != nil {
					return err
				}
				defer pool.Close()

				if err := postgresql.Migrate(ctx, pool, migrations.FS, command.use); err != nil {
					return fmt.Errorf("migrate %s: %w", command.use, err)
				}
				return rootOpts.print(cmd.OutOrStdout(), "migrate "+command.use+": ok",
					map[string]string{"command": command.use, "result": "ok"})
			},
		})
	}
	return cmd
}
