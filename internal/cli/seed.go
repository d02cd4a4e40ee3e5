package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"oficina-system/internal/repositories"
	"oficina-system/internal/services"
)

func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Carrega dados iniciais",
	}

	var names []string
	mechanics := &cobra.Command{
		Use:          "mechanics",
		Short:        "Cadastra os mecânicos que ainda não existem",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := rootOpts.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			service := services.NewMechanicService(repositories.NewMechanicRepository(pool), rootOpts.logger)
			added, err := service.Seed(ctx, names)
			if err != nil {
				return err
			}
			return rootOpts.print(cmd.OutOrStdout(),
				fmt.Sprintf("%d mecânico(s) cadastrado(s)", added),
				map[string]int{"added": added})
		},
	}
	mechanics.Flags().StringSliceVar(&names, "name", services.DefaultMechanics, "nome do mecânico (pode repetir)")

	cmd.AddCommand(mechanics)
	return cmd
}
