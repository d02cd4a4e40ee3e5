package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"oficina-system/internal/bootstrap"
	"oficina-system/pkg/database/redisdb"
)

func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sincronização com o quadro Trello",
	}

	cmd.AddCommand(&cobra.Command{
		Use:          "once",
		Short:        "Executa uma sincronização do quadro para o banco",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, err := rootOpts.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			redisClient, err := redisdb.Connect(ctx, rootOpts.cfg.Redis, rootOpts.logger)
			if err != nil {
				rootOpts.logger.Warn("Redis недоступен, синхронизация без распределённой блокировки", zap.Error(err))
				redisClient = nil
			}
			if redisClient != nil {
				defer redisClient.Close()
			}

			container := bootstrap.New(rootOpts.cfg, pool, redisClient, rootOpts.logger)
			result, ran := container.Scheduler.RunOnce(ctx)
			if !ran {
				return fmt.Errorf("sincronização já em andamento em outra instância")
			}

			text := fmt.Sprintf("success=%t synced=%d errors=%d", result.Success, result.Synced, result.Errors)
			if err := rootOpts.print(cmd.OutOrStdout(), text, result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("sincronização falhou")
			}
			return nil
		},
	})
	return cmd
}
