// Package cli - служебные команды oficinactl: миграции, разовая синхронизация доски, начальные данные.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"oficina-system/pkg/config"
	"oficina-system/pkg/database/postgresql"
	applogger "oficina-system/pkg/logger"
)

// RootOptions - глобальные флаги всех команд.
type RootOptions struct {
	Format string // "text" | "json"
	DSN    string

	cfg    *config.Config
	logger *zap.Logger
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "oficinactl",
		Short: "Ferramentas de operação da oficina",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("formato inválido %q: use um de %v", opts.Format, ValidFormats)
			}
			opts.cfg = config.New()
			if opts.DSN != "" {
				opts.cfg.Postgres.DSN = opts.DSN
			}
			opts.logger = applogger.NewLogger(opts.cfg.Logger)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "formato de saída (text|json)")
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "DSN do PostgreSQL (padrão: DATABASE_URL)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

func (o *RootOptions) connect(ctx context.Context) (*pgxpool.Pool, error) {
	return postgresql.ConnectDB(ctx, o.cfg.Postgres.DSN, o.logger)
}

// print пишет результат либо JSON-ом, либо строкой text.
func (o *RootOptions) print(w io.Writer, text string, value interface{}) error {
	if o.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	}
	_, err := fmt.Fprintln(w, text)
	return err
}
