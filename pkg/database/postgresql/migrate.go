package postgresql

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// Migrate применяет (up) или показывает (status) миграции из встроенной файловой системы.
func Migrate(ctx context.Context, pool *pgxpool.Pool, migrations fs.FS, command string) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}

	switch command {
	case "up":
		return goose.UpContext(ctx, db, ".")
	case "status":
		return goose.StatusContext(ctx, db, ".")
	case "down":
		return goose.DownContext(ctx, db, ".")
	default:
		return fmt.Errorf("неизвестная команда миграции: %s", command)
	}
}
