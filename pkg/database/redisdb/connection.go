package redisdb

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"oficina-system/pkg/config"
)

// Connect подключается к Redis. Если Redis выключен в конфиге, возвращает nil без ошибки.
func Connect(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if !cfg.Enabled {
		logger.Info("Redis отключен: кэш и распределённая блокировка не используются")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       0,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if _, err := client.Ping(pingCtx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("не удалось подключиться к Redis %s: %w", cfg.Address, err)
	}

	logger.Info("Подключение к Redis установлено", zap.String("address", cfg.Address))
	return client, nil
}
