package repositories

import (
	"context"
	"time"
)

type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	// SetNX записывает значение, только если ключа нет. true - ключ записан.
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error)
	// DelIfEqual удаляет ключ, только если в нём всё ещё лежит value. true - ключ удалён.
	DelIfEqual(ctx context.Context, key, value string) (bool, error)
}
