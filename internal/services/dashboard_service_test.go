package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"oficina-system/pkg/config"
	"oficina-system/pkg/types"
)

type fakeDashboardRepo struct {
	calls     int
	since     time.Time
	delivered int64
	revenue   decimal.Decimal
	err       error
}

func (r *fakeDashboardRepo) GetCountByStatus(ctx context.Context) ([]types.DashboardCountByGroup, error) {
	r.calls++
	return []types.DashboardCountByGroup{{Group: "diagnostico", Count: 2}, {Group: "entregue", Count: 3}}, r.err
}

func (r *fakeDashboardRepo) GetOpenTotals(ctx context.Context) (*types.DashboardOpenTotals, error) {
	return &types.DashboardOpenTotals{Count: 2, Quoted: dec("900"), Approved: dec("400")}, nil
}

func (r *fakeDashboardRepo) GetDeliveredSince(ctx context.Context, since time.Time) (int64, decimal.Decimal, error) {
	r.since = since
	return r.delivered, r.revenue, nil
}

func (r *fakeDashboardRepo) GetCardsByPosition(ctx context.Context) ([]types.DashboardCountByGroup, error) {
	return []types.DashboardCountByGroup{{Group: "entrada", Count: 4}}, nil
}

type memCache struct {
	data map[string]string
	ttl  time.Duration
}

func (c *memCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	switch v := value.(type) {
	case []byte:
		c.data[key] = string(v)
	case string:
		c.data[key] = v
	default:
		return errors.New("tipo não suportado")
	}
	c.ttl = expiration
	return nil
}

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.data[key]
	if !ok {
		return "", errors.New("cache miss")
	}
	return v, nil
}

func (c *memCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

func (c *memCache) DelIfEqual(ctx context.Context, key, value string) (bool, error) {
	if c.data[key] != value {
		return false, nil
	}
	delete(c.data, key)
	return true, nil
}

func (c *memCache) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	return true, c.Set(ctx, key, value, expiration)
}

func newTestDashboardService(repo *fakeDashboardRepo, cache *memCache) *DashboardService {
	var svc DashboardServiceInterface
	if cache == nil {
		svc = NewDashboardService(repo, nil, config.WorkOrderConfig{Timezone: "America/Sao_Paulo"}, zap.NewNop())
	} else {
		svc = NewDashboardService(repo, cache, config.WorkOrderConfig{Timezone: "America/Sao_Paulo"}, zap.NewNop())
	}
	s := svc.(*DashboardService)
	// 1 июля 01:00 UTC - в Сан-Паулу ещё 30 июня
	s.now = func() time.Time { return time.Date(2024, 7, 1, 1, 0, 0, 0, time.UTC) }
	return s
}

func TestDashboardStats(t *testing.T) {
	repo := &fakeDashboardRepo{delivered: 3, revenue: dec("1000")}
	svc := newTestDashboardService(repo, nil)

	stats, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)

	assert.Len(t, stats.OrdersByStatus, 2)
	assert.Equal(t, int64(2), stats.Open.Count)
	assert.True(t, dec("900").Equal(stats.Open.Quoted))
	assert.Equal(t, int64(3), stats.Month.Delivered)
	assert.True(t, dec("333.33").Equal(stats.Month.AverageTicket))
	assert.Equal(t, []types.DashboardCountByGroup{{Group: "entrada", Count: 4}}, stats.CardsByPosition)

	assert.Equal(t, 2024, repo.since.Year())
	assert.Equal(t, time.June, repo.since.Month())
	assert.Equal(t, 1, repo.since.Day())
	assert.Equal(t, 0, repo.since.Hour())
}

func TestDashboardStatsWithoutDeliveries(t *testing.T) {
	svc := newTestDashboardService(&fakeDashboardRepo{revenue: decimal.Zero}, nil)

	stats, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.True(t, stats.Month.AverageTicket.IsZero())
}

func TestDashboardStatsCached(t *testing.T) {
	repo := &fakeDashboardRepo{delivered: 1, revenue: dec("250")}
	cache := &memCache{data: map[string]string{}}
	svc := newTestDashboardService(repo, cache)

	first, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.Contains(t, cache.data, dashboardCacheKey)
	assert.Equal(t, dashboardCacheTTL, cache.ttl)

	second, err := svc.GetDashboardStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls, "второй запрос берётся из кэша")
	assert.True(t, first.Month.Revenue.Equal(second.Month.Revenue))
}

func TestDashboardStatsRepositoryError(t *testing.T) {
	svc := newTestDashboardService(&fakeDashboardRepo{err: errors.New("db down")}, nil)

	_, err := svc.GetDashboardStats(context.Background())
	assert.EqualError(t, err, "db down")
}
