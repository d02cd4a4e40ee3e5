package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"oficina-system/internal/repositories"
	"oficina-system/pkg/config"
	"oficina-system/pkg/types"
	"oficina-system/pkg/utils"
)

const (
	dashboardCacheKey = "dashboard:stats"
	dashboardCacheTTL = 60 * time.Second
)

type DashboardServiceInterface interface {
	GetDashboardStats(ctx context.Context) (*types.DashboardStats, error)
}

type DashboardService struct {
	repo     repositories.DashboardRepositoryInterface
	cache    repositories.CacheRepositoryInterface
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

// NewDashboardService: cache может быть nil, тогда статистика считается на каждый запрос.
func NewDashboardService(
	repo repositories.DashboardRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	cfg config.WorkOrderConfig,
	logger *zap.Logger,
) DashboardServiceInterface {
	return &DashboardService{
		repo:     repo,
		cache:    cache,
		location: utils.LoadLocation(cfg.Timezone),
		now:      time.Now,
		logger:   logger.Named("dashboard_service"),
	}
}

func (s *DashboardService) cached(ctx context.Context) (*types.DashboardStats, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, dashboardCacheKey)
	if err != nil {
		return nil, false
	}
	var stats types.DashboardStats
	if err := json.Unmarshal([]byte(raw), &stats); err != nil {
		s.logger.Warn("Не удалось прочитать статистику из кэша", zap.Error(err))
		return nil, false
	}
	return &stats, true
}

func (s *DashboardService) GetDashboardStats(ctx context.Context) (*types.DashboardStats, error) {
	if stats, ok := s.cached(ctx); ok {
		return stats, nil
	}

	now := s.now().In(s.location)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)

	stats := &types.DashboardStats{GeneratedAt: now}
	var (
		open      *types.DashboardOpenTotals
		delivered int64
		revenue   decimal.Decimal
	)

	// Запросы независимы, выполняем параллельно
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { stats.OrdersByStatus, err = s.repo.GetCountByStatus(gctx); return })
	g.Go(func() (err error) { open, err = s.repo.GetOpenTotals(gctx); return })
	g.Go(func() (err error) { delivered, revenue, err = s.repo.GetDeliveredSince(gctx, monthStart); return })
	g.Go(func() (err error) { stats.CardsByPosition, err = s.repo.GetCardsByPosition(gctx); return })
	if err := g.Wait(); err != nil {
		s.logger.Error("Ошибка сбора статистики дашборда", zap.Error(err))
		return nil, err
	}

	if open != nil {
		stats.Open = *open
	}
	stats.Month = types.DashboardRevenue{
		Delivered:     delivered,
		Revenue:       revenue,
		AverageTicket: decimal.Zero,
	}
	if delivered > 0 {
		stats.Month.AverageTicket = revenue.Div(decimal.NewFromInt(delivered)).Round(2)
	}

	if s.cache != nil {
		if serialized, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, dashboardCacheKey, serialized, dashboardCacheTTL); err != nil {
				s.logger.Warn("Не удалось сохранить статистику в кэш", zap.Error(err))
			}
		}
	}
	return stats, nil
}
