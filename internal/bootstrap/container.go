// Package bootstrap собирает репозитории, сервисы и фоновые компоненты из конфигурации.
// Им пользуются и HTTP-сервер, и oficinactl.
package bootstrap

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"oficina-system/internal/integrations"
	"oficina-system/internal/integrations/mock"
	"oficina-system/internal/integrations/trello"
	"oficina-system/internal/listeners"
	"oficina-system/internal/repositories"
	"oficina-system/internal/services"
	"oficina-system/internal/sync"
	"oficina-system/pkg/config"
	"oficina-system/pkg/eventbus"
)

type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Bus    *eventbus.Bus

	Registry integrations.RegistryInterface
	Cache    repositories.CacheRepositoryInterface

	OrderService     services.OrderServiceInterface
	MechanicService  services.MechanicServiceInterface
	PatioService     services.PatioServiceInterface
	DashboardService services.DashboardServiceInterface
	SyncService      services.SyncServiceInterface
	Scheduler        *sync.Scheduler
}

// NewRegistry регистрирует всех провайдеров доски и делает активным указанного в BOARD_PROVIDER.
func NewRegistry(cfg config.TrelloConfig, logger *zap.Logger) integrations.RegistryInterface {
	registry := integrations.NewRegistry()
	for _, provider := range []integrations.BoardProvider{
		trello.New(cfg, logger),
		mock.NewMockProvider(),
	} {
		if err := registry.Register(provider); err != nil {
			logger.Error("Не удалось зарегистрировать провайдера доски", zap.Error(err))
		}
	}
	if err := registry.SetActive(cfg.Provider); err != nil {
		logger.Warn("Активный провайдер доски не выбран, синхронизация недоступна",
			zap.String("provider", cfg.Provider), zap.Strings("available", registry.Names()), zap.Error(err))
	}
	return registry
}

// New собирает зависимости. redisClient может быть nil, тогда кэш и распределённая блокировка отключены.
func New(cfg *config.Config, dbConn *pgxpool.Pool, redisClient *redis.Client, logger *zap.Logger) *Container {
	c := &Container{
		Config:   cfg,
		Logger:   logger,
		Bus:      eventbus.New(logger.Named("eventbus")),
		Registry: NewRegistry(cfg.Trello, logger),
	}

	// --- 1. РЕПОЗИТОРИИ ---
	txManager := repositories.NewTxManager(dbConn)
	orderRepo := repositories.NewOrderRepository(dbConn)
	itemRepo := repositories.NewOrderItemRepository(dbConn)
	mechanicRepo := repositories.NewMechanicRepository(dbConn)
	boardRepo := repositories.NewBoardRepository(dbConn)
	dashboardRepo := repositories.NewDashboardRepository(dbConn, logger)

	var locker sync.Locker
	if redisClient != nil {
		c.Cache = repositories.NewRedisCacheRepository(redisClient)
		locker = c.Cache
	}

	// --- 2. СЕРВИСЫ ---
	c.OrderService = services.NewOrderService(txManager, orderRepo, itemRepo, mechanicRepo, c.Bus, cfg.WorkOrder, logger)
	c.MechanicService = services.NewMechanicService(mechanicRepo, logger)
	c.PatioService = services.NewPatioService(boardRepo, logger)
	c.DashboardService = services.NewDashboardService(dashboardRepo, c.Cache, cfg.WorkOrder, logger)

	handler := sync.NewDBHandler(txManager, boardRepo, cfg.Trello, logger)
	c.SyncService = services.NewSyncService(c.Registry, handler, cfg.Trello, cfg.WorkOrder, logger)
	c.Scheduler = sync.NewScheduler(c.SyncService, locker, cfg.Sync, logger)

	// --- 3. СЛУШАТЕЛИ ---
	listeners.NewTrelloListener(c.SyncService, logger).Register(c.Bus)

	return c
}
