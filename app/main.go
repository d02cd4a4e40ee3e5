// Файл: main.go

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"oficina-system/internal/bootstrap"
	"oficina-system/internal/routes"
	"oficina-system/migrations"
	"oficina-system/pkg/config"
	"oficina-system/pkg/database/postgresql"
	"oficina-system/pkg/database/redisdb"
	apperrors "oficina-system/pkg/errors"
	applogger "oficina-system/pkg/logger"
	appmiddleware "oficina-system/pkg/middleware"
	"oficina-system/pkg/utils"
	"oficina-system/pkg/validation"
)

func main() {
	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Logger)
	defer func() { _ = logger.Sync() }()

	// Деньги отдаём числами, а не строками
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Базы данных
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
	}
	defer dbConn.Close()

	if err := postgresql.Migrate(ctx, dbConn, migrations.FS, "up"); err != nil {
		logger.Fatal("не удалось применить миграции", zap.Error(err))
	}

	redisClient, err := redisdb.Connect(ctx, cfg.Redis, logger)
	if err != nil {
		// Без Redis работаем: блокировка только внутри процесса, кэша нет
		logger.Warn("Redis недоступен, продолжаем без него", zap.Error(err))
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// 3. Echo и middleware
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Erro interno do servidor", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))
	e.Use(appmiddleware.InjectLogger(logger))
	e.Use(appmiddleware.RequestLogger(logger))

	// 4. Зависимости и маршруты
	container := bootstrap.New(cfg, dbConn, redisClient, logger)
	routes.InitRouter(e, container)

	// 5. Фоновая синхронизация доски
	if cfg.Sync.Scheduled {
		container.Scheduler.Start(ctx)
	} else {
		logger.Info("Плановая синхронизация отключена (SYNC_SCHEDULED=false)")
	}

	// 6. Запускаем сервер
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки, завершаем работу")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки HTTP-сервера", zap.Error(err))
	}
	container.Scheduler.Stop()
	container.Bus.Wait()
	logger.Info("Сервер остановлен")
}
