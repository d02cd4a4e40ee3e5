// Файл: internal/services/sync_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"oficina-system/internal/dto"
	"oficina-system/internal/integrations"
	"oficina-system/internal/sync"
	"oficina-system/pkg/config"
	apperrors "oficina-system/pkg/errors"
	"oficina-system/pkg/utils"
)

// webhookContextKey - ключ для хранения логгера в контексте фоновых задач.
type webhookContextKey struct{}

// NewWebhookContext добавляет логгер фоновой задачи в контекст parent.
func NewWebhookContext(parent context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(parent, webhookContextKey{}, logger)
}

// LoggerFromContext извлекает логгер из контекста.
func LoggerFromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if logger, ok := ctx.Value(webhookContextKey{}).(*zap.Logger); ok {
		return logger
	}
	return fallback
}

type SyncServiceInterface interface {
	// SyncBoardToStore переносит списки и карточки доски в локальное зеркало.
	SyncBoardToStore(ctx context.Context) (dto.SyncResultDTO, error)
	MoveCardToList(ctx context.Context, cardID, listID string) error
	// MoveToReady переносит карточку в список "pronto" и очищает поле ресурса.
	MoveToReady(ctx context.Context, cardID string) error
	MoveToExecution(ctx context.Context, cardID string) error
}

type SyncService struct {
	registry integrations.RegistryInterface
	handler  sync.HandlerInterface
	cfg      config.TrelloConfig
	location *time.Location
	now      func() time.Time
	logger   *zap.Logger
}

func NewSyncService(
	registry integrations.RegistryInterface,
	handler sync.HandlerInterface,
	cfg config.TrelloConfig,
	workOrderCfg config.WorkOrderConfig,
	logger *zap.Logger,
) SyncServiceInterface {
	return &SyncService{
		registry: registry,
		handler:  handler,
		cfg:      cfg,
		location: utils.LoadLocation(workOrderCfg.Timezone),
		now:      time.Now,
		logger:   logger.Named("sync_service"),
	}
}

func failedSync() dto.SyncResultDTO {
	return dto.SyncResultDTO{Success: false, Synced: 0, Errors: 1}
}

func (s *SyncService) SyncBoardToStore(ctx context.Context) (dto.SyncResultDTO, error) {
	logger := LoggerFromContext(ctx, s.logger)
	started := time.Now()

	provider, err := s.registry.GetActive()
	if err != nil {
		logger.Error("Синхронизация невозможна: провайдер доски не настроен", zap.Error(err))
		return failedSync(), err
	}

	// Этап 1: списки
	lists, err := provider.GetLists(ctx)
	if err != nil {
		logger.Error("Не удалось получить списки доски", zap.Error(err))
		return failedSync(), fmt.Errorf("ошибка получения списков доски: %w", err)
	}
	listNames, err := s.handler.ProcessLists(ctx, lists)
	if err != nil {
		logger.Error("Не удалось сохранить списки доски", zap.Error(err))
		return failedSync(), fmt.Errorf("ошибка сохранения списков доски: %w", err)
	}

	// Этап 2: определения пользовательских полей
	fields, err := provider.GetCustomFields(ctx)
	if err != nil {
		logger.Error("Не удалось получить пользовательские поля доски", zap.Error(err))
		return failedSync(), fmt.Errorf("ошибка получения пользовательских полей: %w", err)
	}

	// Этап 3: карточки. Ошибка отдельной карточки только считается.
	cards, err := provider.GetCards(ctx)
	if err != nil {
		logger.Error("Не удалось получить карточки доски", zap.Error(err))
		return failedSync(), fmt.Errorf("ошибка получения карточек: %w", err)
	}
	synced, failed := s.handler.ProcessCards(ctx, cards, listNames, sync.NewFieldIndex(fields))

	logger.Info("Синхронизация доски завершена",
		zap.String("provider", provider.Name()),
		zap.Int("lists", len(lists)),
		zap.Int("synced", synced),
		zap.Int("errors", failed),
		zap.Duration("duration", time.Since(started)),
	)
	return dto.SyncResultDTO{Success: true, Synced: synced, Errors: failed}, nil
}

func externalError(err error) error {
	if errors.Is(err, apperrors.ErrIntegrationNotConfigured) || errors.Is(err, apperrors.ErrExternalAPI) {
		return err
	}
	return fmt.Errorf("%w: %v", apperrors.ErrExternalAPI, err)
}

// partial - перемещение уже выполнено, а последующий шаг упал.
func partial(step string, err error) error {
	return fmt.Errorf("%w: %s: %v", apperrors.ErrPartiallyApplied, step, err)
}

func (s *SyncService) MoveCardToList(ctx context.Context, cardID, listID string) error {
	if cardID == "" || listID == "" {
		return apperrors.NewInvalidInputError("card e lista são obrigatórios")
	}
	provider, err := s.registry.GetActive()
	if err != nil {
		return err
	}

	if err := provider.MoveCard(ctx, cardID, listID); err != nil {
		s.logger.Error("Не удалось переместить карточку", zap.String("card", cardID), zap.String("list", listID), zap.Error(err))
		return externalError(err)
	}

	text := fmt.Sprintf("🔄 Card movido pelo sistema da oficina em %s", utils.FormatBRDateTime(s.now(), s.location))
	if err := provider.AddComment(ctx, cardID, text); err != nil {
		s.logger.Warn("Карточка перемещена, но комментарий не добавлен", zap.String("card", cardID), zap.Error(err))
		return partial("comentário não adicionado", err)
	}

	s.logger.Info("Карточка перемещена", zap.String("card", cardID), zap.String("list", listID))
	return nil
}

func (s *SyncService) MoveToReady(ctx context.Context, cardID string) error {
	if cardID == "" {
		return apperrors.NewInvalidInputError("card é obrigatório")
	}
	if s.cfg.ReadyListID == "" {
		return fmt.Errorf("%w: lista \"pronto\" não configurada", apperrors.ErrIntegrationNotConfigured)
	}
	provider, err := s.registry.GetActive()
	if err != nil {
		return err
	}

	if err := provider.MoveCard(ctx, cardID, s.cfg.ReadyListID); err != nil {
		s.logger.Error("Не удалось переместить карточку в готовые", zap.String("card", cardID), zap.Error(err))
		return externalError(err)
	}

	if s.cfg.ResourceFieldID != "" {
		if err := provider.ClearCustomField(ctx, cardID, s.cfg.ResourceFieldID); err != nil {
			s.logger.Warn("Карточка перемещена, но поле ресурса не очищено", zap.String("card", cardID), zap.Error(err))
			return partial("campo de recurso não foi limpo", err)
		}
	} else {
		s.logger.Warn("ID поля ресурса не задан, очистка пропущена", zap.String("card", cardID))
	}

	text := fmt.Sprintf("✅ Veículo pronto para entrega. Recurso liberado em %s", utils.FormatBRDateTime(s.now(), s.location))
	if err := provider.AddComment(ctx, cardID, text); err != nil {
		s.logger.Warn("Карточка перемещена, но комментарий не добавлен", zap.String("card", cardID), zap.Error(err))
		return partial("comentário não adicionado", err)
	}

	s.logger.Info("Карточка перемещена в готовые", zap.String("card", cardID))
	return nil
}

func (s *SyncService) MoveToExecution(ctx context.Context, cardID string) error {
	if s.cfg.ExecutionListID == "" {
		return fmt.Errorf("%w: lista \"em execução\" não configurada", apperrors.ErrIntegrationNotConfigured)
	}
	return s.MoveCardToList(ctx, cardID, s.cfg.ExecutionListID)
}
