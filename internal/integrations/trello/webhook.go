// Файл: internal/integrations/trello/webhook.go
package trello

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"oficina-system/internal/dto"
	"oficina-system/internal/services"
	apperrors "oficina-system/pkg/errors"
	"oficina-system/pkg/utils"
)

// SyncTrigger - запуск синхронизации с учётом блокировок планировщика.
// Фоновые запуски отслеживает планировщик: Stop отменяет их и ждёт завершения.
type SyncTrigger interface {
	RunOnce(ctx context.Context) (dto.SyncResultDTO, bool)
	RunInBackground(fn func(ctx context.Context)) bool
}

// WebhookController принимает уведомления Trello об изменениях доски.
type WebhookController struct {
	trigger SyncTrigger
	logger  *zap.Logger
}

func NewWebhookController(trigger SyncTrigger, logger *zap.Logger) *WebhookController {
	return &WebhookController{
		trigger: trigger,
		logger:  logger.Named("trello_webhook_controller"),
	}
}

// HandleVerify - Trello проверяет callback URL запросом HEAD и ждёт 200.
func (c *WebhookController) HandleVerify(ctx echo.Context) error {
	return ctx.NoContent(http.StatusOK)
}

// HandleEvent ставит синхронизацию в фон и сразу отвечает: Trello ждёт ответа не дольше нескольких секунд.
func (c *WebhookController) HandleEvent(ctx echo.Context) error {
	started := c.trigger.RunInBackground(func(bgCtx context.Context) {
		result, ran := c.trigger.RunOnce(services.NewWebhookContext(bgCtx, c.logger))
		if !ran {
			c.logger.Debug("Синхронизация по вебхуку пропущена: уже выполняется")
			return
		}
		c.logger.Info("Синхронизация по вебхуку выполнена",
			zap.Bool("success", result.Success),
			zap.Int("synced", result.Synced),
			zap.Int("errors", result.Errors),
		)
	})
	if !started {
		c.logger.Warn("Вебхук получен во время остановки сервиса, синхронизация не запущена")
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusServiceUnavailable, "Serviço em desligamento, tente novamente", nil, nil), c.logger)
	}

	return utils.SuccessResponse(ctx, nil, "Notificação recebida", http.StatusOK)
}
