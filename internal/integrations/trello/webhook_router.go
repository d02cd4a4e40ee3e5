// Файл: internal/integrations/trello/webhook_router.go
package trello

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// RegisterWebhookRoutes регистрирует вебхук Trello. Без секрета маршрут не регистрируется.
func RegisterWebhookRoutes(apiGroup *echo.Group, trigger SyncTrigger, secret string, logger *zap.Logger) {
	if secret == "" {
		logger.Warn("TRELLO_WEBHOOK_SECRET не задан, вебхук Trello отключен")
		return
	}

	// Trello не умеет слать заголовки, поэтому ключ передаётся в callback URL
	secretValidator := middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "query:secret",
		Validator: func(key string, c echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(secret)) == 1, nil
		},
	})

	controller := NewWebhookController(trigger, logger)

	webhookGroup := apiGroup.Group("/webhooks/trello")
	webhookGroup.Use(secretValidator)
	webhookGroup.HEAD("", controller.HandleVerify)
	webhookGroup.POST("", controller.HandleEvent)

	logger.Info("Вебхук Trello зарегистрирован", zap.String("path", "/api/webhooks/trello"))
}
