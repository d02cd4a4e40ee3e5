// Файл: internal/controllers/sync_controller.go
package controllers

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

// SyncRunner - запуск синхронизации через планировщик, чтобы ручной запуск не пересекался с плановым.
type SyncRunner interface {
	RunOnce(ctx context.Context) (dto.SyncResultDTO, bool)
}

type SyncController struct {
	runner      SyncRunner
	syncService services.SyncServiceInterface
	logger      *zap.Logger
}

func NewSyncController(runner SyncRunner, service services.SyncServiceInterface, logger *zap.Logger) *SyncController {
	return &SyncController{
		runner:      runner,
		syncService: service,
		logger:      logger.Named("sync_controller"),
	}
}

// HandleSyncTrello отвечает голым {success, synced, errors}: этот формат читает фронтенд двора.
func (c *SyncController) HandleSyncTrello(ctx echo.Context) error {
	result, ran := c.runner.RunOnce(ctx.Request().Context())
	if !ran {
		apiErr := apperrors.NewHttpError(http.StatusConflict, "Sincronização já em andamento, tente novamente em instantes", nil, nil)
		return utils.ErrorResponse(ctx, apiErr, c.logger)
	}
	if !result.Success {
		return ctx.JSON(http.StatusBadGateway, result)
	}
	return ctx.JSON(http.StatusOK, result)
}

func (c *SyncController) MoveCard(ctx echo.Context) error {
	cardID := ctx.Param("cardId")
	var payload dto.MoveCardDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	if err := c.syncService.MoveCardToList(ctx.Request().Context(), cardID, payload.ListID); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Card movido com sucesso", http.StatusOK)
}

func (c *SyncController) MoveToReady(ctx echo.Context) error {
	cardID := ctx.Param("cardId")
	if err := c.syncService.MoveToReady(ctx.Request().Context(), cardID); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, nil, "Veículo marcado como pronto", http.StatusOK)
}
