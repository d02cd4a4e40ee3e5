package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"oficina-system/internal/services"
	"oficina-system/pkg/utils"
)

type PatioController struct {
	service services.PatioServiceInterface
	logger  *zap.Logger
}

func NewPatioController(service services.PatioServiceInterface, logger *zap.Logger) *PatioController {
	return &PatioController{service: service, logger: logger.Named("patio_controller")}
}

func (c *PatioController) GetCards(ctx echo.Context) error {
	columns, err := c.service.GetColumns(ctx.Request().Context(), ctx.QueryParam("position"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, columns, "Pátio obtido com sucesso", http.StatusOK)
}

func (c *PatioController) FindCard(ctx echo.Context) error {
	card, err := c.service.FindCard(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, card, "Card encontrado", http.StatusOK)
}
