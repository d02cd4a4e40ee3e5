package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"oficina-system/internal/dto"
	"oficina-system/internal/services"
	"oficina-system/pkg/utils"
)

type MechanicController struct {
	mechanicService services.MechanicServiceInterface
	logger          *zap.Logger
}

func NewMechanicController(mechanicService services.MechanicServiceInterface, logger *zap.Logger) *MechanicController {
	return &MechanicController{mechanicService: mechanicService, logger: logger.Named("mechanic_controller")}
}

// GetMechanics - по умолчанию только активные; ?all=true отдаёт всех.
func (c *MechanicController) GetMechanics(ctx echo.Context) error {
	onlyActive := ctx.QueryParam("all") != "true"
	res, err := c.mechanicService.GetMechanics(ctx.Request().Context(), onlyActive)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Mecânicos obtidos com sucesso", http.StatusOK)
}

func (c *MechanicController) CreateMechanic(ctx echo.Context) error {
	var payload dto.CreateMechanicDTO
	if err := bindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.mechanicService.CreateMechanic(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Mecânico cadastrado", http.StatusCreated)
}
