package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "oficina-system/pkg/errors"
	"oficina-system/pkg/types"
)

type HTTPResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

type ListBody struct {
	List       interface{}       `json:"list"`
	Pagination *types.Pagination `json:"pagination"`
}

func SuccessResponse(ctx echo.Context, body interface{}, message string, code int) error {
	return ctx.JSON(code, &HTTPResponse{Status: true, Body: body, Message: message})
}

// SuccessListResponse оборачивает список вместе с метаданными пагинации.
func SuccessListResponse(ctx echo.Context, list interface{}, message string, total uint64, filter types.Filter) error {
	totalPages := 0
	if filter.Limit > 0 {
		totalPages = int((total + uint64(filter.Limit) - 1) / uint64(filter.Limit))
	}
	body := ListBody{
		List: list,
		Pagination: &types.Pagination{
			TotalCount: total,
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalPages: totalPages,
		},
	}
	return ctx.JSON(http.StatusOK, &HTTPResponse{Status: true, Body: body, Message: message})
}

// ErrorResponse переводит ошибку слоя сервисов в HTTP-ответ. Технические детали попадают только в лог.
func ErrorResponse(c echo.Context, err error, logger *zap.Logger) error {
	var httpErr *apperrors.HttpError
	if errors.As(err, &httpErr) {
		if httpErr.Err != nil {
			logger.Error("HTTP Error",
				zap.Int("code", httpErr.Code),
				zap.String("message", httpErr.Message),
				zap.Error(httpErr.Err),
				zap.Any("context", httpErr.Context),
			)
		}
		response := &HTTPResponse{Status: false, Message: httpErr.Message}
		if httpErr.Details != nil {
			response.Body = httpErr.Details
		}
		return c.JSON(httpErr.Code, response)
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		msgs := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			msgs = append(msgs, fmt.Sprintf("campo '%s' falhou na regra '%s'", e.Field(), e.Tag()))
		}
		return c.JSON(http.StatusBadRequest, &HTTPResponse{
			Status:  false,
			Message: "Erro de validação: " + strings.Join(msgs, "; "),
		})
	}

	var invalidInput *apperrors.InvalidInputError
	if errors.As(err, &invalidInput) {
		return c.JSON(http.StatusBadRequest, &HTTPResponse{Status: false, Message: invalidInput.Message})
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return c.JSON(http.StatusNotFound, &HTTPResponse{Status: false, Message: "Registro não encontrado"})
	case errors.Is(err, apperrors.ErrConflict):
		return c.JSON(http.StatusConflict, &HTTPResponse{Status: false, Message: "Registro já existe"})
	case errors.Is(err, apperrors.ErrBadRequest):
		return c.JSON(http.StatusBadRequest, &HTTPResponse{Status: false, Message: "Requisição inválida"})
	case errors.Is(err, apperrors.ErrIntegrationNotConfigured):
		logger.Warn("Интеграция не настроена", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, &HTTPResponse{Status: false, Message: "Integração com o Trello não configurada"})
	case errors.Is(err, apperrors.ErrPartiallyApplied):
		logger.Error("Действие выполнено частично", zap.Error(err))
		return c.JSON(http.StatusBadGateway, &HTTPResponse{Status: false, Message: "Ação aplicada parcialmente: o card foi movido, mas a etapa seguinte falhou"})
	case errors.Is(err, apperrors.ErrExternalAPI):
		logger.Error("Ошибка внешнего API", zap.Error(err))
		return c.JSON(http.StatusBadGateway, &HTTPResponse{Status: false, Message: "Nada foi alterado: falha ao comunicar com o Trello"})
	}

	logger.Error("Unexpected Error", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, &HTTPResponse{
		Status:  false,
		Message: "Erro interno do servidor. Nenhuma alteração foi aplicada",
	})
}
