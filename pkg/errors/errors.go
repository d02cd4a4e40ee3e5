package errors

import (
	"errors"
	"fmt"
)

var (
	// Общие
	ErrNotFound   = fmt.Errorf("registro não encontrado")
	ErrBadRequest = fmt.Errorf("requisição inválida")
	ErrConflict   = fmt.Errorf("registro já existe")

	// Интеграции
	ErrIntegrationNotConfigured = fmt.Errorf("integração com o quadro não configurada")
	ErrExternalAPI              = fmt.Errorf("falha na API externa")
	ErrPartiallyApplied         = fmt.Errorf("ação aplicada parcialmente")
)

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// IsInvalidInput сообщает, является ли ошибка (или любая обёрнутая в ней) ошибкой валидации.
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// HttpError несёт HTTP-код и сообщение для клиента; Err и Context уходят только в лог.
type HttpError struct {
	Code    int
	Message string
	Err     error
	Context map[string]interface{}
	Details interface{}
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%d %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%d %s", e.Code, e.Message)
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error, context map[string]interface{}) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err, Context: context}
}

// WithDetails добавляет тело ответа (например, расчёт, который не прошёл проверку).
func (e *HttpError) WithDetails(details interface{}) *HttpError {
	e.Details = details
	return e
}
