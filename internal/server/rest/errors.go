package rest

import (
	"errors"
	"fmt"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/common"
	"github.com/gofiber/fiber/v2"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError carries the HTTP status and client message chosen for an error.
type AppError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newValidationError(message string) *AppError {
	return &AppError{Status: fiber.StatusBadRequest, Code: "VALIDATION_ERROR", Message: message}
}

// toAppError maps service and repository errors onto HTTP statuses.
func toAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var fe *fiber.Error
	if errors.As(err, &fe) {
		return &AppError{Status: fe.Code, Code: "HTTP_ERROR", Message: fe.Message}
	}

	switch {
	case errors.Is(err, common.ErrorValidation):
		return &AppError{Status: fiber.StatusBadRequest, Code: "VALIDATION_ERROR", Message: "Datos inválidos", Err: err}
	case errors.Is(err, common.ErrTokenMissing):
		return &AppError{Status: fiber.StatusUnauthorized, Code: "TOKEN_MISSING", Message: "Falta el token de autenticación"}
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrTokenExpired):
		return &AppError{Status: fiber.StatusUnauthorized, Code: "TOKEN_INVALID", Message: "El token es inválido o ha expirado"}
	case errors.Is(err, common.ErrorUnauthorized):
		return &AppError{Status: fiber.StatusUnauthorized, Code: "UNAUTHORIZED", Message: "Credenciales inválidas"}
	case errors.Is(err, common.ErrorForbidden):
		return &AppError{Status: fiber.StatusForbidden, Code: "FORBIDDEN", Message: "Acceso denegado", Err: err}
	case errors.Is(err, common.ErrorNotFound):
		return &AppError{Status: fiber.StatusNotFound, Code: "NOT_FOUND", Message: "Recurso no encontrado"}
	case errors.Is(err, common.ErrorAlreadyExists):
		return &AppError{Status: fiber.StatusConflict, Code: "CONFLICT", Message: "El recurso ya existe"}
	default:
		return &AppError{Status: fiber.StatusInternalServerError, Code: "INTERNAL_ERROR", Message: "Error interno del servidor", Err: err}
	}
}

// respondWithError writes err as an ErrorResponse with the mapped status.
func respondWithError(c *fiber.Ctx, err error) error {
	appErr := toAppError(err)

	resp := ErrorResponse{Error: appErr.Message, Code: appErr.Code}
	if appErr.Err != nil {
		resp.Details = appErr.Err.Error()
	}

	return c.Status(appErr.Status).JSON(resp)
}
