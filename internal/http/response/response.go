// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/product-catalog/internal/errs"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status содержит статус запроса ("OK" или "Error").
// Поле Error содержит текст ошибки (опционально, при неуспехе).
// Поле Details содержит пояснение к ошибке (опционально).
// Поле Data содержит данные ответа (опционально, при успехе).
type Response struct {
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	Details string `json:"details,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// ErrorResponse структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status  string `json:"status" example:"Error"`
	Error   string `json:"error" example:"invalid request body"`
	Details string `json:"details,omitempty" example:"field name must be at least 3 characters long"`
}

const (
	// StatusOK значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ErrorWithDetails возвращает Response с ошибкой и пояснением.
func ErrorWithDetails(msg, details string) Response {
	return Response{
		Status:  StatusError,
		Error:   msg,
		Details: details,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человеко‑читаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "min":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at least %s characters long", err.Field(), err.Param()))
		case "max":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be at most %s characters long", err.Field(), err.Param()))
		case "gte":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be greater than or equal to %s", err.Field(), err.Param()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not a valid", err.Field()))
		}
	}
	return Response{
		Status:  StatusError,
		Error:   "validation failed",
		Details: strings.Join(errsMsgs, ", "),
	}
}

// DecodeError формирует ответ на ошибку разбора тела запроса.
// Значение неверного типа считается ошибкой валидации (422), остальное: неверным JSON (400).
func DecodeError(err error) (int, Response) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return http.StatusUnprocessableEntity, ErrorWithDetails("validation failed",
			fmt.Sprintf("field %s must be a %s", typeErr.Field, jsonKind(typeErr.Type.Kind().String())))
	}
	return http.StatusBadRequest, Error("failed to decode request")
}

func jsonKind(goKind string) string {
	switch {
	case strings.HasPrefix(goKind, "float"), strings.HasPrefix(goKind, "int"), strings.HasPrefix(goKind, "uint"):
		return "number"
	default:
		return goKind
	}
}

// FromError сопоставляет ошибку бизнес-слоя с HTTP-статусом и телом ответа.
// Неизвестные ошибки и сбои хранилища становятся 500 без раскрытия деталей.
func FromError(err error) (int, Response) {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return http.StatusUnprocessableEntity, ErrorWithDetails("validation failed", detailsOf(err, errs.ErrValidation))
	case errors.Is(err, errs.ErrInvalidIdentifier):
		return http.StatusBadRequest, ErrorWithDetails("invalid id", "identifier has invalid format")
	case errors.Is(err, errs.ErrNoFieldsProvided):
		return http.StatusBadRequest, Error(errs.ErrNoFieldsProvided.Error())
	case errors.Is(err, errs.ErrInvalidQuery):
		return http.StatusBadRequest, ErrorWithDetails("invalid query", detailsOf(err, errs.ErrInvalidQuery))
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, Error("product not found")
	case errors.Is(err, errs.ErrAlreadyExists):
		return http.StatusConflict, Error("user already exists")
	case errors.Is(err, errs.ErrVersionConflict):
		return http.StatusConflict, ErrorWithDetails("conflict", "product was modified concurrently, retry the request")
	case errors.Is(err, errs.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error("invalid credentials")
	case errors.Is(err, errs.ErrTokenExpired):
		return http.StatusUnauthorized, ErrorWithDetails("Token expired", "Please authenticate again")
	case errors.Is(err, errs.ErrUnauthenticated):
		return http.StatusUnauthorized, ErrorWithDetails("Invalid token", "Authentication failed")
	case errors.Is(err, errs.ErrForbidden):
		return http.StatusForbidden, ErrorWithDetails("Forbidden", "User account not found or inactive")
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}

// detailsOf возвращает текст после сигнальной ошибки, например "minPrice exceeds maxPrice".
func detailsOf(err, sentinel error) string {
	msg := err.Error()
	marker := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, marker); i >= 0 {
		return msg[i+len(marker):]
	}
	return ""
}

// Render записывает статус и тело ответа.
func Render(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// RenderError сопоставляет ошибку со статусом через FromError и записывает ответ.
func RenderError(w http.ResponseWriter, r *http.Request, err error) int {
	status, resp := FromError(err)
	Render(w, r, status, resp)
	return status
}
