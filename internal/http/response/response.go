// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON-ответов HTTP-обработчиков.
package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	services "github.com/magabrotheeeer/gkai/internal/services/auth"
)

// Response описывает стандартную структуру JSON-ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Success выставляется в ответах входа, регистрации и выхода.
type Response struct {
	Status  string `json:"status"`
	Success bool   `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// Сообщения, которые видит клиент.
const (
	MsgInvalidCredentials     = "Invalid credentials"
	MsgAuthenticationRequired = "Authentication required"
	MsgAdminAccessRequired    = "Admin access required"
	MsgUserNotFound           = "User not found"
	MsgInternal               = "Internal server error"
)

// OK возвращает пустой успешный Response.
func OK() Response {
	return Response{Status: StatusOK}
}

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Success возвращает {"status":"OK","success":true}.
func Success() Response {
	return Response{Status: StatusOK, Success: true}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со статусом Error на основе ошибок валидации.
// Каждое нарушение формируется в человекочитаемый текст, объединённый через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "uuid":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s can contain only uuid", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Response{
		Status: StatusError,
		Error:  strings.Join(errsMsgs, ", "),
	}
}

// FromError сопоставляет ошибку сервиса HTTP-статусу и телу ответа.
// Неизвестные ошибки отдаются как 500 без подробностей.
func FromError(err error) (int, Response) {
	var (
		verr *services.ValidationError
		cerr *services.ConflictError
	)
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, Error(verr.Reason)
	case errors.As(err, &cerr):
		return http.StatusConflict, Error(cerr.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error(MsgInvalidCredentials)
	case errors.Is(err, services.ErrAuthenticationRequired):
		return http.StatusUnauthorized, Error(MsgAuthenticationRequired)
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, Error(MsgAdminAccessRequired)
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, Error(MsgUserNotFound)
	default:
		return http.StatusInternalServerError, Error(MsgInternal)
	}
}
