// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков.
package response

import (
	"net/http"

	"github.com/go-chi/render"

	services "github.com/magabrotheeeer/fintrack/internal/services/auth"
)

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// Response описывает служебный ответ сервера (health и подобные).
type Response struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse — тело ответа с ошибкой.
// Kind — стабильный машиночитаемый вид ошибки, Error — сообщение для человека.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Kind   string `json:"kind" example:"ValidationError"`
	Error  string `json:"error" example:"field Email is a required field"`
}

// AuthResponse — тело успешного ответа Register и Login.
type AuthResponse struct {
	Token string `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	User  any    `json:"user"`
}

// EmailResponse — тело успешного ответа GetUser.
type EmailResponse struct {
	Email string `json:"email" example:"a@x.com"`
}

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает ErrorResponse с видом ошибки и сообщением.
func Error(kind, msg string) ErrorResponse {
	return ErrorResponse{
		Status: StatusError,
		Kind:   kind,
		Error:  msg,
	}
}

// StatusForKind сопоставляет вид ошибки с HTTP-статусом.
func StatusForKind(kind string) int {
	switch kind {
	case services.KindValidation, services.KindDuplicateEmail, services.KindInvalidCredentials:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Виды ошибок транспортного уровня.
const (
	KindUnauthorized    = "UnauthorizedError"
	KindTooManyRequests = "TooManyRequestsError"
)

// RenderError пишет ответ с ошибкой: статус определяется видом, сообщение безопасно для клиента.
func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	kind := services.KindOf(err)
	render.Status(r, StatusForKind(kind))
	render.JSON(w, r, Error(kind, services.MessageOf(err)))
}

// RenderKind пишет ответ с ошибкой заданного вида.
func RenderKind(w http.ResponseWriter, r *http.Request, kind, msg string) {
	render.Status(r, StatusForKind(kind))
	render.JSON(w, r, Error(kind, msg))
}
