// Package me реализует HTTP-обработчик, возвращающий данные владельца токена.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fintrack/internal/http/middlewarectx"
	"github.com/magabrotheeeer/fintrack/internal/http/response"
)

// Response — id и email из проверенного токена.
type Response struct {
	ID    string `json:"id" example:"3f1c2d4e-0000-0000-0000-000000000000"`
	Email string `json:"email" example:"a@x.com"`
}

// Handler обрабатывает GET /me. Требует JWTMiddleware.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Description Возвращает id и email из JWT.
// @Tags Users
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} response.ErrorResponse "Отсутствующий или недействительный токен"
// @Router /me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.me"

	userID, _ := r.Context().Value(middlewarectx.UserID).(string)
	email, _ := r.Context().Value(middlewarectx.Email).(string)
	if userID == "" {
		h.log.Error("user identification missing",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		response.RenderKind(w, r, response.KindUnauthorized, "user identification missing")
		return
	}

	render.JSON(w, r, Response{ID: userID, Email: email})
}
