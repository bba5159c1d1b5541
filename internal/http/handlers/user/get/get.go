// Package get реализует HTTP-обработчик получения email пользователя по id.
package get

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fintrack/internal/http/response"
	"github.com/magabrotheeeer/fintrack/internal/lib/sl"
)

// Service описывает операцию чтения пользователя.
type Service interface {
	GetUser(ctx context.Context, id string) (string, error)
}

// Handler обрабатывает GET /users/{id}.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Email пользователя
// @Description Возвращает только email пользователя по его идентификатору.
// @Tags Users
// @Produce  json
// @Param id path string true "Идентификатор пользователя"
// @Success 200 {object} response.EmailResponse
// @Failure 404 {object} response.ErrorResponse "NotFoundError"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /users/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.user.get"

	id := chi.URLParam(r, "id")
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", id),
	)

	email, err := h.service.GetUser(r.Context(), id)
	if err != nil {
		log.Info("failed to get user", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	render.JSON(w, r, response.EmailResponse{Email: email})
}
