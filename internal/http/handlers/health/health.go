// Package health реализует проверку готовности HTTP-сервера.
package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fintrack/internal/http/response"
	"github.com/magabrotheeeer/fintrack/internal/lib/sl"
)

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler отвечает на GET /health.
type Handler struct {
	log    *slog.Logger
	pinger Pinger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, pinger Pinger) *Handler {
	return &Handler{
		log:    log,
		pinger: pinger,
	}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if err := h.pinger.Ping(r.Context()); err != nil {
		h.log.Error("storage is not reachable", slog.String("op", op), sl.Err(err))
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Response{Status: response.StatusError})
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"storage": "ok",
	}))
}
