// Package register реализует HTTP-обработчик регистрации пользователя.
package register

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/fintrack/internal/http/response"
	"github.com/magabrotheeeer/fintrack/internal/lib/sl"
	services "github.com/magabrotheeeer/fintrack/internal/services/auth"
)

// Request — входные данные для регистрации. Name необязательно.
type Request struct {
	Name     string `json:"name,omitempty" example:"Alice"`
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"pw123456"`
}

// Service описывает операцию регистрации.
type Service interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error)
}

// Handler обрабатывает POST /register.
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
// @Summary Регистрация пользователя
// @Description Создаёт пользователя и возвращает JWT. Хэш пароля в ответ не попадает.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 200 {object} response.AuthResponse
// @Failure 400 {object} response.ErrorResponse "ValidationError или DuplicateEmailError"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.RenderKind(w, r, services.KindValidation, "invalid request body")
		return
	}

	res, err := h.service.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		log.Error("registration failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("user registered", slog.String("user_id", res.User.ID))
	render.JSON(w, r, response.AuthResponse{Token: res.Token, User: res.User})
}
