// Package login реализует HTTP-обработчик для запросов аутентификации пользователей.
//
// Неизвестный email и неверный пароль дают одинаковый ответ 400 InvalidCredentialsError.
package login

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

// Request — структура входных данных для авторизации.
type Request struct {
	Email    string `json:"email" example:"a@x.com"`
	Password string `json:"password" example:"pw123456"`
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log     *slog.Logger // Логгер для записи операций и ошибок
	service Service      // Сервис аутентификации
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, in services.LoginInput) (*services.AuthResult, error)
}

// New создает новый экземпляр Handler с указанными логгером и сервисом аутентификации.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Аутентифицирует пользователя по email и паролю. Возвращает JWT.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.AuthResponse
// @Failure 400 {object} response.ErrorResponse "ValidationError или InvalidCredentialsError"
// @Failure 429 {object} response.ErrorResponse "Слишком много попыток"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	res, err := h.service.Login(r.Context(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		log.Warn("login failed", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("login success", slog.String("user_id", res.User.ID))
	render.JSON(w, r, response.AuthResponse{Token: res.Token, User: res.User})
}
