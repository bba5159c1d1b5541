// Package middlewarectx содержит HTTP middleware для проверки JWT и ограничения частоты запросов.
//
// JWTMiddleware проверяет токен из заголовка Authorization и в случае успеха кладёт
// в контекст id и email пользователя. Ошибка проверки даёт 401 Unauthorized.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/fintrack/internal/http/response"
	"github.com/magabrotheeeer/fintrack/internal/lib/jwt"
	"github.com/magabrotheeeer/fintrack/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID — ключ для id пользователя в контексте
	UserID Key = "user_id"
	// Email — ключ для email пользователя в контексте
	Email Key = "email"
)

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (*jwt.CustomClaims, error)
}

// JWTMiddleware возвращает HTTP middleware, который проверяет JWT в заголовке Authorization.
func JWTMiddleware(service Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				log.Warn("missing or invalid authorization header")
				response.RenderKind(w, r, response.KindUnauthorized, "missing or invalid authorization header")
				return
			}
			tokenStr := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

			claims, err := service.ValidateToken(r.Context(), tokenStr)
			if err != nil {
				log.Warn("invalid or expired token", sl.Err(err))
				response.RenderKind(w, r, response.KindUnauthorized, "invalid or expired token")
				return
			}
			ctx := context.WithValue(r.Context(), UserID, claims.UserID)
			ctx = context.WithValue(ctx, Email, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
