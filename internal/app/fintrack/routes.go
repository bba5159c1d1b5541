package fintrack

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/fintrack/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/fintrack/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/fintrack/internal/http/handlers/health"
	"github.com/magabrotheeeer/fintrack/internal/http/handlers/user/get"
	"github.com/magabrotheeeer/fintrack/internal/http/handlers/user/me"
	"github.com/magabrotheeeer/fintrack/internal/http/middlewarectx"
	services "github.com/magabrotheeeer/fintrack/internal/services/auth"
)

// RouterDeps — зависимости HTTP-маршрутов.
type RouterDeps struct {
	Logger       *slog.Logger
	Auth         *services.AuthService
	Pinger       health.Pinger
	LoginLimiter *rate.Limiter
	// Metrics — обработчик /metrics; nil отключает маршрут.
	Metrics http.Handler
}

// NewRouter регистрирует все маршруты приложения.
func NewRouter(d RouterDeps) chi.Router {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(d.Logger, d.Auth).ServeHTTP)
		r.With(middlewarectx.RateLimitMiddleware(d.Logger, d.LoginLimiter)).
			Post("/login", login.New(d.Logger, d.Auth).ServeHTTP)
		r.Get("/users/{id}", get.New(d.Logger, d.Auth).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Auth, d.Logger))
			r.Get("/me", me.New(d.Logger).ServeHTTP)
		})
	})

	r.Get("/health", health.New(d.Logger, d.Pinger).ServeHTTP)
	if d.Metrics != nil {
		r.Handle("/metrics", d.Metrics)
	}
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)

	return r
}
