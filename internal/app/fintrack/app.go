// Package fintrack собирает приложение: хранилище, кэш, публикацию событий,
// сервис аутентификации, HTTP- и gRPC-серверы.
package fintrack

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/fintrack/internal/cache"
	"github.com/magabrotheeeer/fintrack/internal/config"
	grpcserver "github.com/magabrotheeeer/fintrack/internal/grpc/server"
	"github.com/magabrotheeeer/fintrack/internal/lib/jwt"
	"github.com/magabrotheeeer/fintrack/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/fintrack/internal/lib/sl"
	"github.com/magabrotheeeer/fintrack/internal/metrics"
	"github.com/magabrotheeeer/fintrack/internal/migrations"
	services "github.com/magabrotheeeer/fintrack/internal/services/auth"
	"github.com/magabrotheeeer/fintrack/internal/storage/memory"
	"github.com/magabrotheeeer/fintrack/internal/storage/mongodb"
	"github.com/magabrotheeeer/fintrack/internal/storage/postgresql"
)

const shutdownTimeout = 15 * time.Second

// UserStore — хранилище пользователей вместе с управлением соединением.
type UserStore interface {
	services.UserRepository
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type userCache interface {
	services.Cache
	Close() error
}

type eventPublisher interface {
	services.Publisher
	Close() error
}

// App держит собранные компоненты и управляет их жизненным циклом.
type App struct {
	server    *http.Server
	grpc      *grpcserver.Server
	grpcAddr  string
	logger    *slog.Logger
	store     UserStore
	cache     userCache
	publisher eventPublisher
}

// New собирает приложение по конфигурации.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.fintrack.New"

	store, err := OpenStorage(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	usersCache := openCache(ctx, cfg, logger)
	publisher := openPublisher(cfg, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	authService := services.NewAuthService(store, jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		services.WithLogger(logger),
		services.WithBcryptCost(cfg.BcryptCost),
		services.WithOpTimeout(cfg.OpTimeout),
		services.WithCache(usersCache, cfg.CacheTTL),
		services.WithPublisher(publisher),
		services.WithMetrics(metrics.NewAuth(reg)),
	)

	router := NewRouter(RouterDeps{
		Logger:       logger,
		Auth:         authService,
		Pinger:       store,
		LoginLimiter: rate.NewLimiter(rate.Limit(cfg.LoginRate), cfg.LoginBurst),
		Metrics:      promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	app := &App{
		server:    srv,
		grpcAddr:  cfg.AddressGRPC,
		logger:    logger,
		store:     store,
		cache:     usersCache,
		publisher: publisher,
	}
	if cfg.AddressGRPC != "" {
		app.grpc = grpcserver.New(logger, store, 0)
	}
	return app, nil
}

// OpenStorage открывает хранилище выбранного драйвера. Для PostgreSQL применяются миграции.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (UserStore, error) {
	const op = "app.fintrack.OpenStorage"

	switch cfg.Driver {
	case config.DriverPostgres:
		st, err := postgresql.New(ctx, cfg.StorageConnectionString)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := migrations.Run(st.DB, cfg.MigrationsPath); err != nil {
			_ = st.Close(ctx)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Info("using postgres storage")
		return st, nil
	case config.DriverMongo:
		st, err := mongodb.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		logger.Info("using mongo storage", slog.String("database", cfg.MongoDatabase))
		return st, nil
	case config.DriverMemory:
		logger.Warn("using in-memory storage, users are lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("%s: unknown storage driver %q", op, cfg.Driver)
	}
}

func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) userCache {
	if cfg.AddressRedis != "" {
		r, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err == nil {
			logger.Info("using redis cache", slog.String("address", cfg.AddressRedis))
			return r
		}
		logger.Warn("redis is unavailable, falling back to in-process cache", sl.Err(err))
	}
	return cache.NewLRU(cfg.LRUSize, cfg.CacheTTL)
}

func openPublisher(cfg *config.Config, logger *slog.Logger) eventPublisher {
	if cfg.RabbitURL == "" {
		return rabbitmq.NoopPublisher{}
	}
	p, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.Exchange, cfg.ConnectRetries, cfg.RetryDelay)
	if err != nil {
		logger.Warn("rabbitmq is unavailable, user events are disabled", sl.Err(err))
		return rabbitmq.NoopPublisher{}
	}
	logger.Info("publishing user events", slog.String("exchange", cfg.Exchange))
	return p
}

// Run обслуживает HTTP (и gRPC, если задан адрес) до отмены ctx, затем плавно останавливается.
func (a *App) Run(ctx context.Context) error {
	const op = "app.fintrack.Run"

	var grpcLis net.Listener
	if a.grpc != nil {
		lis, err := net.Listen("tcp", a.grpcAddr)
		if err != nil {
			a.close(ctx)
			return fmt.Errorf("%s: %w", op, err)
		}
		grpcLis = lis
	}

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	grpcCtx, stopGRPC := context.WithCancel(ctx)
	defer stopGRPC()
	if grpcLis != nil {
		go func() {
			if err := a.grpc.Run(grpcCtx, grpcLis); err != nil {
				errCh <- err
			}
		}()
	}

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
	}

	stopGRPC()
	timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.logger.Info("shutting down HTTP server gracefully")
	if err := a.server.Shutdown(timeoutCtx); err != nil && runErr == nil {
		runErr = err
	}
	a.close(timeoutCtx)
	return runErr
}

func (a *App) close(ctx context.Context) {
	if err := a.publisher.Close(); err != nil {
		a.logger.Warn("failed to close publisher", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close cache", sl.Err(err))
	}
	if err := a.store.Close(ctx); err != nil {
		a.logger.Warn("failed to close storage", sl.Err(err))
	}
}
