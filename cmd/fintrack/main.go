// Package main Fintrack Auth API
//
// @title           Fintrack Auth API
// @version         1.0
// @description     Регистрация, вход и выдача JWT для приложения личных финансов

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

//go:generate swag init -g cmd/fintrack/main.go -d ../../ -o ../../docs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/magabrotheeeer/fintrack/docs"
	"github.com/magabrotheeeer/fintrack/internal/app/fintrack"
	"github.com/magabrotheeeer/fintrack/internal/app/sender"
	"github.com/magabrotheeeer/fintrack/internal/config"
	"github.com/magabrotheeeer/fintrack/internal/lib/sl"
	"github.com/magabrotheeeer/fintrack/internal/migrations"
	"github.com/magabrotheeeer/fintrack/internal/storage/postgresql"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "fintrack",
		Short:        "fintrack auth backend",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (defaults to CONFIG_PATH)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply postgres migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return migrate(cmd.Context(), cfg)
		},
	}

	notifyCmd := &cobra.Command{
		Use:   "notify",
		Short: "send welcome emails for user.registered events",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return notify(cmd.Context(), cfg)
		},
	}

	rootCmd.AddCommand(serveCmd, migrateCmd, notifyCmd)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := setupLogger(cfg.Env)
	logger.Info("starting fintrack", slog.String("env", cfg.Env), slog.String("storage", cfg.Driver))
	logger.Debug("config loaded", slog.String("config", cfg.String()))

	app, err := fintrack.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize app", sl.Err(err))
		return err
	}

	if err := app.Run(ctx); err != nil {
		logger.Error("app stopped with error", sl.Err(err))
		return err
	}

	logger.Info("fintrack stopped gracefully")
	return nil
}

func migrate(ctx context.Context, cfg *config.Config) error {
	logger := setupLogger(cfg.Env)
	if cfg.Driver != config.DriverPostgres {
		return fmt.Errorf("migrations are only supported for the %s driver, got %q", config.DriverPostgres, cfg.Driver)
	}

	st, err := postgresql.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		logger.Error("failed to connect to postgres", sl.Err(err))
		return err
	}
	defer st.Close(ctx)

	if err := migrations.Run(st.DB, cfg.MigrationsPath); err != nil {
		logger.Error("failed to apply migrations", sl.Err(err))
		return err
	}
	logger.Info("migrations applied", slog.String("path", cfg.MigrationsPath))
	return nil
}

func notify(ctx context.Context, cfg *config.Config) error {
	logger := setupLogger(cfg.Env)

	app, err := sender.New(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize sender", sl.Err(err))
		return err
	}
	return app.Run(ctx)
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
}
