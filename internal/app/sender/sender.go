// Package sender собирает воркер приветственных писем: очередь users.welcome и SMTP.
package sender

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/fintrack/internal/config"
	"github.com/magabrotheeeer/fintrack/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/fintrack/internal/lib/sl"
	"github.com/magabrotheeeer/fintrack/internal/lib/smtp"
	senderservice "github.com/magabrotheeeer/fintrack/internal/services/sender"
)

// App держит соединение с брокером и сервис отправки писем.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	queue         string
	workers       int
	senderService *senderservice.SenderService
	logger        *slog.Logger
}

// New подключается к RabbitMQ и готовит очереди пользователей.
func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.sender.New"
	if cfg.RabbitURL == "" {
		return nil, fmt.Errorf("%s: rabbitmq url is not configured", op)
	}
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%s: smtp host is not configured", op)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.ConnectRetries, cfg.RetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	queues := rabbitmq.GetUserQueues()
	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, queues)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	transport := smtp.NewTransport(cfg.SMTP, logger)

	return &App{
		conn:          conn,
		ch:            ch,
		queue:         queues[0].QueueName,
		workers:       cfg.SenderWorkers,
		senderService: senderservice.NewSenderService(logger, transport),
		logger:        logger,
	}, nil
}

// Run обрабатывает очередь до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("welcome sender started", slog.String("queue", a.queue), slog.Int("workers", a.workers))

	err := rabbitmq.Consume(ctx, a.ch, a.queue, a.workers, a.logger, a.senderService.SendWelcome)
	if err != nil {
		a.logger.Error("consumer stopped with error", slog.String("queue", a.queue), sl.Err(err))
	}

	a.logger.Info("welcome sender shutting down gracefully")
	if closeErr := a.ch.Close(); closeErr != nil {
		a.logger.Error("failed to close channel", sl.Err(closeErr))
	}
	if closeErr := a.conn.Close(); closeErr != nil {
		a.logger.Error("failed to close connection", sl.Err(closeErr))
	}
	return err
}
