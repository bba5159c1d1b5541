package rabbitmq

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/fintrack/internal/lib/sl"
)

// Handler обрабатывает тело одного сообщения. Ошибка возвращает сообщение в очередь.
type Handler func(ctx context.Context, body []byte) error

// Consume читает queueName и обрабатывает сообщения не более чем в workers горутинах.
// Блокируется до отмены ctx или закрытия канала и дожидается обработчиков.
func Consume(ctx context.Context, ch *amqp.Channel, queueName string, workers int, log *slog.Logger, handler Handler) error {
	const op = "rabbitmq.Consume"
	if workers < 1 {
		workers = 1
	}
	if err := ch.Qos(workers, 0, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	sem := make(chan struct{}, workers)
	defer func() {
		for range workers {
			sem <- struct{}{}
		}
	}()

	for {
		select {
		case d, ok := <-delivery:
			if !ok {
				return nil
			}
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				handleDelivery(ctx, d, log, handler)
			}(d)
		case <-ctx.Done():
			return nil
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func handleDelivery(ctx context.Context, d amqp.Delivery, log *slog.Logger, handler Handler) {
	settle(ctx, &d, d.Body, d.Redelivered, log, handler)
}

// settle подтверждает сообщение или возвращает его в очередь.
// Повторно доставленное сообщение с ошибкой отбрасывается, чтобы не зациклиться.
func settle(ctx context.Context, d acknowledger, body []byte, redelivered bool, log *slog.Logger, handler Handler) {
	if err := handler(ctx, body); err != nil {
		log.Warn("failed to handle message", sl.Err(err), slog.Bool("redelivered", redelivered))
		if nackErr := d.Nack(false, !redelivered); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
