package sender

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/fintrack/internal/config"
)

func TestNew_RequiresConfiguration(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	_, err := New(&config.Config{SMTP: config.SMTP{SMTPHost: "smtp.example.com"}}, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rabbitmq url")

	_, err = New(&config.Config{RabbitMQ: config.RabbitMQ{RabbitURL: "amqp://localhost"}}, log)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp host")
}
