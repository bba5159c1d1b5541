package smtp

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"time"

	"github.com/magabrotheeeer/fintrack/internal/config"
	"github.com/magabrotheeeer/fintrack/internal/lib/sl"
)

const dialTimeout = 10 * time.Second

// Transport реализует SMTP транспорт со STARTTLS и PLAIN-аутентификацией.
type Transport struct {
	cfg config.SMTP
	log *slog.Logger
}

// NewTransport создает новый экземпляр Transport.
func NewTransport(cfg config.SMTP, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

// Connect устанавливает соединение с SMTP сервером.
func (t *Transport) Connect() (Client, error) {
	const op = "smtp.Transport.Connect"
	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)

	conn, err := net.DialTimeout("tcp", addr, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("%s: dial: %w", op, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			t.log.Error("failed to close connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		t.closeClient(client)
		return nil, fmt.Errorf("%s: smtp server does not support STARTTLS", op)
	}
	if err = client.StartTLS(&tls.Config{
		ServerName: t.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}); err != nil {
		t.closeClient(client)
		return nil, fmt.Errorf("%s: start tls: %w", op, err)
	}

	if t.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
		if err = client.Auth(auth); err != nil {
			t.closeClient(client)
			return nil, fmt.Errorf("%s: auth: %w", op, err)
		}
	}

	return client, nil
}

// From возвращает адрес отправителя: from из конфига или имя пользователя SMTP.
func (t *Transport) From() string {
	if t.cfg.SMTPFrom != "" {
		return t.cfg.SMTPFrom
	}
	return t.cfg.SMTPUser
}

func (t *Transport) closeClient(c *smtp.Client) {
	if err := c.Close(); err != nil {
		t.log.Error("failed to close client", sl.Err(err))
	}
}
