// Package services отправляет приветственные письма по событиям регистрации.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/fintrack/internal/lib/sl"
	"github.com/magabrotheeeer/fintrack/internal/lib/smtp"
	"github.com/magabrotheeeer/fintrack/internal/models"
)

// ErrInvalidEvent возвращается для сообщений, которые нельзя разобрать как событие регистрации.
var ErrInvalidEvent = errors.New("invalid user registered event")

// SenderService формирует и отправляет письма пользователям.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport smtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendWelcome разбирает models.UserRegistered и отправляет приветственное письмо.
func (s *SenderService) SendWelcome(ctx context.Context, body []byte) error {
	const op = "services.sender.SendWelcome"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var event models.UserRegistered
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("%s: %w: %w", op, ErrInvalidEvent, err)
	}
	if event.Email == "" {
		return fmt.Errorf("%s: %w: empty email", op, ErrInvalidEvent)
	}

	name := event.Name
	if name == "" {
		name = event.Email
	}
	subject := "Добро пожаловать в Fintrack"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВаш аккаунт создан. Войдите, используя адрес %s.",
		name, event.Email)

	if err := s.sendEmail([]string{event.Email}, subject, bodyText); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	from := s.transport.From()
	msg := strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			s.log.Debug("smtp client already closed", sl.Err(err))
		}
	}()

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("rcpt to %s: %w", addr, err)
		}
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}
	if err = client.Quit(); err != nil {
		return fmt.Errorf("quit: %w", err)
	}

	s.log.Info("email sent successfully", slog.Any("to", to))
	return nil
}
