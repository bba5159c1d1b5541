// Package smtp содержит SMTP-транспорт для отправки писем.
package smtp

import "io"

// Client — подмножество *smtp.Client, нужное для отправки одного письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface открывает SMTP-сессию и сообщает адрес отправителя.
type TransportInterface interface {
	Connect() (Client, error)
	From() string
}
