// Package sl содержит атрибуты slog, общие для всех слоёв сервиса.
package sl

import "log/slog"

// Err возвращает атрибут "error" с текстом ошибки. Для nil значение пустое.
//
//	log.Error("failed to create user", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Op возвращает атрибут "op" с именем операции.
func Op(op string) slog.Attr {
	return slog.String("op", op)
}
