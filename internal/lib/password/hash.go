// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// GetHash создает bcrypt-хеш пароля для безопасного хранения.
// CompareHash сравнивает исходный bcrypt-хеш с введённым паролем, проверяя их соответствие.
// Обе функции ограничены дедлайном контекста: bcrypt намеренно медленный,
// и запрос не должен висеть дольше отведённого времени.
package password

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost — фиксированный параметр сложности bcrypt.
const DefaultCost = 10

// ErrMismatch возвращается, если пароль не соответствует хэшу.
var ErrMismatch = errors.New("password does not match hash")

type result struct {
	hash []byte
	err  error
}

// GetHash принимает пароль пользователя и возвращает его bcrypt‑хэш.
//
// Если cost вне допустимого диапазона bcrypt, используется DefaultCost.
func GetHash(ctx context.Context, password string, cost int) (string, error) {
	const op = "password.GetHash"
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultCost
	}

	done := make(chan result, 1)
	go func() {
		h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		done <- result{hash: h, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	case res := <-done:
		if res.err != nil {
			return "", fmt.Errorf("%s: %w", op, res.err)
		}
		return string(res.hash), nil
	}
}

// CompareHash сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает nil, если пароль соответствует хэшу, ErrMismatch при несовпадении,
// иначе — ошибку разбора хэша или контекста.
func CompareHash(ctx context.Context, originalHash, externalPassword string) error {
	const op = "password.CompareHash"

	done := make(chan error, 1)
	go func() {
		done <- bcrypt.CompareHashAndPassword([]byte(originalHash), []byte(externalPassword))
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	case err := <-done:
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return fmt.Errorf("%s: %w", op, ErrMismatch)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	}
}
