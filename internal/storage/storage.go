// Package storage содержит общие для всех реализаций хранилища ошибки.
// Конкретные хранилища пользователей лежат в подпакетах postgresql, mongodb и memory.
package storage

import "errors"

var (
	// ErrUserExists — нарушение уникальности email на уровне хранилища.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound — пользователь не найден (в том числе по некорректному id).
	ErrUserNotFound = errors.New("user not found")
)
