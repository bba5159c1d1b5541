// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и дату создания.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           string    // Уникальный идентификатор, назначается хранилищем
	Name         string    // Отображаемое имя (необязательное)
	Email        string    // Электронная почта (уникальная, в нижнем регистре)
	PasswordHash string    // bcrypt-хэш пароля, наружу не отдаётся
	CreatedAt    time.Time // Дата регистрации
}

// PublicUser — представление пользователя для ответов API, без хэша пароля.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public возвращает копию пользователя без чувствительных полей.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// UserRegistered — событие, публикуемое после успешной регистрации.
type UserRegistered struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}
