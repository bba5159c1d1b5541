// Package memory реализует хранилище пользователей в памяти процесса.
// Используется в локальном окружении и в тестах; проверка уникальности
// и вставка выполняются под одной блокировкой.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/fintrack/internal/models"
	"github.com/magabrotheeeer/fintrack/internal/storage"
)

// Storage хранит пользователей в двух индексах: по id и по email.
type Storage struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

// New создаёт пустое хранилище.
func New() *Storage {
	return &Storage{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

// Ping всегда успешен.
func (s *Storage) Ping(_ context.Context) error { return nil }

// Close ничего не освобождает.
func (s *Storage) Close(_ context.Context) error { return nil }

// CreateUser сохраняет пользователя, назначая ему uuid.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.memory.CreateUser"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[user.Email]; ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
	}
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now().UTC()
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user.ID

	return &user, nil
}

// GetUserByEmail возвращает копию пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.memory.GetUserByEmail"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	u := s.byID[id]
	return &u, nil
}

// GetUserByID возвращает копию пользователя по id.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.memory.GetUserByID"
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return &u, nil
}
