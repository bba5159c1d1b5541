// Package postgresql реализует хранилище пользователей на основе PostgreSQL.
// Уникальность email гарантируется индексом users_email_key, а нарушение
// индекса транслируется в storage.ErrUserExists.
package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	// Регистрация драйвера pgx для использования с database/sql.
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/magabrotheeeer/fintrack/internal/models"
	"github.com/magabrotheeeer/fintrack/internal/storage"
)

// Storage инкапсулирует соединение с базой данных PostgreSQL
// и реализует методы работы с пользователями.
type Storage struct {
	DB *sql.DB
}

// New создаёт подключение к PostgreSQL и проверяет его.
func New(ctx context.Context, storageConnectionString string) (*Storage, error) {
	const op = "storage.postgresql.New"

	db, err := sql.Open("pgx", storageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{
		DB: db,
	}, nil
}

// Ping проверяет доступность базы.
func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *Storage) Close(_ context.Context) error {
	return s.DB.Close()
}

// CreateUser сохраняет нового пользователя и возвращает его с назначенными id и датой создания.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	const op = "storage.postgresql.CreateUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO users (name, email, password_hash)
			  VALUES ($1, $2, $3)
			  RETURNING uid, created_at`
	created := user
	if err := s.DB.QueryRowContext(ctx, query, user.Name, user.Email, user.PasswordHash).
		Scan(&created.ID, &created.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &created, nil
}

// GetUserByEmail возвращает пользователя по email.
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.postgresql.GetUserByEmail"

	query := `SELECT uid, name, email, password_hash, created_at
			  FROM users
			  WHERE email = $1`
	u, err := s.scanUser(s.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// GetUserByID возвращает пользователя по его UID.
func (s *Storage) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const op = "storage.postgresql.GetUserByID"
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}

	query := `SELECT uid, name, email, password_hash, created_at
			  FROM users
			  WHERE uid = $1`
	u, err := s.scanUser(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *Storage) scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var name sql.NullString
	if err := row.Scan(&u.ID, &name, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, err
	}
	u.Name = name.String
	return u, nil
}
