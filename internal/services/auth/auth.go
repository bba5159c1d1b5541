// Package services содержит логику бизнес-уровня для регистрации, входа и выдачи JWT.
//
// AuthService проверяет обязательные поля, хеширует и сверяет пароли, выпускает
// подписанные токены и формирует ответы без хэша пароля. Уникальность email
// проверяется заранее, но окончательное решение принимает хранилище.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/fintrack/internal/lib/jwt"
	"github.com/magabrotheeeer/fintrack/internal/lib/password"
	"github.com/magabrotheeeer/fintrack/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/fintrack/internal/lib/sl"
	"github.com/magabrotheeeer/fintrack/internal/metrics"
	"github.com/magabrotheeeer/fintrack/internal/models"
	"github.com/magabrotheeeer/fintrack/internal/storage"
)

// maxPasswordBytes — предел длины пароля, который принимает bcrypt.
const maxPasswordBytes = 72

const (
	defaultOpTimeout = 5 * time.Second
	defaultCacheTTL  = 10 * time.Minute
	dummyPassword    = "fintrack-timing-equalizer"
)

// UserRepository описывает контракт для работы с пользователями в хранилище.
type UserRepository interface {
	// CreateUser сохраняет пользователя; при занятом email возвращает storage.ErrUserExists.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	// GetUserByEmail возвращает пользователя или storage.ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// GetUserByID возвращает пользователя или storage.ErrUserNotFound.
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// Cache описывает кэш результатов GetUser.
type Cache interface {
	Get(ctx context.Context, key string, result any) (bool, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Publisher публикует события пользователей.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// RegisterInput — данные для регистрации. Name необязательно.
type RegisterInput struct {
	Name     string `validate:"max=100"`
	Email    string `validate:"required,max=254"`
	Password string `validate:"required"`
}

// LoginInput — учётные данные для входа.
type LoginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// AuthResult — результат Register и Login: токен и пользователь без хэша пароля.
type AuthResult struct {
	Token string
	User  models.PublicUser
}

// Option настраивает AuthService.
type Option func(*AuthService)

// WithCache включает кэширование GetUser.
func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *AuthService) {
		s.cache = c
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// WithPublisher включает публикацию события о регистрации.
func WithPublisher(p Publisher) Option {
	return func(s *AuthService) { s.publisher = p }
}

// WithMetrics включает сбор метрик.
func WithMetrics(m *metrics.Auth) Option {
	return func(s *AuthService) { s.metrics = m }
}

// WithLogger задаёт логгер.
func WithLogger(log *slog.Logger) Option {
	return func(s *AuthService) { s.log = log }
}

// WithBcryptCost задаёт сложность bcrypt.
func WithBcryptCost(cost int) Option {
	return func(s *AuthService) { s.bcryptCost = cost }
}

// WithOpTimeout ограничивает время одной операции (хеширование и обращения к хранилищу).
func WithOpTimeout(d time.Duration) Option {
	return func(s *AuthService) {
		if d > 0 {
			s.opTimeout = d
		}
	}
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	users      UserRepository
	jwtMaker   jwt.Maker
	cache      Cache
	cacheTTL   time.Duration
	publisher  Publisher
	metrics    *metrics.Auth
	log        *slog.Logger
	validate   *validator.Validate
	bcryptCost int
	opTimeout  time.Duration

	// dummyHash сверяется при входе с неизвестным email.
	dummyHash string
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, opts ...Option) *AuthService {
	s := &AuthService{
		users:      users,
		jwtMaker:   jwtMaker,
		cacheTTL:   defaultCacheTTL,
		publisher:  rabbitmq.NoopPublisher{},
		log:        slog.New(slog.DiscardHandler),
		validate:   validator.New(),
		bcryptCost: password.DefaultCost,
		opTimeout:  defaultOpTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.dummyHash = mustDummyHash(s.bcryptCost)
	return s
}

// Register создает нового пользователя и выдаёт токен.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (res *AuthResult, err error) {
	const op = "services.auth.Register"
	defer s.observe("register", time.Now(), &err)

	in.Email = NormalizeEmail(in.Email)
	if err := s.validateInput(in, in.Password); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	_, err = s.users.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashed, err := password.GetHash(ctx, in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.users.CreateUser(ctx, models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hashed,
	})
	if err != nil {
		// конкурентная регистрация с тем же email
		if errors.Is(err, storage.ErrUserExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrDuplicateEmail)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(created.Email, created.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.publishRegistered(ctx, created)
	s.log.Info("user registered", sl.Op(op), slog.String("user_id", created.ID))

	return &AuthResult{Token: token, User: created.Public()}, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
//
// Неизвестный email и неверный пароль неразличимы для вызывающего: в обоих случаях
// выполняется одно сравнение bcrypt и возвращается ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (res *AuthResult, err error) {
	const op = "services.auth.Login"
	defer s.observe("login", time.Now(), &err)

	in.Email = NormalizeEmail(in.Email)
	if err := s.validateInput(in, ""); err != nil {
		return nil, err
	}
	// bcrypt сверяет только первые 72 байта, такой пароль не мог быть зарегистрирован
	if len(in.Password) > maxPasswordBytes {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	user, err := s.users.GetUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			_ = password.CompareHash(ctx, s.dummyHash, in.Password)
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := password.CompareHash(ctx, user.PasswordHash, in.Password); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.jwtMaker.GenerateToken(user.Email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AuthResult{Token: token, User: user.Public()}, nil
}

// GetUser возвращает email пользователя по id. Операция только читает данные.
func (s *AuthService) GetUser(ctx context.Context, id string) (email string, err error) {
	const op = "services.auth.GetUser"
	defer s.observe("get_user", time.Now(), &err)

	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	ctx, cancel := context.WithTimeout(ctx, s.opTimeout)
	defer cancel()

	key := userEmailKey(id)
	if s.cache != nil {
		found, cacheErr := s.cache.Get(ctx, key, &email)
		if cacheErr != nil {
			s.log.Warn("cache read failed", sl.Op(op), sl.Err(cacheErr))
		}
		if found && email != "" {
			return email, nil
		}
	}

	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return "", fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, key, user.Email, s.cacheTTL); cacheErr != nil {
			s.log.Warn("cache write failed", sl.Op(op), sl.Err(cacheErr))
		}
	}
	return user.Email, nil
}

// ValidateToken проверяет JWT и возвращает его claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*jwt.CustomClaims, error) {
	const op = "services.auth.ValidateToken"
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return claims, nil
}

// NormalizeEmail приводит email к каноническому виду: без пробелов по краям и в нижнем регистре.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) validateInput(in any, rawPassword string) error {
	if err := s.validate.Struct(in); err != nil {
		return newValidationError(err)
	}
	if len(rawPassword) > maxPasswordBytes {
		return &ValidationError{Message: fmt.Sprintf("field Password must be at most %d bytes", maxPasswordBytes)}
	}
	return nil
}

func (s *AuthService) publishRegistered(ctx context.Context, u *models.User) {
	event := models.UserRegistered{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		RegisteredAt: u.CreatedAt,
	}
	if err := s.publisher.Publish(ctx, rabbitmq.RoutingKeyUserRegistered, event); err != nil {
		s.log.Warn("failed to publish user registered event",
			slog.String("user_id", u.ID),
			sl.Err(err),
		)
	}
}

func mustDummyHash(cost int) string {
	const op = "services.auth.mustDummyHash"
	h, err := password.GetHash(context.Background(), dummyPassword, cost)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	return h
}

func (s *AuthService) observe(operation string, started time.Time, err *error) {
	result := metrics.ResultOK
	if *err != nil {
		result = KindOf(*err)
	}
	s.metrics.Observe(operation, result, started)
}

func userEmailKey(id string) string {
	return "user:email:" + id
}
