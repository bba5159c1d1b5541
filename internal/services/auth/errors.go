package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Ошибки бизнес-уровня. Все они восстановимы на границе запроса и отображаются в 4xx.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("user not found")
)

// Стабильные машиночитаемые виды ошибок для клиентов API.
const (
	KindValidation         = "ValidationError"
	KindDuplicateEmail     = "DuplicateEmailError"
	KindInvalidCredentials = "InvalidCredentialsError"
	KindNotFound           = "NotFoundError"
	KindInternal           = "InternalError"
)

// ValidationError описывает отсутствующие или некорректные поля запроса.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Message)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrValidation).
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// KindOf возвращает вид ошибки для ответа клиенту. Неизвестные ошибки считаются внутренними.
func KindOf(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return KindValidation
	case errors.Is(err, ErrDuplicateEmail):
		return KindDuplicateEmail
	case errors.Is(err, ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	default:
		return KindInternal
	}
}

// MessageOf возвращает безопасное для клиента сообщение. Внутренние детали не раскрываются.
func MessageOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	switch KindOf(err) {
	case KindDuplicateEmail:
		return ErrDuplicateEmail.Error()
	case KindInvalidCredentials:
		return ErrInvalidCredentials.Error()
	case KindNotFound:
		return ErrNotFound.Error()
	case KindValidation:
		return ErrValidation.Error()
	default:
		return "internal error"
	}
}

func newValidationError(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return &ValidationError{Message: err.Error()}
	}

	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		switch fe.ActualTag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is a required field", fe.Field()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("field %s is too long", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is not a valid", fe.Field()))
		}
	}
	return &ValidationError{Message: strings.Join(msgs, ", ")}
}
