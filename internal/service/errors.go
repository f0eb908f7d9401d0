package service

import (
	"fmt"
	"strconv"
)

const (
	CodeConflict             = "CONFLICT"
	CodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	CodeNotFound             = "NOT_FOUND"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeValidation           = "VALIDATION_ERROR"
)

type Resource string

const (
	ResourceUser     Resource = "пользователь"
	ResourceTask     Resource = "задача"
	ResourceCategory Resource = "категория"
)

// образцы для errors.Is: сравнение идёт по коду
var (
	ErrConflict       = &BusinessError{Code: CodeConflict, Message: "конфликт данных"}
	ErrAuthentication = &BusinessError{Code: CodeAuthenticationFailed, Message: "неверные учётные данные"}
	ErrNotFound       = &BusinessError{Code: CodeNotFound, Message: "не найдено"}
	ErrUnauthorized   = &BusinessError{Code: CodeUnauthorized, Message: "нет доступа"}
	ErrValidation     = &BusinessError{Code: CodeValidation, Message: "неверные данные"}
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func (b *BusinessError) Is(target error) bool {
	t, ok := target.(*BusinessError)
	return ok && t.Code == b.Code
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource Resource, id int64) *BusinessError {
	return NewBusinessError(CodeNotFound,
		fmt.Sprintf("%s %d не найден(а)", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", strconv.FormatInt(id, 10)),
	)
}

func NewConflict(field, value string, cause error) *BusinessError {
	busErr := NewBusinessError(CodeConflict,
		fmt.Sprintf("значение поля '%s' уже занято", field),
		ToDetail("field", field),
		ToDetail("value", value),
	)
	busErr.Err = cause
	return busErr
}

func NewUnauthorized(resource Resource, id int64) *BusinessError {
	return NewBusinessError(CodeUnauthorized,
		fmt.Sprintf("нет доступа: %s %d принадлежит другому пользователю", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", strconv.FormatInt(id, 10)),
	)
}

// NewAuthenticationFailed одинакова для неизвестного пользователя, удалённого и неверного пароля.
func NewAuthenticationFailed() *BusinessError {
	return NewBusinessError(CodeAuthenticationFailed, "неверное имя пользователя или пароль")
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError(CodeValidation,
		fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		ToDetail("field", field),
		ToDetail("reason", reason),
	)
}
