package services

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCredentials — неизвестный пользователь или неверный пароль.
	// Причины намеренно не различаются, чтобы не раскрывать существование аккаунтов.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAuthenticationRequired — нет валидной сессии.
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrForbidden — сессия валидна, но роли недостаточно.
	ErrForbidden = errors.New("admin access required")
	// ErrUserNotFound — запрошенный пользователь не существует.
	ErrUserNotFound = errors.New("user not found")
)

// ValidationError — некорректные входные данные. Reason можно показывать пользователю.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Field — поле, нарушающее уникальность.
type Field string

const (
	FieldEmail    Field = "email"
	FieldUsername Field = "username"
)

// ConflictError — email или username уже заняты.
type ConflictError struct {
	Field Field
}

func (e *ConflictError) Error() string {
	switch e.Field {
	case FieldEmail:
		return "Email already in use"
	case FieldUsername:
		return "Username already taken"
	default:
		return fmt.Sprintf("%s already exists", e.Field)
	}
}

// IsValidation сообщает, является ли err ошибкой валидации.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConflict сообщает, является ли err конфликтом уникальности.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}
