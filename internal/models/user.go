// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля и дату создания.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import (
	"errors"
	"fmt"
	"time"
)

// Role — роль пользователя. Допустимы только RoleUser и RoleAdmin,
// нулевое значение не является валидной ролью.
type Role string

const (
	// RoleUnknown — нулевое значение, никогда не выдаётся и не принимается.
	RoleUnknown Role = ""
	// RoleUser — обычный пользователь.
	RoleUser Role = "user"
	// RoleAdmin — администратор.
	RoleAdmin Role = "admin"
)

// ErrUnknownRole возвращается ParseRole для значений вне закрытого набора ролей.
var ErrUnknownRole = errors.New("unknown role")

// ParseRole преобразует строку в Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser:
		return RoleUser, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return RoleUnknown, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Valid сообщает, входит ли роль в закрытый набор.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	return string(r)
}

// User представляет зарегистрированного пользователя системы.
type User struct {
	UUID         string     // Уникальный идентификатор пользователя
	Email        string     // Электронная почта (в нижнем регистре)
	Username     string     // Имя пользователя (уникальное)
	PasswordHash string     `json:"-"` // Хэш пароля пользователя
	Role         Role       // Роль пользователя, admin или user
	CreatedAt    time.Time  // Дата регистрации
	LastLogin    *time.Time // Дата последнего входа
}

// PublicUser — внешнее представление пользователя без хэша пароля.
type PublicUser struct {
	UUID      string     `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	Role      Role       `json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// Public возвращает представление пользователя, безопасное для отдачи клиенту.
func (u User) Public() PublicUser {
	return PublicUser{
		UUID:      u.UUID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		LastLogin: u.LastLogin,
	}
}

// Principal — минимальная проекция пользователя, восстановленная из токена.
// Живёт только в контексте одного запроса.
type Principal struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// IsAdmin сообщает, является ли пользователь администратором.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
