// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// Hasher создает bcrypt-хеш пароля для безопасного хранения и сравнивает
// сохранённый хеш с введённым паролем. Соль встроена в сам хеш.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// DefaultCost — стоимость bcrypt по умолчанию.
const DefaultCost = 10

// ErrInvalidCost возвращается, если стоимость вне допустимого для bcrypt диапазона.
var ErrInvalidCost = errors.New("invalid bcrypt cost")

// Hasher хеширует пароли с фиксированной стоимостью.
// После создания не изменяется и безопасен для конкурентного использования.
type Hasher struct {
	cost int
}

// NewHasher создаёт Hasher с заданной стоимостью.
func NewHasher(cost int) (*Hasher, error) {
	const op = "password.NewHasher"
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("%s: %w: %d", op, ErrInvalidCost, cost)
	}
	return &Hasher{cost: cost}, nil
}

// Cost возвращает стоимость хеширования.
func (h *Hasher) Cost() int {
	return h.cost
}

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
//
// Используется для безопасного хранения паролей в базе данных.
func (h *Hasher) Hash(password string) (string, error) {
	const op = "password.Hash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Verify сравнивает введённый пароль с bcrypt‑хэшем.
//
// Возвращает false при несовпадении и при повреждённом хэше.
func (h *Hasher) Verify(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
