// Package jwt реализует генерацию и парсинг JWT токенов сессии.
//
// Maker определяет интерфейс для создания и проверки токенов с данными пользователя.
// MakerImpl — конкретная реализация на HS256 с секретным ключом и сроком жизни.
package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/gkai/internal/models"
)

// DefaultTokenTTL — срок жизни токена сессии.
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	// ErrEmptySecret — секретный ключ не задан.
	ErrEmptySecret = errors.New("jwt secret key is empty")
	// ErrInvalidTTL — срок жизни токена не положительный.
	ErrInvalidTTL = errors.New("jwt token ttl must be positive")
	// ErrInvalidToken возвращается при любой ошибке проверки токена.
	ErrInvalidToken = errors.New("invalid token")
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken подписывает токен с данными пользователя.
	GenerateToken(user models.User) (string, error)
	// ParseToken проверяет подпись и срок действия и возвращает claims.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// Option настраивает MakerImpl.
type Option func(*MakerImpl)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(m *MakerImpl) {
		m.now = now
	}
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL). Не изменяется после создания.
type MakerImpl struct {
	secretKey []byte        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
	now       func() time.Time
}

// NewJWTMaker создаёт MakerImpl. Пустой ключ — ошибка конфигурации,
// которую нужно обнаружить при старте процесса.
func NewJWTMaker(secretKey string, ttl time.Duration, opts ...Option) (*MakerImpl, error) {
	const op = "jwt.NewJWTMaker"
	if strings.TrimSpace(secretKey) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrEmptySecret)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidTTL)
	}
	m := &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TTL возвращает срок жизни токена.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
