package jwt

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/magabrotheeeer/gkai/internal/models"
)

// CustomClaims описывает данные, хранящиеся в JWT.
// Токен только подписан, поэтому здесь нет секретных данных.
type CustomClaims struct {
	Email                string      `json:"email"`    // Электронная почта
	Username             string      `json:"username"` // Имя пользователя
	Role                 models.Role `json:"role"`     // Роль пользователя
	jwt.RegisteredClaims             // sub (ID пользователя), iat, exp
}

// Principal возвращает проекцию пользователя для текущего запроса.
func (c *CustomClaims) Principal() models.Principal {
	return models.Principal{
		ID:       c.Subject,
		Email:    c.Email,
		Username: c.Username,
		Role:     c.Role,
	}
}

// GenerateToken создает JWT токен с данными пользователя, подписывая его секретным ключом.
//
// Время жизни токена определяется полем tokenTTL и не продлевается при проверке.
func (j *MakerImpl) GenerateToken(user models.User) (string, error) {
	const op = "jwt.GenerateToken"
	if !user.Role.Valid() {
		return "", fmt.Errorf("%s: %w", op, models.ErrUnknownRole)
	}
	now := j.now()
	claims := CustomClaims{
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UUID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return signed, nil
}

// ParseToken парсит JWT токен, проверяет его подпись и срок действия,
// возвращает CustomClaims, если токен корректен.
//
// Любая ошибка оборачивает ErrInvalidToken. Причина нужна только для логов:
// вызывающий код обязан трактовать все ошибки одинаково.
func (j *MakerImpl) ParseToken(tokenStr string) (*CustomClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &CustomClaims{}, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	if claims.IssuedAt == nil {
		return nil, fmt.Errorf("%s: %w: missing iat", op, ErrInvalidToken)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("%s: %w: subject: %w", op, ErrInvalidToken, err)
	}
	if _, err := models.ParseRole(string(claims.Role)); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}
	return claims, nil
}
