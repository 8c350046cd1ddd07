// Package session привязывает токен сессии к HTTP cookie.
//
// Токен читается только из cookie: заголовки, query и тело запроса игнорируются.
// Выход из системы удаляет cookie у клиента, но не отзывает сам токен —
// он остаётся валидным до истечения срока.
package session

import (
	"net/http"
	"time"
)

const (
	// DefaultCookieName — имя cookie сессии.
	DefaultCookieName = "session"
	// DefaultMaxAge — срок жизни cookie, совпадает со сроком жизни токена.
	DefaultMaxAge = 7 * 24 * time.Hour
)

// Transport записывает, читает и удаляет cookie сессии с фиксированным набором атрибутов.
type Transport struct {
	name   string
	maxAge time.Duration
	secure bool
}

// New создаёт Transport. secure включается при работе за HTTPS (prod окружение).
func New(name string, maxAge time.Duration, secure bool) *Transport {
	if name == "" {
		name = DefaultCookieName
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Transport{
		name:   name,
		maxAge: maxAge,
		secure: secure,
	}
}

// Name возвращает имя cookie.
func (t *Transport) Name() string {
	return t.name
}

// Attach выставляет cookie с токеном.
func (t *Transport) Attach(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(t.maxAge / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   t.secure,
	})
}

// Detach немедленно удаляет cookie у клиента.
func (t *Transport) Detach(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.name,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   t.secure,
	})
}

// Extract возвращает токен из cookie сессии.
func (t *Transport) Extract(r *http.Request) (string, bool) {
	c, err := r.Cookie(t.name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}
