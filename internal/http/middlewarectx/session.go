// Package middlewarectx содержит HTTP middleware восстановления сессии
// из cookie и проверки прав доступа.
//
// Session на каждом запросе заново проверяет токен из cookie и кладёт
// *models.Principal в контекст запроса. Невалидный токен не прерывает запрос:
// он просто остаётся неаутентифицированным, а решение принимают RequireAuth
// и RequireAdminRole.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/gkai/internal/lib/sl"
	"github.com/magabrotheeeer/gkai/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

// PrincipalKey — ключ текущего пользователя в контексте.
const PrincipalKey Key = "principal"

// Authenticator восстанавливает пользователя из токена сессии.
type Authenticator interface {
	Authenticate(token string) (*models.Principal, error)
}

// TokenExtractor достаёт токен сессии из запроса.
type TokenExtractor interface {
	Extract(r *http.Request) (string, bool)
}

// WithPrincipal возвращает контекст с пользователем p.
func WithPrincipal(ctx context.Context, p *models.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext возвращает пользователя текущего запроса, если он аутентифицирован.
func PrincipalFromContext(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*models.Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

// Session возвращает middleware, который восстанавливает пользователя из cookie сессии.
func Session(auth Authenticator, transport TokenExtractor, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Session"

			token, ok := transport.Extract(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := auth.Authenticate(token)
			if err != nil {
				log.Debug("session token rejected",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					sl.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}
