package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gkai/internal/http/response"
	"github.com/magabrotheeeer/gkai/internal/models"
	services "github.com/magabrotheeeer/gkai/internal/services/auth"
)

// Причины отказа для метрик.
const (
	ReasonUnauthenticated = "unauthenticated"
	ReasonForbidden       = "forbidden"
)

// RejectionRecorder учитывает отказы в доступе.
type RejectionRecorder interface {
	GuardRejected(reason string)
}

// RequireAuthenticated возвращает пользователя из контекста
// или services.ErrAuthenticationRequired.
func RequireAuthenticated(ctx context.Context) (*models.Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return nil, services.ErrAuthenticationRequired
	}
	return p, nil
}

// RequireAdmin возвращает пользователя с ролью admin.
// Без сессии — services.ErrAuthenticationRequired, с другой ролью — services.ErrForbidden.
func RequireAdmin(ctx context.Context) (*models.Principal, error) {
	p, err := RequireAuthenticated(ctx)
	if err != nil {
		return nil, err
	}
	if !p.IsAdmin() {
		return nil, services.ErrForbidden
	}
	return p, nil
}

// RequireAuth пропускает только аутентифицированные запросы, иначе отвечает 401.
func RequireAuth(log *slog.Logger, rec RejectionRecorder) func(http.Handler) http.Handler {
	return guard("middlewarectx.RequireAuth", RequireAuthenticated, log, rec)
}

// RequireAdminRole пропускает только администраторов: 401 без сессии, 403 для остальных.
func RequireAdminRole(log *slog.Logger, rec RejectionRecorder) func(http.Handler) http.Handler {
	return guard("middlewarectx.RequireAdminRole", RequireAdmin, log, rec)
}

func guard(op string, check func(context.Context) (*models.Principal, error), log *slog.Logger, rec RejectionRecorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := check(r.Context()); err != nil {
				status, resp := response.FromError(err)
				reason := ReasonUnauthenticated
				if status == http.StatusForbidden {
					reason = ReasonForbidden
				}
				log.Info("access denied",
					slog.String("op", op),
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("reason", reason),
				)
				if rec != nil {
					rec.GuardRejected(reason)
				}
				render.Status(r, status)
				render.JSON(w, r, resp)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
