// Package logout реализует выход: cookie сессии удаляется у клиента.
// Сам токен на сервере не отзывается и остаётся валидным до истечения.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gkai/internal/http/response"
)

// SessionRemover удаляет cookie сессии.
type SessionRemover interface {
	Detach(w http.ResponseWriter)
}

// Handler обрабатывает выход пользователя.
type Handler struct {
	log      *slog.Logger
	sessions SessionRemover
}

// New создает новый Handler.
func New(log *slog.Logger, sessions SessionRemover) *Handler {
	return &Handler{log: log, sessions: sessions}
}

// ServeHTTP godoc
// @Summary Выход
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.sessions.Detach(w)
	h.log.Debug("session cookie removed",
		slog.String("op", "handlers.auth.logout"),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	render.JSON(w, r, response.Success())
}
