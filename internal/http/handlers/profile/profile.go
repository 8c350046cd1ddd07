// Package profile отдаёт профиль текущего пользователя со статистикой игр.
package profile

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gkai/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gkai/internal/http/response"
	"github.com/magabrotheeeer/gkai/internal/lib/sl"
	"github.com/magabrotheeeer/gkai/internal/models"
)

// Service описывает получение профиля.
type Service interface {
	GetProfile(ctx context.Context, userUID string) (*models.Profile, error)
}

// Handler обрабатывает запросы профиля.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Профиль текущего пользователя
// @Tags Profile
// @Produce  json
// @Success 200 {object} response.Response{data=models.Profile}
// @Failure 401 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /profile [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.profile"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	principal, err := middlewarectx.RequireAuthenticated(r.Context())
	if err != nil {
		h.renderError(w, r, log, err)
		return
	}

	p, err := h.service.GetProfile(r.Context(), principal.ID)
	if err != nil {
		h.renderError(w, r, log, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(p))
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status, resp := response.FromError(err)
	if status >= http.StatusInternalServerError {
		log.Error("failed to get profile", sl.Err(err))
	}
	render.Status(r, status)
	render.JSON(w, r, resp)
}
