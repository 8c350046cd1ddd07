// Package users реализует просмотр пользователя администратором.
package users

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/gkai/internal/http/response"
	"github.com/magabrotheeeer/gkai/internal/lib/sl"
	"github.com/magabrotheeeer/gkai/internal/models"
)

// Service описывает чтение пользователя по ID.
type Service interface {
	GetUser(ctx context.Context, userUID string) (*models.PublicUser, error)
}

// Request — параметры пути.
type Request struct {
	ID string `validate:"required,uuid"`
}

// Handler обрабатывает GET /api/admin/users/{id}.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Пользователь по ID
// @Tags Admin
// @Produce  json
// @Param id path string true "ID пользователя"
// @Success 200 {object} response.Response{data=models.PublicUser}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/users/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.users"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	req := Request{ID: chi.URLParam(r, "id")}
	if err := h.validate.Struct(req); err != nil {
		var verr validator.ValidationErrors
		if errors.As(err, &verr) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(verr))
			return
		}
		log.Error("failed to validate request", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error(response.MsgInternal))
		return
	}

	user, err := h.service.GetUser(r.Context(), req.ID)
	if err != nil {
		status, resp := response.FromError(err)
		if status >= http.StatusInternalServerError {
			log.Error("failed to get user", sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	log.Info("user viewed by admin", sl.UserUID(user.UUID))
	render.JSON(w, r, response.StatusOKWithData(user))
}
