// Package register реализует HTTP-обработчик регистрации пользователя.
//
// При успехе пользователь сразу получает cookie сессии.
package register

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gkai/internal/http/response"
	"github.com/magabrotheeeer/gkai/internal/lib/sl"
	services "github.com/magabrotheeeer/gkai/internal/services/auth"
)

// Request — входные данные для регистрации
type Request struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, username, email, password string) (*services.Session, error)
}

// SessionWriter выставляет cookie сессии.
type SessionWriter interface {
	Attach(w http.ResponseWriter, token string)
}

// Handler обрабатывает запросы на регистрацию.
type Handler struct {
	log      *slog.Logger
	service  Service
	sessions SessionWriter
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, sessions SessionWriter) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
	}
}

// ServeHTTP godoc
// @Summary Регистрация пользователя
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные нового пользователя"
// @Success 200 {object} response.Response "Пользователь создан, cookie сессии выставлена"
// @Failure 400 {object} response.Response "Ошибка валидации"
// @Failure 409 {object} response.Response "Email или username заняты"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	sess, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		status, resp := response.FromError(err)
		if status >= http.StatusInternalServerError {
			log.Error("registration failed", sl.Err(err))
		} else {
			log.Info("registration rejected", slog.String("username", req.Username), sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	h.sessions.Attach(w, sess.Token)
	log.Info("user registered", sl.UserUID(sess.User.UUID))
	render.JSON(w, r, response.Success())
}
