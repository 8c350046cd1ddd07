// Package login реализует HTTP-обработчик входа по email или username.
//
// При успешной проверке пароля токен сессии выставляется в cookie,
// а тело ответа содержит только {"success": true}.
package login

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

// Request — структура входных данных для авторизации.
type Request struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Password        string `json:"password"`
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, emailOrUsername, password string) (*services.Session, error)
}

// SessionWriter выставляет cookie сессии.
type SessionWriter interface {
	Attach(w http.ResponseWriter, token string)
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log      *slog.Logger  // Логгер для записи операций и ошибок
	service  Service       // Сервис аутентификации
	sessions SessionWriter // Транспорт cookie сессии
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, sessions SessionWriter) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		sessions: sessions,
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Аутентифицирует пользователя по email или имени и паролю. Токен передаётся в cookie.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response "Успешная авторизация"
// @Failure 400 {object} response.Response "Не заполнены поля"
// @Failure 401 {object} response.Response "Неверные учетные данные"
// @Failure 500 {object} response.Response "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	sess, err := h.service.Login(r.Context(), req.EmailOrUsername, req.Password)
	if err != nil {
		status, resp := response.FromError(err)
		if status >= http.StatusInternalServerError {
			log.Error("login failed", sl.Err(err))
		} else {
			log.Info("login rejected", sl.Err(err))
		}
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}

	h.sessions.Attach(w, sess.Token)
	log.Info("login success", sl.UserUID(sess.User.UUID))
	render.JSON(w, r, response.Success())
}
