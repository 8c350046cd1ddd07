// Package me отдаёт пользователя текущей сессии.
package me

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/gkai/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gkai/internal/http/response"
)

// Handler возвращает Principal из контекста запроса.
type Handler struct{}

// New создает новый Handler.
func New() *Handler {
	return &Handler{}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p, err := middlewarectx.RequireAuthenticated(r.Context())
	if err != nil {
		status, resp := response.FromError(err)
		render.Status(r, status)
		render.JSON(w, r, resp)
		return
	}
	render.JSON(w, r, response.StatusOKWithData(p))
}
