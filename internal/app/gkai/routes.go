// Package gkai собирает HTTP-сервер сервиса аутентификации.
package gkai

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/gkai/internal/config"
	"github.com/magabrotheeeer/gkai/internal/http/handlers/admin/users"
	"github.com/magabrotheeeer/gkai/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/gkai/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/gkai/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/gkai/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/gkai/internal/http/handlers/health"
	"github.com/magabrotheeeer/gkai/internal/http/handlers/profile"
	"github.com/magabrotheeeer/gkai/internal/http/middlewarectx"
	"github.com/magabrotheeeer/gkai/internal/http/session"
	"github.com/magabrotheeeer/gkai/internal/lib/metrics"
)

// AuthService — то, что нужно маршрутам от сервиса аутентификации.
type AuthService interface {
	register.Service
	login.Service
	middlewarectx.Authenticator
}

// ProfileService — то, что нужно маршрутам от сервиса профилей.
type ProfileService interface {
	profile.Service
	users.Service
}

// Deps зависимости маршрутов.
type Deps struct {
	Auth      AuthService
	Profiles  ProfileService
	Sessions  *session.Transport
	DB        health.Pinger
	Metrics   *metrics.Metrics
	RateLimit config.RateLimit
	// MetricsHandler по умолчанию promhttp.Handler().
	MetricsHandler http.Handler
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		d.Metrics.Middleware,
		middlewarectx.Session(d.Auth, d.Sessions, logger),
	)

	requireAuth := middlewarectx.RequireAuth(logger, d.Metrics)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimit(logger, d.RateLimit.RPS, d.RateLimit.Burst))
				r.Post("/register", register.New(logger, d.Auth, d.Sessions).ServeHTTP)
				r.Post("/login", login.New(logger, d.Auth, d.Sessions).ServeHTTP)
			})
			r.Post("/logout", logout.New(logger, d.Sessions).ServeHTTP)
			r.With(requireAuth).Get("/me", me.New().ServeHTTP)
		})

		r.With(requireAuth).Get("/profile", profile.New(logger, d.Profiles).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RequireAdminRole(logger, d.Metrics))
			r.Get("/admin/users/{id}", users.New(logger, d.Profiles).ServeHTTP)
		})
	})

	r.Get("/healthz", health.New(logger, d.DB).ServeHTTP)

	metricsHandler := d.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Handle("/metrics", metricsHandler)
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
