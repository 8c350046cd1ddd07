package gkai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/magabrotheeeer/gkai/internal/cache"
	"github.com/magabrotheeeer/gkai/internal/config"
	"github.com/magabrotheeeer/gkai/internal/http/session"
	"github.com/magabrotheeeer/gkai/internal/lib/jwt"
	"github.com/magabrotheeeer/gkai/internal/lib/metrics"
	"github.com/magabrotheeeer/gkai/internal/lib/password"
	"github.com/magabrotheeeer/gkai/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/gkai/internal/lib/sl"
	"github.com/magabrotheeeer/gkai/internal/migrations"
	authservice "github.com/magabrotheeeer/gkai/internal/services/auth"
	profileservice "github.com/magabrotheeeer/gkai/internal/services/profile"
	"github.com/magabrotheeeer/gkai/internal/storage"
)

// App держит HTTP-сервер и ресурсы, которые нужно закрыть при остановке.
type App struct {
	server          *http.Server
	logger          *slog.Logger
	db              *storage.Storage
	cache           *cache.Cache
	publisher       *rabbitmq.Publisher
	shutdownTimeout time.Duration
}

// New подключается к хранилищам, применяет миграции и собирает маршруты.
//
// Redis и RabbitMQ необязательны: если они не настроены или недоступны,
// сервис работает без кеша профилей и без публикации событий.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.gkai.New"

	db, err := storage.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hasher, err := password.NewHasher(cfg.BcryptCost)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	jwtMaker, err := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	app := &App{
		logger:          logger,
		db:              db,
		shutdownTimeout: cfg.ShutdownTimeout,
	}

	var profileCache profileservice.Cache
	if cfg.AddressRedis != "" {
		c, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			logger.Warn("redis is unavailable, profile cache disabled", sl.Err(err))
		} else {
			app.cache = c
			profileCache = c
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	profiles := profileservice.NewProfileService(db, profileCache, cfg.ProfileTTL, logger)

	opts := []authservice.Option{
		authservice.WithRecorder(m),
		authservice.WithProfileInvalidator(profiles),
	}
	if cfg.URL != "" {
		pub, err := rabbitmq.NewPublisher(cfg.URL, cfg.Exchange, rabbitmq.AuthQueues(), cfg.Retries, cfg.RetryDelay)
		if err != nil {
			logger.Warn("rabbitmq is unavailable, auth events disabled", sl.Err(err))
		} else {
			app.publisher = pub
			opts = append(opts, authservice.WithEvents(eventPublisher{pub: pub}))
		}
	}
	auth := authservice.NewAuthService(logger, db, hasher, jwtMaker, opts...)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Auth:      auth,
		Profiles:  profiles,
		Sessions:  session.New(cfg.CookieName, cfg.TokenTTL, cfg.SecureCookie()),
		DB:        db,
		Metrics:   m,
		RateLimit: cfg.RateLimit,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run запускает сервер и блокируется до ошибки или отмены ctx,
// после чего останавливает сервер и закрывает соединения.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq publisher", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Warn("failed to close redis", sl.Err(err))
		}
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close storage", sl.Err(err))
	}
}
