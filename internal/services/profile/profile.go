// Package services содержит бизнес-логику страницы профиля и просмотра
// пользователей администратором. Профиль кешируется в redis.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/gkai/internal/lib/sl"
	"github.com/magabrotheeeer/gkai/internal/models"
	auth "github.com/magabrotheeeer/gkai/internal/services/auth"
	"github.com/magabrotheeeer/gkai/internal/storage"
)

// DefaultTTL время жизни профиля в кеше по умолчанию.
const DefaultTTL = 5 * time.Minute

// UserRepository определяет методы чтения пользователей и их статистики.
type UserRepository interface {
	// GetUserByID возвращает пользователя по ID.
	GetUserByID(ctx context.Context, userUID string) (*models.User, error)
	// GetUserStats возвращает статистику пользователя.
	GetUserStats(ctx context.Context, userUID string) (*models.UserStats, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// ProfileService отдаёт профиль пользователя, используя кеш, если он настроен.
type ProfileService struct {
	repo  UserRepository
	cache Cache
	ttl   time.Duration
	log   *slog.Logger
}

// NewProfileService создает новый экземпляр ProfileService. cache может быть nil.
func NewProfileService(repo UserRepository, cache Cache, ttl time.Duration, log *slog.Logger) *ProfileService {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProfileService{
		repo:  repo,
		cache: cache,
		ttl:   ttl,
		log:   log,
	}
}

func cacheKey(userUID string) string {
	return "profile:" + userUID
}

// GetProfile возвращает публичные данные пользователя и его статистику.
//
// Если пользователь из токена удалён, возвращается auth.ErrAuthenticationRequired.
// Отсутствующая статистика заменяется пустой.
func (s *ProfileService) GetProfile(ctx context.Context, userUID string) (*models.Profile, error) {
	const op = "services.profile.GetProfile"
	key := cacheKey(userUID)

	if s.cache != nil {
		var cached models.Profile
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			s.log.Warn("failed to read profile from cache", slog.String("key", key), sl.Err(err))
		}
		if found {
			return &cached, nil
		}
	}

	user, err := s.repo.GetUserByID(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, auth.ErrAuthenticationRequired)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	stats := models.EmptyUserStats()
	st, err := s.repo.GetUserStats(ctx, userUID)
	switch {
	case err == nil:
		stats = *st
	case errors.Is(err, storage.ErrStatsNotFound):
	default:
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	profile := &models.Profile{User: user.Public(), Stats: stats}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, profile, s.ttl); err != nil {
			s.log.Warn("failed to cache profile", slog.String("key", key), sl.Err(err))
		}
	}
	return profile, nil
}

// GetUser возвращает публичные данные пользователя по ID.
func (s *ProfileService) GetUser(ctx context.Context, userUID string) (*models.PublicUser, error) {
	const op = "services.profile.GetUser"
	user, err := s.repo.GetUserByID(ctx, userUID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, auth.ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	pub := user.Public()
	return &pub, nil
}

// Invalidate удаляет профиль пользователя из кеша.
func (s *ProfileService) Invalidate(ctx context.Context, userUID string) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.Invalidate(ctx, cacheKey(userUID))
}
