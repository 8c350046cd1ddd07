// Package services содержит логику бизнес-уровня для регистрации, входа
// и восстановления сессии пользователя из токена.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/gkai/internal/lib/jwt"
	"github.com/magabrotheeeer/gkai/internal/lib/sl"
	"github.com/magabrotheeeer/gkai/internal/lib/validation"
	"github.com/magabrotheeeer/gkai/internal/models"
	"github.com/magabrotheeeer/gkai/internal/storage"
)

// Типы событий, публикуемых сервисом.
const (
	EventUserRegistered = "user.registered"
	EventUserLoggedIn   = "user.logged_in"
)

// Результаты попыток для метрик.
const (
	ResultSuccess            = "success"
	ResultInvalidInput       = "invalid_input"
	ResultConflict           = "conflict"
	ResultInvalidCredentials = "invalid_credentials"
	ResultError              = "error"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// CreateUser сохраняет нового пользователя вместе с его статистикой и возвращает ID.
	CreateUser(ctx context.Context, user models.User, stats models.UserStats) (string, error)
	// GetUserByLogin ищет пользователя по email (без учёта регистра) или username.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
	// GetUserByEmailOrUsername возвращает пользователя с совпадающим email или username.
	GetUserByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)
	// UpdateLastLogin обновляет дату последнего входа.
	UpdateLastLogin(ctx context.Context, userUID string, at time.Time) error
}

// PasswordHasher хеширует и проверяет пароли.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Event — событие аутентификации для внешних потребителей.
type Event struct {
	Type     string    `json:"type"`
	UserUID  string    `json:"userId"`
	Username string    `json:"username"`
	At       time.Time `json:"at"`
}

// EventPublisher публикует события аутентификации.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// ProfileInvalidator сбрасывает закешированный профиль пользователя.
type ProfileInvalidator interface {
	Invalidate(ctx context.Context, userUID string) error
}

// Recorder учитывает попытки регистрации и входа.
type Recorder interface {
	ObserveAuth(action, result string)
}

// Session — результат успешной регистрации или входа.
type Session struct {
	Token string
	User  models.User
}

// Option настраивает AuthService.
type Option func(*AuthService)

// WithEvents включает публикацию событий.
func WithEvents(p EventPublisher) Option {
	return func(s *AuthService) { s.events = p }
}

// WithProfileInvalidator включает сброс кеша профиля при входе.
func WithProfileInvalidator(c ProfileInvalidator) Option {
	return func(s *AuthService) { s.profiles = c }
}

// WithRecorder включает учёт метрик.
func WithRecorder(r Recorder) Option {
	return func(s *AuthService) { s.recorder = r }
}

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// AuthService отвечает за регистрацию, авторизацию и валидацию JWT.
type AuthService struct {
	log      *slog.Logger
	users    UserRepository
	hasher   PasswordHasher
	jwtMaker jwt.Maker
	events   EventPublisher
	profiles ProfileInvalidator
	recorder Recorder
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(log *slog.Logger, users UserRepository, hasher PasswordHasher, jwtMaker jwt.Maker, opts ...Option) *AuthService {
	s := &AuthService{
		log:      log,
		users:    users,
		hasher:   hasher,
		jwtMaker: jwtMaker,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register создает нового пользователя с ролью "user" и сразу выдаёт токен сессии.
//
// Проверки формата выполняются до обращения к базе и хеширования.
// Занятый email или username возвращается как *ConflictError с указанием поля.
func (s *AuthService) Register(ctx context.Context, username, email, rawPassword string) (*Session, error) {
	const op = "services.auth.Register"

	sess, err := s.register(ctx, username, email, rawPassword)
	s.observe("register", err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

func (s *AuthService) register(ctx context.Context, username, email, rawPassword string) (*Session, error) {
	if username == "" || email == "" || rawPassword == "" {
		return nil, &ValidationError{Reason: "All fields are required"}
	}
	if res := validation.Registration(email, username, rawPassword); !res.Valid {
		return nil, &ValidationError{Reason: res.Message}
	}
	email = strings.ToLower(email)

	existing, err := s.users.GetUserByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		if existing.Email == email {
			return nil, &ConflictError{Field: FieldEmail}
		}
		return nil, &ConflictError{Field: FieldUsername}
	case !errors.Is(err, storage.ErrUserNotFound):
		return nil, err
	}

	hashed, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := models.User{
		UUID:         uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		CreatedAt:    now,
		LastLogin:    &now,
	}
	id, err := s.users.CreateUser(ctx, user, models.NewUserStats(user.UUID))
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrEmailTaken):
			return nil, &ConflictError{Field: FieldEmail}
		case errors.Is(err, storage.ErrUsernameTaken):
			return nil, &ConflictError{Field: FieldUsername}
		}
		return nil, err
	}
	user.UUID = id

	token, err := s.jwtMaker.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, Event{Type: EventUserRegistered, UserUID: user.UUID, Username: user.Username, At: now})
	return &Session{Token: token, User: user}, nil
}

// Login проверяет пароль пользователя и генерирует JWT.
//
// Неизвестный пользователь и неверный пароль дают одну и ту же ошибку ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, emailOrUsername, rawPassword string) (*Session, error) {
	const op = "services.auth.Login"

	sess, err := s.login(ctx, emailOrUsername, rawPassword)
	s.observe("login", err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sess, nil
}

func (s *AuthService) login(ctx context.Context, emailOrUsername, rawPassword string) (*Session, error) {
	if emailOrUsername == "" || rawPassword == "" {
		return nil, &ValidationError{Reason: "Email/Username and password are required"}
	}

	user, err := s.users.GetUserByLogin(ctx, emailOrUsername)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			s.verifyDummy(rawPassword)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(rawPassword, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.UUID, now); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	token, err := s.jwtMaker.GenerateToken(*user)
	if err != nil {
		return nil, err
	}

	if s.profiles != nil {
		if err := s.profiles.Invalidate(ctx, user.UUID); err != nil {
			s.log.Warn("failed to invalidate cached profile", slog.String("user_uid", user.UUID), sl.Err(err))
		}
	}
	s.publish(ctx, Event{Type: EventUserLoggedIn, UserUID: user.UUID, Username: user.Username, At: now})
	return &Session{Token: token, User: *user}, nil
}

// Authenticate восстанавливает пользователя из токена сессии.
//
// Любая проблема с токеном (истёк, подделан, повреждён) даёт ErrAuthenticationRequired;
// причина остаётся в цепочке ошибки только для логов.
func (s *AuthService) Authenticate(token string) (*models.Principal, error) {
	const op = "services.auth.Authenticate"
	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrAuthenticationRequired)
	}
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", op, ErrAuthenticationRequired, err)
	}
	p := claims.Principal()
	return &p, nil
}

// verifyDummy сравнивает пароль с заранее посчитанным хешем, чтобы вход
// неизвестного пользователя занимал столько же времени, сколько неверный пароль.
func (s *AuthService) verifyDummy(rawPassword string) {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.log.Warn("failed to prepare dummy password hash", sl.Err(err))
			return
		}
		s.dummyHash = h
	})
	if s.dummyHash != "" {
		_ = s.hasher.Verify(rawPassword, s.dummyHash)
	}
}

func (s *AuthService) publish(ctx context.Context, event Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.log.Warn("failed to publish auth event", slog.String("type", event.Type), sl.Err(err))
	}
}

func (s *AuthService) observe(action string, err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveAuth(action, resultOf(err))
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case IsValidation(err):
		return ResultInvalidInput
	case IsConflict(err):
		return ResultConflict
	case errors.Is(err, ErrInvalidCredentials):
		return ResultInvalidCredentials
	default:
		return ResultError
	}
}
