package gkai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/magabrotheeeer/gkai/internal/config"
	"github.com/magabrotheeeer/gkai/internal/http/session"
	"github.com/magabrotheeeer/gkai/internal/lib/jwt"
	"github.com/magabrotheeeer/gkai/internal/lib/metrics"
	"github.com/magabrotheeeer/gkai/internal/lib/password"
	"github.com/magabrotheeeer/gkai/internal/models"
	authservice "github.com/magabrotheeeer/gkai/internal/services/auth"
	profileservice "github.com/magabrotheeeer/gkai/internal/services/profile"
	"github.com/magabrotheeeer/gkai/internal/storage"
)

// memRepo хранит пользователей в памяти и повторяет семантику storage.Storage.
type memRepo struct {
	mu    sync.Mutex
	users map[string]models.User
	stats map[string]models.UserStats
}

func newMemRepo() *memRepo {
	return &memRepo{users: map[string]models.User{}, stats: map[string]models.UserStats{}}
}

func (r *memRepo) CreateUser(_ context.Context, user models.User, stats models.UserStats) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return "", storage.ErrEmailTaken
		}
		if u.Username == user.Username {
			return "", storage.ErrUsernameTaken
		}
	}
	r.users[user.UUID] = user
	r.stats[user.UUID] = stats
	return user.UUID, nil
}

func (r *memRepo) GetUserByLogin(_ context.Context, login string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == strings.ToLower(login) || u.Username == login {
			return &u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (r *memRepo) GetUserByEmailOrUsername(_ context.Context, email, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email || u.Username == username {
			return &u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (r *memRepo) UpdateLastLogin(_ context.Context, userUID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userUID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.LastLogin = &at
	r.users[userUID] = u
	return nil
}

func (r *memRepo) GetUserByID(_ context.Context, userUID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userUID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return &u, nil
}

func (r *memRepo) GetUserStats(_ context.Context, userUID string) (*models.UserStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stats[userUID]
	if !ok {
		return nil, storage.ErrStatsNotFound
	}
	return &s, nil
}

func (r *memRepo) Ping(context.Context) error { return nil }

type testServer struct {
	router http.Handler
	repo   *memRepo
	hasher *password.Hasher
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := newMemRepo()
	hasher, err := password.NewHasher(bcrypt.MinCost)
	require.NoError(t, err)
	maker, err := jwt.NewJWTMaker("routes-test-secret", time.Hour)
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	profiles := profileservice.NewProfileService(repo, nil, time.Minute, logger)
	auth := authservice.NewAuthService(logger, repo, hasher, maker,
		authservice.WithRecorder(m),
		authservice.WithProfileInvalidator(profiles),
	)

	r := chi.NewRouter()
	RegisterRoutes(r, logger, Deps{
		Auth:           auth,
		Profiles:       profiles,
		Sessions:       session.New("session", time.Hour, false),
		DB:             repo,
		Metrics:        m,
		RateLimit:      config.RateLimit{RPS: 1000, Burst: 1000},
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})
	return &testServer{router: r, repo: repo, hasher: hasher}
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestRoutes_SessionLifecycle(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "player1", "email": "Player1@Example.com", "password": "Password123",
	}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	cookie := sessionCookie(t, rr)
	assert.Equal(t, true, decode(t, rr)["success"])

	rr = srv.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	me := decode(t, rr)["data"].(map[string]any)
	assert.Equal(t, "player1", me["username"])
	assert.Equal(t, "player1@example.com", me["email"])
	assert.Equal(t, "user", me["role"])

	rr = srv.do(t, http.MethodGet, "/api/profile", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	prof := decode(t, rr)["data"].(map[string]any)
	stats := prof["stats"].(map[string]any)
	assert.EqualValues(t, 0, stats["gamesPlayed"])

	rr = srv.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"emailOrUsername": "PLAYER1@example.com", "password": "Password123",
	}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, sessionCookie(t, rr).Value)

	rr = srv.do(t, http.MethodPost, "/api/auth/logout", nil, cookie)
	require.Equal(t, http.StatusOK, rr.Code)
	cleared := sessionCookie(t, rr)
	assert.Empty(t, cleared.Value)
	assert.Negative(t, cleared.MaxAge)

	// токен не отзывается при выходе
	rr = srv.do(t, http.MethodGet, "/api/auth/me", nil, cookie)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRoutes_Errors(t *testing.T) {
	srv := newTestServer(t)
	rr := srv.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "player1", "email": "player1@example.com", "password": "Password123",
	}, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		cookie     *http.Cookie
		wantStatus int
		wantError  string
	}{
		{
			name:   "duplicate email",
			method: http.MethodPost, path: "/api/auth/register",
			body:       map[string]string{"username": "player2", "email": "PLAYER1@example.com", "password": "Password123"},
			wantStatus: http.StatusConflict, wantError: "Email already in use",
		},
		{
			name:   "duplicate username",
			method: http.MethodPost, path: "/api/auth/register",
			body:       map[string]string{"username": "player1", "email": "other@example.com", "password": "Password123"},
			wantStatus: http.StatusConflict, wantError: "Username already taken",
		},
		{
			name:   "weak password",
			method: http.MethodPost, path: "/api/auth/register",
			body:       map[string]string{"username": "player3", "email": "p3@example.com", "password": "password"},
			wantStatus: http.StatusBadRequest, wantError: "Password must contain at least one uppercase letter",
		},
		{
			name:   "password longer than bcrypt accepts",
			method: http.MethodPost, path: "/api/auth/register",
			body:       map[string]string{"username": "player4", "email": "p4@example.com", "password": "Aa1" + strings.Repeat("x", 80)},
			wantStatus: http.StatusBadRequest, wantError: "Password must be at most 72 bytes long",
		},
		{
			name:   "wrong password",
			method: http.MethodPost, path: "/api/auth/login",
			body:       map[string]string{"emailOrUsername": "player1", "password": "Password124"},
			wantStatus: http.StatusUnauthorized, wantError: "Invalid credentials",
		},
		{
			name:   "unknown user",
			method: http.MethodPost, path: "/api/auth/login",
			body:       map[string]string{"emailOrUsername": "ghost", "password": "Password123"},
			wantStatus: http.StatusUnauthorized, wantError: "Invalid credentials",
		},
		{
			name:   "me without session",
			method: http.MethodGet, path: "/api/auth/me",
			wantStatus: http.StatusUnauthorized, wantError: "Authentication required",
		},
		{
			name:   "me with forged token",
			method: http.MethodGet, path: "/api/auth/me",
			cookie:     &http.Cookie{Name: "session", Value: "not.a.jwt"},
			wantStatus: http.StatusUnauthorized, wantError: "Authentication required",
		},
		{
			name:   "profile without session",
			method: http.MethodGet, path: "/api/profile",
			wantStatus: http.StatusUnauthorized, wantError: "Authentication required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := srv.do(t, tt.method, tt.path, tt.body, tt.cookie)
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantError, decode(t, rr)["error"])
			for _, c := range rr.Result().Cookies() {
				assert.NotEqual(t, "session", c.Name)
			}
		})
	}
}

func TestRoutes_AdminGate(t *testing.T) {
	srv := newTestServer(t)

	hash, err := srv.hasher.Hash("Admin12345")
	require.NoError(t, err)
	admin := models.User{
		UUID: "0b8f8f3e-5f0e-4b7a-9a43-6c1f0d6a2b11", Email: "admin@example.com",
		Username: "admin", PasswordHash: hash, Role: models.RoleAdmin, CreatedAt: time.Now().UTC(),
	}
	_, err = srv.repo.CreateUser(context.Background(), admin, models.NewUserStats(admin.UUID))
	require.NoError(t, err)

	rr := srv.do(t, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "player1", "email": "player1@example.com", "password": "Password123",
	}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	userCookie := sessionCookie(t, rr)

	rr = srv.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"emailOrUsername": "admin", "password": "Admin12345",
	}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	adminCookie := sessionCookie(t, rr)

	path := "/api/admin/users/" + admin.UUID

	rr = srv.do(t, http.MethodGet, path, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = srv.do(t, http.MethodGet, path, nil, userCookie)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "Admin access required", decode(t, rr)["error"])

	rr = srv.do(t, http.MethodGet, path, nil, adminCookie)
	require.Equal(t, http.StatusOK, rr.Code)
	data := decode(t, rr)["data"].(map[string]any)
	assert.Equal(t, "admin", data["username"])
	assert.NotContains(t, data, "PasswordHash")

	rr = srv.do(t, http.MethodGet, "/api/admin/users/not-a-uuid", nil, adminCookie)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = srv.do(t, http.MethodGet, "/api/admin/users/7c9e6679-7425-40de-944b-e07fc1f90ae7", nil, adminCookie)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRoutes_HealthAndMetrics(t *testing.T) {
	srv := newTestServer(t)

	rr := srv.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	srv.do(t, http.MethodPost, "/api/auth/login", map[string]string{
		"emailOrUsername": "ghost", "password": "Password123",
	}, nil)
	srv.do(t, http.MethodGet, "/api/profile", nil, nil)

	rr = srv.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `gkai_auth_attempts_total{action="login",result="invalid_credentials"} 1`)
	assert.Contains(t, body, `gkai_guard_rejections_total{reason="unauthenticated"} 1`)
	assert.Contains(t, body, "gkai_http_request_duration_seconds")
}
