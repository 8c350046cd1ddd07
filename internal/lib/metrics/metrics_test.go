package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveAuth("login", "success")
	m.ObserveAuth("login", "invalid_credentials")
	m.ObserveAuth("login", "invalid_credentials")
	m.GuardRejected("forbidden")

	assert.InDelta(t, 1, testutil.ToFloat64(m.authAttempts.WithLabelValues("login", "success")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.authAttempts.WithLabelValues("login", "invalid_credentials")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.guardRejections.WithLabelValues("forbidden")), 0)
}

func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestMetrics_Middleware_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/api/admin/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/users/"+id, nil))
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	count, err := testutil.GatherAndCount(reg, "gkai_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count, "one series per route pattern")
}
