// Package metrics содержит prometheus-метрики попыток входа, отказов доступа
// и длительности HTTP-запросов.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics хранит зарегистрированные коллекторы.
type Metrics struct {
	authAttempts    *prometheus.CounterVec
	guardRejections *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New регистрирует метрики в reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		authAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gkai_auth_attempts_total",
			Help: "Total number of registration and login attempts",
		}, []string{"action", "result"}),
		guardRejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gkai_guard_rejections_total",
			Help: "Total number of requests rejected by authorization guards",
		}, []string{"reason"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gkai_http_request_duration_seconds",
			Help:    "Histogram of HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// ObserveAuth учитывает попытку регистрации или входа.
func (m *Metrics) ObserveAuth(action, result string) {
	m.authAttempts.WithLabelValues(action, result).Inc()
}

// GuardRejected учитывает отказ в доступе.
func (m *Metrics) GuardRejected(reason string) {
	m.guardRejections.WithLabelValues(reason).Inc()
}

// Middleware измеряет длительность запросов. Метка route берётся из шаблона chi,
// чтобы ID в пути не раздували число серий.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
