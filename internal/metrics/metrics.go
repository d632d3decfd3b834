// Package metrics метрики Prometheus для HTTP и кеша справочника стран.
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

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geobee_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geobee_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	countryCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geobee_country_cache_lookups_total",
			Help: "Country catalog lookups by result",
		},
		[]string{"result"},
	)

	countryCacheRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geobee_country_cache_refreshes_total",
			Help: "Country catalog refreshes by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	favoriteEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geobee_favorite_events_total",
			Help: "Favorite events handed to the publisher by outcome",
		},
		[]string{"type", "outcome"},
	)
)

// Middleware считает запросы и их длительность по шаблону маршрута chi.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		path := routePattern(r)
		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routePattern возвращает шаблон маршрута, чтобы id не раздували кардинальность.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// Cache реализует наблюдателя кеша справочника стран.
type Cache struct{}

func (Cache) Hit()  { countryCacheLookups.WithLabelValues("hit").Inc() }
func (Cache) Miss() { countryCacheLookups.WithLabelValues("miss").Inc() }

// Refreshed фиксирует обновление снимка из source ("upstream" или "store").
func (Cache) Refreshed(source string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	countryCacheRefreshes.WithLabelValues(source, outcome).Inc()
}

// Events считает публикации событий избранного.
type Events struct{}

func (Events) Published(eventType string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	favoriteEvents.WithLabelValues(eventType, outcome).Inc()
}
