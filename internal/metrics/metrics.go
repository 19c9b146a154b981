package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "skyvis_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "skyvis_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	visibilityDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "skyvis_visibility_duration_seconds",
			Help:    "Wall-clock duration of visibility computations in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	visibilitySamplesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skyvis_visibility_samples_total",
			Help: "Total number of airmass samples retained in visibility results.",
		},
	)

	sitesSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skyvis_sites_skipped_total",
			Help: "Total number of facilities skipped because their site list was unavailable.",
		},
	)

	cacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skyvis_result_cache_hits_total",
			Help: "Total number of visibility result cache hits.",
		},
	)

	cacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "skyvis_result_cache_misses_total",
			Help: "Total number of visibility result cache misses.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(visibilityDurationSeconds)
	prometheus.MustRegister(visibilitySamplesTotal)
	prometheus.MustRegister(sitesSkippedTotal)
	prometheus.MustRegister(cacheHitsTotal)
	prometheus.MustRegister(cacheMissesTotal)
}

// RecordVisibility records one completed visibility computation.
func RecordVisibility(duration time.Duration, samples int) {
	visibilityDurationSeconds.Observe(duration.Seconds())
	visibilitySamplesTotal.Add(float64(samples))
}

// IncSitesSkipped counts a facility skipped due to an unavailable site list.
func IncSitesSkipped() {
	sitesSkippedTotal.Inc()
}

// IncCacheHits counts a visibility result cache hit.
func IncCacheHits() {
	cacheHitsTotal.Inc()
}

// IncCacheMisses counts a visibility result cache miss.
func IncCacheMisses() {
	cacheMissesTotal.Inc()
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// knownRoutes are the exact paths the server registers. Anything else is
// collapsed into a single "other" label to keep metric cardinality bounded
// against bot traffic.
var knownRoutes = map[string]bool{
	"/":                  true,
	"/healthz":           true,
	"/readyz":            true,
	"/metrics":           true,
	"/api/v1/visibility": true,
	"/api/v1/facilities": true,
}

// normalizeRoute maps a request path to a bounded metric label.
func normalizeRoute(path string) string {
	if knownRoutes[path] {
		return path
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
