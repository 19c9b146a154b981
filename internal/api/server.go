// Package api exposes the visibility engine over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/skyvis/skyvis/internal/auth"
	"github.com/skyvis/skyvis/internal/cache"
	"github.com/skyvis/skyvis/internal/health"
	"github.com/skyvis/skyvis/internal/httputil"
	"github.com/skyvis/skyvis/internal/metrics"
	"github.com/skyvis/skyvis/internal/site"
	"github.com/skyvis/skyvis/internal/visibility"
)

// Config holds API behavior configuration.
type Config struct {
	DefaultWindow   time.Duration // window length when start/end absent (default 24h)
	DefaultInterval time.Duration // sampling interval when absent (default 10m)
	TrustProxy      bool          // trust X-Forwarded-For / X-Real-IP
}

// Server holds the HTTP server and its dependencies.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	engine     *visibility.Engine
	registry   *site.Registry
	results    *cache.ResultCache
	clock      clockwork.Clock
	config     Config
}

// NewServer creates a configured HTTP server.
func NewServer(addr string, logger *slog.Logger, authCfg auth.Config, cfg Config, engine *visibility.Engine, registry *site.Registry, results *cache.ResultCache, clock clockwork.Clock) *Server {
	if cfg.DefaultWindow <= 0 {
		cfg.DefaultWindow = 24 * time.Hour
	}
	if cfg.DefaultInterval <= 0 {
		cfg.DefaultInterval = 10 * time.Minute
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	s := &Server{
		logger:   logger,
		engine:   engine,
		registry: registry,
		results:  results,
		clock:    clock,
		config:   cfg,
	}

	checker := health.New(registry)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", checker.Healthz)
	mux.HandleFunc("GET /readyz", checker.Readyz)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /api/v1/visibility", s.visibilityHandler)
	mux.HandleFunc("GET /api/v1/facilities", s.facilitiesHandler)

	// Build middleware chain: metrics -> request id -> logging -> auth -> mux.
	var handler http.Handler = mux
	handler = auth.Middleware(authCfg)(handler)
	handler = s.loggingMiddleware(handler)
	handler = requestIDMiddleware(handler)
	handler = metrics.Middleware(handler)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// HTTPServer returns the underlying *http.Server for external control (e.g. shutdown).
func (s *Server) HTTPServer() *http.Server {
	return s.httpServer
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Handler returns the full middleware-wrapped handler, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// probePath returns true for health/readiness probe paths that should not log at INFO.
func probePath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

type requestIDKey struct{}

// requestIDMiddleware assigns each request a UUID, exposed via the
// X-Request-ID response header and the request context.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestID returns the request's assigned ID, or "" outside the middleware.
func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.statusCode = code
	sr.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(sr, r)

		duration := time.Since(start)
		level := slog.LevelInfo
		if probePath(r.URL.Path) {
			level = slog.LevelDebug
		}

		s.logger.Log(r.Context(), level, "request",
			"component", "api",
			"method", r.Method,
			"path", r.URL.Path,
			"status", strconv.Itoa(sr.statusCode),
			"duration_ms", duration.Milliseconds(),
			"remote_ip", httputil.ClientIP(r, s.config.TrustProxy),
			"request_id", requestID(r.Context()),
		)
	})
}
