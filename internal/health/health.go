package health

import (
	"net/http"

	"github.com/skyvis/skyvis/internal/site"
)

// Checker serves liveness and readiness probes.
type Checker struct {
	registry *site.Registry
}

// New creates a Checker backed by the facility registry.
func New(registry *site.Registry) *Checker {
	return &Checker{registry: registry}
}

// Healthz returns 200 "ok\n" unconditionally.
func (c *Checker) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok\n"))
}

// Readyz returns 200 "ready\n" once at least one facility is configured.
// The engine itself tolerates an empty registry (it produces empty results),
// but an instance with no facilities is not serving useful answers yet.
func (c *Checker) Readyz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if c.registry == nil || c.registry.Len() == 0 {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("no facilities configured\n"))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready\n"))
}
