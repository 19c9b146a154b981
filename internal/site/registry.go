package site

import "sync"

// Registry provides thread-safe access to the configured facilities.
// Populated at startup; reads vastly outnumber writes.
type Registry struct {
	mu         sync.RWMutex
	facilities []Facility
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends a facility to the registry.
func (r *Registry) Register(f Facility) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.facilities = append(r.facilities, f)
}

// Facilities returns a snapshot of the registered facilities in registration
// order.
func (r *Registry) Facilities() []Facility {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Facility(nil), r.facilities...)
}

// Len returns the number of registered facilities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.facilities)
}
