package download

import (
	"sync"

	"github.com/pricisTrail/dlpgui/internal/platform"
)

// Registry maps session ids to live process handles. An id is present iff
// its process is believed alive and not yet reaped. Shared between the
// supervisor (insert on spawn, remove on terminate) and the cancellation path
// (remove-and-kill); the lock is held only for the map operation, never
// across a kill syscall.
type Registry struct {
	mu    sync.Mutex
	procs map[string]platform.ProcessHandle
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{procs: make(map[string]platform.ProcessHandle)}
}

// Add registers a live process under the session id
func (r *Registry) Add(id string, h platform.ProcessHandle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.procs[id] = h
}

// Remove deregisters a session; returns false when the id was not present.
// Safe to call repeatedly.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.procs[id]
	delete(r.procs, id)
	return ok
}

// Take atomically removes and returns the handle for a session, so the
// caller can kill it without racing another removal.
func (r *Registry) Take(id string) (platform.ProcessHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.procs[id]
	delete(r.procs, id)
	return h, ok
}

// Has reports whether the session id is currently registered
func (r *Registry) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.procs[id]
	return ok
}

// Len returns the number of registered sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.procs)
}
