package stepper

import (
	"sync"

	"github.com/mimicbot/mimic/internal/request"
)

// Step is a named unit of workflow behavior. OnRequest produces the
// descriptor for the step's HTTP call (or a skip directive); exactly one of
// the three callbacks is invoked per execution. A step with no meaningful
// error or timeout handling still implements them as no-ops.
type Step interface {
	Name() string
	OnRequest() request.Request
	OnSuccess(ctx *Context)
	OnError(ctx *Context, err error)
	OnTimeout(ctx *Context)
}

// Registry maps step names to steps. Registration normally happens once
// during setup; afterwards the registry is read-only and may be shared
// across workers, so lookups take a read lock.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Step
}

// NewRegistry returns an empty step registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Step)}
}

// Insert registers a step under its name. Re-inserting a name silently
// overwrites the previous binding, keeping registration idempotent during
// setup.
func (r *Registry) Insert(step Step) {
	r.mu.Lock()
	r.handlers[step.Name()] = step
	r.mu.Unlock()
}

// InsertMany registers all given steps.
func (r *Registry) InsertMany(steps []Step) {
	for _, s := range steps {
		r.Insert(s)
	}
}

// Lookup returns the step registered under name. A miss returns false; the
// caller decides whether that is a StepNotFoundError.
func (r *Registry) Lookup(name string) (Step, bool) {
	r.mu.RLock()
	s, ok := r.handlers[name]
	r.mu.RUnlock()
	return s, ok
}

// Contains reports whether a step is registered under name.
func (r *Registry) Contains(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Len returns the number of registered steps.
func (r *Registry) Len() int {
	r.mu.RLock()
	n := len(r.handlers)
	r.mu.RUnlock()
	return n
}
