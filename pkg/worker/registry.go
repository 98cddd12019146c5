package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/RaythaHQ/raytha-sub006/pkg/errors"
	"github.com/RaythaHQ/raytha-sub006/pkg/queue"
)

// Handler runs one job. Returning an error (or panicking) errors the job; wrap the error
// with queue.Transient to ask for a retry.
type Handler func(ctx context.Context, meta *queue.Meta) error

// Registry maps job kinds to handlers. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: map[string]Handler{}}
}

// Register adds (or replaces) the handler for a kind.
func (r *Registry) Register(kind string, h Handler) error {
	if kind == "" {
		return fmt.Errorf("%w job kind is required", errors.ErrInvalidArg)
	}
	if h == nil {
		return fmt.Errorf("%w nil handler for %s", errors.ErrInvalidArg, kind)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers[kind] = h
	return nil
}

// Get returns the handler for a kind
func (r *Registry) Get(kind string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[kind]
	return h, ok
}

// Kinds returns all registered kinds, sorted
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.handlers))
	for k := range r.handlers {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
