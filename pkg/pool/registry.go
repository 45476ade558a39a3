package pool

import (
	"sort"
	"sync"

	"github.com/dglo/payload-sub005/pkg/errors"
)

// Source is the kind-erased view of a Pool used for monitoring and teardown.
type Source interface {
	Kind() string
	Stats() Stats
	Close()
}

// Registry tracks the pools of one process, keyed by payload kind. It is an
// explicit object rather than package state so that tests and independent
// pipelines each get their own set of pools.
type Registry struct {
	mu    sync.RWMutex
	pools map[string]Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{pools: make(map[string]Source)}
}

// Register adds a pool. A kind can be registered only once.
func (r *Registry) Register(p Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.pools[p.Kind()]; ok {
		return errors.New(errors.ErrorTypeConfig, "pool already registered").
			WithDetail("kind", p.Kind())
	}
	r.pools[p.Kind()] = p
	return nil
}

// Lookup returns the pool registered for kind.
func (r *Registry) Lookup(kind string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[kind]
	return p, ok
}

// Stats returns a snapshot for every registered pool, sorted by kind.
func (r *Registry) Stats() []Stats {
	r.mu.RLock()
	out := make([]Stats, 0, len(r.pools))
	for _, p := range r.pools {
		out = append(out, p.Stats())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

// InUse returns the total number of instances currently handed out.
func (r *Registry) InUse() int64 {
	var n int64
	for _, s := range r.Stats() {
		n += s.InUse
	}
	return n
}

// Close closes every registered pool.
func (r *Registry) Close() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.pools {
		p.Close()
	}
}
