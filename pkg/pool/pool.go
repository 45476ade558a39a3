package pool

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/dglo/payload-sub005/pkg/errors"
)

// Pooled is implemented by every instance a Pool can hold. The lease
// accessor is unexported, so a type satisfies Pooled only by embedding Lease.
type Pooled interface {
	// Recycle clears the instance to its reusable state. It must be idempotent.
	Recycle()
	lease() *Lease
}

// Stats is a point-in-time snapshot of a pool's counters.
type Stats struct {
	// Kind is the payload kind the pool serves
	Kind string `json:"kind"`
	// Allocated counts every instance the pool ever created
	Allocated int64 `json:"allocated"`
	// Live counts instances currently owned by the pool or a caller
	Live int64 `json:"live"`
	// InUse counts instances currently handed out
	InUse int64 `json:"in_use"`
	// Idle counts instances waiting in the pool
	Idle int64 `json:"idle"`
	// Hits counts acquisitions served from the idle store
	Hits int64 `json:"hits"`
	// Misses counts acquisitions that had to allocate
	Misses int64 `json:"misses"`
	// Dropped counts returns discarded because the idle store was full
	Dropped int64 `json:"dropped"`
}

// Option configures a Pool.
type Option func(*options)

type options struct {
	maxLive  int
	maxIdle  int
	prealloc int
}

// WithMaxLive caps the number of live instances. Zero means unlimited.
func WithMaxLive(n int) Option {
	return func(o *options) { o.maxLive = n }
}

// WithMaxIdle caps the idle store; surplus returns are left to the GC.
func WithMaxIdle(n int) Option {
	return func(o *options) { o.maxIdle = n }
}

// WithPrealloc warms the pool with n idle instances.
func WithPrealloc(n int) Option {
	return func(o *options) { o.prealloc = n }
}

// Pool is a store of idle instances of one payload kind. It hands out an
// idle instance when one is available and allocates otherwise.
//
// Unlike sync.Pool, the idle store is never emptied behind the caller's back:
// an instance is only destroyed when the pool is closed or when the idle
// store is full. This keeps pool sizes observable, which the composite
// rollback logic and its tests rely on.
//
// Pool is safe for concurrent use. Acquire and Release are serialised by a
// mutex, so no two concurrent acquisitions can return the same instance.
type Pool[T Pooled] struct {
	kind  string
	newFn func(*Pool[T]) T
	opts  options

	mu     sync.Mutex
	idle   *queue.Queue
	closed bool
	stats  Stats
}

// New creates a pool for one payload kind. newFn is called whenever the
// idle store is empty and receives the pool itself, so instances can keep a
// back-reference to the pool they must be returned to. The instances it
// returns must be in reset state.
func New[T Pooled](kind string, newFn func(*Pool[T]) T, opts ...Option) *Pool[T] {
	p := &Pool[T]{
		kind:  kind,
		newFn: newFn,
		idle:  queue.New(),
	}
	for _, opt := range opts {
		opt(&p.opts)
	}
	p.stats.Kind = kind

	for i := 0; i < p.opts.prealloc; i++ {
		if p.opts.maxLive > 0 && i >= p.opts.maxLive {
			break
		}
		p.idle.Add(p.newFn(p))
		p.stats.Allocated++
		p.stats.Live++
	}
	return p
}

// Kind returns the payload kind served by the pool.
func (p *Pool[T]) Kind() string {
	return p.kind
}

// Acquire returns an instance owned by the caller. The only failures are
// exhaustion of the live-instance cap and acquisition after Close.
func (p *Pool[T]) Acquire() (T, error) {
	var zero T

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return zero, errors.New(errors.ErrorTypeOwnership, "pool is closed").
			WithDetail("kind", p.kind)
	}

	var v T
	if p.idle.Length() > 0 {
		v = p.idle.Remove().(T)
		p.stats.Hits++
	} else {
		if p.opts.maxLive > 0 && p.stats.Live >= int64(p.opts.maxLive) {
			p.mu.Unlock()
			return zero, errors.New(errors.ErrorTypeResourceExhausted, "pool exhausted").
				WithDetail("kind", p.kind).
				WithDetail("max_live", p.opts.maxLive)
		}
		v = p.newFn(p)
		p.stats.Allocated++
		p.stats.Live++
		p.stats.Misses++
	}
	p.stats.InUse++
	p.mu.Unlock()

	if !v.lease().acquire() {
		panic("pool: idle " + p.kind + " instance was already owned")
	}
	return v, nil
}

// Release returns v to the idle store. The caller must have recycled v.
// Releasing an instance that is not currently owned panics: it means the
// same instance was disposed twice.
func (p *Pool[T]) Release(v T) {
	if !v.lease().release() {
		panic("pool: release of " + p.kind + " instance that is not in use")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stats.InUse--
	if p.closed || (p.opts.maxIdle > 0 && p.idle.Length() >= p.opts.maxIdle) {
		p.stats.Live--
		p.stats.Dropped++
		return
	}
	p.idle.Add(v)
}

// Idle returns the number of instances waiting in the pool.
func (p *Pool[T]) Idle() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idle.Length()
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := p.stats
	s.Idle = int64(p.idle.Length())
	return s
}

// Close tears the pool down. Idle instances are dropped, later releases
// are discarded and later acquisitions fail.
func (p *Pool[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	n := int64(p.idle.Length())
	p.idle = queue.New()
	p.stats.Live -= n
	p.stats.Dropped += n
}
