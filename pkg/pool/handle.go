package pool

// Disposable is anything that can give itself back to its pool.
type Disposable interface {
	Dispose()
}

// Handle is an owned reference to a pooled value. Release consumes the
// handle: the value is disposed exactly once and the handle no longer
// yields it. Move transfers ownership to a new handle, leaving the source
// empty, and is the point at which a value crosses goroutines:
//
//	h := pool.Own(hit)
//	out <- h.Move()
//	// h.Value() now panics
//
// A Handle is not safe for concurrent use; it belongs to one owner at a time.
type Handle[T Disposable] struct {
	v    T
	live bool
}

// Own wraps v in a handle owned by the caller.
func Own[T Disposable](v T) Handle[T] {
	return Handle[T]{v: v, live: true}
}

// Valid reports whether the handle still owns a value.
func (h *Handle[T]) Valid() bool {
	return h.live
}

// Value returns the owned value. It panics if the handle was released or moved.
func (h *Handle[T]) Value() T {
	if !h.live {
		panic("pool: use of released or moved handle")
	}
	return h.v
}

// Move returns a new handle owning the value and empties h.
func (h *Handle[T]) Move() Handle[T] {
	if !h.live {
		panic("pool: move of released or moved handle")
	}
	out := Handle[T]{v: h.v, live: true}
	h.clear()
	return out
}

// Release disposes the owned value. Releasing an empty handle is a no-op.
func (h *Handle[T]) Release() {
	if !h.live {
		return
	}
	v := h.v
	h.clear()
	v.Dispose()
}

func (h *Handle[T]) clear() {
	var zero T
	h.v = zero
	h.live = false
}
