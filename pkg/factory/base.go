package factory

import (
	"go.uber.org/zap"

	"github.com/dglo/payload-sub005/pkg/logger"
	"github.com/dglo/payload-sub005/pkg/payload"
	"github.com/dglo/payload-sub005/pkg/pool"
)

// Base wraps the pool of one payload kind. Concrete factories embed it and
// expose one Create method per raw-input shape they accept.
//
// A factory never keeps a reference to the instances it hands out.
type Base[T pool.Pooled] struct {
	kind   payload.Kind
	pool   *pool.Pool[T]
	logger *zap.Logger
}

func (b *Base[T]) init(kind payload.Kind, p *pool.Pool[T], log *zap.Logger) {
	b.kind = kind
	b.pool = p
	b.logger = orGlobal(log).With(zap.Stringer("kind", kind))
}

// orGlobal falls back to the process logger when none is injected.
func orGlobal(log *zap.Logger) *zap.Logger {
	if log == nil {
		return logger.Get()
	}
	return log
}

// Kind returns the payload kind the factory builds.
func (b *Base[T]) Kind() payload.Kind {
	return b.kind
}

// Pool returns the pool the factory draws from.
func (b *Base[T]) Pool() *pool.Pool[T] {
	return b.pool
}

// Stats returns the statistics of the factory's pool.
func (b *Base[T]) Stats() pool.Stats {
	return b.pool.Stats()
}

// build acquires an instance and runs fill on it. If fill fails the
// instance is recycled and released before the error is returned, so a
// caller never sees a half-initialised payload.
func (b *Base[T]) build(fill func(T) error) (T, error) {
	var zero T

	v, err := b.pool.Acquire()
	if err != nil {
		b.logger.Warn("pool acquire failed", zap.Error(err))
		return zero, err
	}
	if err := fill(v); err != nil {
		v.Recycle()
		b.pool.Release(v)
		b.logger.Debug("payload construction failed", zap.Error(err))
		return zero, err
	}
	return v, nil
}
