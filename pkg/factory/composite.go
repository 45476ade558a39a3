package factory

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/dglo/payload-sub005/pkg/errors"
	"github.com/dglo/payload-sub005/pkg/payload"
	"github.com/dglo/payload-sub005/pkg/pool"
)

// Composite is a factory whose payloads contain child payloads. Children
// are built and copied through a master factory installed once, so the same
// composite shape can be assembled by different child-construction
// strategies.
type Composite[T pool.Pooled] struct {
	Base[T]
	master atomic.Pointer[masterRef]
}

type masterRef struct {
	m Master
}

// SetMaster installs the master factory. It can be called only once.
func (c *Composite[T]) SetMaster(m Master) error {
	if m == nil {
		return errors.New(errors.ErrorTypeConfig, "nil master factory").
			WithDetail("kind", c.kind.String())
	}
	if !c.master.CompareAndSwap(nil, &masterRef{m: m}) {
		return errors.New(errors.ErrorTypeConfig, "master factory already set").
			WithDetail("kind", c.kind.String())
	}
	return nil
}

// Master returns the installed master factory, or nil.
func (c *Composite[T]) Master() Master {
	if ref := c.master.Load(); ref != nil {
		return ref.m
	}
	return nil
}

func (c *Composite[T]) requireMaster() (Master, error) {
	m := c.Master()
	if m == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "no master factory").
			WithDetail("kind", c.kind.String())
	}
	return m, nil
}

// DeepCopySequence returns independently owned copies of children, in order.
//
// Nil elements are skipped. A nil children slice is rejected as invalid
// input, while an empty one yields an empty, non-nil result. If any copy
// fails, every copy already made is disposed and an ErrorTypeCopy error is
// returned; the caller's children are never touched.
func (c *Composite[T]) DeepCopySequence(children []payload.Payload) ([]payload.Payload, error) {
	if children == nil {
		return nil, errors.New(errors.ErrorTypeInvalidInput, "nil payload sequence").
			WithDetail("kind", c.kind.String())
	}
	m, err := c.requireMaster()
	if err != nil {
		return nil, err
	}

	out := make([]payload.Payload, 0, len(children))
	for i, child := range children {
		if child == nil {
			continue
		}

		cp, err := m.CopyPayload(child)
		if err == nil && cp == nil {
			err = errors.New(errors.ErrorTypeCopy, "copy produced no payload")
		}
		if err != nil {
			c.RecycleSequence(out)
			c.logger.Debug("sequence copy rolled back",
				zap.Int("index", i),
				zap.Int("discarded", len(out)),
				zap.Error(err))
			return nil, errors.Wrap(err, errors.ErrorTypeCopy, "child copy failed").
				WithDetail("index", i).
				WithDetail("child_kind", child.Kind().String())
		}
		out = append(out, cp)
	}
	return out, nil
}

// RecycleSequence disposes every non-nil element of children.
func (c *Composite[T]) RecycleSequence(children []payload.Payload) {
	for _, child := range children {
		if child != nil {
			child.Dispose()
		}
	}
}

// buildSequence creates one child per raw record through the master. On
// failure every child built so far is disposed.
func (c *Composite[T]) buildSequence(n int, create func(m Master, i int) (payload.Payload, error)) ([]payload.Payload, error) {
	m, err := c.requireMaster()
	if err != nil {
		return nil, err
	}

	out := make([]payload.Payload, 0, n)
	for i := 0; i < n; i++ {
		p, err := create(m, i)
		if err == nil && p == nil {
			err = errors.New(errors.ErrorTypeInternal, "master returned no payload")
		}
		if err != nil {
			c.RecycleSequence(out)
			return nil, errors.Wrap(err, constructionType(err), "child construction failed").
				WithDetail("index", i)
		}
		out = append(out, p)
	}
	return out, nil
}

// constructionType keeps the category of a failed child construction, so
// exhaustion stays fatal when wrapped. Untyped failures are invalid input.
func constructionType(err error) errors.ErrorType {
	var pe *errors.Error
	if errors.As(err, &pe) {
		return pe.Type
	}
	return errors.ErrorTypeInvalidInput
}
