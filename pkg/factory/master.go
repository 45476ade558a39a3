package factory

import (
	"sync"

	"go.uber.org/zap"

	"github.com/dglo/payload-sub005/pkg/errors"
	"github.com/dglo/payload-sub005/pkg/hitrec"
	"github.com/dglo/payload-sub005/pkg/payload"
)

// Master is the factory composite factories delegate child construction to.
type Master interface {
	// CopyPayload returns an independently owned deep copy of p.
	CopyPayload(p payload.Payload) (payload.Payload, error)
	// CreateHit builds a hit payload from a raw delta record.
	CreateHit(rec hitrec.DeltaRecord, src payload.SourceID) (payload.Payload, error)
}

// Copier copies payloads of a single kind into its own pool.
type Copier interface {
	Kind() payload.Kind
	Copy(p payload.Payload) (payload.Payload, error)
}

// Registry is the standard Master. It routes copies to the Copier registered
// for the payload's kind and builds hits through a SimpleHitFactory.
type Registry struct {
	mu      sync.RWMutex
	copiers map[payload.Kind]Copier
	hits    *SimpleHitFactory
	logger  *zap.Logger
}

// NewRegistry creates a master around hits, which is registered as the
// SimpleHit copier.
func NewRegistry(hits *SimpleHitFactory, logger *zap.Logger) *Registry {
	r := &Registry{
		copiers: make(map[payload.Kind]Copier),
		hits:    hits,
		logger:  orGlobal(logger),
	}
	if hits != nil {
		r.copiers[hits.Kind()] = hits
	}
	return r
}

// Register adds the copier for c.Kind(). Each kind can be registered once.
func (r *Registry) Register(c Copier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.copiers[c.Kind()]; ok {
		return errors.New(errors.ErrorTypeConfig, "copier already registered").
			WithDetail("kind", c.Kind().String())
	}
	r.copiers[c.Kind()] = c
	r.logger.Debug("registered copier", zap.Stringer("kind", c.Kind()))
	return nil
}

// CopyPayload implements Master.
func (r *Registry) CopyPayload(p payload.Payload) (payload.Payload, error) {
	if p == nil {
		return nil, errors.New(errors.ErrorTypeInvalidInput, "nil payload")
	}

	r.mu.RLock()
	c, ok := r.copiers[p.Kind()]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrorTypeNotFound, "no copier for payload kind").
			WithDetail("kind", p.Kind().String())
	}
	return c.Copy(p)
}

// CreateHit implements Master.
func (r *Registry) CreateHit(rec hitrec.DeltaRecord, src payload.SourceID) (payload.Payload, error) {
	if r.hits == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "no hit factory")
	}
	h, err := r.hits.CreateFromRecord(rec, src)
	if err != nil {
		return nil, err
	}
	return h, nil
}
