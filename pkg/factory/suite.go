package factory

import (
	"go.uber.org/zap"

	"github.com/dglo/payload-sub005/pkg/domgeo"
	"github.com/dglo/payload-sub005/pkg/payload"
	"github.com/dglo/payload-sub005/pkg/pool"
)

// SuiteOptions configures NewSuite.
type SuiteOptions struct {
	Hits     []pool.Option
	Beacons  []pool.Option
	Triggers []pool.Option
	Geometry domgeo.Lookup
}

// Suite is a set of factories wired to a single Registry master.
type Suite struct {
	Master   *Registry
	Hits     *SimpleHitFactory
	Beacons  *BeaconFactory
	Triggers *TriggerRequestFactory
}

// NewSuite creates every payload factory and registers each one with the
// master, so composite payloads can hold children of any kind.
func NewSuite(opts SuiteOptions, logger *zap.Logger) (*Suite, error) {
	logger = orGlobal(logger)

	s := &Suite{
		Hits:    NewSimpleHitFactory(payload.NewSimpleHitPool(opts.Hits...), logger),
		Beacons: NewBeaconFactory(payload.NewBeaconHitPool(opts.Beacons...), opts.Geometry, logger),
	}
	s.Master = NewRegistry(s.Hits, logger)
	triggers, err := NewTriggerRequestFactory(s.Master, logger, opts.Triggers...)
	if err != nil {
		return nil, err
	}
	s.Triggers = triggers

	for _, c := range []Copier{s.Beacons, s.Triggers} {
		if err := s.Master.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds the pool of every factory to r.
func (s *Suite) Register(r *pool.Registry) error {
	for _, src := range []pool.Source{s.Hits.Pool(), s.Beacons.Pool(), s.Triggers.Pool()} {
		if err := r.Register(src); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every pool. Instances still in use are dropped when they
// are disposed.
func (s *Suite) Close() {
	s.Triggers.Pool().Close()
	s.Beacons.Pool().Close()
	s.Hits.Pool().Close()
}
