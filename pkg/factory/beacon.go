package factory

import (
	"go.uber.org/zap"

	"github.com/dglo/payload-sub005/pkg/domgeo"
	"github.com/dglo/payload-sub005/pkg/errors"
	"github.com/dglo/payload-sub005/pkg/hitrec"
	"github.com/dglo/payload-sub005/pkg/payload"
	"github.com/dglo/payload-sub005/pkg/pool"
)

// BeaconFactory builds BeaconHit payloads. When a geometry is supplied the
// channel id of each beacon is resolved from it; otherwise it is -1.
type BeaconFactory struct {
	Base[*payload.BeaconHit]
	geometry domgeo.Lookup
}

// NewBeaconFactory creates a factory drawing from p. A nil p gets a new
// unbounded pool; geometry may be nil.
func NewBeaconFactory(p *pool.Pool[*payload.BeaconHit], geometry domgeo.Lookup, logger *zap.Logger) *BeaconFactory {
	if p == nil {
		p = payload.NewBeaconHitPool()
	}
	f := &BeaconFactory{geometry: geometry}
	f.init(payload.KindBeaconHit, p, logger)
	return f
}

// CreatePayload builds a beacon from its field values.
func (f *BeaconFactory) CreatePayload(utc payload.UTCTime, src payload.SourceID, dom payload.DOMID,
	chanID, trigMode int16, lcMode uint8) (*payload.BeaconHit, error) {
	return f.build(func(b *payload.BeaconHit) error {
		return b.Init(utc, src, dom, chanID, trigMode, lcMode)
	})
}

// CreateFromEngineering builds a beacon from a forced engineering-format
// hit. Records with any other trigger mode are rejected.
func (f *BeaconFactory) CreateFromEngineering(rec hitrec.EngineeringRecord, src payload.SourceID) (*payload.BeaconHit, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	if !rec.IsBeacon() {
		return nil, errors.New(errors.ErrorTypeInvalidInput, "not a beacon hit").
			WithDetail("mode", rec.TriggerMode())
	}
	dom := payload.DOMID(rec.DOM)
	return f.CreatePayload(payload.UTCTime(rec.UTC), src, dom, f.channel(dom),
		int16(rec.TriggerMode()), rec.LCMode())
}

// CreateFromRecord builds a beacon from a delta-compressed hit record,
// keeping its trigger and local-coincidence modes.
func (f *BeaconFactory) CreateFromRecord(rec hitrec.DeltaRecord, src payload.SourceID) (*payload.BeaconHit, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	dom := payload.DOMID(rec.DOM)
	return f.CreatePayload(payload.UTCTime(rec.UTC), src, dom, f.channel(dom), rec.TriggerMode, rec.LCMode)
}

// CreateFromHit builds a beacon carrying the time, source and DOM of hit.
// hit is not consumed.
func (f *BeaconFactory) CreateFromHit(hit *payload.SimpleHit) (*payload.BeaconHit, error) {
	if hit == nil {
		return nil, errors.New(errors.ErrorTypeInvalidInput, "nil hit")
	}
	if !hit.InUse() {
		return nil, errors.New(errors.ErrorTypeOwnership, "beacon from disposed hit")
	}
	return f.CreatePayload(hit.Time, hit.Source, hit.DOM, f.channel(hit.DOM), hit.TriggerMode, 0)
}

// Copy implements Copier.
func (f *BeaconFactory) Copy(p payload.Payload) (payload.Payload, error) {
	b, ok := p.(*payload.BeaconHit)
	if !ok || b == nil {
		return nil, errKindMismatch(f.kind, p)
	}
	return b.DeepCopy()
}

func (f *BeaconFactory) channel(dom payload.DOMID) int16 {
	if f.geometry == nil {
		return -1
	}
	d, ok := f.geometry.Lookup(dom)
	if !ok {
		f.logger.Debug("beacon from undeployed DOM", zap.Stringer("dom", dom))
		return -1
	}
	return d.ChannelID()
}
