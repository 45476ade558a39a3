package factory

import (
	"go.uber.org/zap"

	"github.com/dglo/payload-sub005/pkg/errors"
	"github.com/dglo/payload-sub005/pkg/hitrec"
	"github.com/dglo/payload-sub005/pkg/payload"
	"github.com/dglo/payload-sub005/pkg/pool"
)

// SimpleHitFactory builds SimpleHit payloads.
type SimpleHitFactory struct {
	Base[*payload.SimpleHit]
}

// NewSimpleHitFactory creates a factory drawing from p. A nil p gets a new
// unbounded pool.
func NewSimpleHitFactory(p *pool.Pool[*payload.SimpleHit], logger *zap.Logger) *SimpleHitFactory {
	if p == nil {
		p = payload.NewSimpleHitPool()
	}
	f := &SimpleHitFactory{}
	f.init(payload.KindSimpleHit, p, logger)
	return f
}

// CreatePayload builds a hit from its field values.
func (f *SimpleHitFactory) CreatePayload(utc payload.UTCTime, trigType, cfgID int32, src payload.SourceID,
	dom payload.DOMID, trigMode int16) (*payload.SimpleHit, error) {
	return f.build(func(h *payload.SimpleHit) error {
		return h.Init(utc, trigType, cfgID, src, dom, trigMode)
	})
}

// CreateFromRecord builds a hit from a delta-compressed hit record.
func (f *SimpleHitFactory) CreateFromRecord(rec hitrec.DeltaRecord, src payload.SourceID) (*payload.SimpleHit, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return f.CreatePayload(payload.UTCTime(rec.UTC), rec.TriggerType, rec.ConfigID, src,
		payload.DOMID(rec.DOM), rec.TriggerMode)
}

// Copy implements Copier. The copy is drawn from the pool h came from.
func (f *SimpleHitFactory) Copy(p payload.Payload) (payload.Payload, error) {
	h, ok := p.(*payload.SimpleHit)
	if !ok || h == nil {
		return nil, errKindMismatch(f.kind, p)
	}
	return h.DeepCopy()
}

func errKindMismatch(want payload.Kind, p payload.Payload) error {
	got := "nil"
	if p != nil {
		got = p.Kind().String()
	}
	return errors.New(errors.ErrorTypeInvalidInput, "payload kind mismatch").
		WithDetail("want", want.String()).
		WithDetail("got", got)
}
