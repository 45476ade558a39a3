package factory

import (
	"go.uber.org/zap"

	"github.com/dglo/payload-sub005/pkg/hitrec"
	"github.com/dglo/payload-sub005/pkg/payload"
	"github.com/dglo/payload-sub005/pkg/pool"
)

// RequestHeader holds the scalar fields of a trigger request.
type RequestHeader struct {
	UID         int32
	TriggerType int32
	ConfigID    int32
	Source      payload.SourceID
	FirstTime   payload.UTCTime
	LastTime    payload.UTCTime
}

// TriggerRequestFactory builds TriggerRequest payloads. It owns the request
// pool and serves as the sequence copier of every request in it.
type TriggerRequestFactory struct {
	Composite[*payload.TriggerRequest]
}

// NewTriggerRequestFactory creates the factory and its pool. master may be
// nil and installed later with SetMaster, which allows a Registry to hold
// this factory as its trigger request copier.
func NewTriggerRequestFactory(master Master, logger *zap.Logger, opts ...pool.Option) (*TriggerRequestFactory, error) {
	f := &TriggerRequestFactory{}
	f.init(payload.KindTriggerRequest, payload.NewTriggerRequestPool(f, opts...), logger)
	if master != nil {
		if err := f.SetMaster(master); err != nil {
			f.pool.Close()
			return nil, err
		}
	}
	return f, nil
}

// CreatePayload builds a request holding deep copies of children. The
// caller keeps ownership of children.
func (f *TriggerRequestFactory) CreatePayload(hdr RequestHeader, children []payload.Payload) (*payload.TriggerRequest, error) {
	var kids []payload.Payload
	if len(children) > 0 {
		var err error
		if kids, err = f.DeepCopySequence(children); err != nil {
			return nil, err
		}
	}
	return f.assemble(hdr, kids)
}

// CreateFromRecords builds a request whose children are hits created by the
// master from records. If hdr has an empty window, it is derived from the
// hit times.
func (f *TriggerRequestFactory) CreateFromRecords(hdr RequestHeader, records []hitrec.DeltaRecord,
	src payload.SourceID) (*payload.TriggerRequest, error) {
	kids, err := f.buildSequence(len(records), func(m Master, i int) (payload.Payload, error) {
		return m.CreateHit(records[i], src)
	})
	if err != nil {
		return nil, err
	}
	if hdr.FirstTime == 0 && hdr.LastTime == 0 && len(kids) > 0 {
		hdr.FirstTime, hdr.LastTime = TimeWindow(kids)
	}
	return f.assemble(hdr, kids)
}

// Copy implements Copier.
func (f *TriggerRequestFactory) Copy(p payload.Payload) (payload.Payload, error) {
	r, ok := p.(*payload.TriggerRequest)
	if !ok || r == nil {
		return nil, errKindMismatch(f.kind, p)
	}
	return r.DeepCopy()
}

// assemble takes ownership of kids. They are disposed if the request cannot
// be built.
func (f *TriggerRequestFactory) assemble(hdr RequestHeader, kids []payload.Payload) (*payload.TriggerRequest, error) {
	r, err := f.build(func(r *payload.TriggerRequest) error {
		return r.Init(hdr.UID, hdr.TriggerType, hdr.ConfigID, hdr.Source, hdr.FirstTime, hdr.LastTime, kids)
	})
	if err != nil {
		f.RecycleSequence(kids)
		return nil, err
	}
	return r, nil
}

// TimeWindow returns the earliest and latest time among payloads, which must
// be non-empty and contain no nil elements.
func TimeWindow(kids []payload.Payload) (first, last payload.UTCTime) {
	first, last = kids[0].UTCTime(), kids[0].UTCTime()
	for _, k := range kids[1:] {
		t := k.UTCTime()
		if t.Before(first) {
			first = t
		}
		if last.Before(t) {
			last = t
		}
	}
	return first, last
}
