package payload

import (
	"github.com/dglo/payload-sub005/pkg/pool"
)

// SimpleHit is the minimal hit record forwarded by a string hub to the
// triggers: when, where and why a DOM fired.
type SimpleHit struct {
	pool.Lease
	origin *pool.Pool[*SimpleHit]

	Time        UTCTime
	TriggerType int32
	ConfigID    int32
	Source      SourceID
	DOM         DOMID
	TriggerMode int16
}

// NewSimpleHitPool creates the pool simple hits are drawn from.
func NewSimpleHitPool(opts ...pool.Option) *pool.Pool[*SimpleHit] {
	return pool.New(KindSimpleHit.String(), func(p *pool.Pool[*SimpleHit]) *SimpleHit {
		return &SimpleHit{origin: p}
	}, opts...)
}

// Init populates a freshly acquired hit.
func (h *SimpleHit) Init(utc UTCTime, trigType, cfgID int32, src SourceID, dom DOMID, trigMode int16) error {
	switch {
	case utc < 0:
		return errInvalid(KindSimpleHit, "negative hit time").WithDetail("utc", int64(utc))
	case !src.Valid():
		return errInvalid(KindSimpleHit, "unknown source").WithDetail("source", int32(src))
	case !dom.Valid():
		return errInvalid(KindSimpleHit, "bad DOM id").WithDetail("dom", uint64(dom))
	}

	h.Time = utc
	h.TriggerType = trigType
	h.ConfigID = cfgID
	h.Source = src.DeepCopy()
	h.DOM = dom.DeepCopy()
	h.TriggerMode = trigMode
	return nil
}

func (h *SimpleHit) Kind() Kind       { return KindSimpleHit }
func (h *SimpleHit) UTCTime() UTCTime { return h.Time }

// CopyHit returns a typed deep copy of h.
func (h *SimpleHit) CopyHit() (*SimpleHit, error) {
	if !h.InUse() {
		return nil, errNotOwned(KindSimpleHit)
	}
	c, err := h.origin.Acquire()
	if err != nil {
		return nil, err
	}
	c.Time = h.Time
	c.TriggerType = h.TriggerType
	c.ConfigID = h.ConfigID
	c.Source = h.Source.DeepCopy()
	c.DOM = h.DOM.DeepCopy()
	c.TriggerMode = h.TriggerMode
	return c, nil
}

// DeepCopy implements Payload.
func (h *SimpleHit) DeepCopy() (Payload, error) {
	c, err := h.CopyHit()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Recycle implements Payload.
func (h *SimpleHit) Recycle() {
	h.Time = 0
	h.TriggerType = 0
	h.ConfigID = 0
	h.Source = 0
	h.DOM = 0
	h.TriggerMode = 0
}

// Dispose implements Payload.
func (h *SimpleHit) Dispose() {
	mustOwn(h, KindSimpleHit)
	h.Recycle()
	if h.origin != nil {
		h.origin.Release(h)
	}
}
