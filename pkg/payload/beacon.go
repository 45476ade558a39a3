package payload

import (
	"github.com/dglo/payload-sub005/pkg/pool"
)

// BeaconHit is a forced-trigger (beacon) hit used to monitor DOM baselines.
// ChannelID is the detector channel from the DOM geometry, or -1 when the
// DOM is not deployed.
type BeaconHit struct {
	pool.Lease
	origin *pool.Pool[*BeaconHit]

	Time        UTCTime
	Source      SourceID
	DOM         DOMID
	ChannelID   int16
	TriggerMode int16
	LCMode      uint8
}

// NewBeaconHitPool creates the pool beacon hits are drawn from.
func NewBeaconHitPool(opts ...pool.Option) *pool.Pool[*BeaconHit] {
	return pool.New(KindBeaconHit.String(), func(p *pool.Pool[*BeaconHit]) *BeaconHit {
		return &BeaconHit{origin: p}
	}, opts...)
}

// Init populates a freshly acquired beacon.
func (b *BeaconHit) Init(utc UTCTime, src SourceID, dom DOMID, chanID, trigMode int16, lcMode uint8) error {
	switch {
	case utc < 0:
		return errInvalid(KindBeaconHit, "negative hit time").WithDetail("utc", int64(utc))
	case !src.Valid():
		return errInvalid(KindBeaconHit, "unknown source").WithDetail("source", int32(src))
	case !dom.Valid():
		return errInvalid(KindBeaconHit, "bad DOM id").WithDetail("dom", uint64(dom))
	case chanID < -1:
		return errInvalid(KindBeaconHit, "bad channel id").WithDetail("channel", chanID)
	}

	b.Time = utc
	b.Source = src.DeepCopy()
	b.DOM = dom.DeepCopy()
	b.ChannelID = chanID
	b.TriggerMode = trigMode
	b.LCMode = lcMode
	return nil
}

func (b *BeaconHit) Kind() Kind       { return KindBeaconHit }
func (b *BeaconHit) UTCTime() UTCTime { return b.Time }

// CopyBeacon returns a typed deep copy of b.
func (b *BeaconHit) CopyBeacon() (*BeaconHit, error) {
	if !b.InUse() {
		return nil, errNotOwned(KindBeaconHit)
	}
	c, err := b.origin.Acquire()
	if err != nil {
		return nil, err
	}
	c.Time = b.Time
	c.Source = b.Source.DeepCopy()
	c.DOM = b.DOM.DeepCopy()
	c.ChannelID = b.ChannelID
	c.TriggerMode = b.TriggerMode
	c.LCMode = b.LCMode
	return c, nil
}

// DeepCopy implements Payload.
func (b *BeaconHit) DeepCopy() (Payload, error) {
	c, err := b.CopyBeacon()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Recycle implements Payload.
func (b *BeaconHit) Recycle() {
	b.Time = 0
	b.Source = 0
	b.DOM = 0
	b.ChannelID = 0
	b.TriggerMode = 0
	b.LCMode = 0
}

// Dispose implements Payload.
func (b *BeaconHit) Dispose() {
	mustOwn(b, KindBeaconHit)
	b.Recycle()
	if b.origin != nil {
		b.origin.Release(b)
	}
}
