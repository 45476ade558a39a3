package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dglo/payload-sub005/pkg/errors"
	"github.com/dglo/payload-sub005/pkg/hitrec"
	"github.com/dglo/payload-sub005/pkg/payload"
	"github.com/dglo/payload-sub005/pkg/pool"
)

var hub = payload.NewSourceID(payload.StringHubID, 21)

func newHits(t *testing.T, opts ...pool.Option) *SimpleHitFactory {
	t.Helper()
	return NewSimpleHitFactory(payload.NewSimpleHitPool(opts...), zaptest.NewLogger(t))
}

func mustHit(t *testing.T, f *SimpleHitFactory, utc payload.UTCTime, dom payload.DOMID) *payload.SimpleHit {
	t.Helper()
	h, err := f.CreatePayload(utc, 2, 1000, hub, dom, 4)
	require.NoError(t, err)
	return h
}

func TestSimpleHitCreateFromRecord(t *testing.T) {
	f := newHits(t)

	h, err := f.CreateFromRecord(hitrec.DeltaRecord{
		DOM:         0x0123456789ab,
		UTC:         5_000_000,
		TriggerType: 3,
		ConfigID:    77,
		TriggerMode: 2,
	}, hub)
	require.NoError(t, err)

	assert.Equal(t, payload.KindSimpleHit, h.Kind())
	assert.Equal(t, payload.UTCTime(5_000_000), h.Time)
	assert.Equal(t, payload.DOMID(0x0123456789ab), h.DOM)
	assert.Equal(t, int32(3), h.TriggerType)
	assert.Equal(t, int32(77), h.ConfigID)
	assert.Equal(t, int16(2), h.TriggerMode)
	assert.Equal(t, hub, h.Source)
	assert.True(t, h.InUse())

	h.Dispose()
	assert.Equal(t, int64(0), f.Stats().InUse)
}

func TestSimpleHitBadRecordDoesNotTouchPool(t *testing.T) {
	f := newHits(t)

	_, err := f.CreateFromRecord(hitrec.DeltaRecord{DOM: 0, UTC: 1}, hub)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))
	assert.Equal(t, int64(0), f.Stats().Allocated)
}

func TestSimpleHitInvalidInputRecyclesInstance(t *testing.T) {
	f := newHits(t)

	h, err := f.CreatePayload(10, 1, 1, payload.SourceID(-5), 0x1, 0)
	assert.Nil(t, h)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))

	stats := f.Stats()
	assert.Equal(t, int64(1), stats.Allocated)
	assert.Equal(t, int64(0), stats.InUse)
	assert.Equal(t, int64(1), stats.Idle)

	// the rejected instance comes back clean
	h = mustHit(t, f, 99, 0x2)
	assert.Equal(t, payload.UTCTime(99), h.Time)
	assert.Equal(t, int64(1), f.Stats().Hits)
	h.Dispose()
}

func TestSimpleHitCopy(t *testing.T) {
	f := newHits(t)
	orig := mustHit(t, f, 1234, 0xabc)

	cp, err := f.Copy(orig)
	require.NoError(t, err)

	hit, ok := cp.(*payload.SimpleHit)
	require.True(t, ok)
	assert.NotSame(t, orig, hit)
	assert.Equal(t, orig.Time, hit.Time)
	assert.Equal(t, orig.DOM, hit.DOM)

	orig.Dispose()
	assert.True(t, hit.InUse())
	assert.Equal(t, payload.UTCTime(1234), hit.Time)
	hit.Dispose()

	_, err = f.Copy(orig)
	assert.True(t, errors.IsType(err, errors.ErrorTypeOwnership))
}

func TestSimpleHitCopyMatchesDeepCopy(t *testing.T) {
	f := newHits(t)
	orig, err := f.CreatePayload(4321, 3, 77, hub, 0xdef, 5)
	require.NoError(t, err)
	defer orig.Dispose()

	viaFactory, err := f.Copy(orig)
	require.NoError(t, err)
	defer viaFactory.Dispose()
	viaPayload, err := orig.DeepCopy()
	require.NoError(t, err)
	defer viaPayload.Dispose()

	a, b := viaFactory.(*payload.SimpleHit), viaPayload.(*payload.SimpleHit)
	assert.Equal(t, b.Time, a.Time)
	assert.Equal(t, b.TriggerType, a.TriggerType)
	assert.Equal(t, b.ConfigID, a.ConfigID)
	assert.Equal(t, b.Source, a.Source)
	assert.Equal(t, b.DOM, a.DOM)
	assert.Equal(t, b.TriggerMode, a.TriggerMode)
	assert.Equal(t, int64(3), f.Stats().InUse)
}

func TestSimpleHitCopyKindMismatch(t *testing.T) {
	f := newHits(t)
	beacons := NewBeaconFactory(nil, nil, zaptest.NewLogger(t))

	b, err := beacons.CreatePayload(1, hub, 0x1, -1, 1, 0)
	require.NoError(t, err)
	defer b.Dispose()

	_, err = f.Copy(b)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))

	_, err = f.Copy(nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))
}

func TestSimpleHitExhaustion(t *testing.T) {
	f := newHits(t, pool.WithMaxLive(1))

	h := mustHit(t, f, 1, 0x1)
	_, err := f.CreatePayload(2, 1, 1, hub, 0x2, 0)
	assert.True(t, errors.IsType(err, errors.ErrorTypeResourceExhausted))
	assert.True(t, errors.IsFatal(err))

	h.Dispose()
	h = mustHit(t, f, 3, 0x3)
	h.Dispose()
}
