package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/dglo/payload-sub005/pkg/domgeo"
	"github.com/dglo/payload-sub005/pkg/errors"
	"github.com/dglo/payload-sub005/pkg/hitrec"
	"github.com/dglo/payload-sub005/pkg/payload"
)

type geometry map[payload.DOMID]domgeo.DeployedDOM

func (g geometry) Lookup(dom payload.DOMID) (domgeo.DeployedDOM, bool) {
	d, ok := g[dom]
	return d, ok
}

var deployed = geometry{
	0xa: {DOM: 0xa, StringNum: 21, Position: 3},
}

func TestBeaconReuse(t *testing.T) {
	f := NewBeaconFactory(nil, deployed, zaptest.NewLogger(t))

	first, err := f.CreatePayload(1000, hub, 0xa, 7, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, payload.UTCTime(1000), first.Time)
	assert.Equal(t, payload.DOMID(0xa), first.DOM)
	first.Dispose()

	second, err := f.CreatePayload(2000, payload.NewSourceID(payload.StringHubID, 5), 0xb, -1, 0, 0)
	require.NoError(t, err)
	defer second.Dispose()

	assert.Same(t, first, second)
	assert.Equal(t, payload.UTCTime(2000), second.Time)
	assert.Equal(t, payload.DOMID(0xb), second.DOM)
	assert.Equal(t, int16(-1), second.ChannelID)
	assert.Equal(t, int16(0), second.TriggerMode)
	assert.Equal(t, uint8(0), second.LCMode)
	assert.Equal(t, 5, second.Source.Number())

	stats := f.Stats()
	assert.Equal(t, int64(1), stats.Allocated)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestBeaconFromEngineering(t *testing.T) {
	f := NewBeaconFactory(nil, deployed, zaptest.NewLogger(t))

	b, err := f.CreateFromEngineering(hitrec.EngineeringRecord{
		DOM:          0xa,
		UTC:          42,
		TriggerFlags: 0x11,
	}, hub)
	require.NoError(t, err)
	defer b.Dispose()

	assert.Equal(t, int16(21*64+2), b.ChannelID)
	assert.Equal(t, int16(hitrec.ModeForced), b.TriggerMode)
	assert.Equal(t, uint8(1), b.LCMode)

	_, err = f.CreateFromEngineering(hitrec.EngineeringRecord{DOM: 0xa, UTC: 1, TriggerFlags: hitrec.ModeSPE}, hub)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))
	assert.Contains(t, err.Error(), "not a beacon")
}

func TestBeaconFromRecord(t *testing.T) {
	f := NewBeaconFactory(nil, deployed, zaptest.NewLogger(t))

	b, err := f.CreateFromRecord(hitrec.DeltaRecord{DOM: 0xa, UTC: 64, TriggerMode: 2, LCMode: 3}, hub)
	require.NoError(t, err)
	assert.Equal(t, payload.UTCTime(64), b.Time)
	assert.Equal(t, int16(21*64+2), b.ChannelID)
	assert.Equal(t, int16(2), b.TriggerMode)
	assert.Equal(t, uint8(3), b.LCMode)
	b.Dispose()

	_, err = f.CreateFromRecord(hitrec.DeltaRecord{DOM: 0xa, UTC: 64, LCMode: 5}, hub)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))
	assert.Equal(t, int64(0), f.Stats().InUse)
	assert.Equal(t, int64(1), f.Stats().Allocated)
}

func TestBeaconUndeployedDOM(t *testing.T) {
	f := NewBeaconFactory(nil, deployed, zaptest.NewLogger(t))

	b, err := f.CreateFromEngineering(hitrec.EngineeringRecord{DOM: 0xff, UTC: 1, TriggerFlags: hitrec.ModeForced}, hub)
	require.NoError(t, err)
	assert.Equal(t, int16(-1), b.ChannelID)
	b.Dispose()

	noGeom := NewBeaconFactory(nil, nil, nil)
	b, err = noGeom.CreateFromEngineering(hitrec.EngineeringRecord{DOM: 0xa, UTC: 1, TriggerFlags: hitrec.ModeForced}, hub)
	require.NoError(t, err)
	assert.Equal(t, int16(-1), b.ChannelID)
	b.Dispose()
}

func TestBeaconFromHit(t *testing.T) {
	hits := newHits(t)
	f := NewBeaconFactory(nil, deployed, zaptest.NewLogger(t))

	h := mustHit(t, hits, 555, 0xa)
	b, err := f.CreateFromHit(h)
	require.NoError(t, err)

	assert.Equal(t, h.Time, b.Time)
	assert.Equal(t, h.DOM, b.DOM)
	assert.Equal(t, int16(21*64+2), b.ChannelID)
	assert.True(t, h.InUse())

	b.Dispose()
	h.Dispose()

	_, err = f.CreateFromHit(h)
	assert.True(t, errors.IsType(err, errors.ErrorTypeOwnership))

	_, err = f.CreateFromHit(nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))
}

func TestBeaconInvalidInputRecyclesInstance(t *testing.T) {
	f := NewBeaconFactory(nil, nil, zaptest.NewLogger(t))

	_, err := f.CreatePayload(1, hub, 0x1, -2, 0, 0)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))

	stats := f.Stats()
	assert.Equal(t, int64(0), stats.InUse)
	assert.Equal(t, int64(1), stats.Idle)
}

func TestBeaconCopy(t *testing.T) {
	f := NewBeaconFactory(nil, nil, zaptest.NewLogger(t))

	b, err := f.CreatePayload(77, hub, 0x3, 12, 1, 3)
	require.NoError(t, err)

	cp, err := f.Copy(b)
	require.NoError(t, err)
	c := cp.(*payload.BeaconHit)
	assert.NotSame(t, b, c)
	assert.Equal(t, int16(12), c.ChannelID)
	assert.Equal(t, uint8(3), c.LCMode)

	b.Dispose()
	assert.Equal(t, payload.UTCTime(77), c.Time)
	c.Dispose()
	assert.Equal(t, int64(0), f.Stats().InUse)
}
