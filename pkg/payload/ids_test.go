package payload

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceID(t *testing.T) {
	hub := NewSourceID(StringHubID, 21)

	assert.Equal(t, SourceID(12021), hub)
	assert.Equal(t, StringHubID, hub.Type())
	assert.Equal(t, 21, hub.Number())
	assert.True(t, hub.Valid())
	assert.Equal(t, "stringHub#21", hub.String())
	assert.Equal(t, "inIceTrigger#0", InIceTriggerID.String())

	bogus := SourceID(99123)
	assert.False(t, bogus.Valid())
	assert.Equal(t, "unknown#99123", bogus.String())
}

func TestDOMID(t *testing.T) {
	dom, err := ParseDOMID("0123456789ab")
	require.NoError(t, err)
	assert.Equal(t, DOMID(0x0123456789ab), dom)
	assert.Equal(t, "0123456789ab", dom.String())
	assert.True(t, dom.Valid())

	assert.False(t, DOMID(0).Valid())
	assert.False(t, DOMID(1<<48).Valid())

	_, err = ParseDOMID("1000000000000")
	assert.Error(t, err)
	_, err = ParseDOMID("xyz")
	assert.Error(t, err)
}

func TestUTCTime(t *testing.T) {
	a := UTCTime(25_000_000_001)
	b := UTCTime(5)

	assert.Equal(t, "2.5000000001", a.String())
	assert.Equal(t, int64(24_999_999_996), a.Sub(b))
	assert.True(t, b.Before(a))
	assert.False(t, a.Before(a))
}

func TestIdentifierDeepCopy(t *testing.T) {
	var (
		src DeepCopier[SourceID] = NewSourceID(StringHubID, 3)
		dom DeepCopier[DOMID]    = DOMID(0xabc)
		utc DeepCopier[UTCTime]  = UTCTime(77)
	)
	assert.Equal(t, SourceID(12003), src.DeepCopy())
	assert.Equal(t, DOMID(0xabc), dom.DeepCopy())
	assert.Equal(t, UTCTime(77), utc.DeepCopy())
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "simpleHit", KindSimpleHit.String())
	assert.Equal(t, "beaconHit", KindBeaconHit.String())
	assert.Equal(t, "triggerRequest", KindTriggerRequest.String())
	assert.Equal(t, "unknown", Kind(200).String())
	assert.Len(t, Kinds(), 3)
}
