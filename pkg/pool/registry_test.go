package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dglo/payload-sub005/pkg/errors"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	a := newTestPool()
	b := New("another", func(p *Pool[*testItem]) *testItem {
		return &testItem{pool: p}
	}, WithPrealloc(2))

	require.NoError(t, reg.Register(a))
	require.NoError(t, reg.Register(b))

	err := reg.Register(newTestPool())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	got, ok := reg.Lookup("testItem")
	require.True(t, ok)
	assert.Equal(t, "testItem", got.Kind())

	it, err := a.Acquire()
	require.NoError(t, err)

	stats := reg.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, "another", stats[0].Kind)
	assert.Equal(t, int64(2), stats[0].Idle)
	assert.Equal(t, "testItem", stats[1].Kind)
	assert.Equal(t, int64(1), reg.InUse())

	it.Dispose()
	assert.Equal(t, int64(0), reg.InUse())

	reg.Close()
	assert.Equal(t, 0, b.Idle())
}
