package pool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dglo/payload-sub005/pkg/errors"
)

type testItem struct {
	Lease
	id    int
	label string
	data  []int
	pool  *Pool[*testItem]
}

func (it *testItem) Recycle() {
	it.id = 0
	it.label = ""
	it.data = it.data[:0]
}

func (it *testItem) Dispose() {
	it.Recycle()
	it.pool.Release(it)
}

func newTestPool(opts ...Option) *Pool[*testItem] {
	return New("testItem", func(p *Pool[*testItem]) *testItem {
		return &testItem{data: make([]int, 0, 4), pool: p}
	}, opts...)
}

func TestPoolRoundTripReturnsResetInstance(t *testing.T) {
	p := newTestPool()

	it, err := p.Acquire()
	require.NoError(t, err)
	assert.True(t, it.InUse())

	it.id = 42
	it.label = "A"
	it.data = append(it.data, 1, 2, 3)
	it.Dispose()
	assert.False(t, it.InUse())

	again, err := p.Acquire()
	require.NoError(t, err)
	assert.Same(t, it, again)
	assert.Zero(t, again.id)
	assert.Empty(t, again.label)
	assert.Empty(t, again.data)
	assert.Equal(t, 4, cap(again.data))
}

func TestPoolStats(t *testing.T) {
	p := newTestPool()

	a, err := p.Acquire()
	require.NoError(t, err)
	b, err := p.Acquire()
	require.NoError(t, err)
	a.Dispose()

	s := p.Stats()
	assert.Equal(t, "testItem", s.Kind)
	assert.Equal(t, int64(2), s.Allocated)
	assert.Equal(t, int64(2), s.Live)
	assert.Equal(t, int64(1), s.InUse)
	assert.Equal(t, int64(1), s.Idle)
	assert.Equal(t, int64(2), s.Misses)
	assert.Equal(t, int64(0), s.Hits)

	c, err := p.Acquire()
	require.NoError(t, err)
	assert.Same(t, a, c)
	assert.Equal(t, int64(1), p.Stats().Hits)

	b.Dispose()
	c.Dispose()
	assert.Equal(t, 2, p.Idle())
}

func TestPoolPrealloc(t *testing.T) {
	p := newTestPool(WithPrealloc(3))
	assert.Equal(t, 3, p.Idle())

	_, err := p.Acquire()
	require.NoError(t, err)
	assert.Equal(t, 2, p.Idle())
	assert.Equal(t, int64(3), p.Stats().Allocated)
}

func TestPoolMaxLiveExhaustion(t *testing.T) {
	p := newTestPool(WithMaxLive(2))

	a, err := p.Acquire()
	require.NoError(t, err)
	_, err = p.Acquire()
	require.NoError(t, err)

	_, err = p.Acquire()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeResourceExhausted))

	a.Dispose()
	got, err := p.Acquire()
	require.NoError(t, err)
	assert.Same(t, a, got)
}

func TestPoolMaxIdleDropsSurplus(t *testing.T) {
	p := newTestPool(WithMaxIdle(1))

	a, _ := p.Acquire()
	b, _ := p.Acquire()
	a.Dispose()
	b.Dispose()

	s := p.Stats()
	assert.Equal(t, int64(1), s.Idle)
	assert.Equal(t, int64(1), s.Dropped)
	assert.Equal(t, int64(1), s.Live)
}

func TestPoolDoubleReleasePanics(t *testing.T) {
	p := newTestPool()

	it, err := p.Acquire()
	require.NoError(t, err)
	it.Dispose()

	assert.Panics(t, func() { it.Dispose() })
	assert.Equal(t, 1, p.Idle())
}

func TestPoolClose(t *testing.T) {
	p := newTestPool(WithPrealloc(2))
	held, err := p.Acquire()
	require.NoError(t, err)

	p.Close()
	assert.Equal(t, 0, p.Idle())

	_, err = p.Acquire()
	assert.True(t, errors.IsType(err, errors.ErrorTypeOwnership))

	held.Dispose()
	s := p.Stats()
	assert.Equal(t, int64(0), s.Idle)
	assert.Equal(t, int64(0), s.InUse)
	assert.Equal(t, int64(0), s.Live)
}

func TestPoolConcurrentAcquireNeverDuplicates(t *testing.T) {
	p := newTestPool(WithPrealloc(16))

	const (
		workers = 8
		rounds  = 500
	)

	var (
		mu    sync.Mutex
		owned = make(map[*testItem]int)
		dupes int
		wg    sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				it, err := p.Acquire()
				if err != nil {
					t.Error(err)
					return
				}

				mu.Lock()
				if _, ok := owned[it]; ok {
					dupes++
				}
				owned[it] = worker
				mu.Unlock()

				it.id = worker

				mu.Lock()
				delete(owned, it)
				mu.Unlock()

				it.Dispose()
			}
		}(w)
	}
	wg.Wait()

	assert.Zero(t, dupes)
	s := p.Stats()
	assert.Equal(t, int64(0), s.InUse)
	assert.Equal(t, s.Live, s.Idle)
}
