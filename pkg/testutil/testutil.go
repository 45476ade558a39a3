// Package testutil provides testing utilities for the payload packages
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/dglo/payload-sub005/pkg/pool"
)

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// AssertEventually asserts that a condition becomes true within the specified timeout.
// It checks the condition every 10ms until it succeeds or the timeout expires.
func AssertEventually(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("condition not met within %v: %s", timeout, msg)
}

// AssertDrained asserts that no pool has an instance handed out and that
// every live instance is back in its idle store.
func AssertDrained(t assert.TestingT, stats ...pool.Stats) bool {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}

	ok := true
	for _, s := range stats {
		ok = assert.Equal(t, int64(0), s.InUse, "pool %s has instances in use", s.Kind) && ok
		ok = assert.Equal(t, s.Live, s.Idle, "pool %s lost track of live instances", s.Kind) && ok
	}
	return ok
}

// PoolSuite is a base for test suites that exercise pooled payloads. Every
// test gets a fresh pool registry; after the test, each registered pool must
// be drained.
type PoolSuite struct {
	suite.Suite
	ctx    context.Context
	cancel context.CancelFunc

	Pools *pool.Registry
}

// SetupTest runs before each test in the suite
func (s *PoolSuite) SetupTest() {
	s.ctx, s.cancel = TestContext(s.T())
	s.Pools = pool.NewRegistry()
}

// TearDownTest runs after each test in the suite
func (s *PoolSuite) TearDownTest() {
	s.cancel()
	AssertDrained(s.T(), s.Pools.Stats()...)
	s.Pools.Close()
}

// Context returns the test context
func (s *PoolSuite) Context() context.Context {
	return s.ctx
}

// Logger returns a logger writing to the test output
func (s *PoolSuite) Logger() *zap.Logger {
	return TestLogger(s.T())
}

// Register adds sources to the suite's registry.
func (s *PoolSuite) Register(sources ...pool.Source) {
	for _, src := range sources {
		require.NoError(s.T(), s.Pools.Register(src))
	}
}
