package pool

import "sync/atomic"

const (
	leaseIdle uint32 = iota
	leaseOwned
)

// Lease records whether a pooled instance is owned by a caller or idle in
// its pool. Embed it in every type stored in a Pool:
//
//	type BeaconHit struct {
//	    pool.Lease
//	    ...
//	}
//
// A Lease must not be copied after first use.
type Lease struct {
	state atomic.Uint32
}

// InUse reports whether the instance is currently owned by a caller.
func (l *Lease) InUse() bool {
	return l.state.Load() == leaseOwned
}

func (l *Lease) lease() *Lease { return l }

func (l *Lease) acquire() bool {
	return l.state.CompareAndSwap(leaseIdle, leaseOwned)
}

func (l *Lease) release() bool {
	return l.state.CompareAndSwap(leaseOwned, leaseIdle)
}
