// Package pool implements the per-kind object pools behind the payload
// lifecycle. Payloads flowing through the trigger pipeline are drawn from a
// pool, initialised, consumed and handed back, so the steady state allocates
// nothing per event.
//
// # Ownership
//
// Every pooled type embeds Lease, which records whether the instance is
// owned by a caller or idle. Pool.Acquire moves the lease to owned and
// Pool.Release moves it back, so an instance can never sit in the idle store
// twice and two callers can never be handed the same instance.
//
// Handle wraps an owned value for code that passes payloads between
// goroutines. Move is the ownership-transfer point and Release consumes the
// handle:
//
//	hit, err := hits.Acquire()
//	if err != nil {
//	    return err
//	}
//	h := pool.Own(hit)
//	out <- h.Move()
//
// # Pools are explicit
//
// There are no package-level pools. Each factory holds the pool it draws
// from, and a Registry gathers the pools of one process for statistics and
// teardown.
//
//	p := pool.New("beaconHit", newBeacon, pool.WithPrealloc(256))
//	reg := pool.NewRegistry()
//	_ = reg.Register(p)
package pool
