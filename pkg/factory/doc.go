// Package factory builds pooled payloads from raw inputs.
//
// Each payload kind has one factory that owns its pool. Composite factories,
// such as TriggerRequestFactory, delegate the construction and copying of
// their children to a Master, normally a Registry holding every factory.
// A failed construction never leaks: the partially built payload and any
// children made for it are returned to their pools before the error is
// reported.
package factory
