package payload

import (
	"github.com/dglo/payload-sub005/pkg/errors"
)

// Payload is a unit of detector-event or control data flowing through the
// trigger pipeline. Every payload is drawn from a pool and must be disposed
// exactly once by whoever owns it last.
type Payload interface {
	// Kind returns the payload kind.
	Kind() Kind
	// UTCTime returns the payload timestamp.
	UTCTime() UTCTime
	// DeepCopy returns an independently owned duplicate drawn from the
	// same pool. It fails if the receiver is not owned or a pool is exhausted.
	DeepCopy() (Payload, error)
	// Recycle clears all fields. Calling it twice is the same as calling it once.
	Recycle()
	// Dispose recycles the payload and returns it to its pool. The caller
	// must not use the payload afterwards.
	Dispose()
	// InUse reports whether the payload is currently owned.
	InUse() bool
}

// SequenceCopier duplicates and discards ordered child sequences on behalf
// of composite payloads.
type SequenceCopier interface {
	DeepCopySequence(children []Payload) ([]Payload, error)
	RecycleSequence(children []Payload)
}

// mustOwn panics unless p is owned. Dispose checks it before recycling, so
// a stale reference cannot clear an instance sitting in the idle store.
func mustOwn(p interface{ InUse() bool }, k Kind) {
	if !p.InUse() {
		panic("payload: dispose of " + k.String() + " that is not in use")
	}
}

func errNotOwned(k Kind) error {
	return errors.New(errors.ErrorTypeOwnership, "payload is not owned").
		WithDetail("kind", k.String())
}

func errInvalid(k Kind, msg string) *errors.Error {
	return errors.New(errors.ErrorTypeInvalidInput, msg).
		WithDetail("kind", k.String())
}
