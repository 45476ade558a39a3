// Package payload defines the pooled payloads that flow through the trigger
// pipeline and the identifier value types embedded in them.
//
// Every payload type embeds pool.Lease and keeps a reference to the pool it
// was drawn from, so Dispose always returns an instance to its own pool.
// Identifiers (SourceID, DOMID, UTCTime) are plain values: copying a payload
// copies them by value and never shares storage with the source.
//
// TriggerRequest is the composite kind. It owns an ordered sequence of child
// payloads and delegates copying and discarding them to a SequenceCopier,
// normally the composite factory that built it.
package payload
