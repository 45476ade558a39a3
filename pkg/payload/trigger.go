package payload

import (
	"github.com/dglo/payload-sub005/pkg/errors"
	"github.com/dglo/payload-sub005/pkg/pool"
)

// TriggerRequest is a composite payload: a trigger decision covering a time
// window, together with the ordered payloads that caused it. The request
// exclusively owns its children; recycling the request disposes them.
type TriggerRequest struct {
	pool.Lease
	origin *pool.Pool[*TriggerRequest]
	seq    SequenceCopier

	UID         int32
	TriggerType int32
	ConfigID    int32
	Source      SourceID
	FirstTime   UTCTime
	LastTime    UTCTime

	children []Payload
}

// NewTriggerRequestPool creates the pool trigger requests are drawn from.
// seq duplicates and discards the children of every request in the pool.
func NewTriggerRequestPool(seq SequenceCopier, opts ...pool.Option) *pool.Pool[*TriggerRequest] {
	return pool.New(KindTriggerRequest.String(), func(p *pool.Pool[*TriggerRequest]) *TriggerRequest {
		return &TriggerRequest{origin: p, seq: seq}
	}, opts...)
}

// Init populates a freshly acquired request. On success the request takes
// ownership of children; on failure children are left untouched and still
// belong to the caller.
func (r *TriggerRequest) Init(uid, trigType, cfgID int32, src SourceID, first, last UTCTime, children []Payload) error {
	switch {
	case !src.Valid():
		return errInvalid(KindTriggerRequest, "unknown source").WithDetail("source", int32(src))
	case first < 0 || last.Before(first):
		return errInvalid(KindTriggerRequest, "bad time window").
			WithDetail("first", int64(first)).
			WithDetail("last", int64(last))
	}

	r.UID = uid
	r.TriggerType = trigType
	r.ConfigID = cfgID
	r.Source = src.DeepCopy()
	r.FirstTime = first
	r.LastTime = last
	r.children = children
	return nil
}

func (r *TriggerRequest) Kind() Kind       { return KindTriggerRequest }
func (r *TriggerRequest) UTCTime() UTCTime { return r.FirstTime }

// Payloads returns the ordered children. The slice is owned by the request.
func (r *TriggerRequest) Payloads() []Payload {
	return r.children
}

// Len returns the number of children.
func (r *TriggerRequest) Len() int {
	return len(r.children)
}

// CopyRequest returns a typed deep copy of r and all its children.
func (r *TriggerRequest) CopyRequest() (*TriggerRequest, error) {
	if !r.InUse() {
		return nil, errNotOwned(KindTriggerRequest)
	}
	if r.seq == nil {
		return nil, errors.New(errors.ErrorTypeInternal, "trigger request has no sequence copier")
	}

	var kids []Payload
	if len(r.children) > 0 {
		var err error
		if kids, err = r.seq.DeepCopySequence(r.children); err != nil {
			return nil, err
		}
	}

	c, err := r.origin.Acquire()
	if err != nil {
		r.seq.RecycleSequence(kids)
		return nil, err
	}
	c.UID = r.UID
	c.TriggerType = r.TriggerType
	c.ConfigID = r.ConfigID
	c.Source = r.Source.DeepCopy()
	c.FirstTime = r.FirstTime
	c.LastTime = r.LastTime
	c.children = kids
	return c, nil
}

// DeepCopy implements Payload.
func (r *TriggerRequest) DeepCopy() (Payload, error) {
	c, err := r.CopyRequest()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Recycle disposes every child and clears all fields.
func (r *TriggerRequest) Recycle() {
	if len(r.children) > 0 {
		if r.seq != nil {
			r.seq.RecycleSequence(r.children)
		} else {
			for _, c := range r.children {
				if c != nil {
					c.Dispose()
				}
			}
		}
	}
	r.children = nil
	r.UID = 0
	r.TriggerType = 0
	r.ConfigID = 0
	r.Source = 0
	r.FirstTime = 0
	r.LastTime = 0
}

// Dispose implements Payload.
func (r *TriggerRequest) Dispose() {
	mustOwn(r, KindTriggerRequest)
	r.Recycle()
	if r.origin != nil {
		r.origin.Release(r)
	}
}
