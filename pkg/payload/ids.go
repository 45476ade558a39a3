package payload

import (
	"fmt"
	"strconv"
)

// DeepCopier is implemented by value objects embedded in payloads.
type DeepCopier[T any] interface {
	// DeepCopy returns a copy sharing no mutable storage with the receiver.
	DeepCopy() T
}

// SourceID identifies the DAQ component that produced a payload. The
// thousands digit selects the component type and the remainder its number,
// so 12021 is stringHub#21.
type SourceID int32

const (
	InIceTriggerID  SourceID = 4000
	IceTopTriggerID SourceID = 5000
	GlobalTriggerID SourceID = 6000
	EventBuilderID  SourceID = 7000
	StringHubID     SourceID = 12000
	SimHubID        SourceID = 13000
)

var componentNames = map[SourceID]string{
	InIceTriggerID:  "inIceTrigger",
	IceTopTriggerID: "iceTopTrigger",
	GlobalTriggerID: "globalTrigger",
	EventBuilderID:  "eventBuilder",
	StringHubID:     "stringHub",
	SimHubID:        "simHub",
}

// NewSourceID builds the id of component number num of the given type.
func NewSourceID(base SourceID, num int) SourceID {
	return base + SourceID(num)
}

// Type returns the component-type base of the id.
func (s SourceID) Type() SourceID {
	return s / 1000 * 1000
}

// Number returns the component number within its type.
func (s SourceID) Number() int {
	return int(s % 1000)
}

// Valid reports whether the id names a known component type.
func (s SourceID) Valid() bool {
	_, ok := componentNames[s.Type()]
	return ok
}

// DeepCopy implements DeepCopier.
func (s SourceID) DeepCopy() SourceID { return s }

func (s SourceID) String() string {
	name, ok := componentNames[s.Type()]
	if !ok {
		return "unknown#" + strconv.Itoa(int(s))
	}
	return name + "#" + strconv.Itoa(s.Number())
}

// DOMID is a DOM mainboard identifier, a 48-bit value.
type DOMID uint64

const domIDMask = 1<<48 - 1

// ParseDOMID parses the 12 hex digit form used in geometry files.
func ParseDOMID(s string) (DOMID, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, err
	}
	if v&^domIDMask != 0 {
		return 0, fmt.Errorf("DOM id %s exceeds 48 bits", s)
	}
	return DOMID(v), nil
}

// Valid reports whether the id is non-zero and fits in 48 bits.
func (d DOMID) Valid() bool {
	return d != 0 && uint64(d)&^domIDMask == 0
}

// DeepCopy implements DeepCopier.
func (d DOMID) DeepCopy() DOMID { return d }

func (d DOMID) String() string {
	return fmt.Sprintf("%012x", uint64(d))
}

// UTCTime is a DAQ timestamp in tenths of nanoseconds since the start of
// the year.
type UTCTime int64

const ticksPerSecond = 10_000_000_000

// DeepCopy implements DeepCopier.
func (t UTCTime) DeepCopy() UTCTime { return t }

// Sub returns t-o in DAQ ticks.
func (t UTCTime) Sub(o UTCTime) int64 {
	return int64(t - o)
}

// Before reports whether t precedes o.
func (t UTCTime) Before(o UTCTime) bool {
	return t < o
}

func (t UTCTime) String() string {
	secs := int64(t) / ticksPerSecond
	frac := int64(t) % ticksPerSecond
	if frac < 0 {
		frac = -frac
	}
	return fmt.Sprintf("%d.%010d", secs, frac)
}
