// Package hitrec holds the raw hit records handed to the payload factories
// by the splicer layer. The records are already decoded; this package only
// validates them and exposes the derived values the factories need.
package hitrec

import (
	"github.com/dglo/payload-sub005/pkg/errors"
)

const (
	domIDMask = 1<<48 - 1
	maxLCMode = 3
)

// Engineering-format trigger modes.
const (
	ModeTestPattern uint8 = iota
	ModeForced
	ModeSPE
	ModeFlasher
)

// DeltaRecord is the decoded header of a delta-compressed hit.
type DeltaRecord struct {
	DOM         uint64
	UTC         int64
	TriggerType int32
	ConfigID    int32
	TriggerMode int16
	LCMode      uint8
}

// Validate reports whether the record can be turned into a hit.
func (r DeltaRecord) Validate() error {
	if err := validateCommon(r.DOM, r.UTC); err != nil {
		return err
	}
	if r.LCMode > maxLCMode {
		return errors.New(errors.ErrorTypeInvalidInput, "bad local-coincidence mode").
			WithDetail("lc_mode", r.LCMode)
	}
	return nil
}

// EngineeringRecord is the decoded header of an engineering-format hit.
type EngineeringRecord struct {
	DOM          uint64
	UTC          int64
	ATWDChip     uint8
	TriggerFlags uint8
	ATWDSamples  [4]uint8
}

// TriggerMode returns the trigger mode encoded in the low bits of TriggerFlags.
func (r EngineeringRecord) TriggerMode() uint8 {
	return r.TriggerFlags & 0x0f
}

// LCMode returns the local-coincidence bits of TriggerFlags.
func (r EngineeringRecord) LCMode() uint8 {
	return r.TriggerFlags >> 4 & maxLCMode
}

// IsBeacon reports whether the hit was a forced (beacon) readout.
func (r EngineeringRecord) IsBeacon() bool {
	return r.TriggerMode() == ModeForced
}

// Validate reports whether the record can be turned into a hit.
func (r EngineeringRecord) Validate() error {
	if err := validateCommon(r.DOM, r.UTC); err != nil {
		return err
	}
	if r.TriggerMode() > ModeFlasher {
		return errors.New(errors.ErrorTypeInvalidInput, "unknown engineering trigger mode").
			WithDetail("mode", r.TriggerMode())
	}
	if r.ATWDChip > 1 {
		return errors.New(errors.ErrorTypeInvalidInput, "bad ATWD chip").
			WithDetail("chip", r.ATWDChip)
	}
	for ch, n := range r.ATWDSamples {
		switch n {
		case 0, 16, 32, 64, 128:
		default:
			return errors.New(errors.ErrorTypeInvalidInput, "bad ATWD sample count").
				WithDetail("channel", ch).
				WithDetail("samples", n)
		}
	}
	return nil
}

func validateCommon(dom uint64, utc int64) error {
	if dom == 0 || dom&^domIDMask != 0 {
		return errors.New(errors.ErrorTypeInvalidInput, "bad DOM id").WithDetail("dom", dom)
	}
	if utc < 0 {
		return errors.New(errors.ErrorTypeInvalidInput, "negative hit time").WithDetail("utc", utc)
	}
	return nil
}
