package hitrec

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dglo/payload-sub005/pkg/errors"
)

func TestDeltaRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		rec     DeltaRecord
		wantErr bool
	}{
		{"ok", DeltaRecord{DOM: 0x1234, UTC: 10}, false},
		{"zero dom", DeltaRecord{DOM: 0, UTC: 10}, true},
		{"wide dom", DeltaRecord{DOM: 1 << 50, UTC: 10}, true},
		{"negative time", DeltaRecord{DOM: 1, UTC: -1}, true},
		{"lc mode", DeltaRecord{DOM: 1, UTC: 1, LCMode: 3}, false},
		{"bad lc mode", DeltaRecord{DOM: 1, UTC: 1, LCMode: 4}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			if tt.wantErr {
				assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEngineeringRecordFlags(t *testing.T) {
	rec := EngineeringRecord{DOM: 1, TriggerFlags: 0x21}

	assert.Equal(t, ModeForced, rec.TriggerMode())
	assert.Equal(t, uint8(2), rec.LCMode())
	assert.True(t, rec.IsBeacon())

	rec.TriggerFlags = ModeSPE
	assert.False(t, rec.IsBeacon())
}

func TestEngineeringRecordValidate(t *testing.T) {
	good := EngineeringRecord{
		DOM:          0xabcdef,
		UTC:          5,
		TriggerFlags: ModeForced,
		ATWDSamples:  [4]uint8{128, 32, 0, 16},
	}
	assert.NoError(t, good.Validate())

	badMode := good
	badMode.TriggerFlags = 0x07
	assert.Error(t, badMode.Validate())

	badChip := good
	badChip.ATWDChip = 2
	assert.Error(t, badChip.Validate())

	badSamples := good
	badSamples.ATWDSamples[2] = 12
	err := badSamples.Validate()
	assert.True(t, errors.IsType(err, errors.ErrorTypeInvalidInput))

	badDOM := good
	badDOM.DOM = 0
	assert.Error(t, badDOM.Validate())
}
