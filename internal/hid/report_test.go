package hid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name     string
		buttons  Buttons
		hat      Hat
		axes     Axes
		expected Report
	}{
		{
			name:     "A and Start, hat right, full right",
			buttons:  Buttons(0).Set(0, true).Set(11, true),
			hat:      HatRight,
			axes:     Axes{X: 127, Y: 0},
			expected: Report{0x01, 0x08, 0x03, 0x7F, 0x00},
		},
		{
			name:     "idle report is all zero",
			expected: Report{0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:     "negative axes use two's complement",
			hat:      HatUpLeft,
			axes:     Axes{X: -127, Y: -127},
			expected: Report{0x00, 0x00, 0x08, 0x81, 0x81},
		},
		{
			name:     "padding bits above button 12 are dropped",
			buttons:  Buttons(0xFFFF),
			expected: Report{0xFF, 0x0F, 0x00, 0x00, 0x00},
		},
		{
			name:     "out of range hat encodes centered",
			hat:      Hat(9),
			expected: Report{0x00, 0x00, 0x00, 0x00, 0x00},
		},
		{
			name:     "-128 is clamped to the logical minimum",
			axes:     Axes{X: -128, Y: 5},
			expected: Report{0x00, 0x00, 0x00, 0x81, 0x05},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.buttons, tt.hat, tt.axes)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.expected[:], got.Bytes())
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	s := State{Buttons: Buttons(0x0C03), Hat: HatDownLeft, Axes: Axes{X: -127, Y: 127}}
	first := EncodeState(s)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, EncodeState(s), "encoding MUST be deterministic")
	}
}

func TestDecode(t *testing.T) {
	r := Report{0x03, 0xFC, 0xF6, 0x7F, 0x81}
	s := Decode(r)

	assert.Equal(t, []int{0, 1, 10, 11}, s.Buttons.Positions(), "padding bits MUST be ignored")
	assert.Equal(t, HatDownLeft, s.Hat, "upper hat nibble MUST be ignored")
	assert.Equal(t, Axes{X: 127, Y: -127}, s.Axes)
}

func TestParseReport(t *testing.T) {
	r, err := ParseReport([]byte{0x01, 0x08, 0x03, 0x7F, 0x00})
	require.NoError(t, err)
	assert.Equal(t, "[0x01, 0x08, 0x03, 0x7F, 0x00]", r.String())

	_, err = ParseReport([]byte{0x01})
	assert.EqualError(t, err, "input report must be 5 bytes, got 1")
}

func TestButtons(t *testing.T) {
	var b Buttons
	b = b.Set(3, true).Set(12, true).Set(-1, true)
	assert.True(t, b.Pressed(3))
	assert.False(t, b.Pressed(12), "positions beyond 11 MUST be ignored")
	assert.Equal(t, Buttons(1<<3), b)

	b = b.Set(3, false)
	assert.Equal(t, Buttons(0), b)
}

func TestHatString(t *testing.T) {
	assert.Equal(t, "CENTERED", HatCentered.String())
	assert.Equal(t, "DOWN-RIGHT", HatDownRight.String())
	assert.Equal(t, "UP-LEFT", HatUpLeft.String())
	assert.Equal(t, "UNKNOWN", Hat(12).String())
}
