package hid

import (
	"fmt"
	"strings"
)

// ButtonCount is the number of button usages declared by the report descriptor.
const ButtonCount = 12

// buttonMask covers the 12 declared usages; the top 4 bits of the second byte are padding.
const buttonMask uint16 = 1<<ButtonCount - 1

// Buttons is a 12-bit button set. Bit i carries HID usage Button i+1.
type Buttons uint16

// Set switches button position i on or off. Positions outside 0..11 are ignored.
func (b Buttons) Set(i int, on bool) Buttons {
	if i < 0 || i >= ButtonCount {
		return b
	}
	if on {
		return b | Buttons(1<<i)
	}
	return b &^ Buttons(1<<i)
}

// Pressed reports whether button position i is on.
func (b Buttons) Pressed(i int) bool {
	if i < 0 || i >= ButtonCount {
		return false
	}
	return b&Buttons(1<<i) != 0
}

// Positions returns the pressed button positions in ascending order.
func (b Buttons) Positions() []int {
	var out []int
	for i := 0; i < ButtonCount; i++ {
		if b.Pressed(i) {
			out = append(out, i)
		}
	}
	return out
}

// Hat is a hat-switch value: 0 centered, 1..8 clockwise from up.
type Hat uint8

const (
	HatCentered Hat = iota
	HatUp
	HatUpRight
	HatRight
	HatDownRight
	HatDown
	HatDownLeft
	HatLeft
	HatUpLeft
)

var hatNames = [...]string{
	HatCentered:  "CENTERED",
	HatUp:        "UP",
	HatUpRight:   "UP-RIGHT",
	HatRight:     "RIGHT",
	HatDownRight: "DOWN-RIGHT",
	HatDown:      "DOWN",
	HatDownLeft:  "DOWN-LEFT",
	HatLeft:      "LEFT",
	HatUpLeft:    "UP-LEFT",
}

// Clamp maps out-of-range values to HatCentered.
func (h Hat) Clamp() Hat {
	if h > HatUpLeft {
		return HatCentered
	}
	return h
}

func (h Hat) String() string {
	if h > HatUpLeft {
		return "UNKNOWN"
	}
	return hatNames[h]
}

// AxisMax is the logical maximum of each axis; the logical minimum is -AxisMax.
const AxisMax = 127

// Axes holds the signed X/Y pointer values.
type Axes struct {
	X int8
	Y int8
}

// Clamp pulls -128 into the declared logical range.
func (a Axes) Clamp() Axes {
	return Axes{X: clampAxis(a.X), Y: clampAxis(a.Y)}
}

func clampAxis(v int8) int8 {
	if v < -AxisMax {
		return -AxisMax
	}
	return v
}

// State is one decoded sample of the gamepad.
type State struct {
	Buttons Buttons
	Hat     Hat
	Axes    Axes
}

// ReportSize is the input report payload length, excluding the report ID.
const ReportSize = 5

// Report is the input report payload in descriptor order:
// buttons 1-8, buttons 9-12 + padding, hat + padding, X, Y.
type Report [ReportSize]byte

// Encode packs buttons, hat and axes into an input report.
func Encode(b Buttons, h Hat, a Axes) Report {
	b &= Buttons(buttonMask)
	a = a.Clamp()
	return Report{
		byte(b),
		byte(b >> 8),
		byte(h.Clamp()) & 0x0F,
		byte(a.X),
		byte(a.Y),
	}
}

// EncodeState packs a State.
func EncodeState(s State) Report {
	return Encode(s.Buttons, s.Hat, s.Axes)
}

// Decode unpacks a report. Padding bits are discarded.
func Decode(r Report) State {
	return State{
		Buttons: Buttons(uint16(r[0])|uint16(r[1])<<8) & Buttons(buttonMask),
		Hat:     Hat(r[2] & 0x0F).Clamp(),
		Axes:    Axes{X: int8(r[3]), Y: int8(r[4])},
	}
}

// ParseReport copies a 5-byte payload into a Report.
func ParseReport(b []byte) (Report, error) {
	var r Report
	if len(b) != ReportSize {
		return r, fmt.Errorf("input report must be %d bytes, got %d", ReportSize, len(b))
	}
	copy(r[:], b)
	return r, nil
}

// Bytes returns a copy of the payload suitable for a notify call.
func (r Report) Bytes() []byte {
	out := make([]byte, ReportSize)
	copy(out, r[:])
	return out
}

// String formats the payload as "[0x01, 0x08, 0x03, 0x7F, 0x00]".
func (r Report) String() string {
	parts := make([]string, len(r))
	for i, v := range r {
		parts[i] = fmt.Sprintf("0x%02X", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
