// Package controller reads an NES-style controller over its latch/clock/data
// shift-register interface.
//
// A read latches the parallel button inputs into the controller's 4021 shift
// register, then clocks the eight bits out one at a time on the data line. The
// lines are active-low: a low data level means the button is pressed.
//
// There is no debouncing; callers poll at a fixed cadence (10ms by default) and
// that interval is the only filtering applied.
package controller

// Pin identifies a digital line on the I/O collaborator.
type Pin int

// IO is the digital I/O collaborator used by the sampler.
type IO interface {
	WritePin(pin Pin, high bool)
	ReadPin(pin Pin) bool
	DelayMicroseconds(us uint32)
}

// Pins names the three controller lines.
type Pins struct {
	Clock Pin
	Latch Pin
	Data  Pin
}

const (
	// LatchPulseMicros is the minimum latch high time.
	LatchPulseMicros = 12
	// ClockHalfPeriodMicros is the hold time of each clock phase.
	ClockHalfPeriodMicros = 6
)

// Sampler performs strobe-and-shift reads. It keeps no state between reads.
type Sampler struct {
	io   IO
	pins Pins
}

// NewSampler creates a sampler on the given lines.
func NewSampler(io IO, pins Pins) *Sampler {
	return &Sampler{io: io, pins: pins}
}

// Pins returns the configured lines.
func (s *Sampler) Pins() Pins {
	return s.pins
}

// Sample latches the controller and shifts out all eight buttons.
func (s *Sampler) Sample() ButtonVector {
	var v ButtonVector

	s.io.WritePin(s.pins.Latch, true)
	s.io.DelayMicroseconds(LatchPulseMicros)
	s.io.WritePin(s.pins.Latch, false)

	for i := 0; i < Count; i++ {
		// active low
		v[i] = !s.io.ReadPin(s.pins.Data)

		s.io.WritePin(s.pins.Clock, true)
		s.io.DelayMicroseconds(ClockHalfPeriodMicros)
		s.io.WritePin(s.pins.Clock, false)
		s.io.DelayMicroseconds(ClockHalfPeriodMicros)
	}

	return v
}
