//go:build test

package testutils

import (
	"sync"

	"github.com/srg/blepad/internal/controller"
)

// PinWrite records one WritePin call.
type PinWrite struct {
	Pin  controller.Pin
	High bool
}

// FakeIO is a timing-free digital I/O collaborator. Reads of the data pin are served
// from a queue of levels; when the queue is empty the line idles high (released).
type FakeIO struct {
	mu         sync.Mutex
	levels     []bool
	writes     []PinWrite
	reads      int
	delays     []uint32
	pinLevels  map[controller.Pin]bool
	controller *ShiftRegister
}

// NewFakeIO creates a FakeIO with every line idle high.
func NewFakeIO() *FakeIO {
	return &FakeIO{pinLevels: make(map[controller.Pin]bool)}
}

// QueueLevels appends raw electrical levels for the next data reads.
func (f *FakeIO) QueueLevels(levels ...bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels = append(f.levels, levels...)
}

// AttachController wires a simulated shift register that reacts to latch/clock writes.
func (f *FakeIO) AttachController(sr *ShiftRegister) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controller = sr
}

func (f *FakeIO) WritePin(pin controller.Pin, high bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, PinWrite{Pin: pin, High: high})
	f.pinLevels[pin] = high
	if f.controller != nil {
		f.controller.edge(pin, high)
	}
}

func (f *FakeIO) ReadPin(pin controller.Pin) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.controller != nil && pin == f.controller.Pins.Data {
		return f.controller.level()
	}
	if len(f.levels) == 0 {
		return true
	}
	l := f.levels[0]
	f.levels = f.levels[1:]
	return l
}

func (f *FakeIO) DelayMicroseconds(us uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays = append(f.delays, us)
}

// Writes returns a copy of the recorded pin writes.
func (f *FakeIO) Writes() []PinWrite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]PinWrite(nil), f.writes...)
}

// WritesTo returns the levels written to one pin, in order.
func (f *FakeIO) WritesTo(pin controller.Pin) []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bool
	for _, w := range f.writes {
		if w.Pin == pin {
			out = append(out, w.High)
		}
	}
	return out
}

// Level returns the last level written to pin (high if never written).
func (f *FakeIO) Level(pin controller.Pin) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	l, ok := f.pinLevels[pin]
	return !ok || l
}

// Reads returns the number of ReadPin calls.
func (f *FakeIO) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// Delays returns the recorded delays.
func (f *FakeIO) Delays() []uint32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint32(nil), f.delays...)
}

// Reset clears recorded calls.
func (f *FakeIO) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = nil
	f.delays = nil
	f.reads = 0
}

// ShiftRegister simulates the controller's 4021: a latch falling edge captures the
// pressed buttons, each clock rising edge shifts to the next bit.
type ShiftRegister struct {
	Pins    controller.Pins
	pressed controller.ButtonVector
	latched controller.ButtonVector
	bit     int
	latchHi bool
}

// NewShiftRegister creates a simulated controller on pins.
func NewShiftRegister(pins controller.Pins) *ShiftRegister {
	return &ShiftRegister{Pins: pins}
}

// Press sets the buttons currently held.
func (s *ShiftRegister) Press(v controller.ButtonVector) {
	s.pressed = v
}

func (s *ShiftRegister) edge(pin controller.Pin, high bool) {
	switch pin {
	case s.Pins.Latch:
		if s.latchHi && !high {
			s.latched = s.pressed
			s.bit = 0
		}
		s.latchHi = high
	case s.Pins.Clock:
		if high {
			s.bit++
		}
	}
}

// level is active low; after the eighth bit the 4021 shifts in high from its serial input.
func (s *ShiftRegister) level() bool {
	if s.bit >= controller.Count {
		return true
	}
	return !s.latched[s.bit]
}
