// Package indicator drives the status LED.
package indicator

import (
	"sync"

	"github.com/srg/blepad/internal/controller"
)

// Pin is the output side of controller.IO.
type Pin interface {
	WritePin(pin controller.Pin, high bool)
}

// LED is an active-low LED: driving the pin low lights it. It implements
// lifecycle.Indicator and only touches the pin when the level changes.
type LED struct {
	mu    sync.Mutex
	io    Pin
	pin   controller.Pin
	lit   bool
	known bool
}

// NewLED wraps the LED on pin. The first call always drives the pin.
func NewLED(io Pin, pin controller.Pin) *LED {
	return &LED{io: io, pin: pin}
}

func (l *LED) On()  { l.Set(true) }
func (l *LED) Off() { l.Set(false) }

func (l *LED) Set(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.known && l.lit == on {
		return
	}
	l.io.WritePin(l.pin, !on)
	l.lit, l.known = on, true
}

// Lit reports the last level driven.
func (l *LED) Lit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lit
}
