// Package gpio drives board pins through the Linux GPIO character device
// (/dev/gpiochipN).
package gpio

import (
	"errors"
	"time"
)

var (
	// ErrLineNotRequested is returned for a pin that was never requested on the chip.
	ErrLineNotRequested = errors.New("gpio line not requested")
	// ErrLineBusy is returned when a pin is requested twice or held by another consumer.
	ErrLineBusy = errors.New("gpio line already requested")
)

// BusyWait spins for d. Sleeping is far too coarse for the shift-register timings.
func BusyWait(d time.Duration) {
	if d <= 0 {
		return
	}
	start := time.Now()
	for time.Since(start) < d {
	}
}
