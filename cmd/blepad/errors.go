package main

import (
	"errors"

	"github.com/srg/blepad/internal/device"
	"github.com/srg/blepad/internal/gpio"
)

// Command-level errors
var (
	// ErrInvalidReport indicates the decode argument is not a 5-byte hex report.
	ErrInvalidReport = errors.New("invalid input report")
)

// FormatUserError turns known failures into actionable messages. Unknown errors
// are returned as is.
func FormatUserError(err error) string {
	switch {
	case errors.Is(err, device.ErrBluetoothOff):
		return "Bluetooth adapter is off or unavailable: " + err.Error()
	case errors.Is(err, device.ErrUnsupported):
		return "this command needs Linux with a GPIO character device: " + err.Error()
	case errors.Is(err, gpio.ErrLineBusy):
		return "GPIO line requested twice, check the pins section of the config: " + err.Error()
	default:
		return err.Error()
	}
}
