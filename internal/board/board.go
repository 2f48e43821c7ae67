// Package board assembles the hardware collaborators of the gamepad from
// configuration: controller pins, battery ADC, power key and status LED.
package board

import (
	"io"

	"github.com/srg/blepad/internal/battery"
	"github.com/srg/blepad/internal/controller"
	"github.com/srg/blepad/internal/indicator"
	"github.com/srg/blepad/internal/power"
	"github.com/srg/blepad/pkg/config"
)

// Board is the set of collaborators the bridge runs against.
type Board struct {
	Sampler *controller.Sampler
	Battery *battery.Sampler
	Power   *power.Controller
	LED     *indicator.LED

	closer io.Closer
}

// Close releases the hardware.
func (b *Board) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}

func pins(cfg *config.Config) controller.Pins {
	return controller.Pins{
		Clock: controller.Pin(cfg.Pins.Clock),
		Latch: controller.Pin(cfg.Pins.Latch),
		Data:  controller.Pin(cfg.Pins.Data),
	}
}

func batteryScale(cfg *config.Config) battery.Scale {
	return battery.Scale{
		ADCMax:    cfg.Battery.ADCMax,
		Reference: cfg.Battery.Reference,
		FullScale: cfg.Battery.FullScale,
	}
}
