//go:build linux

package board

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/srg/blepad/internal/battery"
	"github.com/srg/blepad/internal/controller"
	"github.com/srg/blepad/internal/gpio"
	"github.com/srg/blepad/internal/indicator"
	"github.com/srg/blepad/internal/power"
	"github.com/srg/blepad/pkg/config"
)

// Open requests every line on the configured GPIO chip. Outputs start inactive:
// clock and latch low, power key and LED high.
func Open(cfg *config.Config, logger *logrus.Logger) (*Board, error) {
	if logger == nil {
		logger = logrus.New()
	}

	chip, err := gpio.Open(cfg.GPIO.Chip, cfg.GPIO.Consumer, logger)
	if err != nil {
		return nil, err
	}

	p := pins(cfg)
	outputs := []struct {
		name    string
		pin     controller.Pin
		initial bool
	}{
		{"clock", p.Clock, false},
		{"latch", p.Latch, false},
		{"power key", controller.Pin(cfg.Pins.PowerKey), true},
		{"led", controller.Pin(cfg.Pins.LED), true},
	}
	for _, o := range outputs {
		if err := chip.Output(o.pin, o.initial); err != nil {
			_ = chip.Close()
			return nil, fmt.Errorf("%s: %w", o.name, err)
		}
	}
	if err := chip.Input(p.Data, cfg.GPIO.DataPullUp); err != nil {
		_ = chip.Close()
		return nil, fmt.Errorf("data: %w", err)
	}

	var halt power.HaltFunc
	if cfg.HaltOnPowerOff {
		halt = power.SystemHalt
	}

	logger.WithFields(logrus.Fields{
		"chip":  cfg.GPIO.Chip,
		"clock": p.Clock,
		"latch": p.Latch,
		"data":  p.Data,
	}).Info("Board ready")

	return &Board{
		Sampler: controller.NewSampler(chip, p),
		Battery: battery.NewSampler(battery.NewIIOChannel(cfg.Battery.ADCPath), batteryScale(cfg), logger),
		Power:   power.New(chip, controller.Pin(cfg.Pins.PowerKey), halt, logger),
		LED:     indicator.NewLED(chip, controller.Pin(cfg.Pins.LED)),
		closer:  chip,
	}, nil
}
