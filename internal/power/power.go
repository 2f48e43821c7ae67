// Package power drives the soft-power key of the battery board and halts the host
// once the board has been told to cut power.
package power

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/blepad/internal/controller"
)

const (
	powerOnPulse  = 200 * time.Millisecond
	powerOffPulse = 100 * time.Millisecond
)

// Pin is the output side of controller.IO.
type Pin interface {
	WritePin(pin controller.Pin, high bool)
}

// HaltFunc stops the host after the power-off sequence. It normally does not return.
type HaltFunc func() error

// Controller pulses the power key. It implements lifecycle.PowerController.
type Controller struct {
	io     Pin
	key    controller.Pin
	halt   HaltFunc
	sleep  func(time.Duration)
	logger *logrus.Logger
}

// New creates a controller for the power key on pin. A nil halt only pulses the key.
func New(io Pin, key controller.Pin, halt HaltFunc, logger *logrus.Logger) *Controller {
	if logger == nil {
		logger = logrus.New()
	}
	return &Controller{
		io:     io,
		key:    key,
		halt:   halt,
		sleep:  time.Sleep,
		logger: logger,
	}
}

// PowerOn holds the key low for 200ms to latch the regulator on.
func (c *Controller) PowerOn() {
	c.logger.Info("Powering on")
	c.io.WritePin(c.key, false)
	c.sleep(powerOnPulse)
	c.io.WritePin(c.key, true)
}

// PowerOff sends the double pulse that releases the regulator, then halts the host.
func (c *Controller) PowerOff() error {
	c.logger.Info("Powering off")

	for i, high := range []bool{false, true, false, true} {
		if i > 0 {
			c.sleep(powerOffPulse)
		}
		c.io.WritePin(c.key, high)
	}

	if c.halt == nil {
		return nil
	}
	if err := c.halt(); err != nil {
		return fmt.Errorf("failed to halt: %w", err)
	}
	return nil
}
