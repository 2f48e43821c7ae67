//go:build linux

package gpio

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"
	"github.com/srg/blepad/internal/controller"
	"github.com/warthog618/go-gpiocdev"
	"golang.org/x/sys/unix"
)

// line is the part of *gpiocdev.Line the chip drives.
type line interface {
	Value() (int, error)
	SetValue(value int) error
	Close() error
}

type requestFunc func(offset int, options ...gpiocdev.LineReqOption) (line, error)

// Chip is an open GPIO character device. It implements controller.IO for the lines
// requested through Output and Input.
type Chip struct {
	name    string
	request requestFunc
	closer  io.Closer
	lines   *hashmap.Map[int, line]
	logger  *logrus.Logger
}

// Open opens the chip by name ("gpiochip0") or path ("/dev/gpiochip0"). consumer
// labels the requested lines in gpioinfo.
func Open(name, consumer string, logger *logrus.Logger) (*Chip, error) {
	c, err := gpiocdev.NewChip(name, gpiocdev.WithConsumer(consumer))
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}

	request := func(offset int, options ...gpiocdev.LineReqOption) (line, error) {
		l, err := c.RequestLine(offset, options...)
		if err != nil {
			return nil, err
		}
		return l, nil
	}
	return newChip(name, request, c, logger), nil
}

func newChip(name string, request requestFunc, closer io.Closer, logger *logrus.Logger) *Chip {
	if logger == nil {
		logger = logrus.New()
	}
	return &Chip{
		name:    name,
		request: request,
		closer:  closer,
		lines:   hashmap.New[int, line](),
		logger:  logger,
	}
}

// Output requests pin as an output driven to initial.
func (c *Chip) Output(pin controller.Pin, initial bool) error {
	return c.requestLine(pin, true, gpiocdev.AsOutput(level(initial)))
}

// Input requests pin as an input, optionally with the internal pull-up enabled.
func (c *Chip) Input(pin controller.Pin, pullUp bool) error {
	options := []gpiocdev.LineReqOption{gpiocdev.AsInput}
	if pullUp {
		options = append(options, gpiocdev.WithPullUp)
	}
	return c.requestLine(pin, false, options...)
}

func (c *Chip) requestLine(pin controller.Pin, output bool, options ...gpiocdev.LineReqOption) error {
	if _, ok := c.lines.Get(int(pin)); ok {
		return fmt.Errorf("%w: %d", ErrLineBusy, pin)
	}

	l, err := c.request(int(pin), options...)
	if err != nil {
		if errors.Is(err, unix.EBUSY) {
			return fmt.Errorf("%w: %d on %s", ErrLineBusy, pin, c.name)
		}
		return fmt.Errorf("failed to request line %d on %s: %w", pin, c.name, err)
	}

	c.lines.Set(int(pin), l)
	c.logger.WithFields(logrus.Fields{
		"chip":   c.name,
		"line":   pin,
		"output": output,
	}).Debug("Requested GPIO line")
	return nil
}

// Set drives an output line.
func (c *Chip) Set(pin controller.Pin, high bool) error {
	l, ok := c.lines.Get(int(pin))
	if !ok {
		return fmt.Errorf("%w: %d", ErrLineNotRequested, pin)
	}
	return l.SetValue(level(high))
}

// Get samples a line.
func (c *Chip) Get(pin controller.Pin) (bool, error) {
	l, ok := c.lines.Get(int(pin))
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrLineNotRequested, pin)
	}
	v, err := l.Value()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// WritePin implements controller.IO. Failures are logged.
func (c *Chip) WritePin(pin controller.Pin, high bool) {
	if err := c.Set(pin, high); err != nil {
		c.logger.WithError(err).WithField("line", pin).Debug("GPIO write failed")
	}
}

// ReadPin implements controller.IO. A failed read reports high, which the
// active-low controller decodes as released.
func (c *Chip) ReadPin(pin controller.Pin) bool {
	high, err := c.Get(pin)
	if err != nil {
		c.logger.WithError(err).WithField("line", pin).Debug("GPIO read failed")
		return true
	}
	return high
}

// DelayMicroseconds implements controller.IO.
func (c *Chip) DelayMicroseconds(us uint32) {
	BusyWait(time.Duration(us) * time.Microsecond)
}

// Close releases every requested line and the chip itself.
func (c *Chip) Close() error {
	var errs []error
	for _, pin := range c.pins() {
		l, ok := c.lines.Get(pin)
		if !ok {
			continue
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to release line %d: %w", pin, err))
		}
		c.lines.Del(pin)
	}
	if err := c.closer.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close %s: %w", c.name, err))
	}
	return errors.Join(errs...)
}

func (c *Chip) pins() []int {
	pins := make([]int, 0, c.lines.Len())
	c.lines.Range(func(pin int, _ line) bool {
		pins = append(pins, pin)
		return true
	})
	return pins
}

func level(high bool) int {
	if high {
		return 1
	}
	return 0
}
