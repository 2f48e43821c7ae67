// Package bridge runs the gamepad: it polls the controller, turns changes into HID
// reports for the connected host and drives the lifecycle timers.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/blepad/internal/controller"
	"github.com/srg/blepad/internal/device"
	"github.com/srg/blepad/internal/events"
	"github.com/srg/blepad/internal/hid"
	"github.com/srg/blepad/internal/lifecycle"
	"github.com/srg/blepad/internal/mapper"
)

const (
	// DefaultPollInterval is the pause between two controller samples.
	DefaultPollInterval = 10 * time.Millisecond

	// DefaultEventBufferSize is the number of transitions kept for slow observers.
	DefaultEventBufferSize = 16
)

// Sampler reads the controller.
type Sampler interface {
	Sample() controller.ButtonVector
}

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Options contains the bridge configuration
type Options struct {
	PollInterval    time.Duration  // Pause between samples (0 = use default)
	EventBufferSize int            // Transition ring capacity (0 = use default)
	Clock           Clock          // Time source (nil = system clock)
	Logger          *logrus.Logger // Logger instance
}

// Bridge composes sampler, mapper, encoder, state machine and lifecycle timers.
// Step is not safe for concurrent use; Run calls it from a single goroutine.
type Bridge struct {
	sampler Sampler
	machine *device.Machine
	timers  *lifecycle.Timers
	opts    Options
	logger  *logrus.Logger

	previous controller.ButtonVector
	events   *events.RingChannel[device.Transition]
	unsubs   []func()
}

// New wires the timers and the event ring to machine transitions.
func New(sampler Sampler, machine *device.Machine, timers *lifecycle.Timers, opts Options) *Bridge {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.EventBufferSize <= 0 {
		opts.EventBufferSize = DefaultEventBufferSize
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}

	b := &Bridge{
		sampler: sampler,
		machine: machine,
		timers:  timers,
		opts:    opts,
		logger:  opts.Logger,
		events:  events.NewRingChannel[device.Transition](opts.EventBufferSize),
	}

	b.unsubs = append(b.unsubs,
		machine.Subscribe(func(t device.Transition) {
			timers.Observe(t, b.opts.Clock.Now())
		}),
		machine.Subscribe(func(t device.Transition) {
			b.events.Send(t)
		}),
	)
	return b
}

// Events returns the transitions observed since New. Old entries are dropped when
// nobody drains the ring.
func (b *Bridge) Events() *events.RingChannel[device.Transition] {
	return b.events
}

// Begin seeds the timers, starts the machine and begins advertising.
func (b *Bridge) Begin() error {
	b.timers.Begin(b.opts.Clock.Now())
	b.machine.Start()
	if err := b.machine.StartAdvertising(); err != nil {
		return fmt.Errorf("failed to start advertising: %w", err)
	}
	return nil
}

// Step runs one iteration of the polling loop at now. It returns
// lifecycle.ErrPoweredOff once the idle timeout has fired.
func (b *Bridge) Step(now time.Time) error {
	v := b.sampler.Sample()
	if v != b.previous {
		b.previous = v
		b.onInputChanged(v, now)
	}
	return b.timers.Tick(now)
}

func (b *Bridge) onInputChanged(v controller.ButtonVector, now time.Time) {
	b.logger.WithFields(logrus.Fields{
		"vector":  v.String(),
		"pressed": v.Names(),
	}).Debug("Controller state changed")

	switch b.machine.State() {
	case device.Connected:
		report := hid.EncodeState(mapper.MapState(v))
		if err := b.machine.SendReport(report); err != nil {
			b.logger.WithError(err).Warn("Failed to send input report")
		}
		b.timers.RecordActivity(now)
	case device.Idle:
		if err := b.machine.StartAdvertising(); err != nil {
			b.logger.WithError(err).Warn("Failed to resume advertising")
		}
	}
}

// Run calls Step every poll interval until ctx is done or the device powers off,
// then stops the machine. A power-off returns lifecycle.ErrPoweredOff.
func (b *Bridge) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.opts.PollInterval)
	defer ticker.Stop()
	defer b.machine.Stop()

	b.logger.WithField("interval", b.opts.PollInterval).Info("Polling controller")

	for {
		if err := b.Step(b.opts.Clock.Now()); err != nil {
			if errors.Is(err, lifecycle.ErrPoweredOff) {
				b.logger.Info("Device powered off")
			}
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close detaches the bridge from the machine and ends the event stream.
func (b *Bridge) Close() {
	for _, unsub := range b.unsubs {
		unsub()
	}
	b.unsubs = nil
	b.events.Close()
}
