// Package lifecycle applies the time-driven policies of the gamepad: idle power-off,
// advertising timeout with a blinking indicator, and periodic battery reporting.
//
// Timers never run on their own. The polling loop calls Tick once per iteration
// with the current time, and Observe for every state transition.
package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/srg/blepad/internal/device"
)

// ErrPoweredOff is returned by Tick after the power collaborator handled an idle
// timeout. The caller should stop polling.
var ErrPoweredOff = errors.New("powered off after idle timeout")

const (
	DefaultIdleTimeout        = 30 * time.Second
	DefaultAdvertisingTimeout = 30 * time.Second
	DefaultBatteryInterval    = 5 * time.Second
	DefaultBlinkPeriod        = 500 * time.Millisecond
)

// Options holds the timer thresholds. Zero fields take the defaults.
type Options struct {
	IdleTimeout        time.Duration
	AdvertisingTimeout time.Duration
	BatteryInterval    time.Duration
	BlinkPeriod        time.Duration
}

func (o Options) withDefaults() Options {
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.AdvertisingTimeout <= 0 {
		o.AdvertisingTimeout = DefaultAdvertisingTimeout
	}
	if o.BatteryInterval <= 0 {
		o.BatteryInterval = DefaultBatteryInterval
	}
	if o.BlinkPeriod <= 0 {
		o.BlinkPeriod = DefaultBlinkPeriod
	}
	return o
}

// StateMachine is the part of device.Machine the timers drive.
type StateMachine interface {
	State() device.State
	Stop()
	StopAdvertising() error
	SendBattery(level int) error
}

// Indicator is the activity LED.
type Indicator interface {
	On()
	Off()
	Set(on bool)
}

// BatterySampler reads the battery charge in percent.
type BatterySampler interface {
	ReadBatteryPercent() int
}

// PowerController cuts power. On hardware it does not return.
type PowerController interface {
	PowerOff() error
}

// Timers tracks the three deadlines of the device lifecycle.
//
// Observe may run on a transport goroutine while the loop is in Tick, so all
// deadlines are guarded by mu. mu is never held across a call that fires a machine
// transition, because subscribers call back into Observe.
type Timers struct {
	machine   StateMachine
	indicator Indicator
	battery   BatterySampler
	power     PowerController
	opts      Options
	logger    *logrus.Logger

	mu               sync.Mutex
	lastActivity     time.Time
	advertisingStart time.Time
	lastBatteryCheck time.Time

	batteryLevel int
	lastSent     int
	poweredOff   bool
}

// New creates timers around the given collaborators.
func New(machine StateMachine, indicator Indicator, battery BatterySampler, power PowerController, opts Options, logger *logrus.Logger) *Timers {
	if logger == nil {
		logger = logrus.New()
	}
	return &Timers{
		machine:   machine,
		indicator: indicator,
		battery:   battery,
		power:     power,
		opts:      opts.withDefaults(),
		logger:    logger,
	}
}

// Options returns the effective thresholds.
func (t *Timers) Options() Options {
	return t.opts
}

// Begin seeds every deadline at now and takes the first battery reading.
func (t *Timers) Begin(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastActivity = now
	t.advertisingStart = now
	t.lastBatteryCheck = now
	t.batteryLevel = t.battery.ReadBatteryPercent()
	t.lastSent = t.batteryLevel
	t.logger.WithField("level", t.batteryLevel).Info("Initial battery level")
}

// Observe resets deadlines on state entry. Wire it to device.Machine.Subscribe.
func (t *Timers) Observe(tr device.Transition, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch tr.To {
	case device.Idle:
		t.indicator.Off()
		t.lastActivity = now
	case device.Advertising:
		t.advertisingStart = now
		t.lastActivity = now
	case device.Connected:
		t.indicator.On()
		t.lastActivity = now
		t.lastSent = t.batteryLevel
		if err := t.machine.SendBattery(t.batteryLevel); err != nil {
			t.logger.WithError(err).Warn("Failed to send initial battery level")
		}
	}
}

// RecordActivity marks an input change that was reported to the host.
func (t *Timers) RecordActivity(now time.Time) {
	t.mu.Lock()
	t.lastActivity = now
	t.mu.Unlock()
}

// LastActivity returns the time of the last reported input or Idle entry.
func (t *Timers) LastActivity() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastActivity
}

// AdvertisingStart returns the time advertising last began.
func (t *Timers) AdvertisingStart() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.advertisingStart
}

// BatteryLevel returns the most recent battery reading.
func (t *Timers) BatteryLevel() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.batteryLevel
}

// Tick evaluates every deadline against now. It returns ErrPoweredOff once the idle
// timeout has powered the device off.
func (t *Timers) Tick(now time.Time) error {
	t.mu.Lock()
	if t.poweredOff {
		t.mu.Unlock()
		return ErrPoweredOff
	}

	t.checkBattery(now)

	switch t.machine.State() {
	case device.Idle:
		if idle := now.Sub(t.lastActivity); idle > t.opts.IdleTimeout {
			t.poweredOff = true
			t.mu.Unlock()
			return t.powerOff(idle)
		}
	case device.Advertising:
		elapsed := now.Sub(t.advertisingStart)
		if elapsed > t.opts.AdvertisingTimeout {
			t.mu.Unlock()
			t.logger.WithField("elapsed", elapsed).Info("Advertising timed out, stopping")
			// Observe switches the indicator off on entering Idle. A host may have
			// connected meanwhile, so the indicator is not touched here.
			if err := t.machine.StopAdvertising(); err != nil {
				t.logger.WithError(err).Warn("Failed to stop advertising")
			}
			return nil
		}
		t.indicator.Set(BlinkOn(elapsed, t.opts.BlinkPeriod))
	}

	t.mu.Unlock()
	return nil
}

// checkBattery runs with t.mu held.
func (t *Timers) checkBattery(now time.Time) {
	if now.Sub(t.lastBatteryCheck) <= t.opts.BatteryInterval {
		return
	}
	t.lastBatteryCheck = now

	t.batteryLevel = t.battery.ReadBatteryPercent()
	if t.batteryLevel == t.lastSent || t.machine.State() != device.Connected {
		return
	}

	t.lastSent = t.batteryLevel
	if err := t.machine.SendBattery(t.batteryLevel); err != nil {
		t.logger.WithError(err).Warn("Failed to send battery level")
	}
}

func (t *Timers) powerOff(idle time.Duration) error {
	t.logger.WithField("idle", idle).Info("Device idle for too long, powering off")

	// Stop tears down advertising when needed.
	t.machine.Stop()
	t.indicator.Off()

	if err := t.power.PowerOff(); err != nil {
		return fmt.Errorf("failed to power off: %w", err)
	}
	return ErrPoweredOff
}

// BlinkOn reports the indicator level elapsed into a blink pattern: on for the first
// period, off for the next, and so on. It depends only on elapsed, not on how often
// it is sampled.
func BlinkOn(elapsed, period time.Duration) bool {
	if period <= 0 || elapsed < 0 {
		return true
	}
	return (elapsed/period)%2 == 0
}
