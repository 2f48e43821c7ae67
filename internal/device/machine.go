package device

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/srg/blepad/internal/hid"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DefaultBatteryLevel is reported until the first battery sample arrives.
const DefaultBatteryLevel = 100

// Machine owns the connection state and gates every transmission on it.
//
// Transitions are atomic: connect/disconnect callbacks from the transport may race
// with the polling loop and are serialized by mu. Every transition is queued under
// mu and subscribers see the queue in transition order, one transition at a time.
// Delivery happens without mu held, so subscribers may call back into the machine.
// A transition fired while another goroutine (or a subscriber) is already
// delivering is handed to that deliverer and the caller returns without waiting.
type Machine struct {
	transport Transport
	logger    *logrus.Logger

	mu         sync.Mutex
	state      State
	battery    uint8
	pending    []Transition
	delivering bool

	subsMu sync.Mutex
	subs   *orderedmap.OrderedMap[uint64, func(Transition)]
	nextID uint64
}

// NewMachine creates a machine in Stopped and hooks the transport's connect handler.
func NewMachine(transport Transport, logger *logrus.Logger) *Machine {
	if logger == nil {
		logger = logrus.New()
	}

	m := &Machine{
		transport: transport,
		logger:    logger,
		state:     Stopped,
		battery:   DefaultBatteryLevel,
		subs:      orderedmap.New[uint64, func(Transition)](),
	}

	transport.SetConnectHandler(func(connected bool) {
		if connected {
			m.PeerConnected()
		} else {
			m.PeerDisconnected()
		}
	})

	return m
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn for every real state change. Subscribers are called in
// registration order. The returned function removes the subscription.
func (m *Machine) Subscribe(fn func(Transition)) (unsubscribe func()) {
	m.subsMu.Lock()
	id := m.nextID
	m.nextID++
	m.subs.Set(id, fn)
	m.subsMu.Unlock()

	return func() {
		m.subsMu.Lock()
		m.subs.Delete(id)
		m.subsMu.Unlock()
	}
}

// Start moves Stopped to Idle.
func (m *Machine) Start() {
	_, _ = m.fire(EventStart, nil)
}

// Stop moves any state to Stopped, tearing down advertising first when active.
func (m *Machine) Stop() {
	_, _ = m.fire(EventStop, func(from State) error {
		if from == Advertising {
			if err := m.transport.StopAdvertising(); err != nil {
				m.logger.WithError(err).Warn("Failed to stop advertising while stopping")
			}
		}
		return nil
	})
}

// StartAdvertising moves Idle to Advertising. From any other state it does nothing.
func (m *Machine) StartAdvertising() error {
	_, err := m.fire(EventStartAdvertising, func(State) error {
		if err := m.transport.BeginAdvertising(); err != nil {
			return fmt.Errorf("failed to start advertising: %w", NormalizeError(err))
		}
		return nil
	})
	return err
}

// StopAdvertising moves Advertising to Idle.
func (m *Machine) StopAdvertising() error {
	_, err := m.fire(EventStopAdvertising, func(State) error {
		if err := m.transport.StopAdvertising(); err != nil {
			return fmt.Errorf("failed to stop advertising: %w", NormalizeError(err))
		}
		return nil
	})
	return err
}

// PeerConnected records a host connection.
func (m *Machine) PeerConnected() {
	_, _ = m.fire(EventPeerConnected, nil)
}

// PeerDisconnected records the host going away.
func (m *Machine) PeerDisconnected() {
	_, _ = m.fire(EventPeerDisconnected, nil)
}

// fire applies event through the transition table. effect runs under the state lock
// before the state changes; if it fails the state is left untouched.
func (m *Machine) fire(event Event, effect func(from State) error) (bool, error) {
	m.mu.Lock()
	from := m.state
	to, ok := Next(from, event)
	if !ok || to == from {
		m.mu.Unlock()
		m.logger.WithFields(logrus.Fields{
			"state": from,
			"event": event,
		}).Debug("Ignoring transition")
		return false, nil
	}

	if effect != nil {
		if err := effect(from); err != nil {
			m.mu.Unlock()
			return false, err
		}
	}
	m.state = to
	t := Transition{From: from, To: to, Event: event}
	m.pending = append(m.pending, t)

	m.logger.WithFields(logrus.Fields{
		"from":  t.From,
		"to":    t.To,
		"event": t.Event,
	}).Info("Device state changed")

	m.deliverLocked()
	return true, nil
}

// deliverLocked drains the pending queue unless another call is already doing so.
// It is entered with mu held and returns with mu released.
func (m *Machine) deliverLocked() {
	if m.delivering {
		m.mu.Unlock()
		return
	}
	m.delivering = true

	for len(m.pending) > 0 {
		t := m.pending[0]
		m.pending = m.pending[1:]
		m.mu.Unlock()

		m.notify(t)

		m.mu.Lock()
	}
	m.delivering = false
	m.mu.Unlock()
}

func (m *Machine) notify(t Transition) {
	m.subsMu.Lock()
	fns := make([]func(Transition), 0, m.subs.Len())
	for pair := m.subs.Oldest(); pair != nil; pair = pair.Next() {
		fns = append(fns, pair.Value)
	}
	m.subsMu.Unlock()

	for _, fn := range fns {
		fn(t)
	}
}

// SendReport notifies the host with report. Outside Connected it does nothing.
func (m *Machine) SendReport(report hid.Report) error {
	if m.State() != Connected {
		return nil
	}

	if err := m.transport.NotifyInputReport(report.Bytes()); err != nil {
		return fmt.Errorf("failed to notify input report: %w", NormalizeError(err))
	}

	if m.logger.IsLevelEnabled(logrus.DebugLevel) {
		s := hid.Decode(report)
		pressed := make([]int, 0, hid.ButtonCount)
		for _, p := range s.Buttons.Positions() {
			pressed = append(pressed, p+1)
		}
		m.logger.WithFields(logrus.Fields{
			"report":  report.String(),
			"buttons": pressed,
			"hat":     s.Hat.String(),
			"x":       s.Axes.X,
			"y":       s.Axes.Y,
		}).Debug("Sent HID report")
	}

	return nil
}

// SetBatteryLevel caches level, clamped to 0..100.
func (m *Machine) SetBatteryLevel(level int) {
	switch {
	case level < 0:
		level = 0
	case level > 100:
		level = 100
	}
	m.mu.Lock()
	m.battery = uint8(level)
	m.mu.Unlock()
}

// BatteryLevel returns the cached level.
func (m *Machine) BatteryLevel() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int(m.battery)
}

// NotifyBattery pushes the cached level. Outside Connected it does nothing.
func (m *Machine) NotifyBattery() error {
	if m.State() != Connected {
		return nil
	}

	level := uint8(m.BatteryLevel())
	if err := m.transport.NotifyBattery(level); err != nil {
		return fmt.Errorf("failed to notify battery level: %w", NormalizeError(err))
	}
	m.logger.WithField("level", level).Debug("Sent battery level")
	return nil
}

// SendBattery caches level and pushes it when Connected.
func (m *Machine) SendBattery(level int) error {
	m.SetBatteryLevel(level)
	return m.NotifyBattery()
}
