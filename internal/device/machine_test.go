//go:build test

package device_test

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/srg/blepad/internal/device"
	"github.com/srg/blepad/internal/hid"
	"github.com/srg/blepad/internal/testutils"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MachineTestSuite struct {
	suite.Suite
	transport   *testutils.MockTransport
	machine     *device.Machine
	transitions []device.Transition
}

func (s *MachineTestSuite) SetupTest() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	s.transport = testutils.NewMockTransport()
	s.machine = device.NewMachine(s.transport, logger)
	s.transitions = nil
	s.machine.Subscribe(func(t device.Transition) {
		s.transitions = append(s.transitions, t)
	})
}

// advertise drives the machine from Stopped to Advertising and clears recorded transitions.
func (s *MachineTestSuite) advertise() {
	s.machine.Start()
	s.Require().NoError(s.machine.StartAdvertising())
	s.transitions = nil
}

func (s *MachineTestSuite) TestStart() {
	// GOAL: Verify start() is Stopped→Idle only and notifies exactly once
	//
	// TEST SCENARIO: start() twice → one transition → second call is a silent no-op

	s.Equal(device.Stopped, s.machine.State(), "initial state MUST be stopped")

	s.machine.Start()
	s.Equal(device.Idle, s.machine.State())
	s.Equal([]device.Transition{{From: device.Stopped, To: device.Idle, Event: device.EventStart}}, s.transitions)

	s.machine.Start()
	s.Equal(device.Idle, s.machine.State())
	s.Len(s.transitions, 1, "repeated start MUST NOT notify")
}

func (s *MachineTestSuite) TestAdvertising() {
	s.Run("start advertising from idle", func() {
		s.machine.Start()
		s.Require().NoError(s.machine.StartAdvertising())

		s.Equal(device.Advertising, s.machine.State())
		s.transport.AssertNumberOfCalls(s.T(), "BeginAdvertising", 1)
	})

	s.Run("stop advertising returns to idle", func() {
		s.Require().NoError(s.machine.StopAdvertising())

		s.Equal(device.Idle, s.machine.State())
		s.transport.AssertNumberOfCalls(s.T(), "StopAdvertising", 1)
	})

	s.Run("stop advertising from idle is a no-op", func() {
		s.Require().NoError(s.machine.StopAdvertising())

		s.Equal(device.Idle, s.machine.State())
		s.transport.AssertNumberOfCalls(s.T(), "StopAdvertising", 1)
	})
}

func (s *MachineTestSuite) TestStartAdvertisingGuard() {
	// GOAL: Verify advertising cannot be started from Connected or Stopped
	//
	// TEST SCENARIO: startAdvertising() in Stopped and Connected → state unchanged → transport untouched

	s.Require().NoError(s.machine.StartAdvertising())
	s.Equal(device.Stopped, s.machine.State(), "startAdvertising MUST be ignored while stopped")

	s.advertise()
	s.transport.Connect()
	s.Require().Equal(device.Connected, s.machine.State())
	s.transitions = nil

	s.Require().NoError(s.machine.StartAdvertising())
	s.Equal(device.Connected, s.machine.State(), "startAdvertising MUST be ignored while connected")
	s.Empty(s.transitions)
	s.transport.AssertNumberOfCalls(s.T(), "BeginAdvertising", 1)
}

func (s *MachineTestSuite) TestStartAdvertisingFailureKeepsIdle() {
	s.transport.On("BeginAdvertising").Return(errors.New("bluetooth is turned off"))
	s.machine.Start()
	s.transitions = nil

	err := s.machine.StartAdvertising()

	s.ErrorIs(err, device.ErrBluetoothOff)
	s.Equal(device.Idle, s.machine.State(), "failed advertising MUST NOT change state")
	s.Empty(s.transitions)
}

func (s *MachineTestSuite) TestStopTearsDownAdvertising() {
	// GOAL: Verify stop() from Advertising stops the radio without passing through Idle
	//
	// TEST SCENARIO: Advertising → stop() → transport StopAdvertising called → single Advertising→Stopped notification

	s.advertise()

	s.machine.Stop()

	s.Equal(device.Stopped, s.machine.State())
	s.transport.AssertNumberOfCalls(s.T(), "StopAdvertising", 1)
	s.Equal([]device.Transition{{From: device.Advertising, To: device.Stopped, Event: device.EventStop}}, s.transitions)

	s.machine.Stop()
	s.Len(s.transitions, 1, "stop while stopped MUST NOT notify")
}

func (s *MachineTestSuite) TestPeerEvents() {
	s.advertise()

	s.transport.Connect()
	s.Equal(device.Connected, s.machine.State())

	s.transport.Connect()
	s.Len(s.transitions, 1, "duplicate connect MUST NOT notify")

	s.transport.Disconnect()
	s.Equal(device.Idle, s.machine.State())
	s.Equal([]device.Transition{
		{From: device.Advertising, To: device.Connected, Event: device.EventPeerConnected},
		{From: device.Connected, To: device.Idle, Event: device.EventPeerDisconnected},
	}, s.transitions)
}

func (s *MachineTestSuite) TestGuardedSends() {
	// GOAL: Verify report and battery sends never reach the transport unless Connected
	//
	// TEST SCENARIO: Send in Stopped, Idle, Advertising → zero transport calls → send in Connected → one call each

	report := hid.Report{0x01, 0x08, 0x03, 0x7F, 0x00}

	send := func() {
		s.NoError(s.machine.SendReport(report))
		s.NoError(s.machine.SendBattery(80))
	}

	send()
	s.machine.Start()
	send()
	s.Require().NoError(s.machine.StartAdvertising())
	send()

	s.transport.AssertNumberOfCalls(s.T(), "NotifyInputReport", 0)
	s.transport.AssertNumberOfCalls(s.T(), "NotifyBattery", 0)

	s.transport.Connect()
	send()

	s.transport.AssertNumberOfCalls(s.T(), "NotifyInputReport", 1)
	s.transport.AssertNumberOfCalls(s.T(), "NotifyBattery", 1)
	s.Equal([][]byte{{0x01, 0x08, 0x03, 0x7F, 0x00}}, s.transport.Reports())
	s.Equal([]uint8{80}, s.transport.BatteryLevels())
}

func (s *MachineTestSuite) TestSendReportError() {
	s.transport.On("NotifyInputReport", mock.Anything).Return(device.ErrNotConnected)
	s.advertise()
	s.transport.Connect()

	err := s.machine.SendReport(hid.Report{})

	s.ErrorIs(err, device.ErrNotConnected)
	s.Equal(device.Connected, s.machine.State(), "transport errors MUST NOT change state")
}

func (s *MachineTestSuite) TestBatteryClamp() {
	s.machine.SetBatteryLevel(150)
	s.Equal(100, s.machine.BatteryLevel())

	s.machine.SetBatteryLevel(-5)
	s.Equal(0, s.machine.BatteryLevel())

	s.machine.SetBatteryLevel(42)
	s.Equal(42, s.machine.BatteryLevel())
}

func (s *MachineTestSuite) TestMultipleSubscribers() {
	// GOAL: Verify every subscriber is notified in registration order and can unsubscribe
	//
	// TEST SCENARIO: Two extra subscribers → one transition → order preserved → unsubscribe → no further calls

	var order []string
	unsubA := s.machine.Subscribe(func(device.Transition) { order = append(order, "a") })
	s.machine.Subscribe(func(device.Transition) { order = append(order, "b") })

	s.machine.Start()
	s.Equal([]string{"a", "b"}, order)

	unsubA()
	s.Require().NoError(s.machine.StartAdvertising())
	s.Equal([]string{"a", "b", "b"}, order)
	s.Len(s.transitions, 2, "suite subscriber MUST keep receiving")
}

func (s *MachineTestSuite) TestSubscriberMayReenter() {
	// GOAL: Verify a subscriber can drive the machine without deadlocking
	//
	// TEST SCENARIO: Subscriber starts advertising on entering Idle → start() → ends in Advertising

	s.machine.Subscribe(func(t device.Transition) {
		if t.To == device.Idle {
			s.NoError(s.machine.StartAdvertising())
		}
	})

	s.machine.Start()

	s.Equal(device.Advertising, s.machine.State())
}

func (s *MachineTestSuite) TestConcurrentTransitionsDeliveredInOrder() {
	// GOAL: Verify subscribers see transitions in the order they happened, even when a
	// transport callback lands while an earlier transition is still being delivered
	//
	// TEST SCENARIO: Advertising → StopAdvertising → a subscriber lets the host connect
	// from another goroutine mid-delivery → everyone sees →Idle before →Connected

	s.advertise()

	var late []device.Transition
	injected := false
	s.machine.Subscribe(func(t device.Transition) {
		if t.To != device.Idle || injected {
			return
		}
		injected = true
		done := make(chan struct{})
		go func() {
			defer close(done)
			s.transport.Connect()
		}()
		<-done
	})
	s.machine.Subscribe(func(t device.Transition) {
		late = append(late, t)
	})

	s.Require().NoError(s.machine.StopAdvertising())

	expected := []device.Transition{
		{From: device.Advertising, To: device.Idle, Event: device.EventStopAdvertising},
		{From: device.Idle, To: device.Connected, Event: device.EventPeerConnected},
	}
	s.Equal(expected, s.transitions, "first subscriber MUST see transitions in order")
	s.Equal(expected, late, "later subscriber MUST see transitions in order")
	s.Equal(device.Connected, s.machine.State())
}

func TestMachineTestSuite(t *testing.T) {
	suite.Run(t, new(MachineTestSuite))
}
