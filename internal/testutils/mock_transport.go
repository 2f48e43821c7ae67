//go:build test

package testutils

import (
	"sync"

	"github.com/stretchr/testify/mock"
)

// MockTransport implements device.Transport with testify/mock. Every method is
// optional: calls without an expectation succeed and are still recorded, so tests can
// assert invocation counts with AssertNumberOfCalls.
type MockTransport struct {
	mock.Mock

	mu      sync.Mutex
	regMu   sync.Mutex
	handler func(connected bool)
}

// NewMockTransport creates a transport that accepts every call.
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

func (m *MockTransport) call(method string, args ...interface{}) error {
	m.regMu.Lock()
	if !m.hasExpectation(method) {
		anys := make([]interface{}, len(args))
		for i := range anys {
			anys[i] = mock.Anything
		}
		m.Mock.On(method, anys...).Return(nil).Maybe()
	}
	m.regMu.Unlock()
	ret := m.MethodCalled(method, args...)
	if len(ret) == 0 {
		return nil
	}
	return ret.Error(0)
}

func (m *MockTransport) hasExpectation(method string) bool {
	for _, c := range m.ExpectedCalls {
		if c.Method == method {
			return true
		}
	}
	return false
}

func (m *MockTransport) BeginAdvertising() error {
	return m.call("BeginAdvertising")
}

func (m *MockTransport) StopAdvertising() error {
	return m.call("StopAdvertising")
}

func (m *MockTransport) NotifyInputReport(report []byte) error {
	return m.call("NotifyInputReport", report)
}

func (m *MockTransport) NotifyBattery(level uint8) error {
	return m.call("NotifyBattery", level)
}

func (m *MockTransport) SetConnectHandler(handler func(connected bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handler = handler
}

// Connect simulates the host connecting.
func (m *MockTransport) Connect() {
	m.fire(true)
}

// Disconnect simulates the host going away.
func (m *MockTransport) Disconnect() {
	m.fire(false)
}

func (m *MockTransport) fire(connected bool) {
	m.mu.Lock()
	h := m.handler
	m.mu.Unlock()
	if h != nil {
		h(connected)
	}
}

// Reports returns the payloads passed to NotifyInputReport.
func (m *MockTransport) Reports() [][]byte {
	var out [][]byte
	for _, c := range m.Calls {
		if c.Method == "NotifyInputReport" {
			out = append(out, c.Arguments.Get(0).([]byte))
		}
	}
	return out
}

// BatteryLevels returns the levels passed to NotifyBattery.
func (m *MockTransport) BatteryLevels() []uint8 {
	var out []uint8
	for _, c := range m.Calls {
		if c.Method == "NotifyBattery" {
			out = append(out, c.Arguments.Get(0).(uint8))
		}
	}
	return out
}
