package goble

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"
	"github.com/srg/blepad/internal/device"
	"github.com/srg/blepad/internal/groutine"
	"github.com/srg/blepad/internal/hid"
)

// DefaultStopTimeout bounds how long StopAdvertising waits for the advertiser to exit.
const DefaultStopTimeout = 2 * time.Second

// Peripheral is the part of ble.Device a GATT server needs.
type Peripheral interface {
	AddService(svc *ble.Service) error
	AdvertiseNameAndServices(ctx context.Context, name string, uuids ...ble.UUID) error
	Stop() error
}

// notifier is the write side of ble.Notifier.
type notifier interface {
	Write(b []byte) (int, error)
}

// Transport serves the gamepad over go-ble and implements device.Transport.
//
// The host is considered connected while it is subscribed to the input report.
// Connection events reach the state machine through the connect handler.
type Transport struct {
	dev     Peripheral
	profile Profile
	logger  *logrus.Logger

	mu         sync.Mutex
	adCancel   context.CancelFunc
	adDone     <-chan struct{}
	input      notifier
	battery    notifier
	level      uint8
	lastReport hid.Report
	onConnect  func(connected bool)
}

// NewTransport registers the HID, Battery and Device Information services on dev.
func NewTransport(dev Peripheral, profile Profile, logger *logrus.Logger) (*Transport, error) {
	if logger == nil {
		logger = logrus.New()
	}

	t := &Transport{
		dev:     dev,
		profile: profile,
		logger:  logger,
		level:   100,
	}

	for _, svc := range t.services() {
		if err := dev.AddService(svc); err != nil {
			return nil, fmt.Errorf("failed to add service %s: %w", svc.UUID, device.NormalizeError(err))
		}
	}
	return t, nil
}

// Open creates the platform BLE device and serves the profile on it.
func Open(profile Profile, logger *logrus.Logger) (*Transport, error) {
	dev, err := DeviceFactory()
	if err != nil {
		return nil, fmt.Errorf("failed to create BLE device: %w", device.NormalizeError(err))
	}
	t, err := NewTransport(dev, profile, logger)
	if err != nil {
		_ = dev.Stop()
		return nil, err
	}
	return t, nil
}

func (t *Transport) SetConnectHandler(handler func(connected bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onConnect = handler
}

// BeginAdvertising advertises the device name and the HID service until
// StopAdvertising is called or a host subscribes. Calling it while already
// advertising is a no-op.
func (t *Transport) BeginAdvertising() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.adCancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.adCancel = cancel
	t.adDone = groutine.Go(ctx, "ble-advertise", func(ctx context.Context) {
		t.logger.WithField("name", t.profile.Name).Info("Advertising")
		err := t.dev.AdvertiseNameAndServices(ctx, t.profile.Name, HIDServiceUUID)
		if err != nil && !errors.Is(err, context.Canceled) {
			t.logger.WithError(device.NormalizeError(err)).Error("Advertising failed")
		}
	})
	return nil
}

// StopAdvertising cancels advertising and waits for the advertiser to exit.
func (t *Transport) StopAdvertising() error {
	t.mu.Lock()
	done := t.cancelAdvertisingLocked()
	t.mu.Unlock()

	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-time.After(DefaultStopTimeout):
		return fmt.Errorf("stop advertising: %w", device.ErrTimeout)
	}
}

func (t *Transport) cancelAdvertisingLocked() <-chan struct{} {
	if t.adCancel == nil {
		return nil
	}
	t.adCancel()
	done := t.adDone
	t.adCancel, t.adDone = nil, nil
	return done
}

// Advertising reports whether the advertiser is running.
func (t *Transport) Advertising() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.adCancel != nil
}

// NotifyInputReport sends report to the subscribed host.
func (t *Transport) NotifyInputReport(report []byte) error {
	r, err := hid.ParseReport(report)
	if err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastReport = r
	if t.input == nil {
		return device.ErrNotConnected
	}
	if _, err := t.input.Write(report); err != nil {
		return device.NormalizeError(err)
	}
	return nil
}

// NotifyBattery updates the Battery Level value and notifies it when the host is
// subscribed. Hosts that never subscribe read the value on demand.
func (t *Transport) NotifyBattery(level uint8) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.level = level
	if t.battery == nil {
		return nil
	}
	if _, err := t.battery.Write([]byte{level}); err != nil {
		return device.NormalizeError(err)
	}
	return nil
}

// BatteryLevel returns the value served to Battery Level reads.
func (t *Transport) BatteryLevel() uint8 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.level
}

// LastReport returns the value served to Input Report reads.
func (t *Transport) LastReport() hid.Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastReport
}

// serveInputReport holds an input report subscription until ctx ends. The
// subscription is the connection as far as the state machine is concerned.
func (t *Transport) serveInputReport(ctx context.Context, n notifier) {
	t.mu.Lock()
	if t.input != nil {
		t.mu.Unlock()
		t.logger.Warn("Second input report subscription ignored")
		return
	}
	t.input = n
	t.cancelAdvertisingLocked()
	handler := t.onConnect
	t.mu.Unlock()

	t.logger.Info("Host subscribed to input reports")
	if handler != nil {
		handler(true)
	}

	<-ctx.Done()

	t.mu.Lock()
	t.input = nil
	handler = t.onConnect
	t.mu.Unlock()

	t.logger.Info("Host unsubscribed from input reports")
	if handler != nil {
		handler(false)
	}
}

func (t *Transport) serveBattery(ctx context.Context, n notifier) {
	t.mu.Lock()
	t.battery = n
	t.mu.Unlock()

	<-ctx.Done()

	t.mu.Lock()
	if t.battery == n {
		t.battery = nil
	}
	t.mu.Unlock()
}

// Close stops advertising and the underlying device. The connect handler is
// detached first, so subscriptions ending during shutdown are not reported.
func (t *Transport) Close() error {
	t.SetConnectHandler(nil)
	if err := t.StopAdvertising(); err != nil {
		t.logger.WithError(err).Warn("Failed to stop advertising")
	}
	return device.NormalizeError(t.dev.Stop())
}
