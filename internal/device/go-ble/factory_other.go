//go:build !linux && !darwin

package goble

import "github.com/srg/blepad/internal/device"

// DeviceFactory creates the BLE device (can be overridden in tests)
//
//nolint:revive // DeviceFactory name is intentional for test mocking
var DeviceFactory = func() (Peripheral, error) {
	return nil, device.ErrUnsupported
}
