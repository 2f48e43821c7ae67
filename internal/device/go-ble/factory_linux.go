//go:build linux

package goble

import "github.com/go-ble/ble/linux"

// DeviceFactory creates the BLE device on the first HCI adapter (can be overridden in tests)
//
//nolint:revive // DeviceFactory name is intentional for test mocking
var DeviceFactory = func() (Peripheral, error) {
	dev, err := linux.NewDevice()
	if err != nil {
		return nil, err
	}
	return dev, nil
}
