//go:build !linux

package power

import "github.com/srg/blepad/internal/device"

// SystemHalt is only available on Linux.
func SystemHalt() error {
	return device.ErrUnsupported
}
