//go:build !linux

package board

import (
	"github.com/sirupsen/logrus"
	"github.com/srg/blepad/internal/device"
	"github.com/srg/blepad/pkg/config"
)

// Open is only supported on Linux, which provides the GPIO character device.
func Open(_ *config.Config, _ *logrus.Logger) (*Board, error) {
	return nil, device.ErrUnsupported
}
