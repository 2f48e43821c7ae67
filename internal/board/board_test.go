package board

import (
	"testing"

	"github.com/srg/blepad/internal/battery"
	"github.com/srg/blepad/internal/controller"
	"github.com/srg/blepad/pkg/config"
	"github.com/stretchr/testify/assert"
)

func TestPinsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, controller.Pins{Clock: 2, Latch: 3, Data: 4}, pins(cfg))
}

func TestBatteryScaleFromConfig(t *testing.T) {
	assert.Equal(t, battery.DefaultScale, batteryScale(config.DefaultConfig()))
}

func TestCloseWithoutHardware(t *testing.T) {
	assert.NoError(t, (&Board{}).Close())
}
