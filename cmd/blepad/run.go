package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/blepad/bridge"
	"github.com/srg/blepad/internal/board"
	"github.com/srg/blepad/internal/device"
	goble "github.com/srg/blepad/internal/device/go-ble"
	"github.com/srg/blepad/internal/lifecycle"
	"github.com/srg/blepad/pkg/config"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the gamepad bridge",
	Long: `Powers the board on, advertises as a HID gamepad and forwards controller input
to the connected host until interrupted or powered off after the idle timeout.

Examples:
  # Run with defaults (pins 2/3/4, /dev/gpiochip0)
  blepad run

  # Run with a configuration file and debug logs
  blepad run --config /etc/blepad.yaml --log-level debug`,
	Args: cobra.NoArgs,
	RunE: runBridge,
}

var runVerbose bool

func init() {
	runCmd.Flags().BoolVar(&runVerbose, "verbose", false, "Enable debug logging")
}

func runBridge(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger, err := configureLogger(cmd, "verbose", cfg)
	if err != nil {
		return err
	}

	hw, err := board.Open(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open board: %w", err)
	}
	defer func() {
		if err := hw.Close(); err != nil {
			logger.WithError(err).Warn("Failed to release board")
		}
	}()

	hw.Power.PowerOn()

	transport, err := goble.Open(profileFromConfig(cfg), logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := transport.Close(); err != nil {
			logger.WithError(err).Debug("Failed to stop BLE device")
		}
	}()

	machine := device.NewMachine(transport, logger)
	timers := lifecycle.New(machine, hw.LED, hw.Battery, hw.Power, timerOptions(cfg), logger)
	b := bridge.New(hw.Sampler, machine, timers, bridge.Options{
		PollInterval: cfg.Timing.PollInterval,
		Logger:       logger,
	})
	defer b.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go logTransitions(b, logger)

	if err := b.Begin(); err != nil {
		return err
	}

	err = b.Run(ctx)
	if errors.Is(err, lifecycle.ErrPoweredOff) {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		logger.Info("Interrupted, shutting down")
	}
	return err
}

// logTransitions drains the bridge event ring until it is closed.
func logTransitions(b *bridge.Bridge, logger *logrus.Logger) {
	for t := range b.Events().C() {
		logger.WithFields(logrus.Fields{
			"from":  t.From,
			"to":    t.To,
			"event": t.Event,
		}).Debug("Transition observed")
	}
}

func profileFromConfig(cfg *config.Config) goble.Profile {
	return goble.Profile{
		Name:         cfg.Device.Name,
		Manufacturer: cfg.Device.Manufacturer,
		PnP: goble.PnPID{
			VendorIDSource: cfg.Device.VendorIDSource,
			VendorID:       cfg.Device.VendorID,
			ProductID:      cfg.Device.ProductID,
			ProductVersion: cfg.Device.ProductVersion,
		},
		CountryCode: cfg.Device.CountryCode,
		HIDFlags:    cfg.Device.HIDFlags,
	}
}

func timerOptions(cfg *config.Config) lifecycle.Options {
	return lifecycle.Options{
		IdleTimeout:        cfg.Timing.IdleTimeout,
		AdvertisingTimeout: cfg.Timing.AdvertisingTimeout,
		BatteryInterval:    cfg.Timing.BatteryInterval,
		BlinkPeriod:        cfg.Timing.BlinkPeriod,
	}
}
