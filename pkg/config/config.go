package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	LogLevel       string        `yaml:"log_level" default:"info"`
	HaltOnPowerOff bool          `yaml:"halt_on_power_off"`
	Device         DeviceConfig  `yaml:"device"`
	Timing         TimingConfig  `yaml:"timing"`
	Pins           PinConfig     `yaml:"pins"`
	GPIO           GPIOConfig    `yaml:"gpio"`
	Battery        BatteryConfig `yaml:"battery"`
}

// DeviceConfig is what the host sees: the advertised name plus the Device Information
// and HID Information characteristics. Defaults are the PnP ID 0x01/0x02E5/0xABCD/0x0110.
type DeviceConfig struct {
	Name           string `yaml:"name" default:"NES Advantage"`
	Manufacturer   string `yaml:"manufacturer" default:"NES Advantage BT"`
	VendorIDSource uint8  `yaml:"vendor_id_source" default:"1"`
	VendorID       uint16 `yaml:"vendor_id" default:"741"`
	ProductID      uint16 `yaml:"product_id" default:"43981"`
	ProductVersion uint16 `yaml:"product_version" default:"272"`
	CountryCode    uint8  `yaml:"country_code" default:"0"`
	HIDFlags       uint8  `yaml:"hid_flags" default:"1"`
}

// TimingConfig holds the polling cadence and lifecycle thresholds.
type TimingConfig struct {
	PollInterval       time.Duration `yaml:"poll_interval" default:"10ms"`
	IdleTimeout        time.Duration `yaml:"idle_timeout" default:"30s"`
	AdvertisingTimeout time.Duration `yaml:"advertising_timeout" default:"30s"`
	BatteryInterval    time.Duration `yaml:"battery_interval" default:"5s"`
	BlinkPeriod        time.Duration `yaml:"blink_period" default:"500ms"`
}

// PinConfig maps functions to GPIO line offsets.
type PinConfig struct {
	Clock    int `yaml:"clock" default:"2"`
	Latch    int `yaml:"latch" default:"3"`
	Data     int `yaml:"data" default:"4"`
	PowerKey int `yaml:"power_key" default:"1"`
	LED      int `yaml:"led" default:"8"`
}

type GPIOConfig struct {
	Chip       string `yaml:"chip" default:"/dev/gpiochip0"`
	Consumer   string `yaml:"consumer" default:"blepad"`
	DataPullUp bool   `yaml:"data_pull_up" default:"true"`
}

type BatteryConfig struct {
	ADCPath   string  `yaml:"adc_path" default:"/sys/bus/iio/devices/iio:device0/in_voltage0_raw"`
	ADCMax    int     `yaml:"adc_max" default:"4095"`
	Reference float64 `yaml:"reference_volts" default:"3.3"`
	FullScale float64 `yaml:"full_scale_volts" default:"3.0"`
}

// DefaultConfig returns default configuration values
func DefaultConfig() *Config {
	cfg := &Config{}
	defaults.SetDefaults(cfg)
	defaults.SetDefaults(&cfg.Device)
	defaults.SetDefaults(&cfg.Timing)
	defaults.SetDefaults(&cfg.Pins)
	defaults.SetDefaults(&cfg.GPIO)
	defaults.SetDefaults(&cfg.Battery)
	return cfg
}

// Load returns the defaults overlaid with the YAML file at path. An empty path
// returns the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects settings the bridge cannot run with.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}

	durations := map[string]time.Duration{
		"poll_interval":       c.Timing.PollInterval,
		"idle_timeout":        c.Timing.IdleTimeout,
		"advertising_timeout": c.Timing.AdvertisingTimeout,
		"battery_interval":    c.Timing.BatteryInterval,
		"blink_period":        c.Timing.BlinkPeriod,
	}
	for _, name := range []string{"poll_interval", "idle_timeout", "advertising_timeout", "battery_interval", "blink_period"} {
		if durations[name] <= 0 {
			errs = append(errs, fmt.Errorf("timing.%s must be positive, got %s", name, durations[name]))
		}
	}

	seen := make(map[int]string)
	for _, p := range []struct {
		name string
		pin  int
	}{
		{"clock", c.Pins.Clock},
		{"latch", c.Pins.Latch},
		{"data", c.Pins.Data},
		{"power_key", c.Pins.PowerKey},
		{"led", c.Pins.LED},
	} {
		if p.pin < 0 {
			errs = append(errs, fmt.Errorf("pins.%s must not be negative", p.name))
			continue
		}
		if other, dup := seen[p.pin]; dup {
			errs = append(errs, fmt.Errorf("pins.%s and pins.%s share line %d", other, p.name, p.pin))
			continue
		}
		seen[p.pin] = p.name
	}

	if c.Battery.ADCMax <= 0 {
		errs = append(errs, errors.New("battery.adc_max must be positive"))
	}
	if c.Device.Name == "" {
		errs = append(errs, errors.New("device.name must not be empty"))
	}

	return errors.Join(errs...)
}

// NewLogger creates a configured logger instance
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Use structured logging format
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	return logger
}
