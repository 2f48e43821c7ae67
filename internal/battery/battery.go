// Package battery turns raw ADC samples of the battery divider into a charge
// percentage.
package battery

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Scale describes the ADC and the divider voltage that reads as a full battery.
type Scale struct {
	ADCMax    int
	Reference float64
	FullScale float64
}

// DefaultScale is a 12-bit ADC against 3.3V where 3.0V at the pin means 100%.
var DefaultScale = Scale{ADCMax: 4095, Reference: 3.3, FullScale: 3.0}

// Percent converts a raw sample, truncating toward zero and capping at 100.
func (s Scale) Percent(raw int) int {
	if raw <= 0 || s.ADCMax <= 0 || s.FullScale <= 0 {
		return 0
	}
	volts := float64(raw) / float64(s.ADCMax) * s.Reference
	return min(100, int(volts/s.FullScale*100))
}

// ADC yields raw samples.
type ADC interface {
	ReadRaw() (int, error)
}

// Sampler implements lifecycle.BatterySampler on top of an ADC. A failed read
// repeats the previous percentage.
type Sampler struct {
	mu     sync.Mutex
	adc    ADC
	scale  Scale
	last   int
	logger *logrus.Logger
}

// NewSampler creates a sampler. Until the first successful read it reports 100.
func NewSampler(adc ADC, scale Scale, logger *logrus.Logger) *Sampler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Sampler{adc: adc, scale: scale, last: 100, logger: logger}
}

func (s *Sampler) ReadBatteryPercent() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.adc.ReadRaw()
	if err != nil {
		s.logger.WithError(err).Warn("Battery read failed, keeping last level")
		return s.last
	}

	s.last = s.scale.Percent(raw)
	s.logger.WithFields(logrus.Fields{"raw": raw, "level": s.last}).Debug("Battery sampled")
	return s.last
}

// IIOChannel reads an industrial-I/O ADC channel such as
// /sys/bus/iio/devices/iio:device0/in_voltage0_raw.
type IIOChannel struct {
	path string
}

// NewIIOChannel creates a reader for the sysfs attribute at path.
func NewIIOChannel(path string) *IIOChannel {
	return &IIOChannel{path: path}
}

func (c *IIOChannel) ReadRaw() (int, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read ADC channel: %w", err)
	}
	raw, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid ADC sample in %s: %w", c.path, err)
	}
	return raw, nil
}
