//go:build test

package testutils

import (
	"sync"
	"time"
)

// FakeClock is a manually advanced clock.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock starts a clock at a fixed instant.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *FakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// FakeIndicator records LED levels.
type FakeIndicator struct {
	mu     sync.Mutex
	lit    bool
	levels []bool
}

func (f *FakeIndicator) On()  { f.Set(true) }
func (f *FakeIndicator) Off() { f.Set(false) }

func (f *FakeIndicator) Set(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lit = on
	f.levels = append(f.levels, on)
}

// Lit reports the last level set.
func (f *FakeIndicator) Lit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lit
}

// Levels returns every level set, in order.
func (f *FakeIndicator) Levels() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.levels...)
}

// FakeBattery returns a settable percentage and counts reads.
type FakeBattery struct {
	mu    sync.Mutex
	level int
	reads int
}

// NewFakeBattery creates a battery at level percent.
func NewFakeBattery(level int) *FakeBattery {
	return &FakeBattery{level: level}
}

func (f *FakeBattery) ReadBatteryPercent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return f.level
}

// SetLevel changes the next reading.
func (f *FakeBattery) SetLevel(level int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.level = level
}

// Reads returns the number of samples taken.
func (f *FakeBattery) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// FakePower counts power-off requests.
type FakePower struct {
	mu   sync.Mutex
	offs int
	Err  error
}

func (f *FakePower) PowerOff() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offs++
	return f.Err
}

// PowerOffs returns the number of PowerOff calls.
func (f *FakePower) PowerOffs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offs
}
