package power

import (
	"errors"
	"testing"
	"time"

	"github.com/srg/blepad/internal/controller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type step struct {
	write bool
	high  bool
	sleep time.Duration
}

type recorder struct {
	steps []step
}

func (r *recorder) WritePin(pin controller.Pin, high bool) {
	r.steps = append(r.steps, step{write: true, high: high})
}

func (r *recorder) Sleep(d time.Duration) {
	r.steps = append(r.steps, step{sleep: d})
}

func newTestController(halt HaltFunc) (*Controller, *recorder) {
	rec := &recorder{}
	c := New(rec, 1, halt, nil)
	c.sleep = rec.Sleep
	return c, rec
}

func TestPowerOnSequence(t *testing.T) {
	c, rec := newTestController(nil)

	c.PowerOn()

	assert.Equal(t, []step{
		{write: true, high: false},
		{sleep: 200 * time.Millisecond},
		{write: true, high: true},
	}, rec.steps)
}

func TestPowerOffSequence(t *testing.T) {
	halted := 0
	c, rec := newTestController(func() error {
		halted++
		return nil
	})

	require.NoError(t, c.PowerOff())

	assert.Equal(t, []step{
		{write: true, high: false},
		{sleep: 100 * time.Millisecond},
		{write: true, high: true},
		{sleep: 100 * time.Millisecond},
		{write: true, high: false},
		{sleep: 100 * time.Millisecond},
		{write: true, high: true},
	}, rec.steps)
	assert.Equal(t, 1, halted, "halt MUST run after the key sequence")
}

func TestPowerOffHaltError(t *testing.T) {
	c, _ := newTestController(func() error { return errors.New("operation not permitted") })

	assert.EqualError(t, c.PowerOff(), "failed to halt: operation not permitted")
}
