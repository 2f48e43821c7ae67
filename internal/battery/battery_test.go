package battery

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalePercent(t *testing.T) {
	tests := []struct {
		raw  int
		want int
	}{
		{0, 0},
		{-3, 0},
		{4095, 100},
		{3723, 100}, // 3.0002V
		{3722, 99},
		{2048, 55},
		{1241, 33},
		{9999, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultScale.Percent(tt.raw), "raw %d", tt.raw)
	}

	assert.Equal(t, 0, Scale{}.Percent(100), "zero scale MUST read empty")
}

type stubADC struct {
	raw []int
	err error
}

func (s *stubADC) ReadRaw() (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	v := s.raw[0]
	s.raw = s.raw[1:]
	return v, nil
}

func TestSamplerKeepsLastOnError(t *testing.T) {
	adc := &stubADC{raw: []int{2048}}
	s := NewSampler(adc, DefaultScale, nil)

	assert.Equal(t, 55, s.ReadBatteryPercent())

	adc.err = errors.New("i/o error")
	assert.Equal(t, 55, s.ReadBatteryPercent(), "failed read MUST repeat the previous level")
}

func TestSamplerInitialLevel(t *testing.T) {
	s := NewSampler(&stubADC{err: errors.New("no adc")}, DefaultScale, nil)
	assert.Equal(t, 100, s.ReadBatteryPercent())
}

func TestIIOChannel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in_voltage0_raw")
	require.NoError(t, os.WriteFile(path, []byte("3100\n"), 0o644))

	raw, err := NewIIOChannel(path).ReadRaw()
	require.NoError(t, err)
	assert.Equal(t, 3100, raw)

	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))
	_, err = NewIIOChannel(path).ReadRaw()
	assert.ErrorContains(t, err, "invalid ADC sample")

	_, err = NewIIOChannel(filepath.Join(dir, "missing")).ReadRaw()
	assert.ErrorIs(t, err, os.ErrNotExist)
}
