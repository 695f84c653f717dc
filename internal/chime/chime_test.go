package chime

import (
	"math"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/systemmap/internal/config"
)

func testSound() config.Sound {
	s := config.DefaultConfig().Sound
	s.Enabled = true
	return s
}

func TestTone(t *testing.T) {
	sr := beep.SampleRate(8000)
	s := Tone(sr, 440, 50*time.Millisecond)

	buf := make([][2]float64, 128)
	total := 0
	peak := 0.0
	for {
		n, ok := s.Stream(buf)
		if !ok {
			break
		}
		for _, smp := range buf[:n] {
			assert.Equal(t, smp[0], smp[1])
			peak = math.Max(peak, math.Abs(smp[0]))
		}
		total += n
	}
	assert.Equal(t, sr.N(50*time.Millisecond), total)
	assert.LessOrEqual(t, peak, 1.0)
	assert.Greater(t, peak, 0.1)
}

func TestChime_PulseFeedsMeter(t *testing.T) {
	locks := 0
	c := newChime(testSound(), func() { locks++ }, func() {})
	assert.Zero(t, c.Level())

	require.True(t, c.Pulse())
	assert.Equal(t, 1, locks)
	assert.Equal(t, 1, c.mixer.Len())

	buf := make([][2]float64, 2048)
	n, ok := c.meter.Stream(buf)
	require.True(t, ok)
	require.Equal(t, len(buf), n)
	assert.Greater(t, c.Level(), 0.0)
	assert.LessOrEqual(t, c.Level(), 1.0)
}

func TestChime_RateLimited(t *testing.T) {
	c := newChime(testSound(), func() {}, func() {})
	now := time.Unix(100, 0)
	c.now = func() time.Time { return now }

	assert.True(t, c.Pulse())
	now = now.Add(50 * time.Millisecond)
	assert.False(t, c.Pulse(), "inside min gap")
	now = now.Add(100 * time.Millisecond)
	assert.True(t, c.Pulse())
	assert.Equal(t, uint64(2), c.Pulses())
}

func TestMeter_RMS(t *testing.T) {
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			samples[i] = [2]float64{0.5, 0.5}
		}
		return len(samples), true
	})
	m := newMeter(src, 16)
	buf := make([][2]float64, 40)
	_, _ = m.Stream(buf)

	assert.InDelta(t, 0.5, m.rms(8), 1e-12)
	assert.InDelta(t, 0.5, m.rms(100), 1e-12, "clamped to ring size")
	assert.Zero(t, m.rms(0))
}

func TestMeter_KeepsNewestSamples(t *testing.T) {
	next := 0.0
	src := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			next += 0.1
			samples[i] = [2]float64{next, next}
		}
		return len(samples), true
	})
	m := newMeter(src, 4)
	buf := make([][2]float64, 3)
	for i := 0; i < 3; i++ {
		_, _ = m.Stream(buf)
	}

	assert.InDelta(t, 0.9, m.rms(1), 1e-9)
	assert.InDelta(t, math.Sqrt((0.81+0.64)/2), m.rms(2), 1e-9)
}
