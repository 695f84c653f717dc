// Package chime plays a short tone whenever a particle reaches its node.
package chime

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"go.uber.org/zap"

	"github.com/iburimskiy/systemmap/internal/config"
)

const ringSize = 4096

// Chime mixes short tones into one stream that plays for the life of the
// process. Pulse is safe to call from the game loop.
type Chime struct {
	sr     beep.SampleRate
	freq   float64
	dur    time.Duration
	volume float64
	minGap time.Duration

	mixer *beep.Mixer
	meter *meter

	lock, unlock func()
	now          func() time.Time

	mu     sync.Mutex
	last   time.Time
	pulses uint64

	log *zap.Logger
}

// New initialises the speaker and starts the silent mix.
func New(cfg config.Sound, logger *zap.Logger) (*Chime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sr := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(time.Second/20)); err != nil {
		return nil, fmt.Errorf("initialising speaker: %w", err)
	}
	c := newChime(cfg, speaker.Lock, speaker.Unlock)
	c.log = logger
	speaker.Play(c.meter)
	logger.Info("chime ready", zap.Int("sample_rate", cfg.SampleRate), zap.Float64("frequency", cfg.Frequency))
	return c, nil
}

func newChime(cfg config.Sound, lock, unlock func()) *Chime {
	mixer := &beep.Mixer{}
	return &Chime{
		sr:     beep.SampleRate(cfg.SampleRate),
		freq:   cfg.Frequency,
		dur:    cfg.Duration,
		volume: cfg.Volume,
		minGap: cfg.MinGap,
		mixer:  mixer,
		meter:  newMeter(mixer, ringSize),
		lock:   lock,
		unlock: unlock,
		now:    time.Now,
		log:    zap.NewNop(),
	}
}

// Pulse queues one tone unless another started less than the minimum gap
// ago. It reports whether a tone was queued.
func (c *Chime) Pulse() bool {
	c.mu.Lock()
	now := c.now()
	if !c.last.IsZero() && now.Sub(c.last) < c.minGap {
		c.mu.Unlock()
		return false
	}
	c.last = now
	c.pulses++
	c.mu.Unlock()

	s := &effects.Volume{
		Streamer: Tone(c.sr, c.freq, c.dur),
		Base:     2,
		Volume:   c.volume,
	}
	c.lock()
	c.mixer.Add(s)
	c.unlock()
	return true
}

// Pulses returns how many tones were queued.
func (c *Chime) Pulses() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pulses
}

// Level is the recent output loudness in [0,1].
func (c *Chime) Level() float64 {
	return math.Min(1, c.meter.rms(c.sr.N(time.Second/30)))
}

// Close silences the speaker.
func (c *Chime) Close() {
	speaker.Clear()
	c.log.Debug("chime closed", zap.Uint64("pulses", c.Pulses()))
}

// Tone is a sine at freq hertz that fades out over dur.
func Tone(sr beep.SampleRate, freq float64, dur time.Duration) beep.Streamer {
	total := sr.N(dur)
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		i := 0
		for ; i < len(samples) && pos < total; i++ {
			env := 1 - float64(pos)/float64(total)
			v := math.Sin(2*math.Pi*freq*float64(pos)/float64(sr)) * env * env
			samples[i] = [2]float64{v, v}
			pos++
		}
		return i, true
	})
}
