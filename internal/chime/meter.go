package chime

import (
	"math"
	"sync"

	"github.com/faiface/beep"
)

// meter passes a stream through unchanged and keeps its most recent mono
// samples so the overlay can show how loud the chime is.
type meter struct {
	src beep.Streamer

	mu   sync.RWMutex
	ring []float64
	head int
}

func newMeter(src beep.Streamer, size int) *meter {
	return &meter{src: src, ring: make([]float64, size)}
}

func (m *meter) Stream(samples [][2]float64) (int, bool) {
	n, ok := m.src.Stream(samples)
	if n == 0 || len(m.ring) == 0 {
		return n, ok
	}
	m.mu.Lock()
	for _, s := range samples[:n] {
		m.ring[m.head] = (s[0] + s[1]) / 2
		m.head = (m.head + 1) % len(m.ring)
	}
	m.mu.Unlock()
	return n, ok
}

func (m *meter) Err() error { return m.src.Err() }

// rms is the root mean square of the last n samples, n capped at the ring
// size.
func (m *meter) rms(n int) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n = min(n, len(m.ring))
	if n <= 0 {
		return 0
	}
	var sum float64
	for i := 1; i <= n; i++ {
		v := m.ring[(m.head-i+len(m.ring))%len(m.ring)]
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}
