package sysmap

import "image/color"

// ManualScheduler queues frame callbacks until Tick is called. It drives the
// animator without a display.
type ManualScheduler struct {
	next    FrameID
	pending []scheduled
}

type scheduled struct {
	id FrameID
	fn func()
}

// RequestFrame queues fn for the next Tick.
func (s *ManualScheduler) RequestFrame(fn func()) FrameID {
	s.next++
	s.pending = append(s.pending, scheduled{id: s.next, fn: fn})
	return s.next
}

// CancelFrame drops a queued callback. Unknown ids are ignored.
func (s *ManualScheduler) CancelFrame(id FrameID) {
	for i, p := range s.pending {
		if p.id == id {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}

// Pending returns the number of queued callbacks.
func (s *ManualScheduler) Pending() int { return len(s.pending) }

// Tick runs the callbacks queued before the call. Callbacks they request
// wait for the next Tick. It returns the number of callbacks run.
func (s *ManualScheduler) Tick() int {
	batch := s.pending
	s.pending = nil
	for _, p := range batch {
		p.fn()
	}
	return len(batch)
}

// Tally is a Context that only counts what would be drawn.
type Tally struct {
	Scale  float64 `yaml:"scale"`
	Clears int     `yaml:"clears"`
	Rects  int     `yaml:"rects"`
	Fills  int     `yaml:"fills"`
	Lines  int     `yaml:"lines"`
	Dots   int     `yaml:"dots"`
}

func (t *Tally) SetScale(s float64)                              { t.Scale = s }
func (t *Tally) Clear()                                          { t.Clears++ }
func (t *Tally) StrokeRect(_, _, _, _, _ float64, _ color.Color) { t.Rects++ }
func (t *Tally) FillRect(_, _, _, _ float64, _ color.Color)      { t.Fills++ }
func (t *Tally) Line(_, _, _, _, _ float64, _ color.Color)       { t.Lines++ }
func (t *Tally) Dot(_, _, _ float64, _ color.Color)              { t.Dots++ }

// HeadlessHost is a fixed-size Host backed by a Tally.
type HeadlessHost struct {
	Width, Height float64
	Ratio         float64
	Tally         Tally

	backingW, backingH int
}

func (h *HeadlessHost) Canvas() Canvas                  { return h }
func (h *HeadlessHost) DevicePixelRatio() float64       { return h.Ratio }
func (h *HeadlessHost) OnResize(func()) func()          { return func() {} }
func (h *HeadlessHost) DisplaySize() (float64, float64) { return h.Width, h.Height }
func (h *HeadlessHost) SetBackingSize(w, hh int)        { h.backingW, h.backingH = w, hh }
func (h *HeadlessHost) Context() Context                { return &h.Tally }

// BackingSize returns the pixel size last requested by the animator.
func (h *HeadlessHost) BackingSize() (int, int) { return h.backingW, h.backingH }
