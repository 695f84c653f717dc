package sysmap

import (
	"image/color"
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// seqRand returns vals in order, then fallback forever.
type seqRand struct {
	vals     []float64
	fallback float64
}

func (r *seqRand) Float64() float64 {
	if len(r.vals) == 0 {
		return r.fallback
	}
	v := r.vals[0]
	r.vals = r.vals[1:]
	return v
}

type op struct {
	kind string
	args []float64
}

type recorder struct {
	scale float64
	ops   []op
}

func (r *recorder) SetScale(s float64) { r.scale = s }
func (r *recorder) Clear()             { r.ops = append(r.ops, op{kind: "clear"}) }
func (r *recorder) StrokeRect(x, y, w, h, _ float64, _ color.Color) {
	r.ops = append(r.ops, op{kind: "rect", args: []float64{x, y, w, h}})
}
func (r *recorder) FillRect(x, y, w, h float64, _ color.Color) {
	r.ops = append(r.ops, op{kind: "fill", args: []float64{x, y, w, h}})
}
func (r *recorder) Line(x1, y1, x2, y2, _ float64, _ color.Color) {
	r.ops = append(r.ops, op{kind: "line", args: []float64{x1, y1, x2, y2}})
}
func (r *recorder) Dot(x, y, rad float64, _ color.Color) {
	r.ops = append(r.ops, op{kind: "dot", args: []float64{x, y, rad}})
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, o := range r.ops {
		if o.kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) reset() { r.ops = nil }

type fakeCanvas struct {
	w, h               float64
	backingW, backingH int
	ctx                *recorder
	noContext          bool
}

func (c *fakeCanvas) DisplaySize() (float64, float64) { return c.w, c.h }
func (c *fakeCanvas) SetBackingSize(w, h int)         { c.backingW, c.backingH = w, h }
func (c *fakeCanvas) Context() Context {
	if c.noContext {
		return nil
	}
	return c.ctx
}

type fakeHost struct {
	canvas    *fakeCanvas
	noCanvas  bool
	ratio     float64
	listeners map[int]func()
	nextID    int
}

func newFakeHost(w, h, ratio float64) *fakeHost {
	return &fakeHost{
		canvas:    &fakeCanvas{w: w, h: h, ctx: &recorder{}},
		ratio:     ratio,
		listeners: map[int]func(){},
	}
}

func (h *fakeHost) Canvas() Canvas {
	if h.noCanvas {
		return nil
	}
	return h.canvas
}

func (h *fakeHost) DevicePixelRatio() float64 { return h.ratio }

func (h *fakeHost) OnResize(fn func()) func() {
	h.nextID++
	id := h.nextID
	h.listeners[id] = fn
	return func() { delete(h.listeners, id) }
}

func (h *fakeHost) resize(w, hh float64) {
	h.canvas.w, h.canvas.h = w, hh
	for _, fn := range h.listeners {
		fn()
	}
}

// spyScheduler remembers the last callback so tests can fire it after it
// was cancelled.
type spyScheduler struct {
	ManualScheduler
	last func()
}

func (s *spyScheduler) RequestFrame(fn func()) FrameID {
	s.last = fn
	return s.ManualScheduler.RequestFrame(fn)
}
