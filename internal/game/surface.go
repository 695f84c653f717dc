package game

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/systemmap/internal/sysmap"
)

// window is the animator's host and canvas. Ebiten reports the outside size
// through Layout; window turns changes into resize events.
type window struct {
	width, height      float64
	backingW, backingH int
	ratio              float64
	deviceScale        func() float64

	list *displayList

	listeners map[int]func()
	nextID    int
}

func newWindow(deviceScale func() float64) *window {
	if deviceScale == nil {
		deviceScale = func() float64 { return ebiten.Monitor().DeviceScaleFactor() }
	}
	return &window{
		deviceScale: deviceScale,
		list:        &displayList{scale: 1, opacity: 1},
		listeners:   map[int]func(){},
	}
}

func (w *window) Canvas() sysmap.Canvas {
	if w.width <= 0 || w.height <= 0 {
		return nil
	}
	return w
}

func (w *window) DevicePixelRatio() float64 { return w.ratio }

func (w *window) OnResize(fn func()) func() {
	w.nextID++
	id := w.nextID
	w.listeners[id] = fn
	return func() { delete(w.listeners, id) }
}

func (w *window) DisplaySize() (float64, float64) { return w.width, w.height }

func (w *window) SetBackingSize(bw, bh int) { w.backingW, w.backingH = bw, bh }

func (w *window) Context() sysmap.Context { return w.list }

// layout records the logical size and returns the screen size in device
// pixels. Listeners fire when either the size or the scale changed.
func (w *window) layout(outsideWidth, outsideHeight int) (int, int) {
	ratio := w.deviceScale()
	if ratio <= 0 {
		ratio = 1
	}
	width, height := float64(outsideWidth), float64(outsideHeight)
	changed := width != w.width || height != w.height || ratio != w.ratio
	w.width, w.height, w.ratio = width, height, ratio
	if changed {
		for _, fn := range w.listeners {
			fn()
		}
	}
	return int(math.Round(width * ratio)), int(math.Round(height * ratio))
}

type opKind int

const (
	opStrokeRect opKind = iota
	opFillRect
	opLine
	opDot
)

type drawOp struct {
	kind           opKind
	x1, y1, x2, y2 float64
	width          float64
	clr            color.Color
}

// displayList is the sysmap.Context used by the game. The animator records
// into it during Update and Draw replays it onto the screen.
type displayList struct {
	scale   float64
	opacity float64
	// dotColor, when set, overrides particle colours at replay.
	dotColor color.Color
	ops      []drawOp
}

func (d *displayList) SetScale(s float64) { d.scale = s }

func (d *displayList) Clear() { d.ops = d.ops[:0] }

func (d *displayList) StrokeRect(x, y, w, h, width float64, c color.Color) {
	d.ops = append(d.ops, drawOp{kind: opStrokeRect, x1: x, y1: y, x2: w, y2: h, width: width, clr: c})
}

func (d *displayList) FillRect(x, y, w, h float64, c color.Color) {
	d.ops = append(d.ops, drawOp{kind: opFillRect, x1: x, y1: y, x2: w, y2: h, clr: c})
}

func (d *displayList) Line(x1, y1, x2, y2, width float64, c color.Color) {
	d.ops = append(d.ops, drawOp{kind: opLine, x1: x1, y1: y1, x2: x2, y2: y2, width: width, clr: c})
}

func (d *displayList) Dot(x, y, r float64, c color.Color) {
	d.ops = append(d.ops, drawOp{kind: opDot, x1: x, y1: y, width: r, clr: c})
}

func (d *displayList) len() int { return len(d.ops) }

func (d *displayList) replay(dst *ebiten.Image) {
	s := float32(d.scale)
	for _, op := range d.ops {
		clr := op.clr
		if op.kind == opDot && d.dotColor != nil {
			clr = d.dotColor
		}
		clr = withOpacity(clr, d.opacity)

		x1, y1 := float32(op.x1)*s, float32(op.y1)*s
		x2, y2 := float32(op.x2)*s, float32(op.y2)*s
		width := float32(op.width) * s
		switch op.kind {
		case opStrokeRect:
			vector.StrokeRect(dst, x1, y1, x2, y2, width, clr, true)
		case opFillRect:
			vector.DrawFilledRect(dst, x1, y1, x2, y2, clr, true)
		case opLine:
			vector.StrokeLine(dst, x1, y1, x2, y2, width, clr, true)
		case opDot:
			vector.DrawFilledCircle(dst, x1, y1, width, clr, true)
		}
	}
}
