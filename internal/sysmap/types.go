// Package sysmap simulates and draws the animated "system map": drifting
// rectangles, lines between linked pairs and short-lived pulses travelling
// along those lines.
package sysmap

import "image/color"

// Node is a drifting rectangle. X and Y are its top-left corner in logical
// pixels.
type Node struct {
	X, Y   float64
	VX, VY float64
	W, H   float64
}

// Center returns the centre of the node's rectangle.
func (n Node) Center() (float64, float64) {
	return n.X + n.W/2, n.Y + n.H/2
}

// Connection links two nodes by index. From is always less than To.
type Connection struct {
	From, To int
}

// Particle is a pulse travelling from node From to node To.
type Particle struct {
	From, To int
	Progress float64
	Speed    float64
}

// Stats counts work done since the animator was created.
type Stats struct {
	Frames  uint64 `yaml:"frames"`
	Spawned uint64 `yaml:"spawned"`
	Arrived uint64 `yaml:"arrived"`
}

// Rand is the random source. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
}

// FrameID identifies a requested frame so it can be cancelled.
type FrameID uint64

// Scheduler runs callbacks once per display frame.
type Scheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// Context is the drawing surface. Coordinates are logical pixels; the
// context maps them to backing pixels using the scale set by SetScale.
type Context interface {
	// SetScale resets the transform and scales subsequent drawing by s.
	SetScale(s float64)
	Clear()
	StrokeRect(x, y, w, h, width float64, c color.Color)
	FillRect(x, y, w, h float64, c color.Color)
	Line(x1, y1, x2, y2, width float64, c color.Color)
	Dot(x, y, r float64, c color.Color)
}

// Canvas is the element the animator paints into.
type Canvas interface {
	// DisplaySize is the size the canvas occupies, in logical pixels.
	DisplaySize() (float64, float64)
	// SetBackingSize sizes the underlying pixel buffer.
	SetBackingSize(w, h int)
	// Context returns nil when drawing is unsupported.
	Context() Context
}

// Host provides the canvas, the device pixel ratio and resize events.
type Host interface {
	// Canvas returns nil when there is nothing to draw into.
	Canvas() Canvas
	DevicePixelRatio() float64
	OnResize(fn func()) (remove func())
}
