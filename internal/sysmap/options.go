package sysmap

import "image/color"

// Options tunes the simulation. The probabilities and speeds are visual
// tuning, not behaviour.
type Options struct {
	NodeCount          int
	ConnectProbability float64
	SpawnProbability   float64
	// MaxSpeed bounds each velocity component, in px per frame.
	MaxSpeed   float64
	NodeWidth  float64
	NodeHeight float64
	// SizeJitter in [0,1) varies each node's size by up to ±jitter/2 of the
	// base size. Zero keeps every node the same size.
	SizeJitter       float64
	ParticleSpeedMin float64
	ParticleSpeedMax float64
	ParticleRadius   float64
	LineWidth        float64

	NodeStroke    color.Color
	NodeFill      color.Color
	LineColor     color.Color
	ParticleColor color.Color

	// OnArrive, when set, is called for each particle that reaches its
	// destination.
	OnArrive func(p Particle)
}

// DefaultOptions matches the tuning of the hero page.
func DefaultOptions() Options {
	return Options{
		NodeCount:          10,
		ConnectProbability: 0.3,
		SpawnProbability:   0.01,
		MaxSpeed:           0.15,
		NodeWidth:          30,
		NodeHeight:         20,
		ParticleSpeedMin:   0.005,
		ParticleSpeedMax:   0.015,
		ParticleRadius:     2,
		LineWidth:          1,
		NodeStroke:         color.NRGBA{R: 255, G: 255, B: 255, A: 26},
		NodeFill:           color.NRGBA{R: 255, G: 255, B: 255, A: 5},
		LineColor:          color.NRGBA{R: 255, G: 255, B: 255, A: 20},
		ParticleColor:      color.NRGBA{R: 255, G: 41, B: 182, A: 220},
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.NodeCount <= 0 {
		o.NodeCount = d.NodeCount
	}
	if o.NodeWidth <= 0 {
		o.NodeWidth = d.NodeWidth
	}
	if o.NodeHeight <= 0 {
		o.NodeHeight = d.NodeHeight
	}
	// Particles must always make progress.
	if o.ParticleSpeedMin <= 0 || o.ParticleSpeedMax <= 0 {
		o.ParticleSpeedMin, o.ParticleSpeedMax = d.ParticleSpeedMin, d.ParticleSpeedMax
	}
	if o.ParticleSpeedMax < o.ParticleSpeedMin {
		o.ParticleSpeedMin, o.ParticleSpeedMax = o.ParticleSpeedMax, o.ParticleSpeedMin
	}
	if o.ParticleRadius <= 0 {
		o.ParticleRadius = d.ParticleRadius
	}
	if o.LineWidth <= 0 {
		o.LineWidth = d.LineWidth
	}
	if o.NodeStroke == nil {
		o.NodeStroke = d.NodeStroke
	}
	if o.LineColor == nil {
		o.LineColor = d.LineColor
	}
	if o.ParticleColor == nil {
		o.ParticleColor = d.ParticleColor
	}
	return o
}
