package sysmap

import (
	"math"

	"go.uber.org/zap"
)

// Animator owns one canvas and the simulation drawn into it. All methods
// must be called from the goroutine that runs the scheduler's callbacks.
type Animator struct {
	host  Host
	sched Scheduler
	rnd   Rand
	opts  Options
	log   *zap.Logger

	canvas Canvas
	ctx    Context

	width, height float64
	nodes         []Node
	conns         []Connection
	particles     []Particle

	running      bool
	pending      FrameID
	hasPending   bool
	removeResize func()

	stats Stats
}

// New creates an animator. Nothing happens until Start.
func New(host Host, sched Scheduler, rnd Rand, opts Options, logger *zap.Logger) *Animator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Animator{
		host:  host,
		sched: sched,
		rnd:   rnd,
		opts:  opts.withDefaults(),
		log:   logger,
	}
}

// Start mounts the animator. A missing canvas or context makes it a no-op.
func (a *Animator) Start() {
	if a.running {
		return
	}
	if a.host == nil || a.sched == nil || a.rnd == nil {
		a.log.Debug("system map not started: missing collaborator")
		return
	}
	canvas := a.host.Canvas()
	if canvas == nil {
		a.log.Debug("system map not started: no canvas")
		return
	}
	ctx := canvas.Context()
	if ctx == nil {
		a.log.Debug("system map not started: no drawing context")
		return
	}
	a.canvas = canvas
	a.ctx = ctx
	a.running = true

	a.init()
	a.removeResize = a.host.OnResize(a.Resize)
	a.requestFrame()

	a.log.Info("system map started",
		zap.Float64("width", a.width),
		zap.Float64("height", a.height),
		zap.Int("nodes", len(a.nodes)),
		zap.Int("connections", len(a.conns)))
}

// Stop unmounts the animator: the pending frame is cancelled and the resize
// listener removed.
func (a *Animator) Stop() {
	if !a.running {
		return
	}
	a.running = false
	if a.hasPending {
		a.sched.CancelFrame(a.pending)
		a.hasPending = false
	}
	if a.removeResize != nil {
		a.removeResize()
		a.removeResize = nil
	}
	a.log.Info("system map stopped", zap.Uint64("frames", a.stats.Frames))
}

// Resize discards the simulation and rebuilds it for the canvas's current
// size. A frame already requested draws the new state.
func (a *Animator) Resize() {
	if !a.running {
		return
	}
	a.init()
	a.log.Debug("system map resized",
		zap.Float64("width", a.width),
		zap.Float64("height", a.height))
}

// SetRand replaces the random source. It takes effect on the next rebuild.
func (a *Animator) SetRand(rnd Rand) {
	if rnd != nil {
		a.rnd = rnd
	}
}

// Reconfigure swaps the options and rebuilds the simulation.
func (a *Animator) Reconfigure(opts Options) {
	a.opts = opts.withDefaults()
	if a.running {
		a.init()
	}
}

func (a *Animator) init() {
	a.width, a.height = a.canvas.DisplaySize()

	dpr := a.host.DevicePixelRatio()
	if dpr <= 0 {
		dpr = 1
	}
	a.canvas.SetBackingSize(int(math.Round(a.width*dpr)), int(math.Round(a.height*dpr)))
	a.ctx.SetScale(dpr)

	o := a.opts
	a.nodes = make([]Node, o.NodeCount)
	for i := range a.nodes {
		n := Node{
			X:  a.rnd.Float64() * a.width,
			Y:  a.rnd.Float64() * a.height,
			VX: (a.rnd.Float64() - 0.5) * 2 * o.MaxSpeed,
			VY: (a.rnd.Float64() - 0.5) * 2 * o.MaxSpeed,
			W:  o.NodeWidth,
			H:  o.NodeHeight,
		}
		if o.SizeJitter > 0 {
			n.W = o.NodeWidth * (1 + (a.rnd.Float64()-0.5)*o.SizeJitter)
			n.H = o.NodeHeight * (1 + (a.rnd.Float64()-0.5)*o.SizeJitter)
		}
		a.nodes[i] = n
	}

	a.conns = a.conns[:0]
	for i := 0; i < len(a.nodes); i++ {
		for j := i + 1; j < len(a.nodes); j++ {
			if a.rnd.Float64() < o.ConnectProbability {
				a.conns = append(a.conns, Connection{From: i, To: j})
			}
		}
	}

	a.particles = nil
}

func (a *Animator) requestFrame() {
	a.pending = a.sched.RequestFrame(a.frame)
	a.hasPending = true
}

func (a *Animator) frame() {
	a.hasPending = false
	if !a.running {
		return
	}
	a.stats.Frames++
	o := a.opts
	ctx := a.ctx

	ctx.Clear()

	for i := range a.nodes {
		n := &a.nodes[i]
		n.X += n.VX
		n.Y += n.VY
		if (n.X < 0 && n.VX < 0) || (n.X > a.width && n.VX > 0) {
			n.VX = -n.VX
		}
		if (n.Y < 0 && n.VY < 0) || (n.Y > a.height && n.VY > 0) {
			n.VY = -n.VY
		}
		if o.NodeFill != nil {
			ctx.FillRect(n.X, n.Y, n.W, n.H, o.NodeFill)
		}
		ctx.StrokeRect(n.X, n.Y, n.W, n.H, o.LineWidth, o.NodeStroke)
	}

	for _, c := range a.conns {
		x1, y1 := a.nodes[c.From].Center()
		x2, y2 := a.nodes[c.To].Center()
		ctx.Line(x1, y1, x2, y2, o.LineWidth, o.LineColor)

		if a.rnd.Float64() < o.SpawnProbability {
			speed := o.ParticleSpeedMin + a.rnd.Float64()*(o.ParticleSpeedMax-o.ParticleSpeedMin)
			a.particles = append(a.particles, Particle{From: c.From, To: c.To, Speed: speed})
			a.stats.Spawned++
		}
	}

	// Filter in place; retired particles are neither drawn nor kept.
	live := a.particles[:0]
	for _, p := range a.particles {
		p.Progress += p.Speed
		if p.Progress >= 1 {
			a.stats.Arrived++
			if o.OnArrive != nil {
				o.OnArrive(p)
			}
			continue
		}
		x1, y1 := a.nodes[p.From].Center()
		x2, y2 := a.nodes[p.To].Center()
		ctx.Dot(x1+(x2-x1)*p.Progress, y1+(y2-y1)*p.Progress, o.ParticleRadius, o.ParticleColor)
		live = append(live, p)
	}
	a.particles = live

	a.requestFrame()
}

// Running reports whether the animator is mounted.
func (a *Animator) Running() bool { return a.running }

// Size returns the logical canvas size used by the current simulation.
func (a *Animator) Size() (float64, float64) { return a.width, a.height }

// Stats returns frame and particle counters.
func (a *Animator) Stats() Stats { return a.stats }

// Nodes returns a copy of the current nodes.
func (a *Animator) Nodes() []Node {
	return append([]Node(nil), a.nodes...)
}

// Connections returns a copy of the current connections.
func (a *Animator) Connections() []Connection {
	return append([]Connection(nil), a.conns...)
}

// Particles returns a copy of the live particles.
func (a *Animator) Particles() []Particle {
	return append([]Particle(nil), a.particles...)
}
