// Package game hosts the system map in an ebiten window: it owns the frame
// loop, the canvas and the hero overlay.
package game

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/ncruces/zenity"
	"go.uber.org/zap"

	"github.com/iburimskiy/systemmap/internal/chime"
	"github.com/iburimskiy/systemmap/internal/config"
	"github.com/iburimskiy/systemmap/internal/page"
	"github.com/iburimskiy/systemmap/internal/sysmap"
)

const (
	scrollStep = 40
	marginX    = 24
)

var background = color.RGBA{A: 255}

// Options wires a Game.
type Options struct {
	Config     *config.Config
	ConfigPath string
	Logger     *zap.Logger
	// Chime is optional; nil keeps the map silent.
	Chime *chime.Chime
	// DeviceScale overrides the monitor scale factor lookup.
	DeviceScale func() float64
	// Now overrides the clock.
	Now func() time.Time
}

// Game implements ebiten.Game.
type Game struct {
	cfg        *config.Config
	configPath string
	log        *zap.Logger
	chime      *chime.Chime
	now        func() time.Time

	win   *window
	sched *sysmap.ManualScheduler
	anim  *sysmap.Animator

	cycler  *page.Cycler
	spy     *page.Spy
	scrollY float64
	hero    *ebiten.Image

	reloads chan *config.Config

	mounted    bool
	startedAt  time.Time
	lastUpdate time.Time
	lastErr    error
}

// New builds the game. The animator mounts on the first Update after
// ebiten has reported the window size.
func New(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	g := &Game{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		log:        logger,
		chime:      opts.Chime,
		now:        now,
		win:        newWindow(opts.DeviceScale),
		sched:      &sysmap.ManualScheduler{},
		spy:        page.NewSpy(page.DefaultSections),
		reloads:    make(chan *config.Config, 1),
		mounted:    true,
	}
	g.anim = sysmap.New(g.win, g.sched, NewRand(cfg.Animator.Seed), g.animatorOptions(cfg.Animator), logger.Named("sysmap"))
	g.cycler = page.NewCycler(cfg.Hero.Phrases, cfg.Hero.Interval)
	g.win.list.opacity = cfg.Animator.Opacity
	return g
}

// NewRand returns the animator's random source. Seed zero seeds from the
// clock.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// AnimatorOptions maps the animator config section onto sysmap options.
func AnimatorOptions(a config.Animator) sysmap.Options {
	o := sysmap.DefaultOptions()
	o.NodeCount = a.Nodes
	o.ConnectProbability = a.ConnectProbability
	o.SpawnProbability = a.SpawnProbability
	o.MaxSpeed = a.MaxSpeed
	o.NodeWidth = a.NodeWidth
	o.NodeHeight = a.NodeHeight
	o.SizeJitter = a.SizeJitter
	o.ParticleSpeedMin = a.ParticleSpeedMin
	o.ParticleSpeedMax = a.ParticleSpeedMax
	o.ParticleRadius = a.ParticleRadius
	return o
}

func (g *Game) animatorOptions(a config.Animator) sysmap.Options {
	o := AnimatorOptions(a)
	o.OnArrive = g.particleArrived
	return o
}

func (g *Game) particleArrived(sysmap.Particle) {
	if g.chime != nil {
		g.chime.Pulse()
	}
}

// Reload queues a configuration to apply on the next Update. It may be
// called from any goroutine; only the newest pending config is kept.
func (g *Game) Reload(cfg *config.Config) {
	for {
		select {
		case g.reloads <- cfg:
			return
		default:
		}
		select {
		case <-g.reloads:
		default:
		}
	}
}

func (g *Game) apply(cfg *config.Config) {
	// A fixed seed always replays the same layout; dropping back to zero
	// switches to a clock-seeded source.
	if cfg.Animator.Seed != 0 || g.cfg.Animator.Seed != 0 {
		g.anim.SetRand(NewRand(cfg.Animator.Seed))
	}
	g.cfg = cfg
	g.anim.Reconfigure(g.animatorOptions(cfg.Animator))
	g.cycler = page.NewCycler(cfg.Hero.Phrases, cfg.Hero.Interval)
	g.win.list.opacity = cfg.Animator.Opacity
	g.log.Info("config applied",
		zap.Int("nodes", cfg.Animator.Nodes),
		zap.Int("connections", len(g.anim.Connections())))
}

// setMounted mounts or unmounts the animator.
func (g *Game) setMounted(on bool) {
	g.mounted = on
	if on {
		g.anim.Start()
		return
	}
	g.anim.Stop()
	g.win.list.Clear()
}

// Shutdown unmounts the animator and silences the chime.
func (g *Game) Shutdown() {
	g.setMounted(false)
	if g.chime != nil {
		g.chime.Close()
	}
}

func (g *Game) Update() error {
	now := g.now()
	if g.startedAt.IsZero() {
		g.startedAt = now
		g.lastUpdate = now
	}
	dt := now.Sub(g.lastUpdate)
	g.lastUpdate = now

	select {
	case cfg := <-g.reloads:
		g.apply(cfg)
	default:
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		g.Shutdown()
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.setMounted(!g.mounted)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.anim.Resize()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyO) {
		if err := g.openConfigDialog(); err != nil {
			g.lastErr = err
			g.log.Warn("open config failed", zap.Error(err))
		}
	}

	_, wheelY := ebiten.Wheel()
	g.scroll(-wheelY * scrollStep)

	g.step(dt)
	return nil
}

// step advances everything that does not depend on input.
func (g *Game) step(dt time.Duration) {
	if g.mounted && !g.anim.Running() {
		g.anim.Start()
	}
	g.cycler.Advance(dt)

	if drift := g.cfg.Animator.HueDrift; drift > 0 {
		elapsed := g.lastUpdate.Sub(g.startedAt).Seconds()
		g.win.list.dotColor = hueColor(320+elapsed*drift*360, 0.84, 1)
	} else {
		g.win.list.dotColor = nil
	}

	g.sched.Tick()
}

func (g *Game) scroll(dy float64) {
	if dy == 0 {
		return
	}
	maxScroll := math.Max(0, g.spy.Height()-g.win.height)
	g.scrollY = math.Max(0, math.Min(maxScroll, g.scrollY+dy))
	g.spy.Update(g.scrollY)
}

func (g *Game) openConfigDialog() error {
	filename, err := zenity.SelectFile(
		zenity.Title("Open system map config"),
		zenity.FileFilters{{
			Name:     "YAML",
			Patterns: []string{"*.yml", "*.yaml"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	return g.loadConfig(filename)
}

func (g *Game) loadConfig(path string) error {
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	g.configPath = path
	g.lastErr = nil
	g.apply(cfg)
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.win.list.replay(screen)
	g.drawOverlay(screen)
}

// heroReveal is the hero block's fade-in at the current uptime.
func (g *Game) heroReveal() (alpha, dy float64) {
	r := page.Reveal{Duration: g.cfg.Hero.Reveal, Rise: page.RevealRise}
	return r.At(g.lastUpdate.Sub(g.startedAt))
}

// heroLayer returns a cleared offscreen image the size of the screen.
func (g *Game) heroLayer(screen *ebiten.Image) *ebiten.Image {
	b := screen.Bounds()
	if g.hero == nil || g.hero.Bounds() != b {
		if g.hero != nil {
			g.hero.Deallocate()
		}
		g.hero = ebiten.NewImage(b.Dx(), b.Dy())
	}
	g.hero.Clear()
	return g.hero
}

func (g *Game) drawOverlay(screen *ebiten.Image) {
	s := g.win.ratio
	printAt := func(dst *ebiten.Image, text string, x, y float64) {
		ebitenutil.DebugPrintAt(dst, text, int(x*s), int(y*s))
	}
	at := func(text string, x, y float64) { printAt(screen, text, x, y) }

	// Navigation
	x := float64(marginX)
	at("LEACT", x, 12)
	x += 80
	active := g.spy.Active()
	for _, sec := range g.spy.Sections() {
		label := strings.ToUpper(sec.ID[:1]) + sec.ID[1:]
		if sec.ID == active {
			label = "[" + strings.ToUpper(sec.ID) + "]"
		}
		at(label, x, 12)
		x += float64(len(label)*7 + 16)
	}

	// Hero
	if alpha, dy := g.heroReveal(); alpha > 0 {
		layer := g.heroLayer(screen)
		printAt(layer, g.cfg.Hero.Headline, marginX, 72)
		y := 100.0
		for i, p := range g.cycler.Phrases() {
			prefix := "  "
			if i == g.cycler.Index() {
				prefix = "> "
			}
			printAt(layer, prefix+p, marginX, y)
			y += 16
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(0, dy*s)
		op.ColorScale.ScaleAlpha(float32(alpha))
		screen.DrawImage(layer, op)
	}

	// Status
	st := g.anim.Stats()
	state := "mounted"
	if !g.anim.Running() {
		state = "unmounted"
	}
	status := fmt.Sprintf("%s  frames %d  particles %d  arrived %d  up %s",
		state, st.Frames, len(g.anim.Particles()), st.Arrived, uptime(g.lastUpdate.Sub(g.startedAt)))
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	bottom := g.win.height
	at(status, marginX, bottom-40)
	at("Space: mount/unmount  R: reset  O: open config  Wheel: scroll  Esc/Q: quit", marginX, bottom-24)

	if g.chime != nil {
		level := float32(clamp01(g.chime.Level()))
		bx, by := float32((g.win.width-marginX-60)*s), float32((bottom-36)*s)
		vector.StrokeRect(screen, bx, by, float32(60*s), float32(6*s), 1, color.RGBA{R: 60, G: 70, B: 90, A: 255}, false)
		vector.DrawFilledRect(screen, bx, by, float32(60*s)*level, float32(6*s), color.RGBA{R: 255, G: 41, B: 182, A: 200}, false)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.win.layout(outsideWidth, outsideHeight)
}
