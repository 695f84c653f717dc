package game

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/iburimskiy/systemmap/internal/config"
)

func newTestGame(t *testing.T, mutate func(*config.Config)) *Game {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Animator.Seed = 42
	if mutate != nil {
		mutate(cfg)
	}
	return New(Options{
		Config:      cfg,
		Logger:      zaptest.NewLogger(t),
		DeviceScale: func() float64 { return 2 },
	})
}

func TestGame_LayoutMountsAtDeviceScale(t *testing.T) {
	g := newTestGame(t, nil)

	w, h := g.Layout(800, 600)
	assert.Equal(t, 1600, w)
	assert.Equal(t, 1200, h)
	assert.False(t, g.anim.Running(), "mounts on the first update")

	g.step(16 * time.Millisecond)
	require.True(t, g.anim.Running())
	assert.Equal(t, uint64(1), g.anim.Stats().Frames)
	assert.Equal(t, 2.0, g.win.list.scale)
	assert.Equal(t, 1600, g.win.backingW)
	assert.Positive(t, g.win.list.len())
}

func TestGame_WindowResizeReinitialises(t *testing.T) {
	g := newTestGame(t, nil)
	g.Layout(800, 600)
	g.step(0)
	g.step(0)

	// Same size is not a resize.
	before := g.anim.Nodes()
	g.Layout(800, 600)
	assert.Equal(t, before, g.anim.Nodes())

	g.Layout(400, 300)
	w, h := g.anim.Size()
	assert.Equal(t, 400.0, w)
	assert.Equal(t, 300.0, h)
	assert.Empty(t, g.anim.Particles())
	for _, n := range g.anim.Nodes() {
		assert.LessOrEqual(t, n.X, 400.0)
		assert.LessOrEqual(t, n.Y, 300.0)
	}
}

func TestGame_NoWindowSizeNoWork(t *testing.T) {
	g := newTestGame(t, nil)
	g.step(time.Second)
	assert.False(t, g.anim.Running())
	assert.Zero(t, g.win.list.len())
}

func TestGame_Unmount(t *testing.T) {
	g := newTestGame(t, nil)
	g.Layout(800, 600)
	g.step(0)

	g.setMounted(false)
	assert.False(t, g.anim.Running())
	assert.Zero(t, g.win.list.len(), "nothing left to draw")
	assert.Empty(t, g.win.listeners)

	frames := g.anim.Stats().Frames
	g.step(0)
	assert.Equal(t, frames, g.anim.Stats().Frames)
	assert.Zero(t, g.sched.Pending())

	g.setMounted(true)
	g.step(0)
	assert.True(t, g.anim.Running())
	assert.Equal(t, frames+1, g.anim.Stats().Frames)
}

func TestGame_ReloadKeepsNewest(t *testing.T) {
	g := newTestGame(t, nil)
	g.Layout(800, 600)
	g.step(0)

	first := config.DefaultConfig()
	first.Animator.Nodes = 3
	second := config.DefaultConfig()
	second.Animator.Nodes = 5
	second.Animator.Opacity = 0.8
	g.Reload(first)
	g.Reload(second)

	select {
	case cfg := <-g.reloads:
		g.apply(cfg)
	default:
		t.Fatal("nothing queued")
	}
	assert.Len(t, g.anim.Nodes(), 5)
	assert.Equal(t, 0.8, g.win.list.opacity)
}

func TestGame_ReloadAppliesSeed(t *testing.T) {
	g := newTestGame(t, nil)
	g.Layout(800, 600)
	g.step(0)

	cfg := config.DefaultConfig()
	cfg.Animator.Seed = 9
	g.apply(cfg)

	fresh := newTestGame(t, func(c *config.Config) { c.Animator.Seed = 9 })
	fresh.Layout(800, 600)
	fresh.anim.Start()
	assert.Equal(t, fresh.anim.Nodes(), g.anim.Nodes())
	assert.Equal(t, fresh.anim.Connections(), g.anim.Connections())

	// Same seed again rebuilds the same layout.
	g.step(0)
	g.apply(cfg)
	assert.Equal(t, fresh.anim.Nodes(), g.anim.Nodes())
}

func TestGame_LoadConfig(t *testing.T) {
	g := newTestGame(t, nil)
	g.Layout(800, 600)
	g.step(0)

	path := filepath.Join(t.TempDir(), "map.yml")
	cfg := config.DefaultConfig()
	cfg.Animator.Nodes = 6
	cfg.Hero.Phrases = []string{"A", "B"}
	require.NoError(t, cfg.Save(path))

	require.NoError(t, g.loadConfig(path))
	assert.Len(t, g.anim.Nodes(), 6)
	assert.Equal(t, []string{"A", "B"}, g.cycler.Phrases())
	assert.Equal(t, path, g.configPath)

	bad := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(bad, []byte("animator:\n  nodes: 0\n"), 0644))
	assert.Error(t, g.loadConfig(bad))
	assert.Len(t, g.anim.Nodes(), 6, "invalid config is not applied")
}

func TestGame_PhrasesCycle(t *testing.T) {
	g := newTestGame(t, nil)
	g.Layout(800, 600)
	g.step(0)
	assert.Equal(t, 0, g.cycler.Index())
	g.step(3 * time.Second)
	assert.Equal(t, 1, g.cycler.Index())
}

func TestGame_HeroReveal(t *testing.T) {
	g := newTestGame(t, nil)
	g.startedAt = time.Unix(1000, 0)
	g.lastUpdate = g.startedAt

	alpha, dy := g.heroReveal()
	assert.Zero(t, alpha)
	assert.Equal(t, 8.0, dy)

	g.lastUpdate = g.startedAt.Add(400 * time.Millisecond)
	alpha, dy = g.heroReveal()
	assert.InDelta(t, 0.875, alpha, 1e-9)
	assert.InDelta(t, 1.0, dy, 1e-9)

	g.lastUpdate = g.startedAt.Add(time.Second)
	alpha, dy = g.heroReveal()
	assert.Equal(t, 1.0, alpha)
	assert.Zero(t, dy)

	g.cfg.Hero.Reveal = 0
	g.lastUpdate = g.startedAt
	alpha, _ = g.heroReveal()
	assert.Equal(t, 1.0, alpha, "zero duration shows the hero at once")
}

func TestGame_Scroll(t *testing.T) {
	g := newTestGame(t, nil)
	g.Layout(800, 600)

	g.scroll(550)
	assert.Equal(t, "about", g.spy.Active())

	g.scroll(1e6)
	assert.Equal(t, 2500.0, g.scrollY, "clamped to page height")
	// Contact starts exactly on the probe line, which still touches the
	// bottom of news; the earlier section wins.
	assert.Equal(t, "news", g.spy.Active())

	g.scroll(-1e6)
	assert.Zero(t, g.scrollY)
	assert.Equal(t, "home", g.spy.Active())
}

func TestGame_HueDrift(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) { c.Animator.HueDrift = 0.5 })
	g.Layout(800, 600)
	g.step(0)
	assert.NotNil(t, g.win.list.dotColor)

	g.apply(config.DefaultConfig())
	g.step(0)
	assert.Nil(t, g.win.list.dotColor)
}

func TestGame_ArrivalWithoutChime(t *testing.T) {
	g := newTestGame(t, func(c *config.Config) {
		c.Animator.ConnectProbability = 1
		c.Animator.SpawnProbability = 1
		c.Animator.ParticleSpeedMin = 0.5
		c.Animator.ParticleSpeedMax = 0.5
	})
	g.Layout(800, 600)
	for i := 0; i < 4; i++ {
		g.step(0)
	}
	assert.Positive(t, g.anim.Stats().Arrived)
}

func TestWithOpacity(t *testing.T) {
	c := withOpacity(color.RGBA{R: 200, G: 100, B: 50, A: 255}, 0.5)
	assert.Equal(t, color.RGBA{R: 100, G: 50, B: 25, A: 127}, c)

	c = withOpacity(color.NRGBA{R: 255, G: 255, B: 255, A: 0}, 1)
	assert.Equal(t, color.RGBA{}, c)
}

func TestHueColor(t *testing.T) {
	assert.Equal(t, color.RGBA{R: 255, A: 255}, hueColor(0, 1, 1))
	assert.Equal(t, color.RGBA{R: 255, G: 128, A: 255}, hueColor(30, 1, 1))
	assert.Equal(t, color.RGBA{G: 255, A: 255}, hueColor(480, 1, 1))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, hueColor(-120, 1, 1))
	assert.Equal(t, color.RGBA{R: 128, G: 128, B: 128, A: 255}, hueColor(200, 0, 0.5))
}

func TestUptime(t *testing.T) {
	assert.Equal(t, "00:00", uptime(0))
	assert.Equal(t, "01:05", uptime(65*time.Second+400*time.Millisecond))
	assert.Equal(t, "1:02:03", uptime(time.Hour+2*time.Minute+3*time.Second))
}
