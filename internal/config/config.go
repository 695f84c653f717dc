package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// EnvPrefix marks environment overrides. A double underscore separates
// levels: SYSMAP_ANIMATOR__NODES -> animator.nodes.
const EnvPrefix = "SYSMAP_"

// Config is the complete application configuration.
type Config struct {
	Window   Window   `yaml:"window" koanf:"window"`
	Animator Animator `yaml:"animator" koanf:"animator"`
	Hero     Hero     `yaml:"hero" koanf:"hero"`
	Sound    Sound    `yaml:"sound" koanf:"sound"`
	Dev      Dev      `yaml:"dev" koanf:"dev"`
	Log      Log      `yaml:"log" koanf:"log"`
}

type Window struct {
	Width     int    `yaml:"width" koanf:"width"`
	Height    int    `yaml:"height" koanf:"height"`
	Title     string `yaml:"title" koanf:"title"`
	Resizable bool   `yaml:"resizable" koanf:"resizable"`
}

// Animator tunes the background simulation.
type Animator struct {
	Nodes              int     `yaml:"nodes" koanf:"nodes"`
	ConnectProbability float64 `yaml:"connect_probability" koanf:"connect_probability"`
	SpawnProbability   float64 `yaml:"spawn_probability" koanf:"spawn_probability"`
	MaxSpeed           float64 `yaml:"max_speed" koanf:"max_speed"`
	NodeWidth          float64 `yaml:"node_width" koanf:"node_width"`
	NodeHeight         float64 `yaml:"node_height" koanf:"node_height"`
	SizeJitter         float64 `yaml:"size_jitter" koanf:"size_jitter"`
	ParticleSpeedMin   float64 `yaml:"particle_speed_min" koanf:"particle_speed_min"`
	ParticleSpeedMax   float64 `yaml:"particle_speed_max" koanf:"particle_speed_max"`
	ParticleRadius     float64 `yaml:"particle_radius" koanf:"particle_radius"`
	// Opacity applies to the whole canvas.
	Opacity float64 `yaml:"opacity" koanf:"opacity"`
	// HueDrift cycles the particle colour, in turns per second. Zero keeps
	// the brand pink.
	HueDrift float64 `yaml:"hue_drift" koanf:"hue_drift"`
	// Seed fixes the random source. Zero seeds from the clock. A reloaded
	// config with a seed rebuilds the map from it.
	Seed uint64 `yaml:"seed" koanf:"seed"`
}

type Hero struct {
	Headline string        `yaml:"headline" koanf:"headline"`
	Phrases  []string      `yaml:"phrases" koanf:"phrases"`
	Interval time.Duration `yaml:"interval" koanf:"interval"`
	// Reveal is how long the hero text takes to fade in. Zero shows it at once.
	Reveal time.Duration `yaml:"reveal" koanf:"reveal"`
}

// Sound configures the particle arrival chime.
type Sound struct {
	Enabled    bool          `yaml:"enabled" koanf:"enabled"`
	SampleRate int           `yaml:"sample_rate" koanf:"sample_rate"`
	Frequency  float64       `yaml:"frequency" koanf:"frequency"`
	Duration   time.Duration `yaml:"duration" koanf:"duration"`
	// Volume is in beep's log2 units; 0 is unchanged, -1 halves.
	Volume float64       `yaml:"volume" koanf:"volume"`
	MinGap time.Duration `yaml:"min_gap" koanf:"min_gap"`
}

type Dev struct {
	HotReload bool `yaml:"hot_reload" koanf:"hot_reload"`
}

type Log struct {
	Level       string `yaml:"level" koanf:"level"`
	Development bool   `yaml:"development" koanf:"development"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Window: Window{
			Width:     1024,
			Height:    512,
			Title:     "LEACT - system map",
			Resizable: true,
		},
		Animator: Animator{
			Nodes:              10,
			ConnectProbability: 0.3,
			SpawnProbability:   0.01,
			MaxSpeed:           0.15,
			NodeWidth:          30,
			NodeHeight:         20,
			ParticleSpeedMin:   0.005,
			ParticleSpeedMax:   0.015,
			ParticleRadius:     2,
			Opacity:            0.4,
		},
		Hero: Hero{
			Headline: "Structured automation for digital growth.",
			Phrases:  []string{"Build systems,", "Run platforms,", "Scale with control."},
			Interval: 3 * time.Second,
			Reveal:   800 * time.Millisecond,
		},
		Sound: Sound{
			SampleRate: 44100,
			Frequency:  660,
			Duration:   80 * time.Millisecond,
			Volume:     -3,
			MinGap:     120 * time.Millisecond,
		},
		Dev: Dev{HotReload: true},
		Log: Log{Level: "info"},
	}
}

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides (SYSMAP_*). A missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	// Unmarshal merges into the default slice element by element.
	if k.Exists("hero.phrases") {
		cfg.Hero.Phrases = k.Strings("hero.phrases")
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height)
	}

	a := c.Animator
	if a.Nodes < 1 {
		return fmt.Errorf("animator.nodes must be at least 1")
	}
	if a.ConnectProbability < 0 || a.ConnectProbability > 1 {
		return fmt.Errorf("animator.connect_probability %v outside [0,1]", a.ConnectProbability)
	}
	if a.SpawnProbability < 0 || a.SpawnProbability > 1 {
		return fmt.Errorf("animator.spawn_probability %v outside [0,1]", a.SpawnProbability)
	}
	if a.MaxSpeed < 0 {
		return fmt.Errorf("animator.max_speed must be non-negative")
	}
	if a.NodeWidth <= 0 || a.NodeHeight <= 0 {
		return fmt.Errorf("animator node size must be positive")
	}
	if a.SizeJitter < 0 || a.SizeJitter >= 1 {
		return fmt.Errorf("animator.size_jitter %v outside [0,1)", a.SizeJitter)
	}
	if a.ParticleSpeedMin <= 0 || a.ParticleSpeedMax < a.ParticleSpeedMin {
		return fmt.Errorf("animator particle speeds must satisfy 0 < min <= max, got %v..%v", a.ParticleSpeedMin, a.ParticleSpeedMax)
	}
	if a.ParticleRadius <= 0 {
		return fmt.Errorf("animator.particle_radius must be positive")
	}
	if a.Opacity <= 0 || a.Opacity > 1 {
		return fmt.Errorf("animator.opacity %v outside (0,1]", a.Opacity)
	}

	if len(c.Hero.Phrases) == 0 {
		return fmt.Errorf("hero.phrases must not be empty")
	}
	if c.Hero.Interval <= 0 {
		return fmt.Errorf("hero.interval must be positive")
	}
	if c.Hero.Reveal < 0 {
		return fmt.Errorf("hero.reveal must not be negative")
	}

	if c.Sound.Enabled {
		if c.Sound.SampleRate <= 0 {
			return fmt.Errorf("sound.sample_rate must be positive")
		}
		if c.Sound.Frequency <= 0 || c.Sound.Duration <= 0 {
			return fmt.Errorf("sound.frequency and sound.duration must be positive")
		}
	}

	if !validLevels[c.Log.Level] {
		return fmt.Errorf("invalid log.level %q: must be one of debug, info, warn, error", c.Log.Level)
	}

	return nil
}
