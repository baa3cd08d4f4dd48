package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/blackhole/internal/swarm"
)

const (
	DefaultWidth              = 1000
	DefaultHeight             = 800
	DefaultGravity            = 2000.0
	DefaultFriction           = 0.998
	DefaultEventHorizon       = 40.0
	DefaultMinDistance        = 10.0
	DefaultRingCount          = 1200
	DefaultRingMaxDist        = 350.0
	DefaultClusterCount       = 50
	DefaultClusterJitter      = 10.0
	DefaultClusterSpeedFactor = 0.8
	DefaultTick               = 16 * time.Millisecond

	// RingInnerFactor places the default ring inner edge at this multiple of
	// the event horizon.
	RingInnerFactor = 2.5
)

const (
	ResetRespawn = "respawn"
	ResetClear   = "clear"

	ColorBySpeed    = "speed"
	ColorByDistance = "distance"
)

type Settings struct {
	Width              float64       `yaml:"width" json:"width"`
	Height             float64       `yaml:"height" json:"height"`
	Gravity            float64       `yaml:"gravity" json:"gravity"`
	Friction           float64       `yaml:"friction" json:"friction"`
	EventHorizon       float64       `yaml:"event_horizon" json:"event_horizon"`
	MinDistance        float64       `yaml:"min_distance" json:"min_distance"`
	RingCount          int           `yaml:"ring_count" json:"ring_count"`
	RingMinDist        float64       `yaml:"ring_min_dist" json:"ring_min_dist"`
	RingMaxDist        float64       `yaml:"ring_max_dist" json:"ring_max_dist"`
	ClusterCount       int           `yaml:"cluster_count" json:"cluster_count"`
	ClusterJitter      float64       `yaml:"cluster_jitter" json:"cluster_jitter"`
	ClusterSpeedFactor float64       `yaml:"cluster_speed_factor" json:"cluster_speed_factor"`
	Tick               time.Duration `yaml:"tick" json:"tick"`
	Seed               uint64        `yaml:"seed" json:"seed"`
	ResetMode          string        `yaml:"reset_mode" json:"reset_mode"`
	ColorMode          string        `yaml:"color_mode" json:"color_mode"`
	Trails             bool          `yaml:"trails" json:"trails"`
	Workers            int           `yaml:"workers" json:"workers"`
}

func Default() *Settings {
	return &Settings{
		Width:              DefaultWidth,
		Height:             DefaultHeight,
		Gravity:            DefaultGravity,
		Friction:           DefaultFriction,
		EventHorizon:       DefaultEventHorizon,
		MinDistance:        DefaultMinDistance,
		RingCount:          DefaultRingCount,
		RingMinDist:        DefaultEventHorizon * RingInnerFactor,
		RingMaxDist:        DefaultRingMaxDist,
		ClusterCount:       DefaultClusterCount,
		ClusterJitter:      DefaultClusterJitter,
		ClusterSpeedFactor: DefaultClusterSpeedFactor,
		Tick:               DefaultTick,
		ResetMode:          ResetRespawn,
		ColorMode:          ColorBySpeed,
		Trails:             true,
	}
}

// Load reads a yaml file over the defaults and validates the result.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Settings) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns an independent copy.
func (c *Settings) Clone() *Settings {
	cp := *c
	return &cp
}

func (c *Settings) Center() r2.Vec {
	return r2.Vec{X: c.Width / 2, Y: c.Height / 2}
}

func (c *Settings) World() swarm.World {
	return swarm.World{
		Center:       c.Center(),
		Gravity:      c.Gravity,
		Friction:     c.Friction,
		EventHorizon: c.EventHorizon,
		MinDistance:  c.MinDistance,
	}
}

// Validate is the fail-fast setup check. Every error wraps
// swarm.ErrInvalidConfig.
func (c *Settings) Validate() error {
	if !(c.Gravity > 0) {
		return invalid("gravity must be positive, got %g", c.Gravity)
	}
	if err := c.World().Validate(); err != nil {
		return err
	}

	switch {
	case !(c.Width > 0) || !(c.Height > 0):
		return invalid("width and height must be positive, got %gx%g", c.Width, c.Height)
	case c.RingCount < 0:
		return invalid("ring_count must be non-negative, got %d", c.RingCount)
	case !(c.RingMinDist > c.EventHorizon):
		return invalid("ring_min_dist %g must exceed event_horizon %g", c.RingMinDist, c.EventHorizon)
	case !(c.RingMaxDist >= c.RingMinDist) || math.IsInf(c.RingMaxDist, 0):
		return invalid("ring_max_dist %g must be finite and at least ring_min_dist %g", c.RingMaxDist, c.RingMinDist)
	case c.ClusterCount < 0:
		return invalid("cluster_count must be non-negative, got %d", c.ClusterCount)
	case !(c.ClusterJitter >= 0) || math.IsInf(c.ClusterJitter, 0):
		return invalid("cluster_jitter must be non-negative and finite, got %g", c.ClusterJitter)
	case !(c.ClusterSpeedFactor > 0 && c.ClusterSpeedFactor <= 1):
		return invalid("cluster_speed_factor must be in (0, 1], got %g", c.ClusterSpeedFactor)
	case c.Tick <= 0:
		return invalid("tick must be positive, got %s", c.Tick)
	case c.Workers < 0:
		return invalid("workers must be non-negative, got %d", c.Workers)
	}

	switch c.ResetMode {
	case ResetRespawn, ResetClear:
	default:
		return invalid("unknown reset_mode %q", c.ResetMode)
	}

	switch c.ColorMode {
	case ColorBySpeed, ColorByDistance:
	default:
		return invalid("unknown color_mode %q", c.ColorMode)
	}

	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{swarm.ErrInvalidConfig}, args...)...)
}

// envFields maps BLACKHOLE_* variables onto settings.
var envFields = map[string]func(c *Settings, v string) error{
	"BLACKHOLE_GRAVITY":       floatField(func(c *Settings) *float64 { return &c.Gravity }),
	"BLACKHOLE_FRICTION":      floatField(func(c *Settings) *float64 { return &c.Friction }),
	"BLACKHOLE_EVENT_HORIZON": floatField(func(c *Settings) *float64 { return &c.EventHorizon }),
	"BLACKHOLE_MIN_DISTANCE":  floatField(func(c *Settings) *float64 { return &c.MinDistance }),
	"BLACKHOLE_RING_COUNT":    intField(func(c *Settings) *int { return &c.RingCount }),
	"BLACKHOLE_CLUSTER_COUNT": intField(func(c *Settings) *int { return &c.ClusterCount }),
	"BLACKHOLE_WORKERS":       intField(func(c *Settings) *int { return &c.Workers }),
	"BLACKHOLE_SEED": func(c *Settings, v string) error {
		n, err := strconv.ParseUint(v, 10, 64)
		c.Seed = n
		return err
	},
	"BLACKHOLE_TICK": func(c *Settings, v string) error {
		d, err := time.ParseDuration(v)
		c.Tick = d
		return err
	},
	"BLACKHOLE_RESET_MODE": func(c *Settings, v string) error { c.ResetMode = v; return nil },
	"BLACKHOLE_COLOR_MODE": func(c *Settings, v string) error { c.ColorMode = v; return nil },
}

// ApplyEnv overrides fields from environment variables found by lookup
// (typically os.LookupEnv). Unset variables leave the field untouched.
func (c *Settings) ApplyEnv(lookup func(string) (string, bool)) error {
	for name, set := range envFields {
		v, ok := lookup(name)
		if !ok || v == "" {
			continue
		}
		if err := set(c, v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

func floatField(f func(*Settings) *float64) func(*Settings, string) error {
	return func(c *Settings, v string) error {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*f(c) = x
		return nil
	}
}

func intField(f func(*Settings) *int) func(*Settings, string) error {
	return func(c *Settings, v string) error {
		x, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*f(c) = x
		return nil
	}
}
