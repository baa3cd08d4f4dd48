package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/blackhole/internal/swarm"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default settings invalid: %v", err)
	}
	if cfg.RingMinDist != 100 {
		t.Errorf("expected ring inner radius 100, got %f", cfg.RingMinDist)
	}
	if cfg.Tick != 16*time.Millisecond {
		t.Errorf("expected 16ms tick, got %s", cfg.Tick)
	}
	c := cfg.Center()
	if c.X != 500 || c.Y != 400 {
		t.Errorf("expected center (500,400), got %v", c)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Settings)
	}{
		{"zero gravity", func(c *Settings) { c.Gravity = 0 }},
		{"negative gravity", func(c *Settings) { c.Gravity = -5 }},
		{"zero friction", func(c *Settings) { c.Friction = 0 }},
		{"friction above one", func(c *Settings) { c.Friction = 1.5 }},
		{"min distance at horizon", func(c *Settings) { c.MinDistance = c.EventHorizon }},
		{"ring inside horizon", func(c *Settings) { c.RingMinDist = 30 }},
		{"ring inverted", func(c *Settings) { c.RingMaxDist = 50; c.RingMinDist = 120 }},
		{"negative ring count", func(c *Settings) { c.RingCount = -1 }},
		{"negative jitter", func(c *Settings) { c.ClusterJitter = -1 }},
		{"nan ring max", func(c *Settings) { c.RingMaxDist = math.NaN() }},
		{"infinite ring max", func(c *Settings) { c.RingMaxDist = math.Inf(1) }},
		{"nan ring min", func(c *Settings) { c.RingMinDist = math.NaN() }},
		{"nan jitter", func(c *Settings) { c.ClusterJitter = math.NaN() }},
		{"nan speed factor", func(c *Settings) { c.ClusterSpeedFactor = math.NaN() }},
		{"nan width", func(c *Settings) { c.Width = math.NaN() }},
		{"speed factor above one", func(c *Settings) { c.ClusterSpeedFactor = 1.2 }},
		{"zero tick", func(c *Settings) { c.Tick = 0 }},
		{"bad reset mode", func(c *Settings) { c.ResetMode = "explode" }},
		{"bad color mode", func(c *Settings) { c.ColorMode = "rainbow" }},
		{"zero width", func(c *Settings) { c.Width = 0 }},
		{"negative workers", func(c *Settings) { c.Workers = -2 }},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.mutate(cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !errors.Is(err, swarm.ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tt.name, err)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blackhole.yaml")
	cfg := Default()
	cfg.Gravity = 1234
	cfg.Tick = 20 * time.Millisecond
	cfg.ResetMode = ResetClear

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded, cfg)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("gravity: 900\ntick: 10ms\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Gravity != 900 {
		t.Errorf("expected gravity 900, got %f", cfg.Gravity)
	}
	if cfg.Tick != 10*time.Millisecond {
		t.Errorf("expected tick 10ms, got %s", cfg.Tick)
	}
	if cfg.Friction != DefaultFriction {
		t.Errorf("expected default friction, got %f", cfg.Friction)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("min_distance: 80\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, swarm.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"BLACKHOLE_GRAVITY":    "750",
		"BLACKHOLE_RING_COUNT": "42",
		"BLACKHOLE_SEED":       "7",
		"BLACKHOLE_TICK":       "33ms",
		"BLACKHOLE_RESET_MODE": "clear",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := Default()
	if err := cfg.ApplyEnv(lookup); err != nil {
		t.Fatalf("apply env: %v", err)
	}
	if cfg.Gravity != 750 || cfg.RingCount != 42 || cfg.Seed != 7 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Tick != 33*time.Millisecond || cfg.ResetMode != ResetClear {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.Friction != DefaultFriction {
		t.Errorf("unset variable changed friction to %f", cfg.Friction)
	}

	env["BLACKHOLE_FRICTION"] = "lots"
	if err := Default().ApplyEnv(lookup); err == nil {
		t.Error("expected parse error for bad friction")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("gentle")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Gravity != 600 {
		t.Errorf("expected gravity 600, got %f", cfg.Gravity)
	}
	if cfg.ResetMode != ResetClear {
		t.Errorf("expected clear reset, got %s", cfg.ResetMode)
	}

	// presets are built fresh each call
	cfg.Gravity = 1
	if GetPreset("gentle").Gravity != 600 {
		t.Error("preset mutated through returned settings")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestPresetsValidate(t *testing.T) {
	names := ListPresets()
	if len(names) != 3 {
		t.Fatalf("expected 3 presets, got %v", names)
	}
	for _, name := range names {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}
