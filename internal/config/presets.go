package config

import "sort"

// Presets are the tuned variants of the simulation.
var Presets = map[string]func() *Settings{
	"classic": Default,
	"gentle": func() *Settings {
		c := Default()
		c.Gravity = 600
		c.ResetMode = ResetClear
		c.ColorMode = ColorByDistance
		return c
	},
	"dense": func() *Settings {
		c := Default()
		c.RingCount = 5000
		c.RingMaxDist = 450
		c.ClusterJitter = 40
		c.ColorMode = ColorByDistance
		return c
	},
}

func GetPreset(name string) *Settings {
	mk, ok := Presets[name]
	if !ok {
		return nil
	}
	return mk()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
