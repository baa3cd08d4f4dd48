package viz

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/blackhole/internal/config"
	"github.com/san-kum/blackhole/internal/swarm"
)

const (
	// SpeedCeiling is the speed mapped to the top of the hue ramp.
	SpeedCeiling = 10.0
	// HueSpan is the fraction of the colour wheel the speed ramp covers,
	// red for slow through to blue for fast.
	HueSpan = 0.6

	NearBand = 100.0
	MidBand  = 250.0
)

var (
	nearColor = colorful.Color{R: 1, G: 0, B: 0}
	midColor  = colorful.Color{R: 1, G: 200.0 / 255, B: 0}
	farColor  = colorful.Color{R: 0, G: 1, B: 1}
)

// SpeedColor maps a speed onto the hue ramp.
func SpeedColor(speed float64) colorful.Color {
	ratio := math.Min(speed/SpeedCeiling, 1)
	if ratio < 0 || math.IsNaN(ratio) {
		ratio = 0
	}
	return colorful.Hsv(ratio*HueSpan*360, 0.8, 1.0)
}

// DistanceColor bands a distance to the center into near, mid and far.
func DistanceColor(d float64) colorful.Color {
	switch {
	case d < NearBand:
		return nearColor
	case d < MidBand:
		return midColor
	default:
		return farColor
	}
}

// ParticleColor returns the hex tint of p under the given colour mode.
func ParticleColor(mode string, w swarm.World, p swarm.Particle) string {
	if mode == config.ColorByDistance {
		return DistanceColor(w.Distance(p)).Hex()
	}
	return SpeedColor(p.Speed).Hex()
}

// NextColorMode cycles through the supported colour modes.
func NextColorMode(mode string) string {
	if mode == config.ColorBySpeed {
		return config.ColorByDistance
	}
	return config.ColorBySpeed
}

// Dim darkens a hex colour for trail cells.
func Dim(hex string) string {
	c, err := colorful.Hex(hex)
	if err != nil {
		return hex
	}
	return c.BlendRgb(colorful.Color{}, 0.6).Hex()
}
