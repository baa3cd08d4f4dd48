package viz

import (
	"math"

	"github.com/san-kum/blackhole/internal/config"
	"github.com/san-kum/blackhole/internal/swarm"
)

// glowFactor sizes the faint ring drawn just outside the horizon.
const glowFactor = 1.1

// fit maps a width x height world onto the canvas sub-pixel grid, keeping the
// world's aspect ratio and centring it.
func fit(c *Canvas, width, height float64) (scale, ox, oy float64) {
	sw, sh := float64(c.SubWidth()), float64(c.SubHeight())
	scale = math.Min(sw/width, sh/height)
	return scale, (sw - width*scale) / 2, (sh - height*scale) / 2
}

func project(c *Canvas, width, height, x, y float64) (int, int) {
	scale, ox, oy := fit(c, width, height)
	return int(math.Floor(ox + x*scale)), int(math.Floor(oy + y*scale))
}

// DrawFrame paints the glow and horizon rings and every particle of st onto
// c, tinted by colorMode. The canvas is not cleared first.
func DrawFrame(c *Canvas, st *swarm.State, width, height float64, colorMode string) {
	w := st.World
	scale, _, _ := fit(c, width, height)
	cx, cy := project(c, width, height, w.Center.X, w.Center.Y)
	c.DrawCircle(cx, cy, int(math.Round(w.EventHorizon*glowFactor*scale)), glowColor)
	c.DrawCircle(cx, cy, int(math.Round(w.EventHorizon*scale)), horizonColor)

	for _, p := range st.Particles() {
		x, y := project(c, width, height, p.X, p.Y)
		c.SetColor(x, y, ParticleColor(colorMode, w, p))
	}
}

// Snapshot draws st on a fresh cols x rows canvas and returns it as plain
// braille text, one line per row.
func Snapshot(st *swarm.State, width, height float64, cols, rows int) string {
	c := NewCanvas(cols, rows)
	DrawFrame(c, st, width, height, config.ColorBySpeed)
	return c.String()
}
