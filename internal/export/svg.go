package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/blackhole/internal/swarm"
	"github.com/san-kum/blackhole/internal/viz"
)

const background = "#0a0a0a"

// SwarmToSVG draws the world frame at its native size: the event horizon as
// a filled disc and every particle as a dot tinted by colorMode.
func SwarmToSVG(s *swarm.State, width, height int, colorMode string) string {
	w := s.World
	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="none" stroke="#3a3a5a" stroke-width="2"/>
<circle cx="%.1f" cy="%.1f" r="%.1f" fill="#000000" stroke="#ffffff" stroke-width="1"/>
`, width, height, width, height, background,
		w.Center.X, w.Center.Y, w.EventHorizon*1.1,
		w.Center.X, w.Center.Y, w.EventHorizon)

	sb.WriteString("<g>\n")
	for _, p := range s.Particles() {
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="1.5" fill="%s"/>
`, p.X, p.Y, viz.ParticleColor(colorMode, w, p))
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// PopulationToSVG plots a population series as a polyline scaled to fill
// width x height, with the y axis starting at zero.
func PopulationToSVG(series []float64, width, height int, strokeColor string) string {
	if len(series) < 2 {
		return ""
	}

	maxY := series[0]
	for _, v := range series {
		if v > maxY {
			maxY = v
		}
	}
	if maxY == 0 {
		maxY = 1
	}
	maxY *= 1.1
	n := float64(len(series) - 1)

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor)

	for i, v := range series {
		x := float64(i) / n * float64(width)
		y := float64(height) - v/maxY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
