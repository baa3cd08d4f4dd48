package integrators

import (
	"math"

	"github.com/san-kum/blackhole/internal/swarm"
)

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(s *swarm.State) { Advance(s) }

func (e *Euler) Name() string { return "euler" }

// Advance moves every particle of s forward by one tick and drops the ones
// that are, or end up, inside the event horizon.
func Advance(s *swarm.State) {
	w := s.World
	s.Retain(func(p *swarm.Particle) bool {
		return stepParticle(w, p)
	})
}

// stepParticle applies one tick to p and reports whether it survives.
func stepParticle(w swarm.World, p *swarm.Particle) bool {
	dx := w.Center.X - p.X
	dy := w.Center.Y - p.Y
	distance := math.Sqrt(dx*dx + dy*dy)

	if distance < w.EventHorizon {
		return false
	}

	dirX := dx / distance
	dirY := dy / distance

	safeDist := math.Max(distance, w.MinDistance)
	force := w.Gravity / (safeDist * safeDist)

	p.VX += dirX * force
	p.VY += dirY * force

	p.VX *= w.Friction
	p.VY *= w.Friction

	p.X += p.VX
	p.Y += p.VY

	// A particle that crossed the horizon during this move is gone now,
	// not on the next tick.
	dx = w.Center.X - p.X
	dy = w.Center.Y - p.Y
	if dx*dx+dy*dy < w.EventHorizon*w.EventHorizon {
		return false
	}

	p.Speed = math.Sqrt(p.VX*p.VX + p.VY*p.VY)
	return true
}
