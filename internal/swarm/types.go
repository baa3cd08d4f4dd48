package swarm

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Particle is a point mass in screen-space units. Velocity is in units per
// tick. Speed is derived from the velocity after each step and is only read
// by colour mapping.
type Particle struct {
	X, Y   float64
	VX, VY float64
	Speed  float64
}

func (p Particle) Pos() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }
func (p Particle) Vel() r2.Vec { return r2.Vec{X: p.VX, Y: p.VY} }

func (p Particle) IsFinite() bool {
	for _, v := range [...]float64{p.X, p.Y, p.VX, p.VY} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// World carries the fixed center and the constants of the attractor. It is
// set once at construction and never mutated afterwards.
type World struct {
	Center       r2.Vec
	Gravity      float64
	Friction     float64
	EventHorizon float64
	MinDistance  float64
}

// Validate rejects constants that break the absorption or finiteness
// invariants. A zero gravity is allowed so pure damping can be observed.
func (w World) Validate() error {
	switch {
	case math.IsNaN(w.Center.X) || math.IsNaN(w.Center.Y):
		return fmt.Errorf("%w: center is NaN", ErrInvalidConfig)
	case w.Gravity < 0 || math.IsNaN(w.Gravity) || math.IsInf(w.Gravity, 0):
		return fmt.Errorf("%w: gravity must be non-negative and finite, got %g", ErrInvalidConfig, w.Gravity)
	case !(w.Friction > 0 && w.Friction <= 1):
		return fmt.Errorf("%w: friction must be in (0, 1], got %g", ErrInvalidConfig, w.Friction)
	case !(w.EventHorizon > 0):
		return fmt.Errorf("%w: event horizon must be positive, got %g", ErrInvalidConfig, w.EventHorizon)
	case !(w.MinDistance > 0):
		return fmt.Errorf("%w: min distance must be positive, got %g", ErrInvalidConfig, w.MinDistance)
	case w.MinDistance >= w.EventHorizon:
		return fmt.Errorf("%w: min distance %g must be below event horizon %g", ErrInvalidConfig, w.MinDistance, w.EventHorizon)
	}
	return nil
}

// Distance returns the distance from p to the center.
func (w World) Distance(p Particle) float64 {
	return r2.Norm(r2.Sub(w.Center, p.Pos()))
}

// OrbitSpeed is the circular-orbit speed sqrt(G/d) at radius d.
func (w World) OrbitSpeed(d float64) float64 {
	return math.Sqrt(w.Gravity / d)
}
