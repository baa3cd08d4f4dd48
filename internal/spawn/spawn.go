// Package spawn seeds a [swarm.State] with particles in controlled initial
// configurations: a galaxy ring on circular orbits, and a sub-orbital cluster
// injected at a point.
package spawn

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/blackhole/internal/swarm"
)

// MinDistance is the radius a cluster particle is clamped to when it lands on
// the center.
const MinDistance = 1e-6

// DefaultSpeedFactor is the fraction of circular-orbit speed given to
// cluster particles.
const DefaultSpeedFactor = 0.8

// Sampler yields uniform draws in [0, 1). *rand.Rand satisfies it.
type Sampler interface {
	Float64() float64
}

// NewSampler returns a seeded PCG source. Seeds are split so that nearby
// seeds still produce unrelated streams.
func NewSampler(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

type Generator struct {
	rng         Sampler
	speedFactor float64
}

func NewGenerator(rng Sampler, clusterSpeedFactor float64) *Generator {
	if clusterSpeedFactor <= 0 {
		clusterSpeedFactor = DefaultSpeedFactor
	}
	return &Generator{rng: rng, speedFactor: clusterSpeedFactor}
}

// Ring appends count particles to s, uniformly distributed in angle and in
// radius over [minDist, maxDist], each moving at circular-orbit speed
// counter-clockwise around the center.
func (g *Generator) Ring(s *swarm.State, count int, minDist, maxDist float64) error {
	switch {
	case count < 0:
		return fmt.Errorf("%w: ring count must be non-negative, got %d", swarm.ErrInvalidSpawn, count)
	case !(minDist > s.World.EventHorizon):
		return fmt.Errorf("%w: ring inner radius %g must exceed event horizon %g", swarm.ErrInvalidSpawn, minDist, s.World.EventHorizon)
	case !(maxDist >= minDist) || math.IsInf(maxDist, 0):
		return fmt.Errorf("%w: ring outer radius %g must be finite and at least inner radius %g", swarm.ErrInvalidSpawn, maxDist, minDist)
	}

	c := s.World.Center
	batch := make([]swarm.Particle, count)
	for i := range batch {
		theta := g.rng.Float64() * 2 * math.Pi
		d := minDist + g.rng.Float64()*(maxDist-minDist)

		sin, cos := math.Sincos(theta)
		speed := s.World.OrbitSpeed(d)
		batch[i] = swarm.Particle{
			X:     c.X + cos*d,
			Y:     c.Y + sin*d,
			VX:    -sin * speed,
			VY:    cos * speed,
			Speed: speed,
		}
	}
	s.Add(batch...)
	return nil
}

// Cluster appends count particles jittered around origin by up to jitter on
// each axis. Each moves tangentially, in the ring's rotational sense, at the
// generator's fraction of circular-orbit speed.
func (g *Generator) Cluster(s *swarm.State, origin r2.Vec, count int, jitter float64) error {
	switch {
	case count < 0:
		return fmt.Errorf("%w: cluster count must be non-negative, got %d", swarm.ErrInvalidSpawn, count)
	case !(jitter >= 0) || math.IsInf(jitter, 0):
		return fmt.Errorf("%w: cluster jitter must be non-negative and finite, got %g", swarm.ErrInvalidSpawn, jitter)
	case math.IsNaN(origin.X) || math.IsNaN(origin.Y) || math.IsInf(origin.X, 0) || math.IsInf(origin.Y, 0):
		return fmt.Errorf("%w: cluster origin must be finite", swarm.ErrInvalidSpawn)
	}

	c := s.World.Center
	batch := make([]swarm.Particle, count)
	for i := range batch {
		pos := r2.Vec{
			X: origin.X + (g.rng.Float64()*2-1)*jitter,
			Y: origin.Y + (g.rng.Float64()*2-1)*jitter,
		}

		radial := r2.Sub(pos, c)
		d := r2.Norm(radial)
		var dir r2.Vec
		if d < MinDistance {
			d = MinDistance
			dir = r2.Vec{X: 1}
		} else {
			dir = r2.Scale(1/d, radial)
		}

		speed := s.World.OrbitSpeed(d) * g.speedFactor
		batch[i] = swarm.Particle{
			X:     pos.X,
			Y:     pos.Y,
			VX:    -dir.Y * speed,
			VY:    dir.X * speed,
			Speed: speed,
		}
	}
	s.Add(batch...)
	return nil
}
