// Package swarm holds the simulation state for a particle swarm orbiting a
// single fixed singularity.
//
// The package defines the data model shared by the integrator and the spawn
// generators:
//
//   - [Particle]: position and velocity of one point mass
//   - [World]: the fixed center and the four world constants
//   - [State]: the live particle collection plus its [World]
//
// Particles only ever interact with the central body. A [State] removes
// particles through compaction ([State.Retain], [State.Sweep]) so a full-pass
// traversal never skips or repeats an element.
//
// # Example
//
//	st, err := swarm.NewState(swarm.World{
//	    Center:       r2.Vec{X: 500, Y: 400},
//	    Gravity:      2000,
//	    Friction:     0.998,
//	    EventHorizon: 40,
//	    MinDistance:  10,
//	})
//
// # Thread Safety
//
// State is NOT thread-safe. Drive it from a single goroutine; the parallel
// integrator partitions the particle slice internally and compacts only
// after every particle has been evaluated.
package swarm
