// Package integrators advances a [swarm.State] by one fixed tick.
//
// Every stepper applies the same per-particle update: an inverse-square pull
// toward the center with a clamped divisor, semi-implicit Euler velocity
// integration, multiplicative friction, then the position update. Particles
// inside the event horizon are removed in the tick they are found there.
//
//   - [Advance]: serial in-place pass with compaction
//   - [Euler]: [Advance] behind a stepper value
//   - [Parallel]: chunked evaluation with a mark-and-compact sweep
package integrators
