package swarm

import "errors"

// Domain errors for swarm configuration and spawning.
var (
	// ErrInvalidConfig indicates world constants or settings that cannot
	// produce a sane simulation.
	ErrInvalidConfig = errors.New("swarm: invalid configuration")

	// ErrInvalidSpawn indicates spawn arguments outside their valid range.
	ErrInvalidSpawn = errors.New("swarm: invalid spawn request")

	// ErrNonFinite indicates a particle with a NaN or Inf component.
	ErrNonFinite = errors.New("swarm: non-finite particle state")
)
