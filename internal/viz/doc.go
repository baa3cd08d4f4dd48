// Package viz is the terminal front end for the black hole swarm.
//
// It renders the swarm on a Braille [Canvas] and feeds input back into the
// simulator through a Bubble Tea [Model]. The model is the only goroutine
// that touches the simulator, so ticks, spawns and resets never overlap.
//
// # Key Bindings
//
//	Click  - Inject a cluster at the pointer (right click respawns the ring)
//	Space  - Pause/Resume
//	R      - Reset (respawn or clear, per settings)
//	G      - Respawn the galaxy ring
//	C      - Clear every particle
//	T      - Toggle trails
//	M      - Cycle colour mode
//	Q      - Quit
package viz
