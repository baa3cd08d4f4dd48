package swarm

// State is the live particle collection together with its world. Removals
// keep the relative order of the survivors.
type State struct {
	World     World
	particles []Particle
	absorbed  int
}

func NewState(w World) (*State, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &State{World: w, particles: make([]Particle, 0, 256)}, nil
}

// Particles exposes the live slice. Callers may mutate elements in place but
// must not retain the slice across a Retain, Sweep, Add or Clear call.
func (s *State) Particles() []Particle { return s.particles }

func (s *State) Len() int { return len(s.particles) }

// Absorbed is the running count of particles removed by Retain or Sweep.
func (s *State) Absorbed() int { return s.absorbed }

func (s *State) Add(p ...Particle) { s.particles = append(s.particles, p...) }

// Clear drops every particle. The absorbed counter is reset as well since a
// cleared swarm starts a new population.
func (s *State) Clear() {
	clear(s.particles)
	s.particles = s.particles[:0]
	s.absorbed = 0
}

// Retain visits every particle exactly once, in place, and keeps those for
// which keep returns true. Survivors are compacted to the front of the slice.
func (s *State) Retain(keep func(p *Particle) bool) {
	w := 0
	for i := range s.particles {
		if !keep(&s.particles[i]) {
			continue
		}
		if w != i {
			s.particles[w] = s.particles[i]
		}
		w++
	}
	s.truncate(w)
}

// Sweep removes every particle whose dead flag is set. dead must be indexed
// like Particles() and at least as long.
func (s *State) Sweep(dead []bool) {
	w := 0
	for i := range s.particles {
		if dead[i] {
			continue
		}
		if w != i {
			s.particles[w] = s.particles[i]
		}
		w++
	}
	s.truncate(w)
}

func (s *State) truncate(n int) {
	removed := len(s.particles) - n
	clear(s.particles[n:])
	s.particles = s.particles[:n]
	s.absorbed += removed
}

// Snapshot returns a copy of the live particles.
func (s *State) Snapshot() []Particle {
	c := make([]Particle, len(s.particles))
	copy(c, s.particles)
	return c
}

// IsValid reports whether every particle is finite.
func (s *State) IsValid() bool {
	for _, p := range s.particles {
		if !p.IsFinite() {
			return false
		}
	}
	return true
}
