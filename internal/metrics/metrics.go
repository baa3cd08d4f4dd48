package metrics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/blackhole/internal/swarm"
)

type Metric interface {
	Name() string
	Observe(s *swarm.State, tick int)
	Value() float64
	Reset()
}

// Standard returns a fresh set of every metric in this package.
func Standard() []Metric {
	return []Metric{
		NewPopulation(),
		NewAbsorbed(),
		NewMeanSpeed(),
		NewKineticEnergy(),
		NewAngularMomentum(),
		NewHalfLife(),
	}
}

// MeanSpeedOf is the mean particle speed, 0 for an empty swarm.
func MeanSpeedOf(s *swarm.State) float64 {
	ps := s.Particles()
	if len(ps) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range ps {
		sum += math.Hypot(p.VX, p.VY)
	}
	return sum / float64(len(ps))
}

// KineticEnergyOf is the mean ½v² per particle, taking unit mass.
func KineticEnergyOf(s *swarm.State) float64 {
	ps := s.Particles()
	if len(ps) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range ps {
		sum += 0.5 * (p.VX*p.VX + p.VY*p.VY)
	}
	return sum / float64(len(ps))
}

// AngularMomentumOf sums r×v about the center. Positive means the swarm
// turns in the ring's rotational sense.
func AngularMomentumOf(s *swarm.State) float64 {
	L := 0.0
	for _, p := range s.Particles() {
		L += r2.Cross(r2.Sub(p.Pos(), s.World.Center), p.Vel())
	}
	return L
}

type Population struct{ last int }

func NewPopulation() *Population { return &Population{} }

func (m *Population) Name() string                     { return "population" }
func (m *Population) Observe(s *swarm.State, tick int) { m.last = s.Len() }
func (m *Population) Value() float64                   { return float64(m.last) }
func (m *Population) Reset()                           { m.last = 0 }

type Absorbed struct{ last int }

func NewAbsorbed() *Absorbed { return &Absorbed{} }

func (m *Absorbed) Name() string                     { return "absorbed" }
func (m *Absorbed) Observe(s *swarm.State, tick int) { m.last = s.Absorbed() }
func (m *Absorbed) Value() float64                   { return float64(m.last) }
func (m *Absorbed) Reset()                           { m.last = 0 }

// MeanSpeed averages the per-tick mean speed over every observation that had
// at least one particle.
type MeanSpeed struct {
	total   float64
	samples int
}

func NewMeanSpeed() *MeanSpeed { return &MeanSpeed{} }

func (m *MeanSpeed) Name() string { return "mean_speed" }

func (m *MeanSpeed) Observe(s *swarm.State, tick int) {
	if s.Len() == 0 {
		return
	}
	m.total += MeanSpeedOf(s)
	m.samples++
}

func (m *MeanSpeed) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *MeanSpeed) Reset() { m.total, m.samples = 0, 0 }

type KineticEnergy struct {
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy { return &KineticEnergy{} }

func (m *KineticEnergy) Name() string { return "kinetic_energy" }

func (m *KineticEnergy) Observe(s *swarm.State, tick int) {
	if s.Len() == 0 {
		return
	}
	m.total += KineticEnergyOf(s)
	m.samples++
}

func (m *KineticEnergy) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.total / float64(m.samples)
}

func (m *KineticEnergy) Reset() { m.total, m.samples = 0, 0 }

// AngularMomentum reports the value at the last observation.
type AngularMomentum struct{ last float64 }

func NewAngularMomentum() *AngularMomentum { return &AngularMomentum{} }

func (m *AngularMomentum) Name() string { return "angular_momentum" }

func (m *AngularMomentum) Observe(s *swarm.State, tick int) { m.last = AngularMomentumOf(s) }
func (m *AngularMomentum) Value() float64                   { return m.last }
func (m *AngularMomentum) Reset()                           { m.last = 0 }

// HalfLife records the first tick at which the population has fallen to half
// of its first observed size. Value is -1 until that happens.
type HalfLife struct {
	initial  int
	seen     bool
	halfTick int
}

func NewHalfLife() *HalfLife { return &HalfLife{halfTick: -1} }

func (m *HalfLife) Name() string { return "half_life" }

func (m *HalfLife) Observe(s *swarm.State, tick int) {
	if !m.seen {
		m.initial = s.Len()
		m.seen = true
		return
	}
	if m.halfTick >= 0 || m.initial == 0 {
		return
	}
	if 2*s.Len() <= m.initial {
		m.halfTick = tick
	}
}

func (m *HalfLife) Value() float64 { return float64(m.halfTick) }

func (m *HalfLife) Reset() {
	m.initial = 0
	m.seen = false
	m.halfTick = -1
}
