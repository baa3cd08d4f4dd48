package spawn_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/blackhole/internal/integrators"
	"github.com/san-kum/blackhole/internal/spawn"
	"github.com/san-kum/blackhole/internal/swarm"
)

type scripted struct {
	vals []float64
	i    int
}

func (s *scripted) Float64() float64 {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v
}

func canonicalState() *swarm.State {
	st, err := swarm.NewState(swarm.World{
		Center:       r2.Vec{X: 500, Y: 400},
		Gravity:      2000,
		Friction:     0.998,
		EventHorizon: 40,
		MinDistance:  10,
	})
	Expect(err).NotTo(HaveOccurred())
	return st
}

func radial(st *swarm.State, p swarm.Particle) (r2.Vec, float64) {
	r := r2.Sub(p.Pos(), st.World.Center)
	return r, r2.Norm(r)
}

var _ = Describe("Ring", func() {
	var st *swarm.State

	BeforeEach(func() {
		st = canonicalState()
	})

	It("places a fixed-radius particle on the circle at orbit speed", func() {
		gen := spawn.NewGenerator(&scripted{vals: []float64{0.125, 0.5}}, 0.8)
		Expect(gen.Ring(st, 1, 100, 100)).To(Succeed())

		Expect(st.Len()).To(Equal(1))
		p := st.Particles()[0]
		r, d := radial(st, p)
		Expect(d).To(BeNumerically("~", 100, 1e-9))
		Expect(r2.Norm(p.Vel())).To(BeNumerically("~", math.Sqrt(20), 1e-9))
		Expect(r2.Dot(r, p.Vel())).To(BeNumerically("~", 0, 1e-9))
	})

	It("builds every particle at sqrt(G/d) perpendicular to its radius", func() {
		gen := spawn.NewGenerator(spawn.NewSampler(42), 0.8)
		Expect(gen.Ring(st, 1000, 100, 350)).To(Succeed())
		Expect(st.Len()).To(Equal(1000))

		for _, p := range st.Particles() {
			r, d := radial(st, p)
			Expect(d).To(BeNumerically(">=", 100-1e-9))
			Expect(d).To(BeNumerically("<=", 350+1e-9))

			want := math.Sqrt(st.World.Gravity / d)
			Expect(r2.Norm(p.Vel())).To(BeNumerically("~", want, want*1e-9))
			Expect(r2.Dot(r, p.Vel()) / (d * want)).To(BeNumerically("~", 0, 1e-9))
			// Counter-clockwise: r x v is positive.
			Expect(r2.Cross(r, p.Vel())).To(BeNumerically(">", 0))
		}
	})

	It("appends to the existing collection", func() {
		gen := spawn.NewGenerator(spawn.NewSampler(1), 0.8)
		Expect(gen.Ring(st, 10, 100, 200)).To(Succeed())
		Expect(gen.Ring(st, 5, 100, 200)).To(Succeed())
		Expect(st.Len()).To(Equal(15))
	})

	It("refuses an inner radius inside the event horizon", func() {
		gen := spawn.NewGenerator(spawn.NewSampler(1), 0.8)
		Expect(gen.Ring(st, 10, 40, 200)).To(MatchError(swarm.ErrInvalidSpawn))
		Expect(gen.Ring(st, 10, 200, 100)).To(MatchError(swarm.ErrInvalidSpawn))
		Expect(gen.Ring(st, -1, 100, 200)).To(MatchError(swarm.ErrInvalidSpawn))
		Expect(gen.Ring(st, 10, 100, math.NaN())).To(MatchError(swarm.ErrInvalidSpawn))
		Expect(gen.Ring(st, 10, math.NaN(), 200)).To(MatchError(swarm.ErrInvalidSpawn))
		Expect(gen.Ring(st, 10, 100, math.Inf(1))).To(MatchError(swarm.ErrInvalidSpawn))
		Expect(st.Len()).To(BeZero())
	})
})

var _ = Describe("Cluster", func() {
	var st *swarm.State

	BeforeEach(func() {
		st = canonicalState()
	})

	It("gives each particle the configured fraction of orbit speed", func() {
		gen := spawn.NewGenerator(spawn.NewSampler(9), 0.8)
		origin := r2.Vec{X: 800, Y: 150}
		Expect(gen.Cluster(st, origin, 50, 10)).To(Succeed())
		Expect(st.Len()).To(Equal(50))

		for _, p := range st.Particles() {
			Expect(math.Abs(p.X - origin.X)).To(BeNumerically("<=", 10))
			Expect(math.Abs(p.Y - origin.Y)).To(BeNumerically("<=", 10))

			r, d := radial(st, p)
			want := 0.8 * math.Sqrt(st.World.Gravity/d)
			Expect(r2.Norm(p.Vel())).To(BeNumerically("~", want, want*1e-9))
			Expect(r2.Dot(r, p.Vel()) / (d * want)).To(BeNumerically("~", 0, 1e-9))
			Expect(r2.Cross(r, p.Vel())).To(BeNumerically(">", 0))
		}
	})

	It("honours a custom speed factor", func() {
		gen := spawn.NewGenerator(&scripted{vals: []float64{0.5}}, 0.5)
		Expect(gen.Cluster(st, r2.Vec{X: 700, Y: 400}, 1, 25)).To(Succeed())

		p := st.Particles()[0]
		Expect(p.X).To(BeNumerically("~", 700, 1e-12))
		Expect(r2.Norm(p.Vel())).To(BeNumerically("~", 0.5*math.Sqrt(10), 1e-9))
	})

	It("clamps an origin exactly at the center instead of dividing by zero", func() {
		gen := spawn.NewGenerator(&scripted{vals: []float64{0.5}}, 0.8)
		Expect(gen.Cluster(st, st.World.Center, 3, 0)).To(Succeed())

		for _, p := range st.Particles() {
			Expect(p.IsFinite()).To(BeTrue())
			Expect(math.IsNaN(p.Speed)).To(BeFalse())
		}

		integrators.Advance(st)
		Expect(st.IsValid()).To(BeTrue())
		Expect(st.Len()).To(BeZero())
	})

	It("rejects negative jitter and counts", func() {
		gen := spawn.NewGenerator(spawn.NewSampler(1), 0.8)
		Expect(gen.Cluster(st, r2.Vec{X: 1, Y: 1}, -3, 1)).To(MatchError(swarm.ErrInvalidSpawn))
		Expect(gen.Cluster(st, r2.Vec{X: 1, Y: 1}, 3, -1)).To(MatchError(swarm.ErrInvalidSpawn))
		Expect(gen.Cluster(st, r2.Vec{X: math.NaN(), Y: 1}, 3, 1)).To(MatchError(swarm.ErrInvalidSpawn))
		Expect(gen.Cluster(st, r2.Vec{X: 1, Y: 1}, 3, math.NaN())).To(MatchError(swarm.ErrInvalidSpawn))
		Expect(st.Len()).To(BeZero())
	})

	It("decays faster than a ring particle at the same radius", func() {
		ringSt := canonicalState()
		ringGen := spawn.NewGenerator(&scripted{vals: []float64{0, 0}}, 0.8)
		Expect(ringGen.Ring(ringSt, 1, 200, 200)).To(Succeed())

		clusterGen := spawn.NewGenerator(&scripted{vals: []float64{0.5}}, 0.8)
		Expect(clusterGen.Cluster(st, r2.Vec{X: 700, Y: 400}, 1, 5)).To(Succeed())

		ticks := func(s *swarm.State) int {
			n := 0
			for s.Len() > 0 && n < 50000 {
				integrators.Advance(s)
				n++
			}
			return n
		}
		Expect(ticks(st)).To(BeNumerically("<", ticks(ringSt)))
	})
})
