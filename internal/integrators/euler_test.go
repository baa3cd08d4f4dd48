package integrators_test

import (
	"math"
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/blackhole/internal/integrators"
	"github.com/san-kum/blackhole/internal/swarm"
)

func canonicalWorld() swarm.World {
	return swarm.World{
		Center:       r2.Vec{X: 500, Y: 400},
		Gravity:      2000,
		Friction:     0.998,
		EventHorizon: 40,
		MinDistance:  10,
	}
}

func newState(w swarm.World) *swarm.State {
	st, err := swarm.NewState(w)
	Expect(err).NotTo(HaveOccurred())
	return st
}

func orbiting(w swarm.World, theta, d float64) swarm.Particle {
	v := w.OrbitSpeed(d)
	return swarm.Particle{
		X:  w.Center.X + math.Cos(theta)*d,
		Y:  w.Center.Y + math.Sin(theta)*d,
		VX: -math.Sin(theta) * v,
		VY: math.Cos(theta) * v,
	}
}

func randomSwarm(st *swarm.State, n int, rng *rand.Rand) {
	w := st.World
	for i := 0; i < n; i++ {
		d := 20 + rng.Float64()*400
		p := orbiting(w, rng.Float64()*2*math.Pi, d)
		p.VX *= 0.5 + rng.Float64()
		p.VY *= 0.5 + rng.Float64()
		st.Add(p)
	}
}

var _ = Describe("Advance", func() {
	var world swarm.World

	BeforeEach(func() {
		world = canonicalWorld()
	})

	It("applies acceleration, then friction, then motion", func() {
		st := newState(world)
		st.Add(swarm.Particle{X: 600, Y: 400})

		integrators.Advance(st)

		Expect(st.Len()).To(Equal(1))
		p := st.Particles()[0]
		Expect(p.VX).To(BeNumerically("~", -0.2*0.998, 1e-12))
		Expect(p.VY).To(BeNumerically("~", 0, 1e-12))
		Expect(p.X).To(BeNumerically("~", 600-0.2*0.998, 1e-12))
		Expect(p.Speed).To(BeNumerically("~", 0.2*0.998, 1e-12))
	})

	It("removes a particle inside the event horizon regardless of velocity", func() {
		st := newState(world)
		st.Add(swarm.Particle{X: 539, Y: 400, VX: 500, VY: -500})

		integrators.Advance(st)

		Expect(st.Len()).To(BeZero())
		Expect(st.Absorbed()).To(Equal(1))
	})

	It("keeps every survivor outside the event horizon", func() {
		st := newState(world)
		randomSwarm(st, 2000, rand.New(rand.NewPCG(7, 11)))

		for tick := 0; tick < 300; tick++ {
			before := st.Snapshot()
			integrators.Advance(st)

			for _, p := range st.Particles() {
				Expect(world.Distance(p)).To(BeNumerically(">=", world.EventHorizon))
				Expect(p.IsFinite()).To(BeTrue())
			}

			inside := 0
			for _, p := range before {
				if world.Distance(p) < world.EventHorizon {
					inside++
				}
			}
			Expect(st.Len()).To(BeNumerically("<=", len(before)-inside))
		}
	})

	It("decays speed by exactly F per tick without gravity", func() {
		world.Gravity = 0
		st := newState(world)
		st.Add(swarm.Particle{X: 800, Y: 400, VX: 0, VY: 3})
		speed0 := 3.0

		const ticks = 200
		for n := 1; n <= ticks; n++ {
			integrators.Advance(st)
			Expect(st.Len()).To(Equal(1))
			p := st.Particles()[0]
			want := speed0 * math.Pow(world.Friction, float64(n))
			Expect(p.Speed).To(BeNumerically("~", want, want*1e-9))
		}
	})

	It("stays finite next to the force clamp floor", func() {
		st := newState(world)
		st.Add(
			swarm.Particle{X: 510, Y: 400},
			swarm.Particle{X: 500, Y: 400},
			swarm.Particle{X: 540, Y: 400, VY: 1},
		)

		integrators.Advance(st)

		Expect(st.IsValid()).To(BeTrue())
		for _, p := range st.Particles() {
			Expect(math.IsNaN(p.Speed)).To(BeFalse())
		}
	})

	It("holds a circular orbit over one tick", func() {
		st := newState(world)
		st.Add(orbiting(world, 0.3, 200))

		integrators.Advance(st)

		Expect(world.Distance(st.Particles()[0])).To(BeNumerically("~", 200, 0.5))
	})

	It("spirals every ring particle into the horizon in finite time", func() {
		st := newState(world)
		rng := rand.New(rand.NewPCG(3, 5))
		for i := 0; i < 300; i++ {
			st.Add(orbiting(world, rng.Float64()*2*math.Pi, 100+rng.Float64()*250))
		}

		ticks := 0
		for st.Len() > 0 && ticks < 20000 {
			integrators.Advance(st)
			ticks++
		}
		Expect(st.Len()).To(BeZero())
		Expect(st.Absorbed()).To(Equal(300))
	})
})

var _ = Describe("Parallel", func() {
	It("matches the serial integrator particle for particle", func() {
		world := canonicalWorld()
		serial := newState(world)
		randomSwarm(serial, 5000, rand.New(rand.NewPCG(1, 2)))
		par := newState(world)
		par.Add(serial.Snapshot()...)

		stepper := integrators.NewParallel(4)
		stepper.MinChunk = 64
		for tick := 0; tick < 120; tick++ {
			integrators.Advance(serial)
			stepper.Step(par)
		}

		Expect(par.Len()).To(Equal(serial.Len()))
		Expect(par.Absorbed()).To(Equal(serial.Absorbed()))
		Expect(par.Particles()).To(Equal(serial.Particles()))
	})
})
