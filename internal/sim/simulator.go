package sim

import (
	"context"
	"fmt"
	"time"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/blackhole/internal/config"
	"github.com/san-kum/blackhole/internal/integrators"
	"github.com/san-kum/blackhole/internal/metrics"
	"github.com/san-kum/blackhole/internal/spawn"
	"github.com/san-kum/blackhole/internal/swarm"
)

// Simulator owns the swarm and is the single place where ticks, spawns and
// resets are applied. It must be driven from one goroutine.
type Simulator struct {
	cfg       *config.Settings
	state     *swarm.State
	stepper   Stepper
	gen       *spawn.Generator
	seed      uint64
	tick      int
	metrics   []Metric
	observers []Observer
}

// New validates cfg, seeds the sampler and spawns the initial ring. A nil
// rng uses a PCG source seeded from cfg.Seed, or from the clock when the
// seed is zero.
func New(cfg *config.Settings, rng spawn.Sampler) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	state, err := swarm.NewState(cfg.World())
	if err != nil {
		return nil, err
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if rng == nil {
		rng = spawn.NewSampler(seed)
	}

	s := &Simulator{
		cfg:       cfg.Clone(),
		state:     state,
		stepper:   newStepper(cfg.Workers),
		gen:       spawn.NewGenerator(rng, cfg.ClusterSpeedFactor),
		seed:      seed,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}

	if err := s.SpawnRing(); err != nil {
		return nil, err
	}
	return s, nil
}

func newStepper(workers int) Stepper {
	if workers > 1 {
		return integrators.NewParallel(workers)
	}
	return integrators.NewEuler()
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) State() *swarm.State        { return s.state }
func (s *Simulator) Settings() *config.Settings { return s.cfg }
func (s *Simulator) Seed() uint64               { return s.seed }
func (s *Simulator) Ticks() int                 { return s.tick }
func (s *Simulator) StepperName() string        { return s.stepper.Name() }

// Step advances the swarm one tick and notifies metrics and observers.
func (s *Simulator) Step() {
	s.stepper.Step(s.state)
	s.tick++

	for _, m := range s.metrics {
		m.Observe(s.state, s.tick)
	}
	for _, obs := range s.observers {
		obs.OnTick(s.state, s.tick)
	}
}

// SpawnRing adds a galaxy ring using the configured count and radii.
func (s *Simulator) SpawnRing() error {
	return s.gen.Ring(s.state, s.cfg.RingCount, s.cfg.RingMinDist, s.cfg.RingMaxDist)
}

// Respawn replaces the swarm with a fresh ring.
func (s *Simulator) Respawn() error {
	s.state.Clear()
	return s.SpawnRing()
}

func (s *Simulator) Clear() { s.state.Clear() }

// Reset applies the configured reset mode.
func (s *Simulator) Reset() error {
	if s.cfg.ResetMode == config.ResetClear {
		s.Clear()
		return nil
	}
	return s.Respawn()
}

// Inject spawns a cluster at origin, in world coordinates.
func (s *Simulator) Inject(origin r2.Vec) error {
	return s.gen.Cluster(s.state, origin, s.cfg.ClusterCount, s.cfg.ClusterJitter)
}

func (s *Simulator) sample() Sample {
	return Sample{
		Tick:       s.tick,
		Population: s.state.Len(),
		Absorbed:   s.state.Absorbed(),
		MeanSpeed:  metrics.MeanSpeedOf(s.state),
	}
}

// Begin starts a recording: every metric is reset and observes the current
// state as its baseline, and the returned Result holds the tick-0 sample.
func (s *Simulator) Begin(capacity int) *Result {
	result := &Result{
		Seed:    s.seed,
		Stepper: s.stepper.Name(),
		Samples: make([]Sample, 0, capacity+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
		m.Observe(s.state, s.tick)
	}
	result.Samples = append(result.Samples, s.sample())
	return result
}

// Record appends the sample for the tick just stepped.
func (s *Simulator) Record(result *Result) {
	result.TicksTaken++
	result.Samples = append(result.Samples, s.sample())
}

// Finish copies the current metric values into result.
func (s *Simulator) Finish(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

// Run steps the swarm headless for rc.Ticks ticks, recording one sample per
// tick plus the starting sample.
func (s *Simulator) Run(ctx context.Context, rc RunConfig) (*Result, error) {
	if rc.Ticks <= 0 {
		return nil, fmt.Errorf("ticks must be positive, got %d", rc.Ticks)
	}

	result := s.Begin(rc.Ticks)

	for i := 0; i < rc.Ticks; i++ {
		select {
		case <-ctx.Done():
			s.Finish(result)
			return result, ctx.Err()
		default:
		}

		if rc.StopWhenEmpty && s.state.Len() == 0 {
			break
		}

		s.Step()

		if !s.state.IsValid() {
			result.TicksTaken++
			s.Finish(result)
			return result, fmt.Errorf("tick %d: %w", s.tick, swarm.ErrNonFinite)
		}

		s.Record(result)
	}

	s.Finish(result)
	return result, nil
}

// RunRealtime steps once per configured tick interval until ctx is done or
// onFrame returns false. onFrame runs on the same goroutine as Step, so it
// may spawn or reset safely.
func (s *Simulator) RunRealtime(ctx context.Context, onFrame func(s *Simulator) bool) error {
	ticker := time.NewTicker(s.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Step()
			if onFrame != nil && !onFrame(s) {
				return nil
			}
		}
	}
}
