package sim

import (
	"github.com/san-kum/blackhole/internal/metrics"
	"github.com/san-kum/blackhole/internal/swarm"
)

// Stepper advances a swarm by exactly one tick.
type Stepper interface {
	Step(s *swarm.State)
	Name() string
}

type Observer interface {
	OnTick(s *swarm.State, tick int)
}

type Metric = metrics.Metric

// RunConfig bounds a headless run.
type RunConfig struct {
	Ticks         int
	StopWhenEmpty bool
}

// Sample is the per-tick population record of a run.
type Sample struct {
	Tick       int
	Population int
	Absorbed   int
	MeanSpeed  float64
}

type Result struct {
	Seed       uint64
	Stepper    string
	Samples    []Sample
	Metrics    map[string]float64
	TicksTaken int
}

// Populations returns the population series as floats for plotting.
func (r *Result) Populations() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = float64(s.Population)
	}
	return out
}
