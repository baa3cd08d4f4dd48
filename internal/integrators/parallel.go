package integrators

import (
	"runtime"
	"sync"

	"github.com/san-kum/blackhole/internal/swarm"
)

// DefaultMinChunk is the smallest particle range handed to one worker.
const DefaultMinChunk = 512

// Parallel evaluates particles across workers. Each particle is read and
// written by exactly one worker, and removals are applied in a single sweep
// once every worker has finished.
type Parallel struct {
	Workers  int
	MinChunk int
	dead     []bool
}

func NewParallel(workers int) *Parallel {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Parallel{Workers: workers, MinChunk: DefaultMinChunk}
}

func (p *Parallel) Name() string { return "parallel" }

func (p *Parallel) Step(s *swarm.State) {
	particles := s.Particles()
	n := len(particles)
	if cap(p.dead) < n {
		p.dead = make([]bool, n)
	}
	dead := p.dead[:n]
	w := s.World

	ParallelFor(n, p.MinChunk, p.Workers, func(start, end int) {
		for i := start; i < end; i++ {
			dead[i] = !stepParticle(w, &particles[i])
		}
	})

	s.Sweep(dead)
}

// ParallelFor executes fn over [0, n) split into at most workers contiguous
// chunks of at least minChunk elements.
func ParallelFor(n, minChunk, workers int, fn func(start, end int)) {
	if minChunk < 1 {
		minChunk = 1
	}
	if n <= minChunk || workers <= 1 {
		fn(0, n)
		return
	}

	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}
