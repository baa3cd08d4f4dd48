package sim

import (
	"context"
	"sync"

	"github.com/san-kum/blackhole/internal/config"
	"github.com/san-kum/blackhole/internal/metrics"
)

// Ensemble runs independent simulators with consecutive seeds. Each run owns
// its own swarm, so runs share nothing but the settings value they copy.
type Ensemble struct {
	cfg       *config.Settings
	numRuns   int
	seedStart uint64
}

func NewEnsemble(cfg *config.Settings, numRuns int, seedStart uint64) *Ensemble {
	return &Ensemble{cfg: cfg, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, rc RunConfig) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := e.cfg.Clone()
			cfgCopy.Seed = e.seedStart + uint64(idx)

			s, err := New(cfgCopy, nil)
			if err != nil {
				errs[idx] = err
				return
			}
			for _, m := range metrics.Standard() {
				s.AddMetric(m)
			}

			results[idx], errs[idx] = s.Run(ctx, rc)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
