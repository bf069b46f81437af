// Package parallel runs independent tape evaluations on worker goroutines.
//
// Workers never share AD state: each owns its recorder, function object and
// buffers. The package only coordinates entry into and exit from phases.
package parallel

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/born-ml/adtape/internal/config"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns sensible defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 64,
	}
}

// FromConfig converts the [parallel] section of adtape.toml.
func FromConfig(p config.Parallel) Config {
	return Config{
		Enabled:      p.Workers > 1,
		NumWorkers:   max(p.Workers, 1),
		MinChunkSize: p.MinChunk,
	}
}

// For executes f(i) for i in [0, n) with optional parallelism.
// Falls back to sequential execution if parallelism is disabled or n is too small.
func For(n int, f func(i int), cfg Config) {
	if !cfg.Enabled || n < cfg.MinChunkSize || cfg.NumWorkers < 2 {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	var wg sync.WaitGroup
	chunkSize := max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}

// Phase is the work of one worker in one phase.
type Phase func(ctx context.Context, worker int) error

// Team is a fixed set of workers that run phases in lockstep. Every phase
// ends with a barrier: Run returns only after all workers have returned.
type Team struct {
	Workers int
}

// NewTeam creates a team with cfg.NumWorkers workers, or one worker when
// parallelism is disabled.
func NewTeam(cfg Config) *Team {
	if !cfg.Enabled || cfg.NumWorkers < 1 {
		return &Team{Workers: 1}
	}
	return &Team{Workers: cfg.NumWorkers}
}

// Run executes phase on every worker concurrently. The first error cancels
// the context passed to the other workers and is returned.
func (t *Team) Run(ctx context.Context, phase Phase) error {
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < max(t.Workers, 1); w++ {
		w := w
		g.Go(func() error {
			return phase(ctx, w)
		})
	}
	return g.Wait()
}

// Phases runs each phase in order with a barrier in between. It stops at
// the first phase that fails.
func (t *Team) Phases(ctx context.Context, phases ...Phase) error {
	for _, p := range phases {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := t.Run(ctx, p); err != nil {
			return err
		}
	}
	return nil
}
