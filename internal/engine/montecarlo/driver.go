// Package montecarlo implements the Monte-Carlo driver (§4.5): it samples
// Iterations independent randomized topological orderings of a prepared task
// graph, simulates each one's makespan across a bounded worker pool, and
// folds the results into streaming statistics and a best-so-far schedule.
//
// The worker pool bounds concurrent simulations with a semaphore and a
// WaitGroup inside a producer/worker/aggregator pipeline: results reach a
// single aggregating goroutine over a channel, so no mutex guards the
// statistics, and neither the full seed list nor (unless
// Config.ReorderBySeed is set) the full result list is ever materialized.
package montecarlo

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	validator "github.com/go-playground/validator/v10"

	engerrors "github.com/annybogatova/tmanagement/internal/engine/errors"
	"github.com/annybogatova/tmanagement/internal/engine/graph"
	"github.com/annybogatova/tmanagement/internal/engine/topo"
	"github.com/annybogatova/tmanagement/internal/engine/sim"
)

// validate runs the struct-tag checks declared on Config; the hand-rolled
// checks in Validate cover graph-aware invariants a tag can't express (none,
// for Config, but kept symmetric with graph.Prepare's use of the same
// instance).
var validate = validator.New()

// reservoirSeedOffset is added to Config.SeedBase to derive the RNG seed
// used for reservoir sampling, kept distinct from any per-iteration ordering
// seed so that changing the sample size never perturbs the orderings
// themselves.
const reservoirSeedOffset = 9999

// Config parameterizes one Monte-Carlo run. Validate checks it before any
// worker is started and reports the first constraint violation it finds.
type Config struct {
	Iterations int64 `validate:"required,min=1"`
	Capacity   int   `validate:"required,min=1"`
	Workers    int
	SeedBase   int64
	SampleSize int
	Chunksize  int
	// ReorderBySeed, when true, buffers every result and folds the
	// reservoir/statistics in seed order rather than arrival order. This
	// restores full run-to-run determinism of the median/best-order choice
	// under Workers > 1, at the cost of holding all Iterations results in
	// memory at once; leave false for large Iterations.
	ReorderBySeed bool
}

// Validate runs Config's struct tags through validator and translates the
// first violation into a *engerrors.ValidationError.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			switch fe.Field() {
			case "Iterations":
				return engerrors.NewValidationError("iterations", "must be >= 1, got %d", c.Iterations)
			case "Capacity":
				return engerrors.NewValidationError("capacity", "must be >= 1, got %d", c.Capacity)
			default:
				return engerrors.NewValidationError(fe.Field(), "failed %s", fe.Tag())
			}
		}
		return err
	}
	return nil
}

// withDefaults fills in the zero-valued tuning knobs with their documented
// defaults: workers = min(32, 2*NumCPU), sample size 10000, chunksize 256.
func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = defaultWorkers()
	}
	if c.SampleSize <= 0 {
		c.SampleSize = 10000
	}
	if c.Chunksize <= 0 {
		c.Chunksize = 256
	}
	return c
}

func defaultWorkers() int {
	w := 2 * runtime.NumCPU()
	if w > 32 {
		w = 32
	}
	if w < 1 {
		w = 1
	}
	return w
}

// Best is the best ordering observed across every folded simulation.
type Best struct {
	Makespan         int   `json:"makespan"`
	Order            []int `json:"order"`
	OrderTopological []int `json:"order_topological"`
}

// Result is the full output of one Monte-Carlo run.
type Result struct {
	Iterations  int64  `json:"iterations"`
	MaxResource int    `json:"max_resource"`
	Workers     int    `json:"workers"`
	Stats       Stats  `json:"stats"`
	Best        Best   `json:"best"`
}

// Run drives Iterations independent simulations of p under cfg, using a
// bounded worker pool, and returns the folded statistics and best-so-far
// schedule. ctx cancellation stops dispatch; Run then returns the statistics
// of the results folded so far with a nil error. A worker error aborts the
// run and is wrapped in *engerrors.WorkerFailure.
func Run(ctx context.Context, p *graph.Prepared, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	cfg = cfg.withDefaults()

	start := time.Now()

	sampleRNG := topo.NewRNG(cfg.SeedBase + reservoirSeedOffset)
	acc := newAccumulator(cfg.SampleSize, sampleRNG)

	var results []simResult
	if cfg.ReorderBySeed {
		results = make([]simResult, 0, cfg.Iterations)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int64, cfg.Chunksize)
	out := make(chan simResult, cfg.Chunksize)
	errCh := make(chan error, 1)

	go generateSeeds(ctx, jobs, cfg.SeedBase, cfg.Iterations)

	done := make(chan struct{})
	go runWorkers(ctx, cancel, p, cfg, jobs, out, errCh, done)

	var runErr error
drain:
	for {
		select {
		case r, ok := <-out:
			if !ok {
				break drain
			}
			if cfg.ReorderBySeed {
				results = append(results, r)
			} else {
				acc.fold(r)
			}
		case err := <-errCh:
			if runErr == nil {
				runErr = err
			}
		}
	}
	<-done

	if runErr == nil {
		select {
		case err := <-errCh:
			runErr = err
		default:
		}
	}
	if runErr != nil {
		return Result{}, runErr
	}

	if cfg.ReorderBySeed {
		sort.Slice(results, func(i, j int) bool { return results[i].seed < results[j].seed })
		for _, r := range results {
			acc.fold(r)
		}
	}

	elapsed := time.Since(start).Seconds()
	stats := acc.finalize(elapsed)

	var best Best
	if acc.haveBest {
		topoOrder := make([]int, len(acc.bestOrder))
		copy(topoOrder, acc.bestOrder)

		chronological, err := chronologicalOrder(acc.bestOrder, p, cfg.Capacity)
		if err != nil {
			return Result{}, err
		}

		best = Best{Makespan: acc.bestMakespan, Order: chronological, OrderTopological: topoOrder}
	}

	return Result{
		Iterations:  cfg.Iterations,
		MaxResource: cfg.Capacity,
		Workers:     cfg.Workers,
		Stats:       stats,
		Best:        best,
	}, nil
}

// chronologicalOrder reruns the detailed simulator over the winning feasible
// ordering and returns a copy sorted by (start time, id ascending): the
// order a scheduler actually begins tasks in, as distinct from the raw
// topological order the sampler produced to feed the simulator.
func chronologicalOrder(order []int, p *graph.Prepared, capacity int) ([]int, error) {
	detailed, err := sim.SimulateDetailed(order, p, capacity, 0)
	if err != nil {
		return nil, err
	}

	chronological := make([]int, len(order))
	copy(chronological, order)
	sort.Slice(chronological, func(i, j int) bool {
		ti, tj := chronological[i], chronological[j]
		si, sj := detailed.StartTimes[ti], detailed.StartTimes[tj]
		if si != sj {
			return si < sj
		}
		return ti < tj
	})
	return chronological, nil
}

// generateSeeds feeds one seed per iteration into jobs, honoring
// cancellation, then closes jobs once every seed has been sent.
func generateSeeds(ctx context.Context, jobs chan<- int64, seedBase int64, iterations int64) {
	defer close(jobs)
	for i := int64(0); i < iterations; i++ {
		select {
		case <-ctx.Done():
			return
		case jobs <- seedBase + i:
		}
	}
}

// runWorkers starts cfg.Workers simulation workers bounded by a semaphore: a
// buffered channel gates concurrent work, a WaitGroup tracks completion, and
// the first worker error cancels the shared context so no further seeds are
// consumed. out is closed
// once every worker has exited; done is closed once runWorkers itself
// returns, signaling Run's drain loop it may perform its final errCh check.
func runWorkers(ctx context.Context, cancel context.CancelFunc, p *graph.Prepared, cfg Config, jobs <-chan int64, out chan<- simResult, errCh chan<- error, done chan<- struct{}) {
	defer close(done)

	semaphore := make(chan struct{}, cfg.Workers)
	var wg sync.WaitGroup

	for seed := range jobs {
		select {
		case <-ctx.Done():
			continue
		case semaphore <- struct{}{}:
		}

		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			defer func() { <-semaphore }()

			rng := topo.NewRNG(seed)
			order := topo.Order(p, rng)
			makespan, err := sim.Simulate(order, p, cfg.Capacity)
			if err != nil {
				select {
				case errCh <- fmt.Errorf("seed %d: %w", seed, &engerrors.WorkerFailure{Seed: seed, Err: err}):
				default:
				}
				cancel()
				return
			}

			select {
			case out <- simResult{seed: seed, makespan: makespan, order: order}:
			case <-ctx.Done():
			}
		}(seed)
	}

	wg.Wait()
	close(out)
}
