// Package randgraph generates a random task dependency graph for the HTTP
// surface's `/api/v1/simulate` endpoint (SPEC_FULL.md §6.2). It is not used
// by the core engine or the CLI's file-based graph loading.
package randgraph

import (
	"math/rand"

	"github.com/annybogatova/tmanagement/internal/engine/graph"
)

// Options parameterizes random task-graph generation. Values <= 0 for
// MaxPreds, MaxDuration and MaxResourcePerTask fall back to their
// defaults (3, 10 and 5).
type Options struct {
	NTasks             int
	MaxPreds           int
	MaxDuration        int
	MaxResourcePerTask int
	Seed               int64
}

const (
	defaultMaxPreds           = 3
	defaultMaxDuration        = 10
	defaultMaxResourcePerTask = 5
)

// withDefaults fills the zero-valued tuning knobs with their documented
// defaults.
func (o Options) withDefaults() Options {
	if o.MaxPreds <= 0 {
		o.MaxPreds = defaultMaxPreds
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = defaultMaxDuration
	}
	if o.MaxResourcePerTask <= 0 {
		o.MaxResourcePerTask = defaultMaxResourcePerTask
	}
	return o
}

// Generate builds n_tasks tasks numbered 1..NTasks. Task 1 has no
// predecessors; each task i > 1 picks k uniformly from
// [0, min(MaxPreds, i-1)] predecessors, sampled without replacement from
// {1, ..., i-1}, so every graph produced is already a DAG by construction.
func Generate(opts Options) []graph.Task {
	opts = opts.withDefaults()
	rng := rand.New(rand.NewSource(opts.Seed))

	tasks := make([]graph.Task, 0, opts.NTasks)
	for tid := 1; tid <= opts.NTasks; tid++ {
		var preds []int
		if tid > 1 {
			limit := opts.MaxPreds
			if tid-1 < limit {
				limit = tid - 1
			}
			k := rng.Intn(limit + 1)
			preds = sampleWithoutReplacement(rng, tid-1, k)
		}

		tasks = append(tasks, graph.Task{
			ID:       tid,
			Duration: 1 + rng.Intn(opts.MaxDuration),
			Resource: 1 + rng.Intn(opts.MaxResourcePerTask),
			Preds:    preds,
		})
	}

	return tasks
}

// sampleWithoutReplacement returns k distinct values drawn uniformly from
// {1, ..., n} by shuffling the whole pool and taking its first k entries.
// The result has the distribution of Python's random.sample(range(1, n+1), k),
// not its exact draws.
func sampleWithoutReplacement(rng *rand.Rand, n, k int) []int {
	if k <= 0 {
		return nil
	}
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i + 1
	}
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	out := make([]int, k)
	copy(out, pool[:k])
	return out
}
