// Package topo implements the randomized topological orderer (§4.2): a
// randomized Kahn's algorithm that produces one feasible linear extension of
// a task graph per seed.
package topo

import (
	"math/rand"

	"github.com/annybogatova/tmanagement/internal/engine/graph"
)

// Order runs a randomized Kahn's algorithm over the prepared graph using rng
// as the sole source of non-determinism. Identical seeds on identical graphs
// yield identical orderings.
//
// For a DAG the result is a feasible linear extension: every predecessor of
// a task appears earlier in the output. If the input contains a cycle, the
// nodes that never reach zero in-degree are shuffled with the same rng and
// appended, so the function always returns a permutation of every node.
func Order(p *graph.Prepared, rng *rand.Rand) []int {
	indeg := make(map[int]int, len(p.Nodes))
	out := make(map[int][]int, len(p.Nodes))
	for _, n := range p.Nodes {
		indeg[n] = 0
	}
	for n, preds := range p.PredsMap {
		for _, pr := range preds {
			out[pr] = append(out[pr], n)
			indeg[n]++
		}
	}

	available := make([]int, 0, len(p.Nodes))
	for _, n := range p.Nodes {
		if indeg[n] == 0 {
			available = append(available, n)
		}
	}

	order := make([]int, 0, len(p.Nodes))
	for len(available) > 0 {
		idx := rng.Intn(len(available))
		node := available[idx]
		// swap-remove: order within `available` is immaterial
		last := len(available) - 1
		available[idx] = available[last]
		available = available[:last]

		order = append(order, node)
		for _, nbr := range out[node] {
			indeg[nbr]--
			if indeg[nbr] == 0 {
				available = append(available, nbr)
			}
		}
	}

	if len(order) != len(p.Nodes) {
		scheduled := make(map[int]bool, len(order))
		for _, n := range order {
			scheduled[n] = true
		}
		remaining := make([]int, 0, len(p.Nodes)-len(order))
		for _, n := range p.Nodes {
			if !scheduled[n] {
				remaining = append(remaining, n)
			}
		}
		rng.Shuffle(len(remaining), func(i, j int) {
			remaining[i], remaining[j] = remaining[j], remaining[i]
		})
		order = append(order, remaining...)
	}

	return order
}

// NewRNG constructs the deterministic, reproducible RNG used for a given
// seed. Every worker and the driver's own sampling RNG (seed_base + 9999)
// go through this constructor so draws are reproducible across runs.
func NewRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
