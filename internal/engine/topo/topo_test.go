package topo

import (
	"testing"

	"github.com/annybogatova/tmanagement/internal/engine/graph"
)

func buildDiamond(t *testing.T) *graph.Prepared {
	t.Helper()
	g := graph.Graph{
		Tasks: []graph.Task{
			{ID: 1, Duration: 1, Resource: 1},
			{ID: 2, Duration: 1, Resource: 1, Preds: []int{1}},
			{ID: 3, Duration: 1, Resource: 1, Preds: []int{1}},
			{ID: 4, Duration: 1, Resource: 1, Preds: []int{2, 3}},
		},
		MaxResource: 2,
	}
	p, err := graph.Prepare(g)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}
	return p
}

func indexOf(order []int, id int) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}

func TestOrder_RespectsPrecedence(t *testing.T) {
	p := buildDiamond(t)
	for seed := int64(0); seed < 50; seed++ {
		rng := NewRNG(seed)
		order := Order(p, rng)

		if len(order) != len(p.Nodes) {
			t.Fatalf("seed %d: expected permutation of length %d, got %d", seed, len(p.Nodes), len(order))
		}
		if indexOf(order, 1) > indexOf(order, 2) || indexOf(order, 1) > indexOf(order, 3) {
			t.Fatalf("seed %d: task 1 must precede 2 and 3, got order %v", seed, order)
		}
		if indexOf(order, 2) > indexOf(order, 4) || indexOf(order, 3) > indexOf(order, 4) {
			t.Fatalf("seed %d: tasks 2 and 3 must precede 4, got order %v", seed, order)
		}
	}
}

func TestOrder_DeterministicForSameSeed(t *testing.T) {
	p := buildDiamond(t)
	a := Order(p, NewRNG(42))
	b := Order(p, NewRNG(42))

	if len(a) != len(b) {
		t.Fatalf("expected equal-length orders, got %d and %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different orders: %v vs %v", a, b)
		}
	}
}

func TestOrder_LinearChainHasOnlyOneValidOrdering(t *testing.T) {
	g := graph.Graph{
		Tasks: []graph.Task{
			{ID: 1, Duration: 1, Resource: 1},
			{ID: 2, Duration: 1, Resource: 1, Preds: []int{1}},
			{ID: 3, Duration: 1, Resource: 1, Preds: []int{2}},
		},
		MaxResource: 1,
	}
	p, err := graph.Prepare(g)
	if err != nil {
		t.Fatalf("Prepare returned error: %v", err)
	}

	order := Order(p, NewRNG(7))
	want := []int{1, 2, 3}
	for i, id := range want {
		if order[i] != id {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}
