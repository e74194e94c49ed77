package sim

import "container/heap"

// runningItem represents one task currently occupying resource, keyed by its
// planned finish time. seq breaks ties between equal finish times in FIFO
// (insertion) order, which keeps retirement deterministic regardless of the
// underlying heap implementation's tie-breaking behavior.
type runningItem struct {
	finish   int
	seq      int64
	task     int
	resource int
}

type runningQueue []runningItem

func (q runningQueue) Len() int { return len(q) }

func (q runningQueue) Less(i, j int) bool {
	if q[i].finish != q[j].finish {
		return q[i].finish < q[j].finish
	}
	return q[i].seq < q[j].seq
}

func (q runningQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *runningQueue) Push(x interface{}) {
	*q = append(*q, x.(runningItem))
}

func (q *runningQueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// newRunningQueue returns an initialized, empty heap.
func newRunningQueue() *runningQueue {
	q := &runningQueue{}
	heap.Init(q)
	return q
}
