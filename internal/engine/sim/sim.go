// Package sim implements the list-scheduling simulator (§4.3) and its
// instrumented counterpart, the detailed scheduling logger (§4.4). Both
// convert a feasible ordering into a time-resource schedule under a single
// shared resource of integer capacity.
package sim

import (
	"container/heap"

	"github.com/annybogatova/tmanagement/internal/engine/graph"
	engerrors "github.com/annybogatova/tmanagement/internal/engine/errors"
)

// Simulate converts an ordering into a makespan under the given capacity.
// The result depends only on the ordering, the graph, and the capacity; it
// is deterministic across repeated calls.
func Simulate(order []int, p *graph.Prepared, capacity int) (int, error) {
	running := newRunningQueue()
	inUse := 0
	scheduledEnd := make(map[int]int, len(order))
	makespan := 0
	var seq int64

	for _, tid := range order {
		info := p.TaskInfo[tid]
		preds := p.PredsMap[tid]

		t, err := earliestStart(tid, preds, scheduledEnd)
		if err != nil {
			return 0, err
		}

		for running.Len() > 0 && (*running)[0].finish <= t {
			item := heap.Pop(running).(runningItem)
			inUse -= item.resource
		}

		for inUse+info.Resource > capacity && running.Len() > 0 {
			item := heap.Pop(running).(runningItem)
			if item.finish > t {
				t = item.finish
			}
			inUse -= item.resource

			for running.Len() > 0 && (*running)[0].finish <= t {
				item2 := heap.Pop(running).(runningItem)
				inUse -= item2.resource
			}
		}

		start := t
		finish := start + info.Duration
		scheduledEnd[tid] = finish
		if finish > makespan {
			makespan = finish
		}
		heap.Push(running, runningItem{finish: finish, seq: seq, task: tid, resource: info.Resource})
		seq++
		inUse += info.Resource
	}

	return makespan, nil
}

// earliestStart validates that every predecessor of tid has already been
// scheduled and returns the earliest time tid may start: the maximum
// scheduled finish among its predecessors, or 0 if it has none.
func earliestStart(tid int, preds []int, scheduledEnd map[int]int) (int, error) {
	if len(preds) == 0 {
		return 0, nil
	}
	var missing []int
	earliest := 0
	for _, p := range preds {
		finish, ok := scheduledEnd[p]
		if !ok {
			missing = append(missing, p)
			continue
		}
		if finish > earliest {
			earliest = finish
		}
	}
	if len(missing) > 0 {
		return 0, &engerrors.InvalidOrderError{TaskID: tid, Missing: missing}
	}
	return earliest, nil
}
