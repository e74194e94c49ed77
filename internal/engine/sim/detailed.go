package sim

import (
	"container/heap"
	"sort"

	"github.com/annybogatova/tmanagement/internal/engine/graph"
)

// SimulateDetailed runs the same algorithm as Simulate but additionally
// records start/finish times and an events stream, and optionally a dense
// resource-usage sampling at a fixed time unit. It is intended to be run
// once, locally, on the best ordering found by the Monte-Carlo driver — not
// inside a hot worker loop.
func SimulateDetailed(order []int, p *graph.Prepared, capacity int, timeUnit int) (*DetailedLog, error) {
	running := newRunningQueue()
	inUse := 0
	scheduledEnd := make(map[int]int, len(order))
	startTimes := make(map[int]int, len(order))
	finishTimes := make(map[int]int, len(order))
	makespan := 0
	var seq int64
	var events []Event

	retire := func(limit int) {
		for running.Len() > 0 && (*running)[0].finish <= limit {
			item := heap.Pop(running).(runningItem)
			inUse -= item.resource
			finishTimes[item.task] = item.finish
			events = append(events, Event{
				Time:               item.finish,
				Task:               item.task,
				Kind:               EventEnd,
				Resource:           item.resource,
				ResourceInUseAfter: inUse,
			})
		}
	}

	for _, tid := range order {
		info := p.TaskInfo[tid]
		preds := p.PredsMap[tid]

		t, err := earliestStart(tid, preds, scheduledEnd)
		if err != nil {
			return nil, err
		}

		retire(t)

		for inUse+info.Resource > capacity && running.Len() > 0 {
			item := heap.Pop(running).(runningItem)
			if item.finish > t {
				t = item.finish
			}
			inUse -= item.resource
			finishTimes[item.task] = item.finish
			events = append(events, Event{
				Time:               item.finish,
				Task:               item.task,
				Kind:               EventEnd,
				Resource:           item.resource,
				ResourceInUseAfter: inUse,
			})
			retire(t)
		}

		start := t
		finish := start + info.Duration
		startTimes[tid] = start
		scheduledEnd[tid] = finish
		if finish > makespan {
			makespan = finish
		}
		heap.Push(running, runningItem{finish: finish, seq: seq, task: tid, resource: info.Resource})
		seq++
		inUse += info.Resource
		events = append(events, Event{
			Time:               start,
			Task:               tid,
			Kind:               EventStart,
			Resource:           info.Resource,
			ResourceInUseAfter: inUse,
		})
	}

	// Drain whatever is still running once every task has been placed.
	for running.Len() > 0 {
		item := heap.Pop(running).(runningItem)
		inUse -= item.resource
		finishTimes[item.task] = item.finish
		events = append(events, Event{
			Time:               item.finish,
			Task:               item.task,
			Kind:               EventEnd,
			Resource:           item.resource,
			ResourceInUseAfter: inUse,
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Time != events[j].Time {
			return events[i].Time < events[j].Time
		}
		// end precedes start at equal times.
		return events[i].Kind == EventEnd && events[j].Kind == EventStart
	})

	log := &DetailedLog{
		Makespan:    makespan,
		StartTimes:  startTimes,
		FinishTimes: finishTimes,
		Events:      events,
	}

	if timeUnit > 0 {
		log.TimeSamples = sampleResourceProfile(order, p, startTimes, finishTimes, makespan, timeUnit)
	}

	return log, nil
}

// sampleResourceProfile produces a dense resource-usage sampling every
// timeUnit ticks from 0 through ceil(makespan/timeUnit)*timeUnit. A task is
// active at time t iff start <= t < finish.
func sampleResourceProfile(order []int, p *graph.Prepared, startTimes, finishTimes map[int]int, makespan, timeUnit int) []TimeSample {
	lastTick := (makespan + timeUnit - 1) / timeUnit
	samples := make([]TimeSample, 0, lastTick+1)

	for k := 0; k <= lastTick; k++ {
		t := k * timeUnit
		resourceInUse := 0
		var active []int
		for _, tid := range order {
			s, f := startTimes[tid], finishTimes[tid]
			if s <= t && t < f {
				resourceInUse += p.TaskInfo[tid].Resource
				active = append(active, tid)
			}
		}
		sort.Ints(active)
		samples = append(samples, TimeSample{Time: t, ResourceInUse: resourceInUse, ActiveIDs: active})
	}

	return samples
}
