package montecarlo

import (
	"math"
	"math/rand"
	"sort"

	"github.com/montanaflynn/stats"
)

// simResult is the (makespan, ordering) pair produced by one simulation.
type simResult struct {
	seed     int64
	makespan int
	order    []int
}

// accumulator holds the streaming Welford mean/variance state, running
// min/max, a fixed-size reservoir for the approximate median, and the
// best-seen (makespan, ordering) pair. It is mutated only by the driver's
// single aggregator goroutine — never touched by workers — matching the
// "mutable shared best-so-far kept thread-local inside the aggregator"
// design note.
type accumulator struct {
	count int64
	mean  float64
	m2    float64
	min   int
	max   int
	haveMinMax bool

	sampleSize int
	reservoir  []int
	sampleRNG  *rand.Rand
	arrivals   int64

	bestMakespan int
	bestOrder    []int
	haveBest     bool
}

func newAccumulator(sampleSize int, sampleRNG *rand.Rand) *accumulator {
	return &accumulator{
		sampleSize: sampleSize,
		reservoir:  make([]int, 0, sampleSize),
		sampleRNG:  sampleRNG,
	}
}

// fold incorporates one simulation result into the running statistics. It
// implements Welford's online mean/variance update, reservoir sampling for
// the median, running min/max, and best-so-far tracking (ties keep the
// earlier order).
func (a *accumulator) fold(r simResult) {
	x := float64(r.makespan)

	a.count++
	delta := x - a.mean
	a.mean += delta / float64(a.count)
	a.m2 += delta * (x - a.mean)

	if !a.haveMinMax || r.makespan < a.min {
		a.min = r.makespan
	}
	if !a.haveMinMax || r.makespan > a.max {
		a.max = r.makespan
	}
	a.haveMinMax = true

	if a.sampleSize > 0 {
		i := a.arrivals
		if int64(len(a.reservoir)) < int64(a.sampleSize) {
			a.reservoir = append(a.reservoir, r.makespan)
		} else {
			j := a.sampleRNG.Int63n(i + 1)
			if j < int64(a.sampleSize) {
				a.reservoir[j] = r.makespan
			}
		}
	}
	a.arrivals++

	if !a.haveBest || r.makespan < a.bestMakespan {
		a.bestMakespan = r.makespan
		a.bestOrder = r.order
		a.haveBest = true
	}
}

// Stats is the finalized, reporting-facing view of the accumulator. Avg,
// Std, Min, and Max are nil when no results were folded (count == 0).
type Stats struct {
	Avg                *float64 `json:"avg"`
	Std                *float64 `json:"std"`
	Min                *int     `json:"min"`
	Max                *int     `json:"max"`
	MedianApprox       *float64 `json:"median_approx"`
	SampleSizeUsed     int      `json:"sample_size_used"`
	ElapsedSeconds     float64  `json:"elapsed_seconds"`
}

// finalize computes the population variance/stddev and the reservoir-derived
// approximate median. The median is computed with montanaflynn/stats over
// the (already size-bounded) reservoir sample.
func (a *accumulator) finalize(elapsed float64) Stats {
	s := Stats{ElapsedSeconds: elapsed, SampleSizeUsed: len(a.reservoir)}
	if a.count == 0 {
		return s
	}

	avg := a.mean
	variance := a.m2 / float64(a.count)
	std := math.Sqrt(variance)
	min := a.min
	max := a.max
	s.Avg, s.Std, s.Min, s.Max = &avg, &std, &min, &max

	if len(a.reservoir) > 0 {
		sample := make([]float64, len(a.reservoir))
		for i, v := range a.reservoir {
			sample[i] = float64(v)
		}
		if median, err := stats.Median(sample); err == nil {
			s.MedianApprox = &median
		} else {
			// Fall back to an exact sorted-midpoint computation; this path
			// only triggers on malformed input (e.g. NaN), which cannot
			// occur for integer makespans.
			sort.Float64s(sample)
			m := len(sample)
			var median float64
			if m%2 == 1 {
				median = sample[m/2]
			} else {
				median = 0.5 * (sample[m/2-1] + sample[m/2])
			}
			s.MedianApprox = &median
		}
	}

	return s
}
