// Package report packages a Monte-Carlo run into its final reporting shape
// and, optionally, writes the best-found ordering to a JSON log file. Log
// write failures are treated as non-fatal: they are appended to Warnings
// rather than aborting the run, mirroring the original implementation's
// "log file is a convenience, not a correctness requirement" stance.
package report

import (
	"fmt"
	"time"

	engerrors "github.com/annybogatova/tmanagement/internal/engine/errors"
	"github.com/annybogatova/tmanagement/internal/engine/graph"
	"github.com/annybogatova/tmanagement/internal/engine/montecarlo"
	"github.com/annybogatova/tmanagement/internal/engine/sim"
	"github.com/annybogatova/tmanagement/internal/fileutil"
)

// Summary is the top-level JSON shape returned to a CLI or HTTP caller.
type Summary struct {
	Iterations  int64              `json:"iterations"`
	MaxResource int                `json:"max_resource"`
	Workers     int                `json:"workers"`
	Stats       montecarlo.Stats   `json:"stats"`
	Best        montecarlo.Best    `json:"best"`
	LogFile     string             `json:"log_file,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// bestOrderLog is the document written to logDir/best_order_<unix>.json. It
// captures enough of the prepared graph and the best schedule's detailed
// trace to let a caller replay or audit the winning ordering offline.
type bestOrderLog struct {
	GeneratedAt time.Time          `json:"generated_at"`
	MaxResource int                `json:"max_resource"`
	Tasks       []graph.Task       `json:"tasks"`
	Order       []int              `json:"order"`
	Log         *sim.DetailedLog   `json:"log"`
}

// Package folds a montecarlo.Result into a Summary. When logDir is
// non-empty, it additionally runs the detailed simulator once over the best
// topological ordering (Best.OrderTopological, the ordering that produced
// Best.Makespan) and writes it to logDir/best_order_<unix_seconds>.json; a failure
// to do so is recorded as a warning, not returned as an error.
func Package(g graph.Graph, p *graph.Prepared, result montecarlo.Result, logDir string, logTimeUnit int) Summary {
	s := Summary{
		Iterations:  result.Iterations,
		MaxResource: result.MaxResource,
		Workers:     result.Workers,
		Stats:       result.Stats,
		Best:        result.Best,
	}

	if logDir == "" || len(result.Best.Order) == 0 {
		return s
	}

	detailed, err := sim.SimulateDetailed(result.Best.OrderTopological, p, result.MaxResource, logTimeUnit)
	if err != nil {
		s.Warnings = append(s.Warnings, fmt.Sprintf("could not rebuild detailed log for best order: %v", err))
		return s
	}

	doc := bestOrderLog{
		MaxResource: g.MaxResource,
		Tasks:       g.Tasks,
		Order:       result.Best.OrderTopological,
		Log:         detailed,
	}

	path, err := writeBestOrderLog(logDir, doc)
	if err != nil {
		lwf := &engerrors.LogWriteFailure{Path: path, Err: err}
		s.Warnings = append(s.Warnings, lwf.Error())
		return s
	}

	s.LogFile = path
	return s
}

// writeBestOrderLog writes doc to logDir/best_order_<unix_seconds>.json
// using fileutil's secure, 0600-mode writer.
func writeBestOrderLog(logDir string, doc bestOrderLog) (string, error) {
	doc.GeneratedAt = time.Now()
	path := fmt.Sprintf("%s/best_order_%d.json", logDir, doc.GeneratedAt.Unix())

	w := fileutil.NewSecureFileWriter()
	if err := w.WriteJSON(path, doc); err != nil {
		return path, err
	}

	return path, nil
}
