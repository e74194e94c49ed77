// Package store provides the persistence collaborator for task graphs and
// run summaries (SPEC_FULL.md §6.3). It is intentionally independent of the
// simulation engine: nothing under internal/engine imports this package.
package store

import (
	"context"

	"github.com/annybogatova/tmanagement/internal/engine/graph"
	"github.com/annybogatova/tmanagement/internal/engine/report"
)

// TaskGraphRepository stores and retrieves named task graphs and the run
// summaries produced against them.
type TaskGraphRepository interface {
	SaveGraph(ctx context.Context, name string, g graph.Graph) error
	LoadGraph(ctx context.Context, name string) (graph.Graph, error)
	SaveRunSummary(ctx context.Context, graphName string, summary report.Summary) error
	ListRunSummaries(ctx context.Context, graphName string) ([]report.Summary, error)
}
