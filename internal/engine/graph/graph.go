// Package graph holds the validated, in-memory task graph consumed by the
// simulation engine: nodes, durations, resource demands, predecessor lists,
// and the shared resource capacity.
package graph

import (
	"fmt"
	"sort"

	validator "github.com/go-playground/validator/v10"

	engerrors "github.com/annybogatova/tmanagement/internal/engine/errors"
)

// validate runs the struct-tag checks declared on Task and Graph (id
// positivity, duration/resource bounds). It cannot express cross-field
// invariants like dangling predecessor references or resource-over-capacity,
// which Prepare checks separately below.
var validate = validator.New()

// Task is a single unit of work. ID must be a positive integer, unique
// within a Graph. Duration and Resource are exact integer units; Preds lists
// the task IDs that must finish before this task may start.
type Task struct {
	ID       int   `json:"id" yaml:"id" validate:"required,gt=0"`
	Duration int   `json:"duration" yaml:"duration" validate:"gt=0"`
	Resource int   `json:"resource" yaml:"resource" validate:"gte=0"`
	Preds    []int `json:"preds,omitempty" yaml:"preds,omitempty"`
}

// Graph is the raw, unvalidated description of an RCPSP instance.
type Graph struct {
	Tasks       []Task `json:"tasks" yaml:"tasks" validate:"dive"`
	MaxResource int    `json:"maxResource" yaml:"maxResource" validate:"gt=0"`
}

// TaskInfo is the dense (duration, resource) pair used in hot loops.
type TaskInfo struct {
	Duration int
	Resource int
}

// Prepared is the compact, validated representation the orderer and
// simulator operate on. It is immutable once built and safe to share
// read-only across worker goroutines.
type Prepared struct {
	Nodes       []int
	TaskInfo    map[int]TaskInfo
	PredsMap    map[int][]int
	MaxResource int
}

// Prepare validates a Graph and produces its dense, hot-loop-friendly form.
// It rejects duplicate IDs, dangling predecessor references, self-loops, and
// any task whose resource demand exceeds capacity (such a task can never be
// scheduled and would make the simulator spin forever).
func Prepare(g Graph) (*Prepared, error) {
	if err := validate.Struct(g); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return nil, engerrors.NewValidationError(fe.Namespace(), "failed %s check, got %v", fe.Tag(), fe.Value())
		}
		return nil, err
	}

	nodes := make([]int, 0, len(g.Tasks))
	taskInfo := make(map[int]TaskInfo, len(g.Tasks))
	predsMap := make(map[int][]int, len(g.Tasks))

	for _, t := range g.Tasks {
		if _, exists := taskInfo[t.ID]; exists {
			return nil, engerrors.NewValidationError("tasks[].id", "duplicate task id %d", t.ID)
		}
		if t.Resource > g.MaxResource {
			return nil, engerrors.NewValidationError(fmt.Sprintf("tasks[%d].resource", t.ID), "resource demand %d exceeds max_resource %d; task could never be scheduled", t.Resource, g.MaxResource)
		}

		preds := make([]int, len(t.Preds))
		copy(preds, t.Preds)

		nodes = append(nodes, t.ID)
		taskInfo[t.ID] = TaskInfo{Duration: t.Duration, Resource: t.Resource}
		predsMap[t.ID] = preds
	}

	for id, preds := range predsMap {
		for _, p := range preds {
			if p == id {
				return nil, engerrors.NewValidationError(fmt.Sprintf("tasks[%d].preds", id), "task cannot depend on itself")
			}
			if _, ok := taskInfo[p]; !ok {
				return nil, engerrors.NewValidationError(fmt.Sprintf("tasks[%d].preds", id), "unknown predecessor task id %d", p)
			}
		}
	}

	// Deterministic node ordering keeps downstream seed/order relationships
	// reproducible across runs regardless of input ordering.
	sort.Ints(nodes)

	return &Prepared{
		Nodes:       nodes,
		TaskInfo:    taskInfo,
		PredsMap:    predsMap,
		MaxResource: g.MaxResource,
	}, nil
}

// TaskIDs returns a copy of the node list backing this prepared graph.
func (p *Prepared) TaskIDs() []int {
	out := make([]int, len(p.Nodes))
	copy(out, p.Nodes)
	return out
}
