// Package httpapi exposes the Monte-Carlo engine over HTTP (SPEC_FULL.md
// §6.2): a single POST endpoint that generates a random task graph,
// dispatches the engine off the request goroutine bounded by the request's
// own context, and returns the §4.5/§4.6 result.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/annybogatova/tmanagement/internal/engine/graph"
	"github.com/annybogatova/tmanagement/internal/engine/montecarlo"
	"github.com/annybogatova/tmanagement/internal/engine/report"
	engerrors "github.com/annybogatova/tmanagement/internal/engine/errors"
	"github.com/annybogatova/tmanagement/internal/logging"
	"github.com/annybogatova/tmanagement/internal/randgraph"
)

// simulateRequest is the body of POST /api/v1/simulate.
type simulateRequest struct {
	NTasks      int   `json:"n_tasks" validate:"required,min=1,max=10000"`
	Iterations  int64 `json:"iterations" validate:"required,min=1,max=5000000"`
	Workers     int   `json:"workers" validate:"gte=0"`
	MaxResource int   `json:"max_resource" validate:"required,min=1"`
	Seed        int64 `json:"seed"`
	LogTimeUnit int   `json:"log_time_unit" validate:"gte=0"`
	MaxPreds    int   `json:"max_preds" validate:"gte=0"`
}

// Handler serves the simulation endpoint.
type Handler struct {
	validate       *validator.Validate
	logger         *logging.Logger
	requestTimeout time.Duration
}

// NewHandler constructs a Handler. A zero requestTimeout falls back to two
// minutes, generous enough for modestly sized simulations without letting a
// misbehaving request hold server resources indefinitely.
func NewHandler(logger *logging.Logger, requestTimeout time.Duration) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if requestTimeout <= 0 {
		requestTimeout = 2 * time.Minute
	}
	return &Handler{validate: validator.New(), logger: logger, requestTimeout: requestTimeout}
}

// RegisterRoutes wires the handler onto mux at the documented path.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/simulate", h.handleSimulate)
}

func (h *Handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	apiReq := &logging.APIRequest{Method: r.Method, URL: r.URL.String(), Started: started}
	h.logger.LogAPIRequest(apiReq)

	if r.Method != http.MethodPost {
		h.writeError(w, apiReq, started, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req simulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apiReq, started, http.StatusBadRequest, "malformed request body: "+err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, apiReq, started, http.StatusBadRequest, "validation failed: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.requestTimeout)
	defer cancel()

	// Per-task demand is drawn from 1..max_resource so every generated task
	// fits the capacity graph.Prepare checks it against.
	tasks := randgraph.Generate(randgraph.Options{
		NTasks:             req.NTasks,
		MaxPreds:           req.MaxPreds,
		MaxResourcePerTask: req.MaxResource,
		Seed:               req.Seed,
	})

	g := graph.Graph{Tasks: tasks, MaxResource: req.MaxResource}
	prepared, err := graph.Prepare(g)
	if err != nil {
		h.writeError(w, apiReq, started, http.StatusBadRequest, err.Error())
		return
	}

	result, err := montecarlo.Run(ctx, prepared, montecarlo.Config{
		Iterations: req.Iterations,
		Capacity:   req.MaxResource,
		Workers:    req.Workers,
		SeedBase:   req.Seed,
	})
	if err != nil {
		var workerErr *engerrors.WorkerFailure
		if errors.As(err, &workerErr) {
			h.writeError(w, apiReq, started, http.StatusInternalServerError, err.Error())
			return
		}
		h.writeError(w, apiReq, started, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.LogSimulationRun(result.Iterations, result.Workers, result.Best.Makespan, result.Stats.ElapsedSeconds)

	summary := report.Package(g, prepared, result, "", req.LogTimeUnit)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(summary); err != nil {
		h.logger.Error("failed to encode simulate response", "error", err.Error())
	}

	h.logger.LogAPIResponse(apiReq, &logging.APIResponse{StatusCode: http.StatusOK, Duration: time.Since(started)})
}

func (h *Handler) writeError(w http.ResponseWriter, apiReq *logging.APIRequest, started time.Time, status int, message string) {
	h.logger.LogAPIResponse(apiReq, &logging.APIResponse{StatusCode: status, Duration: time.Since(started)})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
