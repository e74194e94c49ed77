package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	engconfig "github.com/annybogatova/tmanagement/internal/config"
	"github.com/annybogatova/tmanagement/internal/engine/graph"
	"github.com/annybogatova/tmanagement/internal/engine/montecarlo"
	"github.com/annybogatova/tmanagement/internal/engine/report"
)

func newSimulateCmd() *cobra.Command {
	var (
		graphFile   string
		iterations  int64
		maxResource int
		workers     int
		seed        int64
		sampleSize  int
		chunksize   int
		logDir      string
		logTimeUnit int
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the Monte-Carlo makespan estimator against a task graph file",
		Long:  "Loads a task graph from a YAML or JSON file and runs the randomized-ordering Monte-Carlo simulation, printing aggregate statistics and the best ordering found.",
		Example: "  tmanagement simulate --graph tasks.yaml --iterations 1000000 \\\n" +
			"    --max-resource 10 --workers 8 --seed 0 --sample-size 10000 \\\n" +
			"    --chunksize 256 --log-dir ./logs --log-time-unit 1 --output json",
		RunE: func(cmd *cobra.Command, args []string) error {
			// cfg was merged (defaults -> YAML -> TMGMT_* env -> flags) by the
			// root command's PersistentPreRunE; read engine parameters from it
			// rather than the raw flag variables so YAML/env overrides apply.
			g, err := loadGraphFile(cfg.GraphFile)
			if err != nil {
				return fmt.Errorf("load graph file: %w", err)
			}
			if cfg.MaxResource > 0 {
				g.MaxResource = cfg.MaxResource
			}

			prepared, err := graph.Prepare(g)
			if err != nil {
				return err
			}

			ctx, cancel := engconfig.NewContext(context.Background(), cfg)
			defer cancel()

			mcCfg := montecarlo.Config{
				Iterations: cfg.Iterations,
				Capacity:   g.MaxResource,
				Workers:    cfg.Workers,
				SeedBase:   cfg.Seed,
				SampleSize: cfg.SampleSize,
				Chunksize:  cfg.Chunksize,
			}

			result, err := montecarlo.Run(ctx, prepared, mcCfg)
			if err != nil {
				return err
			}

			GetLogger().LogSimulationRun(result.Iterations, result.Workers, result.Best.Makespan, result.Stats.ElapsedSeconds)

			summary := report.Package(g, prepared, result, cfg.LogDir, cfg.LogTimeUnit)
			return printSummary(cmd, summary)
		},
	}

	cmd.Flags().StringVar(&graphFile, "graph", "", "Path to a YAML or JSON task graph file (required)")
	cmd.Flags().Int64Var(&iterations, "iterations", 100000, "Number of randomized orderings to simulate")
	cmd.Flags().IntVar(&maxResource, "max-resource", 0, "Override the graph file's maxResource capacity")
	cmd.Flags().IntVar(&workers, "workers", 0, "Worker pool size (0 = min(32, 2*NumCPU))")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Base seed for per-iteration orderings")
	cmd.Flags().IntVar(&sampleSize, "sample-size", 10000, "Reservoir size for the approximate median")
	cmd.Flags().IntVar(&chunksize, "chunksize", 256, "Bound on in-flight seeds/results")
	cmd.Flags().StringVar(&logDir, "log-dir", "", "Directory to write the best-order detailed log (empty disables)")
	cmd.Flags().IntVar(&logTimeUnit, "log-time-unit", 0, "Time unit for the best-order resource profile sampling (0 disables)")
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}

// loadGraphFile reads a task graph from YAML or JSON. Every file is parsed
// with the YAML decoder whatever its extension; JSON input parses too
// because YAML is a superset of JSON.
func loadGraphFile(path string) (graph.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return graph.Graph{}, err
	}

	var g graph.Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return graph.Graph{}, fmt.Errorf("parse graph file: %w", err)
	}
	return g, nil
}

// printSummary renders a report.Summary per the --output flag.
func printSummary(cmd *cobra.Command, summary report.Summary) error {
	format := engconfig.OutputTable
	if cfg != nil {
		format = cfg.Output
	}

	switch format {
	case engconfig.OutputJSON:
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	default:
		return printSummaryTable(cmd, summary)
	}
}

func printSummaryTable(cmd *cobra.Command, s report.Summary) error {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "iterations:   %d\n", s.Iterations)
	fmt.Fprintf(w, "max_resource: %d\n", s.MaxResource)
	fmt.Fprintf(w, "workers:      %d\n", s.Workers)
	fmt.Fprintln(w, "stats:")
	if s.Stats.Avg != nil {
		fmt.Fprintf(w, "  avg:            %.3f\n", *s.Stats.Avg)
		fmt.Fprintf(w, "  std:            %.3f\n", *s.Stats.Std)
		fmt.Fprintf(w, "  min:            %d\n", *s.Stats.Min)
		fmt.Fprintf(w, "  max:            %d\n", *s.Stats.Max)
	} else {
		fmt.Fprintln(w, "  avg/std/min/max: null (no results)")
	}
	if s.Stats.MedianApprox != nil {
		fmt.Fprintf(w, "  median_approx:  %.3f\n", *s.Stats.MedianApprox)
	}
	fmt.Fprintf(w, "  sample_size_used: %d\n", s.Stats.SampleSizeUsed)
	fmt.Fprintf(w, "  elapsed_seconds:  %.3f\n", s.Stats.ElapsedSeconds)
	fmt.Fprintf(w, "best.makespan: %d\n", s.Best.Makespan)
	fmt.Fprintf(w, "best.order:    %v\n", s.Best.Order)
	if s.LogFile != "" {
		fmt.Fprintf(w, "log_file:      %s\n", s.LogFile)
	}
	for _, warning := range s.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	return nil
}
