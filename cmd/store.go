package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/annybogatova/tmanagement/internal/store"
)

func newStoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Persist task graphs and run summaries in MongoDB",
	}

	cmd.AddCommand(newStoreSaveGraphCmd())
	cmd.AddCommand(newStoreLoadGraphCmd())
	cmd.AddCommand(newStoreListRunsCmd())

	return cmd
}

func openRepository(ctx context.Context) (*store.MongoTaskGraphRepository, error) {
	uri, err := cfg.ResolveMongoURI()
	if err != nil {
		return nil, fmt.Errorf("resolve mongo uri: %w", err)
	}

	mcfg := store.DefaultMongoConfig()
	mcfg.URI = uri
	mcfg.Database = cfg.MongoDB

	return store.NewMongoTaskGraphRepository(ctx, mcfg, GetLogger())
}

func newStoreSaveGraphCmd() *cobra.Command {
	var graphFile string

	cmd := &cobra.Command{
		Use:   "save-graph <name>",
		Short: "Save a task graph file under a name in MongoDB",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraphFile(graphFile)
			if err != nil {
				return fmt.Errorf("load graph file: %w", err)
			}

			ctx := cmd.Context()
			repo, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close(ctx)

			if err := repo.SaveGraph(ctx, args[0], g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved graph %q (%d tasks)\n", args[0], len(g.Tasks))
			return nil
		},
	}
	cmd.Flags().StringVar(&graphFile, "graph", "", "Path to a YAML or JSON task graph file (required)")
	_ = cmd.MarkFlagRequired("graph")
	return cmd
}

func newStoreLoadGraphCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load-graph <name>",
		Short: "Print a previously saved task graph as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close(ctx)

			g, err := repo.LoadGraph(ctx, args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(g)
		},
	}
	return cmd
}

func newStoreListRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list-runs <graph-name>",
		Short: "List stored run summaries for a named graph, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repo, err := openRepository(ctx)
			if err != nil {
				return err
			}
			defer repo.Close(ctx)

			summaries, err := repo.ListRunSummaries(ctx, args[0])
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(summaries)
		},
	}
	return cmd
}
