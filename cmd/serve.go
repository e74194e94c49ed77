package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/annybogatova/tmanagement/internal/cli"
	"github.com/annybogatova/tmanagement/internal/httpapi"
)

func newServeCmd() *cobra.Command {
	var (
		addr              string
		requestTimeoutDur time.Duration
		shutdownTimeout   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Monte-Carlo makespan estimator over HTTP",
		Long:  "Starts an HTTP server exposing POST /api/v1/simulate, which generates a random task graph and runs the simulation on each request.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := GetLogger()

			handler := httpapi.NewHandler(logger, requestTimeoutDur)
			mux := http.NewServeMux()
			handler.RegisterRoutes(mux)

			srv := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			sh := GetSignalHandler()
			sh.RegisterCleanup(cli.CreateHTTPServerCleanup(srv, shutdownTimeout))

			serveErr := make(chan error, 1)
			go func() {
				logger.Info("serving tmanagement HTTP API", "addr", addr)
				serveErr <- srv.ListenAndServe()
			}()

			select {
			case err := <-serveErr:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serve http: %w", err)
				}
				return nil
			case <-sh.Context().Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil {
					return fmt.Errorf("shutdown http server: %w", err)
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "Address to listen on")
	cmd.Flags().DurationVar(&requestTimeoutDur, "request-timeout", 2*time.Minute, "Per-request timeout bounding each simulation")
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "Grace period for in-flight requests during shutdown")

	return cmd
}
