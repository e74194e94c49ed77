package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/annybogatova/tmanagement/internal/cli"
	"github.com/annybogatova/tmanagement/internal/config"
	"github.com/annybogatova/tmanagement/internal/logging"
)

var (
	verbose    bool
	quiet      bool
	configPath string
	logFormat  string

	outputFmt  string
	timeoutDur time.Duration
	mongoURI   string
	mongoDB    string
	apiLogs    bool

	appVersion string
	appCommit  string
	appDate    string
	appBuiltBy string

	logger         *logging.Logger
	cfg            *config.Config
	signalHandler  *cli.SignalHandler
	errorFormatter *cli.ErrorFormatter

	rootCmd = &cobra.Command{
		Use:          "tmanagement",
		Short:        "RCPSP Monte Carlo makespan estimator",
		Long:         "tmanagement estimates the achievable makespan of a resource-constrained project scheduling problem by Monte Carlo sampling of randomized topological orderings of a task dependency graph.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logConfig := &logging.Config{
				Level:         logging.LevelInfo,
				Format:        logFormat,
				Output:        os.Stderr,
				Quiet:         quiet,
				Verbose:       verbose,
				EnableAPILogs: apiLogs,
				EnableMetrics: true,
				MaskSecrets:   true,
			}

			logger = logging.New(logConfig)
			logging.SetDefault(logger)

			signalHandler = cli.NewSignalHandler(logger, 30)
			signalHandler.Start()

			errorFormatter = cli.NewErrorFormatter(verbose)

			var err error
			cfg, err = config.Load(cmd, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger.Debug("root command initialization completed",
				"verbose", verbose,
				"quiet", quiet,
				"log_format", logFormat,
				"config_path", configPath)

			return nil
		},
	}
)

// Execute runs the tmanagement root command.
func Execute(version, commit, date, builtBy string) {
	appVersion = version
	appCommit = commit
	appDate = date
	appBuiltBy = builtBy

	if err := rootCmd.Execute(); err != nil {
		if errorFormatter != nil {
			fmt.Fprintln(os.Stderr, errorFormatter.Format(err))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}

		if logger != nil {
			logger.Error("command execution failed", "error", err.Error())
		}

		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newSimulateCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newStoreCmd())

	rootCmd.SetHelpCommand(newHelpCmd(rootCmd))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging with detailed output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log output format: text, json")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default $HOME/.tmanagement/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", string(config.OutputTable), "Output format: table, json")
	rootCmd.PersistentFlags().DurationVar(&timeoutDur, "timeout", config.DefaultTimeout, "Context timeout (e.g., 30s, 5m)")
	rootCmd.PersistentFlags().StringVar(&mongoURI, "mongo-uri", config.DefaultMongoURI, "MongoDB connection string for the store subcommands")
	rootCmd.PersistentFlags().StringVar(&mongoDB, "mongo-database", "tmanagement", "MongoDB database name for the store subcommands")
	rootCmd.PersistentFlags().BoolVar(&apiLogs, "api-logs", false, "Log each simulate HTTP request/response at debug level, 4xx/5xx responses at warn/error (serve only)")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("tmanagement version: %s\n", appVersion)
			fmt.Printf("Build time: %s\n", appDate)
			fmt.Printf("Git commit: %s\n", appCommit)
			fmt.Printf("Built by: %s\n", appBuiltBy)
			return nil
		},
	}
	rootCmd.AddCommand(versionCmd)
}

// GetLogger returns the global logger instance.
func GetLogger() *logging.Logger {
	return logger
}

// GetSignalHandler returns the global signal handler instance.
func GetSignalHandler() *cli.SignalHandler {
	return signalHandler
}

// GetErrorFormatter returns the global error formatter instance.
func GetErrorFormatter() *cli.ErrorFormatter {
	return errorFormatter
}
