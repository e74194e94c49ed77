package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Load constructs a new *Config by merging (in increasing precedence order):
//  1. built-in defaults (see New())
//  2. YAML config file (default $HOME/.tmanagement/config.yaml, override via
//     --config / TMGMT_CONFIG_FILE)
//  3. environment variables prefixed with TMGMT_
//  4. command-line flags bound on the provided *cobra.Command
//
// The resulting configuration is validated before being returned.
//
// Pass nil for cmd if you do not wish to bind flags (e.g., in tests).
func Load(cmd *cobra.Command, explicitPath string) (*Config, error) {
	cfg := New()

	v := viper.New()

	// ---------- 1. Defaults ----------
	v.SetDefault("output", cfg.Output)
	v.SetDefault("timeout", cfg.Timeout)
	v.SetDefault("sampleSize", cfg.SampleSize)
	v.SetDefault("chunksize", cfg.Chunksize)
	v.SetDefault("mongoUri", cfg.MongoURI)
	v.SetDefault("mongoDatabase", cfg.MongoDB)

	// ---------- 2. Config file ----------
	if explicitPath == "" {
		if envPath := os.Getenv("TMGMT_CONFIG_FILE"); envPath != "" {
			explicitPath = envPath
		}
	}

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(homeDir, DefaultConfigDir))
	}

	if err := v.ReadInConfig(); err != nil {
		// If the file is missing we continue with env + defaults. Any other error is fatal.
		if _, isNotFound := err.(viper.ConfigFileNotFoundError); !isNotFound {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	// ---------- 3. Environment variables ----------
	v.SetEnvPrefix("TMGMT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("graphFile", "TMGMT_GRAPH_FILE")
	_ = v.BindEnv("maxResource", "TMGMT_MAX_RESOURCE")
	_ = v.BindEnv("sampleSize", "TMGMT_SAMPLE_SIZE")
	_ = v.BindEnv("logDir", "TMGMT_LOG_DIR")
	_ = v.BindEnv("logTimeUnit", "TMGMT_LOG_TIME_UNIT")
	_ = v.BindEnv("mongoUri", "TMGMT_MONGO_URI")
	_ = v.BindEnv("mongoDatabase", "TMGMT_MONGO_DATABASE")

	// ---------- 4. Flags ----------
	if cmd != nil {
		_ = v.BindPFlags(cmd.Flags())
		_ = v.BindPFlags(cmd.PersistentFlags())

		bind := func(key string, name string) {
			if f := cmd.Flags().Lookup(name); f != nil {
				_ = v.BindPFlag(key, f)
			}
		}
		bind("graphFile", "graph")
		bind("maxResource", "max-resource")
		bind("sampleSize", "sample-size")
		bind("logDir", "log-dir")
		bind("logTimeUnit", "log-time-unit")
		bind("mongoUri", "mongo-uri")
		bind("mongoDatabase", "mongo-database")
		// iterations, workers, seed, chunksize, output, timeout share spelling
		// with their struct tags already.
	}

	// ---------- Unmarshal ----------
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
