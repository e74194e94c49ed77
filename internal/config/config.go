// Package config defines the runtime configuration model and helpers.
package config

import (
	"fmt"
	"time"
)

// OutputFormat represents the supported output serialization formats.
type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
)

// DefaultTimeout is the fallback duration applied when the user does not
// specify `--timeout`, `TMGMT_TIMEOUT`, or `timeout` YAML key.
const DefaultTimeout = 5 * time.Minute

// DefaultConfigDir is the default directory under the user's home for
// tmanagement config files.
const DefaultConfigDir = ".tmanagement"

// DefaultMongoURI is used when neither flag, env, nor config file supplies
// one; it targets a local development instance.
const DefaultMongoURI = "mongodb://localhost:27017"

// Config is the fully-resolved, immutable runtime configuration for a
// single command invocation.
//
// All fields should have zero-value semantics that mean "not set" so the
// precedence resolver can determine whether a value originated from a lower
// tier (e.g., YAML) or was supplied by a higher priority source
// (flag/env).
//
// Use `mapstructure` tags so Viper can unmarshal seamlessly regardless of
// source. Env variables use the TMGMT_ prefix and UPPER_SNAKE_CASE
// conversion handled externally.
type Config struct {
	// Engine parameters (spec.md §6 / SPEC_FULL.md §6.1)
	GraphFile   string        `mapstructure:"graphFile" yaml:"graphFile"`
	Iterations  int64         `mapstructure:"iterations" yaml:"iterations" validate:"required,min=1"`
	MaxResource int           `mapstructure:"maxResource" yaml:"maxResource" validate:"required,min=1"`
	Workers     int           `mapstructure:"workers" yaml:"workers" validate:"gte=0"`
	Seed        int64         `mapstructure:"seed" yaml:"seed"`
	SampleSize  int           `mapstructure:"sampleSize" yaml:"sampleSize" validate:"gte=0"`
	Chunksize   int           `mapstructure:"chunksize" yaml:"chunksize" validate:"gte=0"`
	LogDir      string        `mapstructure:"logDir" yaml:"logDir"`
	LogTimeUnit int           `mapstructure:"logTimeUnit" yaml:"logTimeUnit" validate:"gte=0"`

	// Generic CLI behaviour
	Output  OutputFormat  `mapstructure:"output" yaml:"output"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`

	// Persistence (§6.3); empty MongoURI disables store-backed subcommands.
	MongoURI string `mapstructure:"mongoUri" yaml:"mongoUri"`
	MongoDB  string `mapstructure:"mongoDatabase" yaml:"mongoDatabase"`
}

// New returns a Config populated with builtin defaults. Callers should
// subsequently merge flag/env/YAML values on top.
func New() *Config {
	return &Config{
		Output:      OutputTable,
		Timeout:     DefaultTimeout,
		SampleSize:  10000,
		Chunksize:   256,
		MongoURI:    DefaultMongoURI,
		MongoDB:     "tmanagement",
	}
}

// Validate performs sanity checks after the full precedence merge. Only
// inexpensive validation belongs here; the engine re-validates its own
// parameters independently via montecarlo.Config.Validate.
func (c *Config) Validate() error {
	switch c.Output {
	case OutputTable, OutputJSON, "":
		// ok (empty means caller forgot to merge; treat as default)
	default:
		return fmt.Errorf("unsupported output format: %s", c.Output)
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must be non-negative")
	}

	return nil
}
