package config

import (
	"context"
)

// NewContext derives the context a Monte-Carlo run executes under. Timeout
// zero is treated as an explicit request for an unbounded run: a run's own
// Iterations count, not a wall-clock deadline, is what's expected to bound
// it in that case. A negative Timeout isn't a meaningful "unbounded"
// signal -- unlike zero, it falls back to DefaultTimeout rather than being
// treated the same as an explicit opt-out.
// Callers are responsible for invoking the returned cancel function to avoid leaks.
func NewContext(parent context.Context, cfg *Config) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	switch {
	case cfg == nil || cfg.Timeout == 0:
		return context.WithCancel(parent)
	case cfg.Timeout < 0:
		return context.WithTimeout(parent, DefaultTimeout)
	default:
		return context.WithTimeout(parent, cfg.Timeout)
	}
}
