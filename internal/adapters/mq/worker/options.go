// Package worker runs selected brains against queries with bounded parallelism.
package worker

import (
	"time"

	"github.com/okian/quorum/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithBrainTimeout bounds a single brain invocation. A brain that
// exceeds it is dropped from the call's outputs, never awaited.
func WithBrainTimeout(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d > 0 {
			w.brainTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// PoolOption applies a configuration option to the Pool.
type PoolOption func(*Pool)

// WithPoolBrainTimeout sets the per-brain timeout for every worker in
// the pool.
func WithPoolBrainTimeout(d time.Duration) PoolOption {
	return func(p *Pool) {
		if d > 0 {
			p.brainTimeout = d
		}
	}
}

// WithPoolLogger sets a custom logger for the pool.
func WithPoolLogger(l logger.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}
