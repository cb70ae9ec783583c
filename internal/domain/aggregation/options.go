// Package aggregation merges a set of brain outputs into one coherent response.
package aggregation

import "github.com/okian/quorum/pkg/logger"

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithSimilarityThreshold overrides the Jaccard threshold used to
// suppress near-duplicate outputs. Must be in (0,1).
func WithSimilarityThreshold(threshold float64) Option {
	return func(a *Aggregator) {
		if threshold > 0 && threshold < 1 {
			a.threshold = threshold
		}
	}
}

// WithLogger sets a custom logger for the aggregator.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}
