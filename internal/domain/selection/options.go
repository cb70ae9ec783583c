// Package selection decides which brains answer a query and in what order.
package selection

import (
	"time"

	"github.com/okian/quorum/pkg/logger"
)

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithTopK sets how many semantic matches augment the core set.
func WithTopK(k int) Option {
	return func(s *Selector) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithCatalogTopK sets the topK used for the wildcard catalog listing.
func WithCatalogTopK(k int) Option {
	return func(s *Selector) {
		if k > 0 {
			s.catalogTopK = k
		}
	}
}

// WithIndexTimeout bounds every embedding-index call. Hitting the
// timeout triggers the core-set fallback.
func WithIndexTimeout(d time.Duration) Option {
	return func(s *Selector) {
		if d > 0 {
			s.indexTimeout = d
		}
	}
}

// WithLogger sets a custom logger for the selector.
func WithLogger(l logger.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}
