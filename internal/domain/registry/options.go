// Package registry holds the hand-authored reference data about known brains.
package registry

import "github.com/okian/quorum/internal/domain/model"

// Option applies a configuration option to the Registry.
type Option func(*Registry)

// WithCore sets the ordered core set. Duplicates are dropped, keeping
// the first occurrence.
func WithCore(ids ...model.BrainID) Option {
	return func(r *Registry) {
		r.core = r.core[:0]
		for _, id := range ids {
			if _, ok := r.coreSet[id]; ok {
				continue
			}
			r.coreSet[id] = struct{}{}
			r.core = append(r.core, id)
		}
	}
}

// WithExecutionOrder sets explicit execution ranks. Brains missing from
// the map keep DefaultOrder.
func WithExecutionOrder(order map[model.BrainID]int) Option {
	return func(r *Registry) {
		for id, rank := range order {
			r.order[id] = rank
		}
	}
}

// WithComplexity sets declared complexity ratings, clamped to 0-10.
func WithComplexity(ratings map[model.BrainID]float64) Option {
	return func(r *Registry) {
		for id, c := range ratings {
			r.complexity[id] = clampRating(c)
		}
	}
}

// WithLatencyMS sets typical per-brain latencies in milliseconds.
// Non-positive values are ignored.
func WithLatencyMS(latencies map[model.BrainID]float64) Option {
	return func(r *Registry) {
		for id, l := range latencies {
			if l > 0 {
				r.latencyMS[id] = l
			}
		}
	}
}
