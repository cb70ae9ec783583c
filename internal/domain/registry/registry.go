// Package registry holds the hand-authored reference data about known
// brains: core membership, execution order, declared complexity, and
// typical latency. All tables are read-only after construction and safe
// to share across concurrent calls.
package registry

import (
	"sort"

	"github.com/okian/quorum/internal/domain/model"
)

// Defaults applied when a brain is missing from a reference table.
const (
	DefaultOrder        = 50    // mid-range execution rank
	DefaultComplexity   = 5.0   // middle of the 0-10 scale
	DefaultLatencyMS    = 100.0 // assumed typical latency
	maxDeclaredRating   = 10.0
	minDeclaredRating   = 0.0
)

// Registry is the static brain catalog consulted by selection.
type Registry struct {
	core       []model.BrainID
	coreSet    map[model.BrainID]struct{}
	order      map[model.BrainID]int
	complexity map[model.BrainID]float64
	latencyMS  map[model.BrainID]float64
}

// New constructs a Registry from the provided options. A registry with
// no options is valid but has an empty core set.
func New(opts ...Option) *Registry {
	r := &Registry{
		coreSet:    make(map[model.BrainID]struct{}),
		order:      make(map[model.BrainID]int),
		complexity: make(map[model.BrainID]float64),
		latencyMS:  make(map[model.BrainID]float64),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Core returns the core brain ids in their configured order. The
// returned slice is a copy; callers may mutate it freely.
func (r *Registry) Core() []model.BrainID {
	out := make([]model.BrainID, len(r.core))
	copy(out, r.core)
	return out
}

// IsCore reports whether id belongs to the core set.
func (r *Registry) IsCore(id model.BrainID) bool {
	_, ok := r.coreSet[id]
	return ok
}

// Order returns the execution rank for id, or DefaultOrder when the id
// has no explicit entry.
func (r *Registry) Order(id model.BrainID) int {
	if rank, ok := r.order[id]; ok {
		return rank
	}
	return DefaultOrder
}

// Complexity returns the declared complexity rating (0-10) for id, or
// DefaultComplexity for unknown brains.
func (r *Registry) Complexity(id model.BrainID) float64 {
	if c, ok := r.complexity[id]; ok {
		return c
	}
	return DefaultComplexity
}

// LatencyMS returns the typical latency in milliseconds for id, or
// DefaultLatencyMS for unknown brains.
func (r *Registry) LatencyMS(id model.BrainID) float64 {
	if l, ok := r.latencyMS[id]; ok {
		return l
	}
	return DefaultLatencyMS
}

// Known returns every brain id present in any reference table, core
// first, then the rest sorted lexically for determinism.
func (r *Registry) Known() []model.BrainID {
	seen := make(map[model.BrainID]struct{}, len(r.coreSet))
	out := make([]model.BrainID, 0, len(r.coreSet)+len(r.order))

	for _, id := range r.core {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	var rest []model.BrainID
	for _, table := range []map[model.BrainID]struct{}{keys(r.order), keys(r.complexity), keys(r.latencyMS)} {
		for id := range table {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			rest = append(rest, id)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })

	return append(out, rest...)
}

// SortByOrder stable-sorts ids by execution rank in place and returns
// the slice. Ties keep their prior relative order, so selection order
// survives within a rank.
func (r *Registry) SortByOrder(ids []model.BrainID) []model.BrainID {
	sort.SliceStable(ids, func(i, j int) bool {
		return r.Order(ids[i]) < r.Order(ids[j])
	})
	return ids
}

func keys[V any](m map[model.BrainID]V) map[model.BrainID]struct{} {
	out := make(map[model.BrainID]struct{}, len(m))
	for id := range m {
		out[id] = struct{}{}
	}
	return out
}

// clampRating bounds a declared complexity rating to the 0-10 scale.
func clampRating(v float64) float64 {
	if v < minDeclaredRating {
		return minDeclaredRating
	}
	if v > maxDeclaredRating {
		return maxDeclaredRating
	}
	return v
}
