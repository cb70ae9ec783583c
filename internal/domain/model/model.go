// Package model contains domain models passed between layers.
package model

// BrainID identifies a single brain in the registry. Opaque and unique.
type BrainID string

// Output is one brain's candidate answer for a query.
// Quality is normalized to [0,1] at the execution boundary and the
// value is immutable once produced.
type Output struct {
	Source  BrainID `json:"source"`
	Content string  `json:"content"`
	Quality float64 `json:"quality"`
}

// MergedResponse is the deduplicated, quality-averaged combination of a
// set of outputs. Sources lists contributing brains in merge order.
type MergedResponse struct {
	Content string    `json:"content"`
	Quality float64   `json:"quality"`
	Sources []BrainID `json:"sources"`
}

// UnifiedResponse is the terminal artifact returned to the caller.
type UnifiedResponse struct {
	MergedResponse

	ResponseID      string `json:"response_id"`
	UserID          string `json:"user_id"`
	CreatedAtMillis int64  `json:"created_at_ms"`
}

// Conflict flags two outputs as lexically contradictory. Computed per
// aggregation call and never persisted.
type Conflict struct {
	A Output
	B Output
}

// Winner returns the higher-quality member of the pair. Ties go to A.
func (c Conflict) Winner() Output {
	if c.B.Quality > c.A.Quality {
		return c.B
	}
	return c.A
}
