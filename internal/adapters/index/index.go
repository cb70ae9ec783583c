// Package index defines the contract for the external embedding index
// that ranks brains by semantic relevance to a query.
//
// The real service is out of process; this package specifies only the
// boundary plus an in-memory stand-in used for development and tests.
package index

import (
	"context"

	"github.com/okian/quorum/internal/domain/model"
)

// CatalogQuery is the wildcard passed to Search to enumerate every
// indexed brain. Listing through a similarity search is a deliberate
// abuse of the index; it is the only catalog mechanism the upstream
// service exposes.
const CatalogQuery = "*"

// Match is one ranked result from the index.
type Match struct {
	BrainID model.BrainID
	Score   float64
}

// Index is the embedding-index boundary consumed by selection.
type Index interface {
	// Search returns up to topK matches for query, best first.
	Search(ctx context.Context, query string, topK int) ([]Match, error)

	// Catalog enumerates known brains by issuing a wildcard search
	// with a large topK. Ordering is deterministic but meaningless.
	Catalog(ctx context.Context, topK int) ([]Match, error)
}
