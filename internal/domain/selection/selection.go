// Package selection decides which brains answer a query and in what
// order. Two strategies are provided: fixed core-plus-specialist
// inclusion, and multi-factor ranked top-N selection.
//
// Both strategies degrade to the core set alone when the embedding
// index is unreachable; selection never fails the caller.
package selection

import (
	"context"
	"sort"
	"time"

	"github.com/okian/quorum/internal/adapters/index"
	"github.com/okian/quorum/internal/domain/model"
	"github.com/okian/quorum/internal/domain/registry"
	"github.com/okian/quorum/pkg/logger"
	"github.com/okian/quorum/pkg/metrics"
)

// Default selection configuration constants.
const (
	// DefaultTopK is how many semantic matches augment the core set.
	DefaultTopK = 4

	// defaultCatalogTopK is the "large topK" used for the wildcard
	// catalog listing.
	defaultCatalogTopK = 256

	defaultIndexTimeout = 2 * time.Second
)

// Composite score weights. They sum to 100 and are part of the scoring
// contract, not tunables.
const (
	topMatchRelevance  = 40.0 // brain is the single best index match
	baseRelevance      = 10.0 // any other brain when the lookup worked
	complexityWeight   = 30.0
	historyWeight      = 20.0
	neutralHistory     = historyWeight / 2 // flat until a real per-user signal exists
	performanceWeight  = 10.0
	complexityScale    = 10.0  // declared complexity range
	referenceLatencyMS = 200.0 // latency at which the performance share reaches zero
)

// Breakdown is the per-brain composite score with its four weighted
// components. Each component is bounded by its weight share.
type Breakdown struct {
	Relevance       float64 `json:"relevance"`
	ComplexityMatch float64 `json:"complexity_match"`
	UserHistory     float64 `json:"user_history"`
	Performance     float64 `json:"performance"`
}

// Total sums the four components.
func (b Breakdown) Total() float64 {
	return b.Relevance + b.ComplexityMatch + b.UserHistory + b.Performance
}

// Scored pairs a brain with its composite score breakdown.
type Scored struct {
	BrainID   model.BrainID `json:"brain_id"`
	Breakdown Breakdown     `json:"breakdown"`
	Total     float64       `json:"total"`
}

// Selector produces deterministic, ordered brain lists for queries. It
// is stateless apart from the read-only registry and index handles and
// is safe for concurrent use.
type Selector struct {
	reg *registry.Registry
	idx index.Index

	topK         int
	catalogTopK  int
	indexTimeout time.Duration

	logger logger.Logger
}

// New creates a Selector over the given registry and embedding index.
func New(reg *registry.Registry, idx index.Index, opts ...Option) *Selector {
	s := &Selector{
		reg:          reg,
		idx:          idx,
		topK:         DefaultTopK,
		catalogTopK:  defaultCatalogTopK,
		indexTimeout: defaultIndexTimeout,
		logger:       logger.Get().Named("selector"),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Select returns the core set plus up to topK relevant specialists,
// ordered by execution rank. The result always contains every core
// brain exactly once and is never empty (given a non-empty core set);
// an index failure yields the core set alone.
func (s *Selector) Select(ctx context.Context, query string) []model.BrainID {
	chosen := s.reg.Core()
	present := make(map[model.BrainID]struct{}, len(chosen))
	for _, id := range chosen {
		present[id] = struct{}{}
	}

	matches, err := s.search(ctx, query, s.topK)
	if err != nil {
		s.logger.Warn(ctx, "index search failed; selecting core set only",
			logger.String("query", query),
			logger.Error(err),
		)
		metrics.RecordSelectionFallback()
		metrics.RecordSelection("select", len(chosen))
		return chosen
	}

	// Append specialists in relevance order; core members stay seeded.
	for _, m := range matches {
		if s.reg.IsCore(m.BrainID) {
			continue
		}
		if _, ok := present[m.BrainID]; ok {
			continue
		}
		present[m.BrainID] = struct{}{}
		chosen = append(chosen, m.BrainID)
	}

	s.reg.SortByOrder(chosen)
	metrics.RecordSelection("select", len(chosen))
	return chosen
}

// SelectTop ranks every known brain by composite score and returns the
// top n, with missing core brains force-appended and the final list
// sorted by execution rank. Any catalog or scoring failure yields the
// core set alone. n <= 0 reduces to exactly the core set.
func (s *Selector) SelectTop(ctx context.Context, query string, complexityLevel float64, userID string, n int) []model.BrainID {
	ranked, err := s.Rank(ctx, query, complexityLevel, userID)
	if err != nil {
		s.logger.Warn(ctx, "ranked selection failed; selecting core set only",
			logger.String("query", query),
			logger.Error(err),
		)
		metrics.RecordSelectionFallback()
		core := s.reg.Core()
		metrics.RecordSelection("select_top", len(core))
		return s.reg.SortByOrder(core)
	}

	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}

	chosen := make([]model.BrainID, 0, n)
	present := make(map[model.BrainID]struct{}, n)
	for _, sc := range ranked[:n] {
		chosen = append(chosen, sc.BrainID)
		present[sc.BrainID] = struct{}{}
	}

	// Core brains are appended, never substituted for ranked picks.
	for _, id := range s.reg.Core() {
		if _, ok := present[id]; ok {
			continue
		}
		present[id] = struct{}{}
		chosen = append(chosen, id)
	}

	s.reg.SortByOrder(chosen)
	metrics.RecordSelection("select_top", len(chosen))
	return chosen
}

// Rank scores every candidate brain against the query and returns them
// best first. Candidates are the index catalog joined with every
// registry-known brain, so a brain the index has not embedded yet still
// competes. Ties keep enumeration order. The error covers catalog
// retrieval only; a failed relevance lookup zeroes the relevance
// component instead of failing the call.
func (s *Selector) Rank(ctx context.Context, query string, complexityLevel float64, userID string) ([]Scored, error) {
	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]model.BrainID, 0, len(catalog))
	seen := make(map[model.BrainID]struct{}, len(catalog))
	for _, m := range catalog {
		if _, ok := seen[m.BrainID]; ok {
			continue
		}
		seen[m.BrainID] = struct{}{}
		candidates = append(candidates, m.BrainID)
	}
	for _, id := range s.reg.Known() {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		candidates = append(candidates, id)
	}

	// Single top-match lookup shared by all relevance components.
	// Binary by contract: exact top match or a flat floor.
	var topMatch model.BrainID
	relevanceKnown := false
	if top, serr := s.search(ctx, query, 1); serr == nil {
		relevanceKnown = true
		if len(top) > 0 {
			topMatch = top[0].BrainID
		}
	} else {
		s.logger.Debug(ctx, "relevance lookup failed; zeroing relevance component", logger.Error(serr))
	}

	ranked := make([]Scored, 0, len(candidates))
	for _, id := range candidates {
		b := s.score(id, complexityLevel, topMatch, relevanceKnown, userID)
		ranked = append(ranked, Scored{BrainID: id, Breakdown: b, Total: b.Total()})
	}

	stableSortByTotalDesc(ranked)
	return ranked, nil
}

// score computes the four weighted components for one brain.
func (s *Selector) score(id model.BrainID, complexityLevel float64, topMatch model.BrainID, relevanceKnown bool, _ string) Breakdown {
	var relevance float64
	switch {
	case !relevanceKnown:
		relevance = 0
	case id == topMatch:
		relevance = topMatchRelevance
	default:
		relevance = baseRelevance
	}

	declared := s.reg.Complexity(id)
	distance := declared - complexityLevel
	if distance < 0 {
		distance = -distance
	}
	complexityMatch := complexityWeight * maxZero(1-distance/complexityScale)

	performance := performanceWeight * maxZero(1-s.reg.LatencyMS(id)/referenceLatencyMS)

	return Breakdown{
		Relevance:       relevance,
		ComplexityMatch: complexityMatch,
		UserHistory:     neutralHistory, // placeholder until per-user history is wired in
		Performance:     performance,
	}
}

// search wraps index.Search with the configured timeout.
func (s *Selector) search(ctx context.Context, query string, topK int) ([]index.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, s.indexTimeout)
	defer cancel()
	return s.idx.Search(ctx, query, topK)
}

// catalog wraps index.Catalog with the configured timeout.
func (s *Selector) catalog(ctx context.Context) ([]index.Match, error) {
	ctx, cancel := context.WithTimeout(ctx, s.indexTimeout)
	defer cancel()
	return s.idx.Catalog(ctx, s.catalogTopK)
}

// stableSortByTotalDesc orders ranked best first without disturbing
// catalog order between equal totals.
func stableSortByTotalDesc(ranked []Scored) {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Total > ranked[j].Total
	})
}

func maxZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
