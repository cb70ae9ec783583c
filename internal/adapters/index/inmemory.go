package index

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/okian/quorum/internal/domain/model"
	"github.com/okian/quorum/pkg/metrics"
)

// Default configuration for the in-memory index.
const (
	defaultMinLatency = 5 * time.Millisecond
	defaultMaxLatency = 20 * time.Millisecond
	defaultRandomSeed = 42
)

// InMemoryIndex implements Index over hand-authored brain descriptions
// using bag-of-words cosine similarity. It simulates the latency of the
// external vector service so timeout handling gets exercised locally.
// The vectors are read-only after construction and the latency source is
// guarded, so an index is safe to share across concurrent searches.
type InMemoryIndex struct {
	vectors map[model.BrainID]map[string]float64
	norms   map[model.BrainID]float64

	minLatency time.Duration
	maxLatency time.Duration

	rngMu    sync.Mutex // rand.Rand is not safe for concurrent use
	rng      *rand.Rand
	failWith error
}

// NewInMemoryIndex builds an index over the given brain descriptions.
func NewInMemoryIndex(descriptions map[model.BrainID]string, opts ...Option) *InMemoryIndex {
	idx := &InMemoryIndex{
		vectors:    make(map[model.BrainID]map[string]float64, len(descriptions)),
		norms:      make(map[model.BrainID]float64, len(descriptions)),
		minLatency: defaultMinLatency,
		maxLatency: defaultMaxLatency,
		rng:        rand.New(rand.NewSource(defaultRandomSeed)), //nolint:gosec // deterministic seed for reproducible testing
	}

	for id, desc := range descriptions {
		vec := termFrequencies(desc)
		idx.vectors[id] = vec
		idx.norms[id] = norm(vec)
	}

	for _, opt := range opts {
		opt(idx)
	}

	return idx
}

// Search ranks brains by cosine similarity of query against their
// descriptions. Ties break by brain id for determinism.
func (i *InMemoryIndex) Search(ctx context.Context, query string, topK int) ([]Match, error) {
	start := time.Now()
	defer func() {
		metrics.RecordIndexLatency(float64(time.Since(start).Milliseconds()))
	}()

	if i.failWith != nil {
		return nil, i.failWith
	}
	if err := i.simulateLatency(ctx); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}

	// Wildcard: enumerate everything with zero relevance.
	if strings.TrimSpace(query) == CatalogQuery {
		return i.listAll(topK), nil
	}

	qvec := termFrequencies(query)
	qnorm := norm(qvec)

	matches := make([]Match, 0, len(i.vectors))
	for id, vec := range i.vectors {
		matches = append(matches, Match{BrainID: id, Score: cosine(qvec, qnorm, vec, i.norms[id])})
	}
	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		return matches[a].BrainID < matches[b].BrainID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Catalog enumerates indexed brains via the wildcard search.
func (i *InMemoryIndex) Catalog(ctx context.Context, topK int) ([]Match, error) {
	return i.Search(ctx, CatalogQuery, topK)
}

// listAll returns every indexed brain id-sorted with zero scores.
func (i *InMemoryIndex) listAll(topK int) []Match {
	matches := make([]Match, 0, len(i.vectors))
	for id := range i.vectors {
		matches = append(matches, Match{BrainID: id})
	}
	sort.Slice(matches, func(a, b int) bool { return matches[a].BrainID < matches[b].BrainID })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches
}

// simulateLatency sleeps a random duration in the configured range,
// honoring ctx cancellation.
func (i *InMemoryIndex) simulateLatency(ctx context.Context) error {
	if i.maxLatency <= 0 {
		return nil
	}
	latency := i.minLatency
	if span := int64(i.maxLatency - i.minLatency); span > 0 {
		i.rngMu.Lock()
		latency += time.Duration(i.rng.Int63n(span))
		i.rngMu.Unlock()
	}
	select {
	case <-ctx.Done():
		return fmt.Errorf("index search cancelled: %w", ctx.Err())
	case <-time.After(latency):
		return nil
	}
}

// termFrequencies lower-cases and splits text into a term count vector.
func termFrequencies(text string) map[string]float64 {
	vec := make(map[string]float64)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		vec[w]++
	}
	return vec
}

func norm(vec map[string]float64) float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func cosine(a map[string]float64, aNorm float64, b map[string]float64, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for w, av := range a {
		if bv, ok := b[w]; ok {
			dot += av * bv
		}
	}
	return dot / (aNorm * bNorm)
}
