// Package aggregation merges a set of brain outputs into one coherent
// response: near-duplicates are suppressed, contradictions are flagged,
// and provenance is kept per contributing brain.
//
// All operations treat nil or empty input as a valid empty case, never
// an error, and are safe for concurrent use.
package aggregation

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/quorum/internal/domain/model"
	"github.com/okian/quorum/internal/domain/similarity"
	"github.com/okian/quorum/pkg/logger"
	"github.com/okian/quorum/pkg/metrics"
)

// Merge configuration constants.
const (
	// maxMergeSlots bounds how many outputs MergeOutputs considers:
	// the primary plus up to two additional insights.
	maxMergeSlots = 3

	insightPrefix     = "\n\nAdditional insight: "
	perspectivePrefix = "Additional perspective: "
)

// Aggregator combines brain outputs. It is stateless apart from its
// logger and similarity threshold.
type Aggregator struct {
	threshold float64
	logger    logger.Logger
}

// New creates an Aggregator with the default similarity threshold.
func New(opts ...Option) *Aggregator {
	a := &Aggregator{
		threshold: similarity.DefaultThreshold,
		logger:    logger.Get().Named("aggregator"),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// MergeOutputs combines outputs into a single response. The highest
// quality output becomes the primary; the next two slots are appended
// as additional insights unless they duplicate the primary. The final
// quality divides by every considered slot, so a suppressed duplicate
// still dilutes the average.
func (a *Aggregator) MergeOutputs(ctx context.Context, outputs []model.Output) model.MergedResponse {
	start := time.Now()
	defer func() {
		metrics.RecordMergeLatency(float64(time.Since(start).Milliseconds()))
	}()

	if len(outputs) == 0 {
		return model.MergedResponse{Sources: []model.BrainID{}}
	}

	sorted := sortByQualityDesc(outputs)

	primary := sorted[0]
	var content strings.Builder
	content.WriteString(primary.Content)
	sources := []model.BrainID{primary.Source}
	runningQuality := primary.Quality

	considered := 1
	for _, out := range sorted[1:] {
		if considered >= maxMergeSlots {
			break
		}
		considered++

		if similarity.SimilarAt(out.Content, primary.Content, a.threshold) {
			metrics.RecordDuplicateSuppressed()
			a.logger.Debug(ctx, "suppressing near-duplicate output",
				logger.String("source", string(out.Source)),
			)
			continue
		}

		content.WriteString(insightPrefix)
		content.WriteString(out.Content)
		sources = append(sources, out.Source)
		runningQuality += out.Quality
	}

	metrics.RecordMerge()
	return model.MergedResponse{
		Content: content.String(),
		Quality: runningQuality / float64(considered),
		Sources: sources,
	}
}

// Conflicts flags every contradictory unordered pair in outputs.
func (a *Aggregator) Conflicts(outputs []model.Output) []model.Conflict {
	var conflicts []model.Conflict
	for i := 0; i < len(outputs); i++ {
		for j := i + 1; j < len(outputs); j++ {
			if similarity.Conflicting(outputs[i].Content, outputs[j].Content) {
				conflicts = append(conflicts, model.Conflict{A: outputs[i], B: outputs[j]})
			}
		}
	}
	return conflicts
}

// MergeWithConflictResolution detects contradictions before merging.
// Resolution is advisory only: the winning side of each conflict is
// logged and counted for observability, but no output is removed or
// demoted before the merge.
func (a *Aggregator) MergeWithConflictResolution(ctx context.Context, outputs []model.Output) model.MergedResponse {
	for _, c := range a.Conflicts(outputs) {
		metrics.RecordConflictDetected()
		winner := c.Winner()
		a.logger.Info(ctx, "conflicting outputs detected; preferring higher quality",
			logger.String("a", string(c.A.Source)),
			logger.String("b", string(c.B.Source)),
			logger.String("winner", string(winner.Source)),
			logger.Float64("winnerQuality", winner.Quality),
		)
	}

	return a.MergeOutputs(ctx, outputs)
}

// CombineInsights concatenates every distinct output, starting from the
// first one as given. Unlike MergeOutputs there is no quality ordering
// and no cap on how many outputs are processed.
func (a *Aggregator) CombineInsights(outputs []model.Output) string {
	if len(outputs) == 0 {
		return ""
	}

	var content strings.Builder
	content.WriteString(outputs[0].Content)
	for _, out := range outputs[1:] {
		if similarity.SimilarAt(out.Content, outputs[0].Content, a.threshold) {
			continue
		}
		content.WriteString("\n\n")
		content.WriteString(perspectivePrefix)
		content.WriteString(out.Content)
	}
	return content.String()
}

// CreateUnifiedResponse merges with conflict resolution and stamps the
// caller identity and creation time.
func (a *Aggregator) CreateUnifiedResponse(ctx context.Context, outputs []model.Output, userID string) model.UnifiedResponse {
	merged := a.MergeWithConflictResolution(ctx, outputs)
	metrics.RecordResponseCreated()

	return model.UnifiedResponse{
		MergedResponse:  merged,
		ResponseID:      uuid.NewString(),
		UserID:          userID,
		CreatedAtMillis: time.Now().UnixMilli(),
	}
}

// sortByQualityDesc copies outputs and orders them best first. Ties
// keep input order so merging stays deterministic.
func sortByQualityDesc(outputs []model.Output) []model.Output {
	sorted := make([]model.Output, len(outputs))
	copy(sorted, outputs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Quality > sorted[j].Quality
	})
	return sorted
}
