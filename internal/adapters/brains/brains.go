// Package brains provides the Brain contract and a canned in-memory
// brain set. Real brains are external model-backed services; the static
// set stands in for them in development, demos, and tests.
package brains

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/quorum/internal/domain/model"
)

// Default static brain configuration.
const (
	defaultThinkTime = 10 * time.Millisecond
)

// Brain produces one candidate answer for a query.
type Brain interface {
	// ID returns the registry identity of this brain.
	ID() model.BrainID

	// Answer produces a candidate answer, honoring ctx for cancellation.
	Answer(ctx context.Context, query string) (model.Output, error)
}

// StaticBrain implements Brain with a templated response.
type StaticBrain struct {
	id        model.BrainID
	quality   float64
	respond   func(query string) string
	thinkTime time.Duration
	failWith  error
}

// NewStatic creates a static brain. respond receives the query and
// returns the answer text.
func NewStatic(id model.BrainID, quality float64, respond func(query string) string, opts ...Option) *StaticBrain {
	b := &StaticBrain{
		id:        id,
		quality:   quality,
		respond:   respond,
		thinkTime: defaultThinkTime,
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// ID returns the registry identity of this brain.
func (b *StaticBrain) ID() model.BrainID {
	return b.id
}

// Answer produces the templated response after the simulated think time.
func (b *StaticBrain) Answer(ctx context.Context, query string) (model.Output, error) {
	if b.failWith != nil {
		return model.Output{}, b.failWith
	}

	if b.thinkTime > 0 {
		select {
		case <-ctx.Done():
			return model.Output{}, fmt.Errorf("brain %s cancelled: %w", b.id, ctx.Err())
		case <-time.After(b.thinkTime):
		}
	}

	return model.Output{
		Source:  b.id,
		Content: b.respond(query),
		Quality: b.quality,
	}, nil
}

// Set is a concurrency-safe collection of brains keyed by id.
type Set struct {
	mu   sync.RWMutex
	byID map[model.BrainID]Brain
}

// NewSet builds a Set from the given brains. Later duplicates replace
// earlier ones.
func NewSet(members ...Brain) *Set {
	s := &Set{byID: make(map[model.BrainID]Brain, len(members))}
	for _, b := range members {
		s.byID[b.ID()] = b
	}
	return s
}

// Resolve returns the brain registered under id.
func (s *Set) Resolve(id model.BrainID) (Brain, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.byID[id]
	return b, ok
}

// Register adds or replaces a brain.
func (s *Set) Register(b Brain) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[b.ID()] = b
}

// Len returns the number of registered brains.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// DefaultSet returns the canned core and specialist brains used by the
// demo service and the load generator.
func DefaultSet() *Set {
	return NewSet(
		NewStatic("planner", 0.82, func(q string) string {
			return "Plan: break \"" + q + "\" into ordered steps and assign each to the right stage."
		}),
		NewStatic("executor", 0.78, func(q string) string {
			return "Execution: carry out the planned steps for \"" + q + "\" and report intermediate results."
		}),
		NewStatic("judge", 0.9, func(q string) string {
			return "Verdict: yes, the proposed handling of \"" + q + "\" holds up under review."
		}),
		NewStatic("voice", 0.75, func(q string) string {
			return "Summary: here is the final phrasing of the answer to \"" + q + "\"."
		}),
		NewStatic("sql", 0.85, func(q string) string {
			return "Database take: for \"" + q + "\" check the query plan and index coverage first."
		}),
		// Legacy brain reporting on the 0-100 quality scale; the
		// execution boundary normalizes it.
		NewStatic("regex", 70, func(q string) string {
			return "Pattern take: \"" + q + "\" reduces to a small set of match rules."
		}),
		NewStatic("docs", 0.6, func(q string) string {
			return "Writing take: document the resolution of \"" + q + "\" next to the code it touches."
		}),
	)
}

// DefaultDescriptions returns the hand-authored index descriptions for
// the default brain set.
func DefaultDescriptions() map[model.BrainID]string {
	return map[model.BrainID]string{
		"planner":  "planning decomposition strategy ordering steps milestones",
		"executor": "execution carrying out instructions applying changes",
		"judge":    "judging evaluation quality verdict review scoring",
		"voice":    "phrasing tone wording final answer presentation",
		"sql":      "database sql queries joins indexes optimization schema",
		"regex":    "regular expressions regex pattern matching text parsing",
		"docs":     "documentation writing explanations prose guides",
	}
}
