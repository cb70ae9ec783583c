package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/quorum/internal/domain/model"
	"github.com/okian/quorum/pkg/metrics"
)

// Default history configuration constants.
const (
	defaultPerUserLimit = 100
)

// MemoryStore is an in-memory Store implementation. Each user keeps a
// bounded slice of responses ordered oldest to newest; Append evicts
// from the front once the per-user limit is reached.
type MemoryStore struct {
	mu           sync.RWMutex
	byUser       map[string][]model.UnifiedResponse
	perUserLimit int
	total        int
}

// NewMemoryStore creates a history store with configuration options.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byUser:       make(map[string][]model.UnifiedResponse),
		perUserLimit: defaultPerUserLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Append records a unified response under its user.
func (s *MemoryStore) Append(ctx context.Context, resp model.UnifiedResponse) error {
	if resp.UserID == "" {
		metrics.RecordErrorByComponent("repository", "missing_user")
		return ErrMissingUser
	}

	s.mu.Lock()
	history := s.byUser[resp.UserID]
	if len(history) >= s.perUserLimit {
		evict := len(history) - s.perUserLimit + 1
		history = history[evict:]
		s.total -= evict
	}
	s.byUser[resp.UserID] = append(history, resp)
	s.total++
	users, total := len(s.byUser), s.total
	s.mu.Unlock()

	metrics.RecordHistoryAppend()
	metrics.UpdateHistoryUsers(users)
	metrics.UpdateHistoryResponses(total)
	return nil
}

// Recent returns up to limit responses for a user, newest first.
func (s *MemoryStore) Recent(ctx context.Context, userID string, limit int) ([]model.UnifiedResponse, error) {
	start := time.Now()
	defer func() {
		metrics.RecordHistoryQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	if limit <= 0 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	history, ok := s.byUser[userID]
	if !ok {
		s.mu.RUnlock()
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, ErrNotFound
	}

	if limit > len(history) {
		limit = len(history)
	}
	out := make([]model.UnifiedResponse, 0, limit)
	for i := len(history) - 1; i >= len(history)-limit; i-- {
		out = append(out, history[i])
	}
	s.mu.RUnlock()

	return out, nil
}

// Count returns the number of responses retained across all users.
func (s *MemoryStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// Users returns the number of users with stored history.
func (s *MemoryStore) Users(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byUser)
}
