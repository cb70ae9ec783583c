// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/okian/quorum/internal/adapters/brains"
	"github.com/okian/quorum/internal/adapters/index"
	jobqueue "github.com/okian/quorum/internal/adapters/mq/queue"
	workerpool "github.com/okian/quorum/internal/adapters/mq/worker"
	repository "github.com/okian/quorum/internal/adapters/repository"
	"github.com/okian/quorum/internal/domain/aggregation"
	"github.com/okian/quorum/internal/domain/model"
	"github.com/okian/quorum/internal/domain/registry"
	"github.com/okian/quorum/internal/domain/selection"
	"github.com/okian/quorum/pkg/logger"
	"github.com/okian/quorum/pkg/metrics"
)

// brainsAdapter adapts the brains.Set registry to the worker.Resolver interface.
type brainsAdapter struct {
	set *brains.Set
}

func (a *brainsAdapter) Resolve(id model.BrainID) (workerpool.Brain, bool) {
	b, ok := a.set.Resolve(id)
	if !ok {
		return nil, false
	}
	return b, true
}

// Service implements the API dependencies for the orchestrator system.
type Service struct {
	mu sync.RWMutex

	// Core components
	registry   *registry.Registry
	index      index.Index
	selector   *selection.Selector
	aggregator *aggregation.Aggregator
	jobQueue   jobqueue.Queue
	pool       *workerpool.Pool
	brainSet   *brains.Set
	history    repository.Store

	// Configuration
	workerCount  int
	queueSize    int
	topK         int
	historyLimit int
	threshold    float64
	brainTimeout time.Duration
	indexTimeout time.Duration

	coreBrains     []model.BrainID
	executionOrder map[model.BrainID]int
	complexity     map[model.BrainID]float64
	latencyMS      map[model.BrainID]float64
	descriptions   map[model.BrainID]string

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithTopK sets how many index matches augment the core set.
func WithTopK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithHistoryLimit sets how many responses are retained per user.
func WithHistoryLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithSimilarityThreshold sets the duplicate suppression threshold.
func WithSimilarityThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold > 0 && threshold < 1 {
			s.threshold = threshold
		}
	}
}

// WithBrainTimeout sets the per-brain invocation deadline.
func WithBrainTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.brainTimeout = d
		}
	}
}

// WithIndexTimeout sets the deadline for index lookups.
func WithIndexTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.indexTimeout = d
		}
	}
}

// WithCoreBrains sets which brains answer every query.
func WithCoreBrains(ids ...model.BrainID) Option {
	return func(s *Service) {
		if len(ids) > 0 {
			s.coreBrains = ids
		}
	}
}

// WithExecutionOrder sets the pipeline position for each brain.
func WithExecutionOrder(order map[model.BrainID]int) Option {
	return func(s *Service) {
		if len(order) > 0 {
			s.executionOrder = order
		}
	}
}

// WithComplexityRatings sets the complexity rating for each brain.
func WithComplexityRatings(ratings map[model.BrainID]float64) Option {
	return func(s *Service) {
		if len(ratings) > 0 {
			s.complexity = ratings
		}
	}
}

// WithLatencyProfile sets the average latency in milliseconds for each brain.
func WithLatencyProfile(latencies map[model.BrainID]float64) Option {
	return func(s *Service) {
		if len(latencies) > 0 {
			s.latencyMS = latencies
		}
	}
}

// WithDescriptions sets the index descriptions for each brain.
func WithDescriptions(descriptions map[model.BrainID]string) Option {
	return func(s *Service) {
		if len(descriptions) > 0 {
			s.descriptions = descriptions
		}
	}
}

// WithBrainSet sets the runnable brain implementations.
func WithBrainSet(set *brains.Set) Option {
	return func(s *Service) {
		if set != nil {
			s.brainSet = set
		}
	}
}

// WithIndex sets a custom brain index.
func WithIndex(idx index.Index) Option {
	return func(s *Service) {
		if idx != nil {
			s.index = idx
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:  runtime.NumCPU() * 2,
		queueSize:    4096,
		topK:         selection.DefaultTopK,
		historyLimit: 100,
		threshold:    0, // aggregator default applies
		brainTimeout: 5 * time.Second,
		indexTimeout: 2 * time.Second,
		coreBrains:   []model.BrainID{"planner", "executor", "judge", "voice"},
		executionOrder: map[model.BrainID]int{
			"planner":  10,
			"executor": 20,
			"sql":      40,
			"regex":    50,
			"docs":     60,
			"judge":    90,
			"voice":    100,
		},
		complexity: map[model.BrainID]float64{
			"planner":  7,
			"executor": 6,
			"judge":    5,
			"voice":    4,
			"sql":      8,
			"regex":    4,
			"docs":     3,
		},
		latencyMS: map[model.BrainID]float64{
			"planner":  120,
			"executor": 100,
			"judge":    80,
			"voice":    60,
			"sql":      50,
			"regex":    400,
			"docs":     90,
		},
		stopCh: make(chan struct{}),
		logger: nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting orchestrator service...")

	// Initialize components
	s.registry = registry.New(
		registry.WithCore(s.coreBrains...),
		registry.WithExecutionOrder(s.executionOrder),
		registry.WithComplexity(s.complexity),
		registry.WithLatencyMS(s.latencyMS),
	)

	if s.brainSet == nil {
		s.brainSet = brains.DefaultSet()
	}
	if s.descriptions == nil {
		s.descriptions = brains.DefaultDescriptions()
	}
	if s.index == nil {
		s.index = index.NewInMemoryIndex(s.descriptions)
	}

	s.selector = selection.New(s.registry, s.index,
		selection.WithTopK(s.topK),
		selection.WithIndexTimeout(s.indexTimeout),
	)

	aggOpts := []aggregation.Option{}
	if s.threshold > 0 {
		aggOpts = append(aggOpts, aggregation.WithSimilarityThreshold(s.threshold))
	}
	s.aggregator = aggregation.New(aggOpts...)

	s.history = repository.NewMemoryStore(
		repository.WithHistoryLimit(s.historyLimit),
	)

	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, &brainsAdapter{set: s.brainSet},
		workerpool.WithPoolBrainTimeout(s.brainTimeout),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "orchestrator service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("brains", s.brainSet.Len()),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping orchestrator service...")

	// Stop worker pool
	if s.pool != nil {
		s.pool.Stop()
	}

	// Close queue
	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "orchestrator service stopped")
}

// Ask runs a query through selection, execution and aggregation and
// records the unified response under the user's history.
func (s *Service) Ask(ctx context.Context, query, userID string) (model.UnifiedResponse, error) {
	if strings.TrimSpace(query) == "" {
		return model.UnifiedResponse{}, ErrEmptyQuery
	}
	if !s.isStarted() {
		return model.UnifiedResponse{}, ErrNotStarted
	}

	chosen := s.selector.Select(ctx, query)
	return s.respond(ctx, query, userID, chosen)
}

// AskTop is Ask with ranked selection capped at n brains.
func (s *Service) AskTop(ctx context.Context, query string, complexityLevel float64, userID string, n int) (model.UnifiedResponse, error) {
	if strings.TrimSpace(query) == "" {
		return model.UnifiedResponse{}, ErrEmptyQuery
	}
	if !s.isStarted() {
		return model.UnifiedResponse{}, ErrNotStarted
	}

	chosen := s.selector.SelectTop(ctx, query, complexityLevel, userID, n)
	return s.respond(ctx, query, userID, chosen)
}

// respond fans the query out to the chosen brains and merges the results.
func (s *Service) respond(ctx context.Context, query, userID string, chosen []model.BrainID) (model.UnifiedResponse, error) {
	outputs := s.pool.Execute(ctx, query, userID, chosen)
	if len(outputs) == 0 {
		s.logger.Warn(ctx, "no brain produced an output",
			logger.String("userID", userID),
			logger.Int("selected", len(chosen)),
		)
		return model.UnifiedResponse{}, ErrNoOutputs
	}

	resp := s.aggregator.CreateUnifiedResponse(ctx, outputs, userID)
	if userID != "" {
		if err := s.history.Append(ctx, resp); err != nil {
			s.logger.Warn(ctx, "failed to record response history",
				logger.String("userID", userID),
				logger.Error(err),
			)
		}
	}

	metrics.RecordQueryProcessed()
	return resp, nil
}

// Select returns the brains that would answer the query, in execution order.
func (s *Service) Select(ctx context.Context, query string) ([]model.BrainID, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.selector.Select(ctx, query), nil
}

// SelectTop returns the top n brains by composite score, in execution order.
func (s *Service) SelectTop(ctx context.Context, query string, complexityLevel float64, userID string, n int) ([]model.BrainID, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.selector.SelectTop(ctx, query, complexityLevel, userID, n), nil
}

// Rank returns every known brain with its score breakdown, best first.
func (s *Service) Rank(ctx context.Context, query string, complexityLevel float64, userID string) ([]selection.Scored, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.selector.Rank(ctx, query, complexityLevel, userID)
}

// Recent returns up to limit responses for a user, newest first.
func (s *Service) Recent(ctx context.Context, userID string, limit int) ([]model.UnifiedResponse, error) {
	if !s.isStarted() {
		return nil, ErrNotStarted
	}
	return s.history.Recent(ctx, userID, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"topK":        s.topK,
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		stats["queueLength"] = queueLen
		stats["historyUsers"] = s.history.Users(ctx)
		stats["historyResponses"] = s.history.Count(ctx)
		stats["brains"] = s.brainSet.Len()

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

func (s *Service) isStarted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
