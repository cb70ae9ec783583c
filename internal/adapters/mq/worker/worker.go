// Package worker runs selected brains against queries with bounded
// parallelism and collects whatever outputs complete in time.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/quorum/internal/adapters/mq/queue"
	"github.com/okian/quorum/internal/domain/model"
	"github.com/okian/quorum/pkg/logger"
	"github.com/okian/quorum/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	defaultBrainTimeout     = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
	qualityScaleCutover     = 1.0 // above this the source used a 0-100 scale
	percentScale            = 100.0
)

// Job is what workers read off the queue.
type Job = queue.Job

// Brain produces one candidate answer for a query.
type Brain interface {
	Answer(ctx context.Context, query string) (model.Output, error)
}

// Resolver maps a brain id to its runnable implementation.
type Resolver interface {
	Resolve(id model.BrainID) (Brain, bool)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes brain invocation jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker, finishing in-flight jobs.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing jobs.
type InMemoryWorker struct {
	queue    Queue
	resolver Resolver
	name     string

	brainTimeout time.Duration

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, resolver Resolver, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:        q,
		resolver:     resolver,
		name:         "worker",
		brainTimeout: defaultBrainTimeout,
		shutdown:     make(chan struct{}),
		done:         make(chan struct{}),
		logger:       logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.processJob(ctx, job)
		}
	}
}

// Shutdown gracefully stops the worker. Safe to call more than once.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob invokes one brain and replies with its result. Every job
// gets exactly one reply so collectors can count instead of wait.
func (w *InMemoryWorker) processJob(ctx context.Context, job Job) {
	start := time.Now()
	defer func() {
		metrics.RecordBrainLatency(string(job.BrainID), float64(time.Since(start).Milliseconds()))
	}()

	brain, ok := w.resolver.Resolve(job.BrainID)
	if !ok {
		metrics.RecordBrainError(string(job.BrainID))
		w.logger.Warn(ctx, "no implementation registered for brain",
			logger.String("brainID", string(job.BrainID)),
		)
		w.reply(ctx, job, queue.Result{BrainID: job.BrainID, Err: ErrUnknownBrain})
		return
	}

	brainCtx, cancel := context.WithTimeout(ctx, w.brainTimeout)
	defer cancel()

	out, err := brain.Answer(brainCtx, job.Query)
	if err != nil {
		metrics.RecordBrainError(string(job.BrainID))
		w.logger.Error(ctx, "brain invocation failed",
			logger.String("brainID", string(job.BrainID)),
			logger.Error(err),
		)
		w.reply(ctx, job, queue.Result{BrainID: job.BrainID, Err: err})
		return
	}

	out.Source = job.BrainID
	out.Quality = normalizeQuality(out.Quality)
	w.reply(ctx, job, queue.Result{BrainID: job.BrainID, Output: out})
}

// reply delivers a result without blocking past cancellation.
func (w *InMemoryWorker) reply(ctx context.Context, job Job, res queue.Result) {
	if job.Reply == nil {
		return
	}
	select {
	case job.Reply <- res:
	case <-ctx.Done():
	}
}

// normalizeQuality maps quality onto the canonical [0,1] scale. Brains
// reporting on a 0-100 scale are divided down at this boundary.
func normalizeQuality(q float64) float64 {
	if q > qualityScaleCutover {
		q /= percentScale
	}
	if q < 0 {
		return 0
	}
	if q > 1 {
		return 1
	}
	return q
}

// Pool manages multiple workers draining a shared queue.
type Pool struct {
	workers  []*InMemoryWorker
	queue    queue.Queue
	resolver Resolver

	brainTimeout time.Duration

	// Shutdown control
	shutdown chan struct{}

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, q queue.Queue, resolver Resolver, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:      make([]*InMemoryWorker, workerCount),
		queue:        q,
		resolver:     resolver,
		brainTimeout: defaultBrainTimeout,
		shutdown:     make(chan struct{}),
		logger:       logger.Get().Named("worker-pool"),
	}

	for _, opt := range opts {
		opt(pool)
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			q,
			resolver,
			WithName("worker-"+strconv.Itoa(i)),
			WithBrainTimeout(pool.brainTimeout),
		)
	}

	metrics.UpdateWorkerCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Execute fans the query out to the given brains and returns whatever
// outputs completed before ctx expired. Failed or timed-out brains are
// simply absent from the result; Execute itself never fails.
func (p *Pool) Execute(ctx context.Context, query, userID string, ids []model.BrainID) []model.Output {
	if len(ids) == 0 {
		return nil
	}

	reply := make(chan queue.Result, len(ids))
	expected := 0
	for _, id := range ids {
		job := Job{BrainID: id, Query: query, UserID: userID, Reply: reply}
		if !p.queue.Enqueue(ctx, job) {
			p.logger.Warn(ctx, "failed to enqueue brain job; skipping",
				logger.String("brainID", string(id)),
			)
			continue
		}
		expected++
	}

	outputs := make([]model.Output, 0, expected)
	for received := 0; received < expected; received++ {
		select {
		case res := <-reply:
			if res.Err != nil {
				continue
			}
			outputs = append(outputs, res.Output)
		case <-ctx.Done():
			p.logger.Warn(ctx, "execution deadline hit; returning partial outputs",
				logger.Int("collected", len(outputs)),
				logger.Int("expected", expected),
			)
			metrics.RecordExecutionPartial()
			return outputs
		}
	}

	return outputs
}

// Stop gracefully stops all workers without closing the queue.
func (p *Pool) Stop() {
	select {
	case <-p.shutdown:
		return // already stopped
	default:
		close(p.shutdown)
	}

	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()
	for _, w := range p.workers {
		_ = w.Shutdown(ctx)
	}
}

// Shutdown closes the queue and then stops the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	select {
	case <-p.shutdown:
	default:
		close(p.shutdown)
	}

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
