package worker_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	brains "github.com/okian/quorum/internal/adapters/brains"
	queue "github.com/okian/quorum/internal/adapters/mq/queue"
	worker "github.com/okian/quorum/internal/adapters/mq/worker"
	"github.com/okian/quorum/internal/domain/model"
	"github.com/okian/quorum/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

// setAdapter bridges brains.Set to the worker's Resolver contract.
type setAdapter struct{ set *brains.Set }

func (a setAdapter) Resolve(id model.BrainID) (worker.Brain, bool) {
	b, ok := a.set.Resolve(id)
	if !ok {
		return nil, false
	}
	return b, true
}

func startPool(ctx context.Context, set *brains.Set, opts ...worker.PoolOption) (*worker.Pool, *queue.InMemoryQueue) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(64), queue.WithBufferSize(64))
	pool := worker.NewPool(4, q, setAdapter{set: set}, opts...)
	pool.Start(ctx)
	return pool, q
}

func sourcesOf(outputs []model.Output) []string {
	ids := make([]string, 0, len(outputs))
	for _, o := range outputs {
		ids = append(ids, string(o.Source))
	}
	sort.Strings(ids)
	return ids
}

func TestPoolExecute(t *testing.T) {
	Convey("Given a running pool over the default brain set", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		set := brains.NewSet(
			brains.NewStatic("planner", 0.8, func(string) string { return "plan it" }, brains.WithThinkTime(0)),
			brains.NewStatic("judge", 0.9, func(string) string { return "looks good" }, brains.WithThinkTime(0)),
			brains.NewStatic("legacy", 70, func(string) string { return "old scale" }, brains.WithThinkTime(0)),
		)
		pool, _ := startPool(ctx, set)
		defer pool.Stop()

		Convey("When executing a query across all brains", func() {
			outputs := pool.Execute(ctx, "refactor the parser", "user-1", []model.BrainID{"planner", "judge", "legacy"})

			Convey("Then one output per brain comes back", func() {
				So(len(outputs), ShouldEqual, 3)
				So(sourcesOf(outputs), ShouldResemble, []string{"judge", "legacy", "planner"})
			})

			Convey("And legacy 0-100 qualities are normalized to [0,1]", func() {
				for _, o := range outputs {
					So(o.Quality, ShouldBeLessThanOrEqualTo, 1.0)
					if o.Source == "legacy" {
						So(o.Quality, ShouldAlmostEqual, 0.7, 1e-9)
					}
				}
			})
		})

		Convey("When executing with no brains", func() {
			outputs := pool.Execute(ctx, "anything", "user-1", nil)
			So(outputs, ShouldBeEmpty)
		})
	})
}

func TestPoolExecutePartialResults(t *testing.T) {
	Convey("Given a pool where one brain always fails", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		set := brains.NewSet(
			brains.NewStatic("ok", 0.8, func(string) string { return "fine" }, brains.WithThinkTime(0)),
			brains.NewStatic("broken", 0.8, func(string) string { return "" },
				brains.WithThinkTime(0), brains.WithFailure(errors.New("model offline"))),
		)
		pool, _ := startPool(ctx, set)
		defer pool.Stop()

		Convey("When executing across both", func() {
			outputs := pool.Execute(ctx, "q", "u", []model.BrainID{"ok", "broken"})

			Convey("Then the failure is dropped, not propagated", func() {
				So(len(outputs), ShouldEqual, 1)
				So(outputs[0].Source, ShouldEqual, model.BrainID("ok"))
			})
		})
	})

	Convey("Given a pool with a brain slower than its timeout", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		set := brains.NewSet(
			brains.NewStatic("fast", 0.8, func(string) string { return "quick" }, brains.WithThinkTime(0)),
			brains.NewStatic("slow", 0.8, func(string) string { return "late" },
				brains.WithThinkTime(500*time.Millisecond)),
		)
		pool, _ := startPool(ctx, set, worker.WithPoolBrainTimeout(30*time.Millisecond))
		defer pool.Stop()

		Convey("When executing across both", func() {
			outputs := pool.Execute(ctx, "q", "u", []model.BrainID{"fast", "slow"})

			Convey("Then only the fast brain contributes", func() {
				So(len(outputs), ShouldEqual, 1)
				So(outputs[0].Source, ShouldEqual, model.BrainID("fast"))
			})
		})
	})

	Convey("Given a brain id with no implementation", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		set := brains.NewSet(
			brains.NewStatic("real", 0.8, func(string) string { return "here" }, brains.WithThinkTime(0)),
		)
		pool, _ := startPool(ctx, set)
		defer pool.Stop()

		Convey("When executing across real and phantom brains", func() {
			outputs := pool.Execute(ctx, "q", "u", []model.BrainID{"real", "phantom"})

			Convey("Then the phantom is skipped without blocking", func() {
				So(len(outputs), ShouldEqual, 1)
				So(outputs[0].Source, ShouldEqual, model.BrainID("real"))
			})
		})
	})
}

func TestPoolShutdown(t *testing.T) {
	Convey("Given a running pool", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		set := brains.NewSet(
			brains.NewStatic("planner", 0.8, func(string) string { return "plan" }, brains.WithThinkTime(0)),
		)
		pool, q := startPool(ctx, set)

		Convey("When shutting down", func() {
			err := pool.Shutdown(context.Background())

			Convey("Then the queue closes and shutdown completes", func() {
				So(err, ShouldBeNil)
				So(q.IsClosed(), ShouldBeTrue)
			})

			Convey("And a second stop is safe", func() {
				pool.Stop()
			})
		})
	})
}
