package brains_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	brains "github.com/okian/quorum/internal/adapters/brains"
	"github.com/okian/quorum/internal/domain/model"
	"github.com/okian/quorum/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func TestStaticBrain(t *testing.T) {
	Convey("Given a static brain", t, func() {
		b := brains.NewStatic("echo", 0.5, func(q string) string {
			return "heard: " + q
		}, brains.WithThinkTime(0))

		Convey("When answering a query", func() {
			out, err := b.Answer(context.Background(), "hello")

			Convey("Then the templated response comes back with the brain's identity", func() {
				So(err, ShouldBeNil)
				So(out.Source, ShouldEqual, model.BrainID("echo"))
				So(out.Content, ShouldEqual, "heard: hello")
				So(out.Quality, ShouldEqual, 0.5)
			})
		})

		Convey("When the brain is configured to fail", func() {
			boom := errors.New("brain offline")
			broken := brains.NewStatic("broken", 0.5, func(string) string { return "" },
				brains.WithThinkTime(0), brains.WithFailure(boom))

			_, err := broken.Answer(context.Background(), "hello")

			Convey("Then the configured error surfaces", func() {
				So(err, ShouldEqual, boom)
			})
		})

		Convey("When the context expires during think time", func() {
			slow := brains.NewStatic("slow", 0.5, func(string) string { return "late" },
				brains.WithThinkTime(time.Second))

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
			defer cancel()

			_, err := slow.Answer(ctx, "hello")

			Convey("Then cancellation is reported instead of the answer", func() {
				So(err, ShouldNotBeNil)
				So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)
			})
		})
	})
}

func TestSet(t *testing.T) {
	Convey("Given a brain set", t, func() {
		set := brains.NewSet(
			brains.NewStatic("a", 0.5, func(string) string { return "a" }),
			brains.NewStatic("b", 0.5, func(string) string { return "b" }),
		)

		Convey("Then registered brains resolve by id", func() {
			b, ok := set.Resolve("a")
			So(ok, ShouldBeTrue)
			So(b.ID(), ShouldEqual, model.BrainID("a"))
		})

		Convey("Then unknown ids do not resolve", func() {
			_, ok := set.Resolve("missing")
			So(ok, ShouldBeFalse)
		})

		Convey("When registering a replacement", func() {
			set.Register(brains.NewStatic("a", 0.9, func(string) string { return "a2" }))

			Convey("Then the replacement wins and the count is unchanged", func() {
				b, ok := set.Resolve("a")
				So(ok, ShouldBeTrue)
				out, err := b.Answer(context.Background(), "q")
				So(err, ShouldBeNil)
				So(out.Quality, ShouldEqual, 0.9)
				So(set.Len(), ShouldEqual, 2)
			})
		})
	})
}

func TestDefaultSet(t *testing.T) {
	Convey("Given the default brain set", t, func() {
		set := brains.DefaultSet()

		Convey("Then every described brain has an implementation", func() {
			for id := range brains.DefaultDescriptions() {
				_, ok := set.Resolve(id)
				So(ok, ShouldBeTrue)
			}
		})

		Convey("Then the judge answers with a verdict", func() {
			b, ok := set.Resolve("judge")
			So(ok, ShouldBeTrue)
			out, err := b.Answer(context.Background(), "ship it")
			So(err, ShouldBeNil)
			So(strings.HasPrefix(out.Content, "Verdict:"), ShouldBeTrue)
		})
	})
}
