package worker_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	queue "github.com/okian/gridiron/internal/adapters/mq/queue"
	worker "github.com/okian/gridiron/internal/adapters/mq/worker"
	model "github.com/okian/gridiron/internal/domain/model"
	logging "github.com/okian/gridiron/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

// mockFetcher returns one row per week, fails listed weeks, and sleeps
// longer for earlier weeks so completion order is reversed.
type mockFetcher struct {
	fail  map[int]bool
	calls atomic.Int32
	mu    sync.Mutex
	seen  []int
}

func (m *mockFetcher) WeekStats(ctx context.Context, season, week int) ([]model.RawStats, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.seen = append(m.seen, week)
	m.mu.Unlock()

	select {
	case <-time.After(time.Duration(10-week) * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if m.fail[week] {
		return nil, errors.New("upstream unavailable")
	}
	return []model.RawStats{{"player_id": "p", "week": week, "season": season}}, nil
}

func TestFetchWeeks(t *testing.T) {
	convey.Convey("Given a fetcher and five weeks", t, func() {
		_ = logging.Init()
		f := &mockFetcher{fail: map[int]bool{3: true}}

		results, err := worker.FetchWeeks(context.Background(), f, 2025, []int{5, 1, 4, 2, 3}, 3)

		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then every week is fetched exactly once", func() {
			convey.So(f.calls.Load(), convey.ShouldEqual, 5)
			convey.So(results, convey.ShouldHaveLength, 5)
		})

		convey.Convey("Then results are ordered by week", func() {
			for i, r := range results {
				convey.So(r.Week, convey.ShouldEqual, i+1)
				convey.So(r.Season, convey.ShouldEqual, 2025)
			}
		})

		convey.Convey("Then a failed week carries its error and no rows", func() {
			convey.So(results[2].Err, convey.ShouldNotBeNil)
			convey.So(results[2].Rows, convey.ShouldBeEmpty)
			convey.So(results[0].Rows, convey.ShouldHaveLength, 1)
		})
	})

	convey.Convey("Given no weeks", t, func() {
		_ = logging.Init()
		results, err := worker.FetchWeeks(context.Background(), &mockFetcher{}, 2025, nil, 2)
		convey.So(err, convey.ShouldBeNil)
		convey.So(results, convey.ShouldBeEmpty)
	})

	convey.Convey("Given a cancelled context", t, func() {
		_ = logging.Init()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := worker.FetchWeeks(ctx, &mockFetcher{}, 2025, []int{1, 2}, 2)
		convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
	})
}

func TestPool(t *testing.T) {
	convey.Convey("Given a running pool", t, func() {
		_ = logging.Init()
		q := queue.NewInMemoryQueue(queue.WithCapacity(10))
		pool := worker.NewPool(2, q, &mockFetcher{}, 10)
		ctx := context.Background()
		pool.Start(ctx)

		q.Enqueue(ctx, queue.Job{Season: 2025, Week: 7})
		q.Enqueue(ctx, queue.Job{Season: 2025, Week: 8})

		convey.Convey("When the pool shuts down", func() {
			convey.So(pool.Shutdown(ctx), convey.ShouldBeNil)

			convey.Convey("Then the results channel closes", func() {
				var n int
				for range pool.Results() {
					n++
				}
				convey.So(n, convey.ShouldBeLessThanOrEqualTo, 2)
			})
		})
	})
}

func TestWorker_Shutdown(t *testing.T) {
	convey.Convey("Given an idle worker", t, func() {
		_ = logging.Init()
		q := queue.NewInMemoryQueue()
		results := make(chan worker.Result, 1)
		w := worker.NewInMemoryWorker(q, &mockFetcher{}, results, worker.WithName("idle"))
		go w.Run(context.Background())

		convey.Convey("Then shutdown returns promptly and is repeatable", func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
			convey.So(w.Shutdown(ctx), convey.ShouldBeNil)
		})
	})
}
