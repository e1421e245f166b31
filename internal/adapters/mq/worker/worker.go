// Package worker runs week fetch jobs against the stats source.
package worker

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/okian/gridiron/internal/adapters/mq/queue"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 4
	poolShutdownTimeout = 30 * time.Second
)

// Fetcher returns one week of raw stat rows.
type Fetcher interface {
	WeekStats(ctx context.Context, season, week int) ([]model.RawStats, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Result is the outcome of one job. Rows is empty when Err is set.
type Result struct {
	Season  int
	Week    int
	Rows    []model.RawStats
	Err     error
	Elapsed time.Duration
}

// Worker processes jobs until its queue closes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after its current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker pulls jobs and publishes results.
type InMemoryWorker struct {
	queue   Queue
	fetcher Fetcher
	results chan<- Result
	name    string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, fetcher Fetcher, results chan<- Result, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		fetcher:  fetcher,
		results:  results,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
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
		case j, ok := <-jobs:
			if !ok {
				return
			}
			r := w.process(ctx, j)
			select {
			case w.results <- r:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) Result {
	start := time.Now()
	rows, err := w.fetcher.WeekStats(ctx, j.Season, j.Week)
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordFetchJob("error", float64(elapsed.Milliseconds()))
		w.logger.Warn(ctx, "week fetch failed, using empty week",
			logger.Int("season", j.Season),
			logger.Int("week", j.Week),
			logger.Error(err),
		)
		return Result{Season: j.Season, Week: j.Week, Err: err, Elapsed: elapsed}
	}

	metrics.RecordFetchJob("ok", float64(elapsed.Milliseconds()))
	w.logger.Debug(ctx, "week fetched",
		logger.Int("week", j.Week),
		logger.Int("rows", len(rows)),
		logger.Duration("took", elapsed),
	)
	return Result{Season: j.Season, Week: j.Week, Rows: rows, Elapsed: elapsed}
}

// Pool manages multiple workers sharing one queue and one results channel.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	results chan Result
	wg      sync.WaitGroup
	logger  logger.Logger
}

// NewPool creates a worker pool. Results are buffered up to resultBuffer.
func NewPool(workerCount int, q Queue, fetcher Fetcher, resultBuffer int) *Pool {
	if workerCount < 1 {
		workerCount = defaultWorkerCount
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		results: make(chan Result, max(0, resultBuffer)),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, fetcher, p.results, WithName("worker-"+strconv.Itoa(i)))
	}
	return p
}

// Results is closed once every worker has exited.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	metrics.UpdateWorkerActive(len(p.workers))
	p.wg.Add(len(p.workers))
	for _, w := range p.workers {
		go func(w *InMemoryWorker) {
			defer p.wg.Done()
			w.Run(ctx)
		}(w)
	}
	go func() {
		p.wg.Wait()
		metrics.UpdateWorkerActive(0)
		close(p.results)
	}()
}

// Shutdown closes the queue and waits for workers to exit.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}

// FetchWeeks fetches every week through a fresh queue and pool and returns
// one result per week, ordered by week ascending. Failed weeks carry Err and
// no rows; the only returned error is context cancellation.
func FetchWeeks(ctx context.Context, fetcher Fetcher, season int, weeks []int, workerCount int) ([]Result, error) {
	q := queue.NewInMemoryQueue(queue.WithCapacity(max(1, len(weeks))))
	pool := NewPool(workerCount, q, fetcher, len(weeks))

	for _, w := range weeks {
		if !q.Enqueue(ctx, queue.Job{Season: season, Week: w}) {
			_ = q.Close()
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("enqueue week %d: %w", w, ErrQueueRejected)
		}
	}
	_ = q.Close()
	pool.Start(ctx)

	results := make([]Result, 0, len(weeks))
	for r := range pool.Results() {
		results = append(results, r)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Week < results[j].Week })
	return results, nil
}
