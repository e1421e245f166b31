// Package service orchestrates the stats pipeline: it pulls provider data,
// runs the pure aggregation stages and publishes snapshot documents.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/gridiron/internal/adapters/cache"
	workerpool "github.com/okian/gridiron/internal/adapters/mq/worker"
	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/snapshot"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// Source is everything the pipeline reads from the provider.
type Source interface {
	workerpool.Fetcher
	cache.Source
	League(ctx context.Context) (model.League, error)
	Users(ctx context.Context) ([]model.User, error)
	Rosters(ctx context.Context) ([]model.Roster, error)
	Matchups(ctx context.Context, week int) ([]model.Matchup, error)
	Transactions(ctx context.Context, week int) ([]model.Transaction, error)
	Trending(ctx context.Context, lookbackHours, limit int) model.Trending
}

// CatalogProvider returns the player catalog and never fails.
type CatalogProvider interface {
	Catalog(ctx context.Context) model.Catalog
}

// Service runs the pipeline stages and serves stored snapshots.
type Service struct {
	// runMu serializes every operation that writes snapshots.
	runMu sync.Mutex

	mu      sync.RWMutex
	lastRun *RunReport
	runs    int
	closed  bool

	// background runs derive from baseCtx; Shutdown cancels it.
	baseCtx context.Context
	stop    context.CancelFunc
	bg      sync.WaitGroup

	store   repository.Store
	source  Source
	catalog CatalogProvider

	leagueID         string
	workerCount      int
	scoringOverrides map[string]float64
	trendingLookback int
	trendingLimit    int

	now    func() time.Time
	newID  func() string
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the snapshot store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithSource sets the provider client.
func WithSource(src Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithCatalog overrides the default store-backed catalog cache.
func WithCatalog(c CatalogProvider) Option {
	return func(s *Service) {
		s.catalog = c
	}
}

// WithLeagueID sets the league published by Publish and TransactionHistory.
func WithLeagueID(id string) Option {
	return func(s *Service) {
		s.leagueID = id
	}
}

// WithWorkerCount sets the number of concurrent week fetches.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithScoringOverrides sets weights applied over the league's settings.
func WithScoringOverrides(overrides map[string]float64) Option {
	return func(s *Service) {
		s.scoringOverrides = overrides
	}
}

// WithTrending sets the trending lookback window and list size.
func WithTrending(lookbackHours, limit int) Option {
	return func(s *Service) {
		if lookbackHours > 0 {
			s.trendingLookback = lookbackHours
		}
		if limit > 0 {
			s.trendingLimit = limit
		}
	}
}

// WithClock sets the time source for generated_at stamps and dated keys.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. A store and a source are required.
func New(opts ...Option) (*Service, error) {
	s := &Service{
		workerCount:      runtime.NumCPU(),
		trendingLookback: 24,
		trendingLimit:    100,
		now:              time.Now,
		newID:            uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil || s.source == nil {
		return nil, ErrNotConfigured
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("pipeline")
	}
	if s.catalog == nil {
		s.catalog = cache.NewCatalogCache(cache.NewStoreBackend(s.store), s.source)
	}
	s.baseCtx, s.stop = context.WithCancel(context.Background())
	return s, nil
}

// Snapshot returns the stored document under key.
func (s *Service) Snapshot(ctx context.Context, key string) ([]byte, error) {
	return s.store.Get(ctx, key)
}

// Snapshots lists stored keys under prefix.
func (s *Service) Snapshots(ctx context.Context, prefix string) ([]string, error) {
	return s.store.Keys(ctx, prefix)
}

// BuildStats builds week tables for weeks 1..week plus the season-to-date,
// usage and defense-vs-position tables.
func (s *Service) BuildStats(ctx context.Context, season, week int) (StatsReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.buildStats(ctx, s.runLogger("stats"), season, week)
}

// BuildValues builds the dated trade value table from the stored
// season-to-date table.
func (s *Service) BuildValues(ctx context.Context, season int, date time.Time) (ValuesReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.buildValues(ctx, s.runLogger("values"), season, date)
}

// Publish writes the league glue datasets for a week.
func (s *Service) Publish(ctx context.Context, season, week int) (PublishReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.publish(ctx, s.runLogger("publish"), season, week)
}

// TransactionHistory writes every week's moves up to maxWeek and the
// season-long history.
func (s *Service) TransactionHistory(ctx context.Context, season, maxWeek int) (HistoryReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.transactionHistory(ctx, s.runLogger("transactions"), season, maxWeek)
}

// Run executes stats, values and, when a league is configured, publish.
func (s *Service) Run(ctx context.Context, season, week int, date time.Time) (RunReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.run(ctx, s.newID(), season, week, date)
}

// StartRun starts Run in the background and returns its id, or
// ErrRunInProgress when another operation holds the pipeline. The run is
// cancelled by Shutdown.
func (s *Service) StartRun(season, week int, date time.Time) (string, error) {
	if !s.runMu.TryLock() {
		return "", ErrRunInProgress
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.runMu.Unlock()
		return "", ErrServiceClosed
	}
	s.bg.Add(1)
	s.mu.Unlock()

	id := s.newID()
	s.setLastRun(&RunReport{RunID: id, Status: StatusRunning, StartedAt: snapshot.Timestamp(s.now())})
	go func() {
		defer s.bg.Done()
		defer s.runMu.Unlock()
		_, _ = s.run(s.baseCtx, id, season, week, date)
	}()
	return id, nil
}

// Shutdown rejects new background runs, cancels the one in flight and waits
// for it to record its report or for ctx to expire.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.stop()

	done := make(chan struct{})
	go func() {
		s.bg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.logger.Warn(ctx, "background run did not stop in time")
		return fmt.Errorf("shutdown: %w", ctx.Err())
	}
}

// LastRun returns the most recent run report, if any.
func (s *Service) LastRun() (RunReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRun == nil {
		return RunReport{}, false
	}
	return *s.lastRun, true
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"leagueID":    s.leagueID,
		"workerCount": s.workerCount,
		"runs":        s.runs,
	}
	if s.lastRun != nil {
		stats["lastRunID"] = s.lastRun.RunID
		stats["lastRunStatus"] = s.lastRun.Status
		stats["lastRunStartedAt"] = s.lastRun.StartedAt
		if s.lastRun.FinishedAt != "" {
			stats["lastRunFinishedAt"] = s.lastRun.FinishedAt
		}
	}
	return stats
}

func (s *Service) run(ctx context.Context, id string, season, week int, date time.Time) (RunReport, error) {
	log := s.logger.With(logger.String("run_id", id))
	report := RunReport{RunID: id, Status: StatusRunning, StartedAt: snapshot.Timestamp(s.now())}
	s.setLastRun(&report)
	log.Info(ctx, "pipeline run started", logger.Int("season", season), logger.Int("week", week))

	fail := func(stage string, err error) (RunReport, error) {
		report.Status = StatusFailed
		report.Error = fmt.Sprintf("%s: %v", stage, err)
		report.FinishedAt = snapshot.Timestamp(s.now())
		s.finishRun(&report)
		log.Error(ctx, "pipeline run failed", logger.String("stage", stage), logger.Error(err))
		return report, fmt.Errorf("%s: %w", stage, err)
	}

	stats, err := timed("stats", func() (StatsReport, error) { return s.buildStats(ctx, log, season, week) })
	if err != nil {
		return fail("stats", err)
	}
	report.Stats = &stats

	values, err := timed("values", func() (ValuesReport, error) { return s.buildValues(ctx, log, season, date) })
	if err != nil {
		return fail("values", err)
	}
	report.Values = &values

	if s.leagueID != "" {
		pub, err := timed("publish", func() (PublishReport, error) { return s.publish(ctx, log, season, week) })
		if err != nil {
			return fail("publish", err)
		}
		report.Publish = &pub
	} else {
		log.Info(ctx, "no league configured, skipping publish")
	}

	report.Status = StatusSucceeded
	report.FinishedAt = snapshot.Timestamp(s.now())
	s.finishRun(&report)
	metrics.MarkRunCompleted(s.now().Unix())
	log.Info(ctx, "pipeline run finished",
		logger.Int("week_rows", stats.WeekRows),
		logger.Int("season_rows", stats.SeasonRows),
		logger.Int("values", values.Rows),
	)
	return report, nil
}

func timed[T any](stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	out, err := fn()
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordRun(stage, status, float64(time.Since(start).Milliseconds()))
	return out, err
}

func (s *Service) setLastRun(r *RunReport) {
	cp := *r
	s.mu.Lock()
	s.lastRun = &cp
	s.mu.Unlock()
}

func (s *Service) finishRun(r *RunReport) {
	cp := *r
	s.mu.Lock()
	s.lastRun = &cp
	s.runs++
	s.mu.Unlock()
}

func (s *Service) runLogger(stage string) logger.Logger {
	return s.logger.With(logger.String("run_id", s.newID()), logger.String("stage", stage))
}

// put encodes doc and writes it under key.
func (s *Service) put(ctx context.Context, dataset, key string, doc any) error {
	b, err := snapshot.Encode(doc)
	if err != nil {
		metrics.RecordSnapshotWrite(dataset, "encode_error", 0)
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.store.Put(ctx, key, b); err != nil {
		metrics.RecordSnapshotWrite(dataset, "error", len(b))
		return fmt.Errorf("write %s: %w", key, err)
	}
	metrics.RecordSnapshotWrite(dataset, "ok", len(b))
	return nil
}
