package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/okian/gridiron/internal/adapters/cache"
	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/adapters/source/sleeper"
	app "github.com/okian/gridiron/internal/app"
	"github.com/okian/gridiron/internal/config"
	"github.com/okian/gridiron/pkg/logger"
)

// application holds the wired service and what must be closed with it.
type application struct {
	svc     *app.Service
	store   repository.Store
	client  *sleeper.Client
	closers []io.Closer
}

func (a *application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i].Close())
	}
	return errors.Join(errs...)
}

func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	a := &application{}
	log := logger.Get()

	store, closer, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.store = store
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	a.client = sleeper.NewClient(
		sleeper.WithBaseURL(cfg.BaseURL),
		sleeper.WithLeagueID(cfg.LeagueID),
		sleeper.WithTimeout(cfg.HTTPTimeout()),
		sleeper.WithMaxRetries(cfg.MaxRetries),
		sleeper.WithRateLimit(cfg.RequestsPerSecond, cfg.RequestBurst),
		sleeper.WithBreaker(uint32(cfg.BreakerFailureThreshold), cfg.BreakerOpenTimeout()), //nolint:gosec // validated positive
	)

	backend := cache.Backend(cache.NewStoreBackend(store))
	if cfg.RedisURL != "" {
		rb, client, err := cache.OpenRedisBackend(ctx, cfg.RedisURL)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("open redis: %w", err)
		}
		a.closers = append(a.closers, client)
		backend = rb
		log.Info(ctx, "player catalog cached in redis")
	}
	catalog := cache.NewCatalogCache(backend, a.client, cache.WithTTL(cfg.CatalogTTL()))

	a.svc, err = app.New(
		app.WithStore(store),
		app.WithSource(a.client),
		app.WithCatalog(catalog),
		app.WithLeagueID(cfg.LeagueID),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithScoringOverrides(cfg.ScoringOverrides),
		app.WithTrending(cfg.TrendingLookbackHours, cfg.TrendingLimit),
		app.WithLogger(log.Named("pipeline")),
	)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

// openStore builds the configured snapshot store. The closer is nil when
// the backend holds no resources.
func openStore(ctx context.Context, cfg *config.Config) (repository.Store, io.Closer, error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		s, err := repository.OpenSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, s, nil
	case config.BackendDynamoDB:
		s, err := repository.OpenDynamoStore(ctx, cfg.AWSRegion, cfg.DynamoDBTable)
		if err != nil {
			return nil, nil, fmt.Errorf("open dynamodb store: %w", err)
		}
		return s, nil, nil
	default:
		return repository.NewFileStore(cfg.DataDir), nil, nil
	}
}
