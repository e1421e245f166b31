// Package cache keeps the player catalog fresh without refetching it every run.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/okian/gridiron/internal/domain/model"
	"github.com/okian/gridiron/internal/domain/snapshot"
	"github.com/okian/gridiron/pkg/logger"
	"github.com/okian/gridiron/pkg/metrics"
)

// DefaultTTL is how long a fetched catalog is considered fresh.
const DefaultTTL = 12 * time.Hour

// Source fetches the catalog from the provider.
type Source interface {
	Players(ctx context.Context) (model.Catalog, error)
}

// CatalogCache serves the catalog from its backend while fresh and refetches
// otherwise. When the provider fails it falls back to the stale copy, and to
// an empty catalog when there is none.
type CatalogCache struct {
	backend Backend
	source  Source
	ttl     time.Duration
	now     func() time.Time
	logger  logger.Logger
}

// Option configures a CatalogCache.
type Option func(*CatalogCache)

// WithTTL sets the freshness window.
func WithTTL(ttl time.Duration) Option {
	return func(c *CatalogCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(c *CatalogCache) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCatalogCache builds a cache over backend and source.
func NewCatalogCache(backend Backend, source Source, opts ...Option) *CatalogCache {
	c := &CatalogCache{
		backend: backend,
		source:  source,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  logger.Get().Named("catalog-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Catalog returns the player catalog. It never fails.
func (c *CatalogCache) Catalog(ctx context.Context) model.Catalog {
	cached, fetchedAt, ok := c.load(ctx)
	if ok && c.now().Sub(fetchedAt) < c.ttl {
		metrics.RecordCatalogCache("hit")
		return cached
	}

	fresh, err := c.source.Players(ctx)
	if err != nil {
		if ok {
			metrics.RecordCatalogCache("stale")
			c.logger.Warn(ctx, "catalog source unavailable, serving stale copy",
				logger.String("fetched_at", snapshot.Timestamp(fetchedAt)),
				logger.Error(err),
			)
			return cached
		}
		metrics.RecordCatalogCache("empty")
		c.logger.Warn(ctx, "catalog source unavailable and nothing cached", logger.Error(err))
		return model.Catalog{}
	}

	metrics.RecordCatalogCache("miss")
	doc, err := snapshot.Encode(snapshot.CachedCatalog{FetchedAt: snapshot.Timestamp(c.now()), Players: fresh})
	if err == nil {
		err = c.backend.Save(ctx, doc)
	}
	if err != nil {
		c.logger.Warn(ctx, "failed to persist catalog", logger.Error(err))
	}
	return fresh
}

func (c *CatalogCache) load(ctx context.Context) (model.Catalog, time.Time, bool) {
	doc, err := c.backend.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			c.logger.Warn(ctx, "catalog cache read failed", logger.Error(err))
		}
		return nil, time.Time{}, false
	}
	var cached snapshot.CachedCatalog
	if err := snapshot.Decode(doc, &cached); err != nil {
		c.logger.Warn(ctx, "catalog cache unreadable", logger.Error(err))
		return nil, time.Time{}, false
	}
	fetchedAt, err := time.Parse(time.RFC3339, cached.FetchedAt)
	if err != nil {
		return nil, time.Time{}, false
	}
	if cached.Players == nil {
		cached.Players = model.Catalog{}
	}
	return cached.Players, fetchedAt, true
}
