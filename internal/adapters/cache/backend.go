package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/gridiron/internal/adapters/repository"
	"github.com/okian/gridiron/internal/domain/snapshot"
)

// Backend persists the encoded catalog document.
type Backend interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, doc []byte) error
}

// StoreBackend keeps the catalog as a snapshot document.
type StoreBackend struct {
	store repository.Store
	key   string
}

// NewStoreBackend stores the catalog under snapshot.CatalogKey.
func NewStoreBackend(store repository.Store) *StoreBackend {
	return &StoreBackend{store: store, key: snapshot.CatalogKey}
}

// Load implements Backend.
func (b *StoreBackend) Load(ctx context.Context) ([]byte, error) {
	doc, err := b.store.Get(ctx, b.key)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrMiss
	}
	return doc, err
}

// Save implements Backend.
func (b *StoreBackend) Save(ctx context.Context, doc []byte) error {
	return b.store.Put(ctx, b.key, doc)
}

// RedisCmdable is the subset of the go-redis client the backend calls.
type RedisCmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisBackend keeps the catalog in a single redis key. The key has no
// expiry so a stale copy stays available when the provider is down.
type RedisBackend struct {
	client RedisCmdable
	key    string
}

// DefaultRedisKey is where the catalog lives in redis.
const DefaultRedisKey = "gridiron:players_nfl"

// NewRedisBackend wraps an existing client.
func NewRedisBackend(client RedisCmdable, key string) *RedisBackend {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisBackend{client: client, key: key}
}

// OpenRedisBackend connects using a redis:// URL.
func OpenRedisBackend(ctx context.Context, rawURL string) (*RedisBackend, *redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisBackend(client, DefaultRedisKey), client, nil
}

// Load implements Backend.
func (b *RedisBackend) Load(ctx context.Context) ([]byte, error) {
	doc, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", b.key, err)
	}
	return doc, nil
}

// Save implements Backend.
func (b *RedisBackend) Save(ctx context.Context, doc []byte) error {
	if err := b.client.Set(ctx, b.key, doc, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", b.key, err)
	}
	return nil
}
