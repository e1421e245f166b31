// Package repository stores published snapshot documents under logical keys.
package repository

import (
	"context"
	"strings"
)

// Store is a key-value store of encoded snapshot documents.
//
// Keys are slash-separated logical names such as "player_stats/2025/week_06";
// each backend maps them onto its own layout.
type Store interface {
	// Put writes the document under key, replacing any previous version.
	Put(ctx context.Context, key string, doc []byte) error

	// Get returns the document stored under key.
	// Returns ErrNotFound if the key is unknown.
	Get(ctx context.Context, key string) ([]byte, error)

	// Keys lists stored keys beginning with prefix, sorted ascending.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// ValidateKey rejects keys that are empty, absolute, or escape the key space.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
		return ErrInvalidKey
	}
	for _, part := range strings.Split(key, "/") {
		if part == "" || part == "." || part == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}
