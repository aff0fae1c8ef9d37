// Package cache stores encoded trace documents and rendered step artifacts.
//
// Three backends implement [Cache]: [NullCache] (caching disabled),
// [FileCache] for the CLI and [RedisCache] for shared deployments of the
// HTTP server. Keys come from a [Keyer] so that every caller derives the
// same key from the same run configuration.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the value and true on a hit. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}
