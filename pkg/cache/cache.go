// Package cache stores decoded artifacts between simtrans runs.
//
// Mesh files are the expensive part of reading a robot description: a
// COLLADA file can be many megabytes of XML. The mesh registry keys decoded
// meshes by the SHA-256 of the file contents, so an unchanged mesh is decoded
// once and served from the cache afterwards regardless of its path.
//
// Two implementations are provided:
//   - [FileCache]: JSON entries in a hash-sharded directory (CLI default)
//   - [NullCache]: stores nothing (--no-cache, tests)
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value for key. The bool reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}
