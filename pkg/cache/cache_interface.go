package cache

import (
	"context"
	"time"
)

// Cache is the contract for the cache layer. The Redis implementation lives in
// internal/infrastructure/cache; an in-memory fake is enough for tests.
type Cache interface {
	// Get unmarshals the cached value for key into dest.
	// found=false means a cache miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value under key with the given TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete removes keys from the cache.
	Delete(ctx context.Context, keys ...string) error

	// Ping verifies connectivity.
	Ping(ctx context.Context) error
}
