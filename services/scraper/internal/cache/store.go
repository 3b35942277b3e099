// Package cache stores serialized scrape results between requests.
//
// Primary backend: Redis with per-key TTL (env REDIS_DSN).
// Fallback: Postgres upsert table (env DATABASE_URL).
// If neither is available, an in-memory store is used (development only).
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/nats-io/nats.go"
)

// keyPrefix namespaces every cache entry so Purge cannot touch foreign keys.
const keyPrefix = "scrape:"

// Store reads and writes scrape results. Implementations must be safe
// for concurrent use.
type Store interface {
	// Get unmarshals the entry for key into dest and reports whether it existed.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set upserts key with the store's TTL.
	Set(ctx context.Context, key string, value any) error
	// Purge drops every scrape entry.
	Purge(ctx context.Context) error
}

// Key builds the canonical cache key for one work.
func Key(catalogKey, id string) string {
	return keyPrefix + catalogKey + ":" + id
}

// NewStore creates the best available cache store: Redis > Postgres >
// in-memory (dev fallback). When isProd is true the in-memory fallback is
// not allowed and an error is returned instead. nc may be nil; it only
// feeds invalidation events to the in-memory backend.
func NewStore(redisDSN, databaseURL string, ttl time.Duration, isProd bool, nc *nats.Conn, invalidateSubject string) (Store, error) {
	if redisDSN != "" {
		return newRedisStore(redisDSN, ttl), nil
	}
	if databaseURL != "" {
		return newPostgresStore(databaseURL, ttl), nil
	}
	if isProd {
		return nil, errors.New("production requires REDIS_DSN or DATABASE_URL for the scrape cache; in-memory store is not allowed")
	}
	return newMemoryStore(ttl, nc, invalidateSubject), nil
}
