// Package cache provides a thin redis-backed JSON cache for the
// classification pipeline's per-user context: the example and anchor
// matrices the example and anchor tiers scan on every classification call.
// Both are rebuilt from Postgres on a cache miss, so a redis outage only
// costs latency, never correctness.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Store wraps a redis client with the get/set/invalidate shape the example
// and anchor matrix caches both need.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore builds a cache store. ttl is how long a matrix is trusted before
// it is recomputed anyway, a backstop for invalidations this process never
// saw (another instance's write).
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func cacheKey(prefix string, userID uuid.UUID) string {
	return prefix + ":" + userID.String()
}

// Get unmarshals the cached value for userID into dest, reporting whether
// it was found. Any redis error, including an unreachable server, is
// treated as a miss rather than propagated: the cache is an optimization,
// not a dependency.
func (s *Store) Get(ctx context.Context, prefix string, userID uuid.UUID, dest interface{}) bool {
	if s.client == nil {
		return false
	}
	raw, err := s.client.Get(ctx, cacheKey(prefix, userID)).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false
	}
	return true
}

// Set stores value for userID with the store's configured TTL. Failures are
// swallowed for the same reason Get treats errors as misses.
func (s *Store) Set(ctx context.Context, prefix string, userID uuid.UUID, value interface{}) {
	if s.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	s.client.Set(ctx, cacheKey(prefix, userID), raw, s.ttl)
}

// Invalidate drops the cached value for userID, forcing the next read to
// recompute from storage. Called whenever a write changes what the cached
// read would return: a new example appended, a fresh anchor recompute.
func (s *Store) Invalidate(ctx context.Context, prefix string, userID uuid.UUID) {
	if s.client == nil {
		return
	}
	s.client.Del(ctx, cacheKey(prefix, userID))
}
