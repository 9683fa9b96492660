package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// distributedLimiter enforces the search rate limit across every process
// sharing the same redis instance, not just within one: the in-process
// rate.Limiter only throttles a single server, but the search backend's own
// quota is per API key, shared by every instance. Backed by SETNX on a
// fixed key with the rate interval as its own TTL — whichever process wins
// the SETNX gets to search, everyone else waits out the key's remaining
// TTL and retries.
type distributedLimiter struct {
	client   *redis.Client
	interval time.Duration
}

func newDistributedLimiter(client *redis.Client, interval time.Duration) *distributedLimiter {
	return &distributedLimiter{client: client, interval: interval}
}

const rateLimitKey = "classify:enrichment:search-gate"

// wait blocks until this process holds the shared search gate, or returns
// immediately if no redis client is configured: a single-instance
// deployment already gets a per-process limit from rate.Limiter and needs
// nothing more.
func (l *distributedLimiter) wait(ctx context.Context) error {
	if l.client == nil {
		return nil
	}

	for {
		ok, err := l.client.SetNX(ctx, rateLimitKey, "1", l.interval).Result()
		if err != nil {
			// redis unreachable: degrade to the in-process limiter alone
			// rather than blocking classification on a cache outage.
			return nil
		}
		if ok {
			return nil
		}

		ttl, err := l.client.PTTL(ctx, rateLimitKey).Result()
		if err != nil || ttl <= 0 {
			return nil
		}

		select {
		case <-time.After(ttl):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
