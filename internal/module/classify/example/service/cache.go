package service

import (
	"context"

	"ledgersync/internal/module/classify/cache"

	"github.com/google/uuid"
)

const matrixCacheKey = "classify:example:matrix"

// CachingService wraps a Service with a redis-backed cache of GetMatrix
// results, invalidated on every Append so a sync batch's new examples are
// visible to the very next classification call rather than the next TTL
// expiry.
type CachingService struct {
	inner Service
	store *cache.Store
}

// NewCachingService wraps inner with store's cache.
func NewCachingService(inner Service, store *cache.Store) Service {
	return &CachingService{inner: inner, store: store}
}

func (c *CachingService) GetMatrix(ctx context.Context, userID uuid.UUID) (*Matrix, error) {
	var cached Matrix
	if c.store.Get(ctx, matrixCacheKey, userID, &cached) {
		return &cached, nil
	}

	matrix, err := c.inner.GetMatrix(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.store.Set(ctx, matrixCacheKey, userID, matrix)
	return matrix, nil
}

func (c *CachingService) Append(ctx context.Context, userID, accountID uuid.UUID, text string, vector []float32) error {
	if err := c.inner.Append(ctx, userID, accountID, text, vector); err != nil {
		return err
	}
	c.store.Invalidate(ctx, matrixCacheKey, userID)
	return nil
}
