package service

import (
	"context"

	"ledgersync/internal/module/classify/cache"

	"github.com/google/uuid"
)

const matrixCacheKey = "classify:anchor:matrix"

// CachingService wraps a Service with a redis-backed cache of GetMatrix
// results, invalidated whenever RecomputeAll runs so the nightly job's new
// anchors are visible immediately rather than waiting out the TTL.
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

func (c *CachingService) RecomputeAll(ctx context.Context, userID uuid.UUID) error {
	if err := c.inner.RecomputeAll(ctx, userID); err != nil {
		return err
	}
	c.store.Invalidate(ctx, matrixCacheKey, userID)
	return nil
}
