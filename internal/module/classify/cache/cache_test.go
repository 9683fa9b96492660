package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

// A nil client degrades every operation to a no-op miss, the same behavior
// an unreachable redis server produces through a real client's errors. This
// is what lets the example and anchor caches stay optional infrastructure.
func TestStore_NilClientAlwaysMisses(t *testing.T) {
	store := NewStore(nil, time.Minute)
	userID := uuid.New()

	var dest map[string]int
	found := store.Get(context.Background(), "prefix", userID, &dest)
	assert.False(t, found)

	assert.NotPanics(t, func() {
		store.Set(context.Background(), "prefix", userID, map[string]int{"a": 1})
		store.Invalidate(context.Background(), "prefix", userID)
	})
}

func TestCacheKey_IncludesPrefixAndUser(t *testing.T) {
	userID := uuid.New()
	key := cacheKey("classify:example:matrix", userID)
	assert.Equal(t, "classify:example:matrix:"+userID.String(), key)
}
