package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributedLimiter_NilClientNeverBlocks(t *testing.T) {
	l := newDistributedLimiter(nil, time.Hour)

	done := make(chan error, 1)
	go func() { done <- l.wait(context.Background()) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("wait blocked with no redis client configured")
	}
}

func TestDistributedLimiter_NilClientIgnoresCancelledContext(t *testing.T) {
	l := newDistributedLimiter(nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.wait(ctx)
	assert.NoError(t, err)
}
