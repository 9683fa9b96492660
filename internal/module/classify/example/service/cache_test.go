package service

import (
	"context"
	"testing"
	"time"

	"ledgersync/internal/module/classify/cache"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubInnerService struct {
	matrix       *Matrix
	err          error
	appendCalled bool
}

func (s *stubInnerService) GetMatrix(ctx context.Context, userID uuid.UUID) (*Matrix, error) {
	return s.matrix, s.err
}

func (s *stubInnerService) Append(ctx context.Context, userID, accountID uuid.UUID, text string, vector []float32) error {
	s.appendCalled = true
	return s.err
}

func TestCachingService_GetMatrix_FallsThroughOnCacheMiss(t *testing.T) {
	inner := &stubInnerService{matrix: &Matrix{AccountIDs: []uuid.UUID{uuid.New()}}}
	store := cache.NewStore(nil, time.Minute)
	svc := NewCachingService(inner, store)

	matrix, err := svc.GetMatrix(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, inner.matrix, matrix)
}

func TestCachingService_Append_InvalidatesAndDoesNotPanic(t *testing.T) {
	inner := &stubInnerService{}
	store := cache.NewStore(nil, time.Minute)
	svc := NewCachingService(inner, store)

	err := svc.Append(context.Background(), uuid.New(), uuid.New(), "text", []float32{0.1})

	require.NoError(t, err)
	assert.True(t, inner.appendCalled)
}

func TestCachingService_Append_PropagatesInnerError(t *testing.T) {
	inner := &stubInnerService{err: assert.AnError}
	store := cache.NewStore(nil, time.Minute)
	svc := NewCachingService(inner, store)

	err := svc.Append(context.Background(), uuid.New(), uuid.New(), "text", []float32{0.1})

	assert.ErrorIs(t, err, assert.AnError)
}
