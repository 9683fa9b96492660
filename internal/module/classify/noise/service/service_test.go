package service

import (
	"context"
	"testing"
	"time"

	"ledgersync/internal/module/classify/cache"
	"ledgersync/internal/module/classify/noise/domain"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Model, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Model), args.Error(1)
}

func (m *mockRepository) Save(ctx context.Context, model *domain.Model) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *mockRepository) ListAll(ctx context.Context) ([]domain.Model, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Model), args.Error(1)
}

func TestClean_BuildsNewModelForUnknownUser(t *testing.T) {
	repo := &mockRepository{}
	userID := uuid.New()
	repo.On("FindByUserID", mock.Anything, userID).Return(nil, shared.ErrNotFound)

	svc := NewService(repo, nil, 0.3, 100)
	cleaned, err := svc.Clean(context.Background(), userID, "Vielen Dank")

	require.NoError(t, err)
	assert.Equal(t, "vielen dank", cleaned)
	repo.AssertExpectations(t)
}

func TestClean_DropsTokensAboveThreshold(t *testing.T) {
	repo := &mockRepository{}
	userID := uuid.New()

	model := domain.New(userID)
	model.Observe([]string{"vielen", "dank", "rechnung"}, 0)
	model.Observe([]string{"vielen", "dank", "miete"}, 0)
	model.Observe([]string{"vielen", "dank", "strom"}, 0)
	repo.On("FindByUserID", mock.Anything, userID).Return(model, nil)

	svc := NewService(repo, nil, 0.5, 100)
	cleaned, err := svc.Clean(context.Background(), userID, "vielen dank rechnung")

	require.NoError(t, err)
	assert.Equal(t, "rechnung", cleaned)
}

func TestObserve_PersistsUpdatedModel(t *testing.T) {
	repo := &mockRepository{}
	userID := uuid.New()
	repo.On("FindByUserID", mock.Anything, userID).Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(m *domain.Model) bool {
		return m.TotalDocuments == 2
	})).Return(nil)

	svc := NewService(repo, nil, 0.3, 100)
	err := svc.Observe(context.Background(), userID, []string{"vielen dank", "miete august"})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestGC_PrunesOnlyModelsThatChange(t *testing.T) {
	repo := &mockRepository{}

	untouched := domain.New(uuid.New())
	untouched.Observe([]string{"rechnung"}, 0)
	untouched.Observe([]string{"rechnung"}, 0)

	pruned := domain.New(uuid.New())
	pruned.Observe([]string{"vielen", "dank"}, 0)

	repo.On("ListAll", mock.Anything).Return([]domain.Model{*untouched, *pruned}, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(m *domain.Model) bool {
		return m.UserID == pruned.UserID
	})).Return(nil)

	svc := NewService(repo, nil, 0.3, 100)
	usersPruned, tokensRemoved, err := svc.GC(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, 1, usersPruned)
	assert.Equal(t, 2, tokensRemoved)
	repo.AssertExpectations(t)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.MatchedBy(func(m *domain.Model) bool {
		return m.UserID == untouched.UserID
	}))
}

func TestGC_PropagatesListError(t *testing.T) {
	repo := &mockRepository{}
	repo.On("ListAll", mock.Anything).Return([]domain.Model(nil), assert.AnError)

	svc := NewService(repo, nil, 0.3, 100)
	usersPruned, tokensRemoved, err := svc.GC(context.Background(), 2)

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, usersPruned)
	assert.Equal(t, 0, tokensRemoved)
}

func TestClean_WithNilBackedCacheStoreStillHitsRepository(t *testing.T) {
	repo := &mockRepository{}
	userID := uuid.New()
	repo.On("FindByUserID", mock.Anything, userID).Return(nil, shared.ErrNotFound)

	store := cache.NewStore(nil, time.Minute)
	svc := NewService(repo, store, 0.3, 100)

	cleaned, err := svc.Clean(context.Background(), userID, "vielen dank")

	require.NoError(t, err)
	assert.Equal(t, "vielen dank", cleaned)
	repo.AssertExpectations(t)
}

func TestObserve_WithNilBackedCacheStoreDoesNotPanicOnInvalidate(t *testing.T) {
	repo := &mockRepository{}
	userID := uuid.New()
	repo.On("FindByUserID", mock.Anything, userID).Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	store := cache.NewStore(nil, time.Minute)
	svc := NewService(repo, store, 0.3, 100)

	err := svc.Observe(context.Background(), userID, []string{"vielen dank"})
	require.NoError(t, err)
}
