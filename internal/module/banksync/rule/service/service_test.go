package service

import (
	"context"
	"testing"

	"ledgersync/internal/module/banksync/rule/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRuleRepository struct {
	mock.Mock
}

func (m *mockRuleRepository) ListByUserIDOrderedByPriority(ctx context.Context, userID uuid.UUID) ([]domain.Rule, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rule), args.Error(1)
}

func (m *mockRuleRepository) IncrementMatchCount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockRuleRepository) Save(ctx context.Context, rule *domain.Rule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func TestResolve_ReturnsFirstMatchingRuleAndIncrementsCount(t *testing.T) {
	userID := uuid.New()
	noMatch := domain.Rule{ID: uuid.New(), Active: true, PatternType: domain.PatternCounterpartyName, PatternValue: "spotify"}
	match := domain.Rule{ID: uuid.New(), Active: true, PatternType: domain.PatternCounterpartyName, PatternValue: "netflix"}

	repo := new(mockRuleRepository)
	repo.On("ListByUserIDOrderedByPriority", mock.Anything, userID).Return([]domain.Rule{noMatch, match}, nil)
	repo.On("IncrementMatchCount", mock.Anything, match.ID).Return(nil)

	svc := NewService(repo)
	result, err := svc.Resolve(context.Background(), userID, domain.MatchInput{CounterpartyName: "NETFLIX.COM"})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, match.ID, result.ID)
	repo.AssertExpectations(t)
}

func TestResolve_ReturnsNilWhenNoRuleMatches(t *testing.T) {
	userID := uuid.New()
	repo := new(mockRuleRepository)
	repo.On("ListByUserIDOrderedByPriority", mock.Anything, userID).Return([]domain.Rule{
		{Active: true, PatternType: domain.PatternCounterpartyName, PatternValue: "spotify"},
	}, nil)

	svc := NewService(repo)
	result, err := svc.Resolve(context.Background(), userID, domain.MatchInput{CounterpartyName: "netflix"})
	require.NoError(t, err)
	assert.Nil(t, result)
	repo.AssertNotCalled(t, "IncrementMatchCount", mock.Anything, mock.Anything)
}

func TestResolve_PropagatesRepositoryError(t *testing.T) {
	userID := uuid.New()
	repo := new(mockRuleRepository)
	repo.On("ListByUserIDOrderedByPriority", mock.Anything, userID).Return(nil, assert.AnError)

	svc := NewService(repo)
	result, err := svc.Resolve(context.Background(), userID, domain.MatchInput{})
	require.Error(t, err)
	assert.Nil(t, result)
}
