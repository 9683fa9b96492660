package service

import (
	"context"
	"testing"

	accountdomain "ledgersync/internal/module/accounting/account/domain"
	accountservice "ledgersync/internal/module/accounting/account/service"
	"ledgersync/internal/module/banksync/mapping/domain"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) FindByIBAN(ctx context.Context, userID uuid.UUID, iban string) (*domain.AccountMapping, error) {
	args := m.Called(ctx, userID, iban)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountMapping), args.Error(1)
}

func (m *mockRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.AccountMapping, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.AccountMapping), args.Error(1)
}

func (m *mockRepository) Save(ctx context.Context, mapping *domain.AccountMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

type mockAccounts struct {
	mock.Mock
}

func (m *mockAccounts) CreateAccount(ctx context.Context, userID uuid.UUID, req accountservice.CreateAccountRequest) (*accountdomain.Account, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountdomain.Account), args.Error(1)
}

func (m *mockAccounts) GetByID(ctx context.Context, id, userID uuid.UUID) (*accountdomain.Account, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountdomain.Account), args.Error(1)
}

func (m *mockAccounts) GetByAccountNumber(ctx context.Context, userID uuid.UUID, accountNumber string) (*accountdomain.Account, error) {
	args := m.Called(ctx, userID, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountdomain.Account), args.Error(1)
}

func (m *mockAccounts) ListByUserID(ctx context.Context, userID uuid.UUID, filter accountdomain.ListFilter) ([]accountdomain.Account, int64, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]accountdomain.Account), args.Get(1).(int64), args.Error(2)
}

func (m *mockAccounts) UpdateAccount(ctx context.Context, id, userID uuid.UUID, req accountservice.UpdateAccountRequest) (*accountdomain.Account, error) {
	args := m.Called(ctx, id, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountdomain.Account), args.Error(1)
}

func (m *mockAccounts) SetParent(ctx context.Context, id, userID uuid.UUID, parentID *uuid.UUID) (*accountdomain.Account, error) {
	args := m.Called(ctx, id, userID, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*accountdomain.Account), args.Error(1)
}

func (m *mockAccounts) Deactivate(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func TestResolveOrCreate_ReturnsExistingMappingWithoutCreating(t *testing.T) {
	repo := &mockRepository{}
	accounts := &mockAccounts{}
	userID := uuid.New()
	accountID := uuid.New()

	repo.On("FindByIBAN", mock.Anything, userID, "DE123").Return(&domain.AccountMapping{AccountID: accountID}, nil)
	accounts.On("GetByID", mock.Anything, accountID, userID).Return(&accountdomain.Account{ID: accountID}, nil)

	svc := NewService(repo, accounts, "EUR")
	account, created, err := svc.ResolveOrCreate(context.Background(), userID, "DE123", "Checking")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, accountID, account.ID)
	accounts.AssertNotCalled(t, "CreateAccount", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveOrCreate_CreatesAccountInConfiguredDefaultCurrency(t *testing.T) {
	repo := &mockRepository{}
	accounts := &mockAccounts{}
	userID := uuid.New()
	newAccount := &accountdomain.Account{ID: uuid.New()}

	repo.On("FindByIBAN", mock.Anything, userID, "DE456").Return(nil, shared.ErrNotFound)
	accounts.On("CreateAccount", mock.Anything, userID, mock.MatchedBy(func(req accountservice.CreateAccountRequest) bool {
		return req.Currency == "CHF" && req.AccountNumber == "DE456"
	})).Return(newAccount, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(m *domain.AccountMapping) bool {
		return m.AccountID == newAccount.ID && m.IBAN == "DE456"
	})).Return(nil)

	svc := NewService(repo, accounts, "CHF")
	account, created, err := svc.ResolveOrCreate(context.Background(), userID, "DE456", "Savings")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, newAccount.ID, account.ID)
	repo.AssertExpectations(t)
	accounts.AssertExpectations(t)
}

func TestResolveOrCreate_PropagatesLookupError(t *testing.T) {
	repo := &mockRepository{}
	accounts := &mockAccounts{}
	userID := uuid.New()

	repo.On("FindByIBAN", mock.Anything, userID, "DE789").Return(nil, assert.AnError)

	svc := NewService(repo, accounts, "EUR")
	account, created, err := svc.ResolveOrCreate(context.Background(), userID, "DE789", "Checking")

	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, created)
	assert.Nil(t, account)
}
