package service

import (
	"context"
	"testing"
	"time"

	accountdomain "ledgersync/internal/module/accounting/account/domain"
	transactiondomain "ledgersync/internal/module/accounting/transaction/domain"
	transactionservice "ledgersync/internal/module/accounting/transaction/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTransactionService struct {
	mock.Mock
}

func (m *mockTransactionService) ConstructDraft(ctx context.Context, userID uuid.UUID, req transactionservice.DraftRequest) (*transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) GetByID(ctx context.Context, id uuid.UUID) (*transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) ListByUserID(ctx context.Context, userID uuid.UUID, filter transactiondomain.ListFilter) ([]transactiondomain.Transaction, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transactiondomain.Transaction), args.Error(1)
}
func (m *mockTransactionService) AddEntry(ctx context.Context, txID uuid.UUID, entry transactionservice.EntryInput) (*transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) RemoveEntry(ctx context.Context, txID, entryID uuid.UUID) (*transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) ReplaceUnprotectedEntries(ctx context.Context, txID uuid.UUID, entries []transactionservice.EntryInput) (*transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) UpdateDescription(ctx context.Context, txID uuid.UUID, description string) (*transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) UpdateCounterparty(ctx context.Context, txID uuid.UUID, counterparty *string) (*transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) Post(ctx context.Context, txID uuid.UUID) (*transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) Unpost(ctx context.Context, txID uuid.UUID) (*transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) ConvertToInternalTransfer(ctx context.Context, txID, newAssetAccountID uuid.UUID, transferHash string) (*transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) StampOpeningBalance(ctx context.Context, txID uuid.UUID, iban string) (*transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) StampAIResolution(ctx context.Context, txID uuid.UUID, res transactiondomain.AIResolution) (*transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) ExistsOpeningBalanceTransaction(ctx context.Context, userID uuid.UUID, iban string) (bool, error) {
	panic("not used")
}
func (m *mockTransactionService) ListByCounterpartyIBAN(ctx context.Context, userID uuid.UUID, iban string) ([]transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) ListByTransferCandidateHash(ctx context.Context, userID uuid.UUID, hash string) ([]transactiondomain.Transaction, error) {
	panic("not used")
}
func (m *mockTransactionService) StampTransferCandidateHash(ctx context.Context, txID uuid.UUID, hash string) (*transactiondomain.Transaction, error) {
	panic("not used")
}

func counterparty(name string) *string { return &name }

func bankTx(counterpartyName string, amount int64, date time.Time) transactiondomain.Transaction {
	tx := transactiondomain.Transaction{
		ID:           uuid.New(),
		Source:       transactiondomain.SourceBankImport,
		Counterparty: counterparty(counterpartyName),
		Date:         date,
	}
	tx.Entries = []transactiondomain.JournalEntry{
		{AccountType: accountdomain.AccountTypeExpense, Side: accountdomain.EntrySideDebit, Amount: decimal.NewFromInt(amount)},
	}
	return tx
}

func TestDetect_GroupsByCounterpartyAndAmount(t *testing.T) {
	userID := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	txs := []transactiondomain.Transaction{
		bankTx("Netflix", 15, base),
		bankTx("Netflix", 15, base.AddDate(0, 1, 0)),
		bankTx("Netflix", 15, base.AddDate(0, 2, 0)),
		bankTx("One-off Shop", 42, base),
	}

	repo := new(mockTransactionService)
	repo.On("ListByUserID", mock.Anything, userID, transactiondomain.ListFilter{}).Return(txs, nil)

	svc := NewService(repo)
	groups, err := svc.Detect(context.Background(), userID)
	require.NoError(t, err)
	require.Len(t, groups, 1)

	assert.Equal(t, "NETFLIX", groups[0].Counterparty)
	assert.Equal(t, CadenceMonthly, groups[0].Cadence)
	assert.Equal(t, 3, groups[0].Count)
	repo.AssertExpectations(t)
}

func TestDetect_IgnoresManualAndSingleOccurrenceTransactions(t *testing.T) {
	userID := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	manual := bankTx("Gym", 30, base)
	manual.Source = transactiondomain.SourceManual

	txs := []transactiondomain.Transaction{
		manual,
		bankTx("Rare Purchase", 99, base),
	}

	repo := new(mockTransactionService)
	repo.On("ListByUserID", mock.Anything, userID, transactiondomain.ListFilter{}).Return(txs, nil)

	svc := NewService(repo)
	groups, err := svc.Detect(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, groups)
}

func TestClassifyCadence(t *testing.T) {
	assert.Equal(t, CadenceWeekly, classifyCadence(7))
	assert.Equal(t, CadenceMonthly, classifyCadence(30))
	assert.Equal(t, CadenceNone, classifyCadence(1))
	assert.Equal(t, CadenceNone, classifyCadence(0))
}
