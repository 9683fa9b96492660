package domain

import (
	"testing"
	"time"

	accountdomain "ledgersync/internal/module/accounting/account/domain"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransaction_TableName(t *testing.T) {
	assert.Equal(t, "accounting_transactions", Transaction{}.TableName())
	assert.Equal(t, "accounting_journal_entries", JournalEntry{}.TableName())
}

func newDraft() *Transaction {
	return New(uuid.New(), "coffee", time.Now().UTC(), SourceManual, "EUR")
}

func TestNew_SyncsMetadataSource(t *testing.T) {
	tx := newDraft()
	assert.Equal(t, SourceManual, tx.Source)
	assert.Equal(t, string(SourceManual), tx.metadata().Source)
	assert.False(t, tx.Posted)
}

func TestAddEntry_RejectsZeroAmount(t *testing.T) {
	tx := newDraft()
	err := tx.AddDebit(uuid.New(), accountdomain.AccountTypeExpense, decimal.Zero)
	require.Error(t, err)
	appErr, ok := err.(*shared.AppError)
	require.True(t, ok)
	assert.Equal(t, shared.ErrCodeZeroAmount, appErr.Code)
}

func TestAddEntry_RejectsOnPostedTransaction(t *testing.T) {
	tx := newDraft()
	assetID, expenseID := uuid.New(), uuid.New()
	require.NoError(t, tx.AddDebit(expenseID, accountdomain.AccountTypeExpense, decimal.NewFromInt(10)))
	require.NoError(t, tx.AddCredit(assetID, accountdomain.AccountTypeAsset, decimal.NewFromInt(10)))
	require.NoError(t, tx.Post("EUR", nil))

	err := tx.AddDebit(uuid.New(), accountdomain.AccountTypeExpense, decimal.NewFromInt(1))
	require.Error(t, err)
	assert.Equal(t, shared.ErrCodePostedImmutable, err.(*shared.AppError).Code)
}

func TestValidateDoubleEntry(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Transaction
		wantErr string
	}{
		{
			name: "fewer than two entries",
			build: func() *Transaction {
				tx := newDraft()
				require.NoError(t, tx.AddDebit(uuid.New(), accountdomain.AccountTypeExpense, decimal.NewFromInt(10)))
				return tx
			},
			wantErr: shared.ErrCodeEmptyTransaction,
		},
		{
			name: "currency mismatch",
			build: func() *Transaction {
				tx := New(uuid.New(), "groceries", time.Now().UTC(), SourceManual, "USD")
				require.NoError(t, tx.AddDebit(uuid.New(), accountdomain.AccountTypeExpense, decimal.NewFromInt(10)))
				require.NoError(t, tx.AddCredit(uuid.New(), accountdomain.AccountTypeAsset, decimal.NewFromInt(10)))
				return tx
			},
			wantErr: shared.ErrCodeUnsupportedCurrency,
		},
		{
			name: "unbalanced legs",
			build: func() *Transaction {
				tx := newDraft()
				require.NoError(t, tx.AddDebit(uuid.New(), accountdomain.AccountTypeExpense, decimal.NewFromInt(10)))
				require.NoError(t, tx.AddCredit(uuid.New(), accountdomain.AccountTypeAsset, decimal.NewFromInt(5)))
				return tx
			},
			wantErr: shared.ErrCodeUnbalanced,
		},
		{
			name: "balanced two-leg transaction",
			build: func() *Transaction {
				tx := newDraft()
				require.NoError(t, tx.AddDebit(uuid.New(), accountdomain.AccountTypeExpense, decimal.NewFromInt(10)))
				require.NoError(t, tx.AddCredit(uuid.New(), accountdomain.AccountTypeAsset, decimal.NewFromInt(10)))
				return tx
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := tt.build()
			err := tx.ValidateDoubleEntry("EUR")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.(*shared.AppError).Code)
		})
	}
}

func TestValidateBusinessRules_RejectsInactiveAccount(t *testing.T) {
	tx := newDraft()
	inactiveAccount := uuid.New()
	require.NoError(t, tx.AddDebit(inactiveAccount, accountdomain.AccountTypeExpense, decimal.NewFromInt(10)))
	require.NoError(t, tx.AddCredit(uuid.New(), accountdomain.AccountTypeAsset, decimal.NewFromInt(10)))

	err := tx.ValidateBusinessRules(map[uuid.UUID]bool{inactiveAccount: false})
	require.Error(t, err)
	assert.Equal(t, shared.ErrCodeBusinessRuleViolation, err.(*shared.AppError).Code)

	assert.NoError(t, tx.ValidateBusinessRules(map[uuid.UUID]bool{inactiveAccount: true}))
}

func TestPostAndUnpost(t *testing.T) {
	tx := newDraft()
	require.NoError(t, tx.AddDebit(uuid.New(), accountdomain.AccountTypeExpense, decimal.NewFromInt(42)))
	require.NoError(t, tx.AddCredit(uuid.New(), accountdomain.AccountTypeAsset, decimal.NewFromInt(42)))

	require.NoError(t, tx.Post("EUR", nil))
	assert.True(t, tx.Posted)

	tx.Unpost()
	assert.False(t, tx.Posted)
}

func TestTotalAmount_SumsDebitSide(t *testing.T) {
	tx := newDraft()
	require.NoError(t, tx.AddDebit(uuid.New(), accountdomain.AccountTypeExpense, decimal.NewFromInt(30)))
	require.NoError(t, tx.AddCredit(uuid.New(), accountdomain.AccountTypeAsset, decimal.NewFromInt(30)))

	assert.True(t, decimal.NewFromInt(30).Equal(tx.TotalAmount()))
}

func TestClearEntries_PreservesProtectedLegsOnBankImport(t *testing.T) {
	tx := New(uuid.New(), "card payment", time.Now().UTC(), SourceBankImport, "EUR")
	assetID := uuid.New()
	require.NoError(t, tx.AddCredit(assetID, accountdomain.AccountTypeAsset, decimal.NewFromInt(15)))
	require.NoError(t, tx.AddDebit(uuid.New(), accountdomain.AccountTypeExpense, decimal.NewFromInt(15)))

	require.NoError(t, tx.ClearEntries())
	require.Len(t, tx.Entries, 1)
	assert.Equal(t, assetID, tx.Entries[0].AccountID)
	assert.True(t, tx.IsEntryProtected(tx.Entries[0]))
}

func TestClearEntries_DropsAllLegsForManualTransaction(t *testing.T) {
	tx := newDraft()
	require.NoError(t, tx.AddDebit(uuid.New(), accountdomain.AccountTypeExpense, decimal.NewFromInt(10)))
	require.NoError(t, tx.AddCredit(uuid.New(), accountdomain.AccountTypeAsset, decimal.NewFromInt(10)))

	require.NoError(t, tx.ClearEntries())
	assert.Empty(t, tx.Entries)
}

func TestRemoveEntry_RefusesProtectedEntry(t *testing.T) {
	tx := New(uuid.New(), "card payment", time.Now().UTC(), SourceBankImport, "EUR")
	assetID := uuid.New()
	require.NoError(t, tx.AddCredit(assetID, accountdomain.AccountTypeAsset, decimal.NewFromInt(20)))
	require.NoError(t, tx.AddDebit(uuid.New(), accountdomain.AccountTypeExpense, decimal.NewFromInt(20)))

	err := tx.RemoveEntry(tx.Entries[0].ID)
	require.Error(t, err)
	assert.Equal(t, shared.ErrCodeProtectedEntry, err.(*shared.AppError).Code)
}

func TestConvertToInternalTransfer_RewritesExpenseLeg(t *testing.T) {
	tx := New(uuid.New(), "transfer out", time.Now().UTC(), SourceManual, "EUR")
	sourceAsset := uuid.New()
	require.NoError(t, tx.AddDebit(uuid.New(), accountdomain.AccountTypeExpense, decimal.NewFromInt(100)))
	require.NoError(t, tx.AddCredit(sourceAsset, accountdomain.AccountTypeAsset, decimal.NewFromInt(100)))

	destAsset := uuid.New()
	converted, err := tx.ConvertToInternalTransfer(destAsset, "Savings", "hash123", "EUR", nil)
	require.NoError(t, err)
	assert.True(t, converted)
	assert.True(t, tx.IsInternalTransfer)
	assert.Equal(t, "hash123", *tx.TransferIdentityHash)

	for _, e := range tx.Entries {
		assert.Equal(t, accountdomain.AccountTypeAsset, e.AccountType)
	}
}

func TestConvertToInternalTransfer_NoopWithoutIncomeOrExpenseLeg(t *testing.T) {
	tx := newDraft()
	require.NoError(t, tx.AddDebit(uuid.New(), accountdomain.AccountTypeAsset, decimal.NewFromInt(10)))
	require.NoError(t, tx.AddCredit(uuid.New(), accountdomain.AccountTypeAsset, decimal.NewFromInt(10)))

	converted, err := tx.ConvertToInternalTransfer(uuid.New(), "Savings", "hash", "EUR", nil)
	require.NoError(t, err)
	assert.False(t, converted)
}

func TestStampOpeningBalance_IsIdempotent(t *testing.T) {
	tx := newDraft()
	tx.StampOpeningBalance("DE1234")
	tx.StampOpeningBalance("DE1234")

	assert.Equal(t, "DE1234", *tx.OpeningBalanceIBAN)
	assert.True(t, tx.metadata().OpeningBalance)
	assert.Equal(t, "DE1234", *tx.metadata().OpeningBalanceIBAN)
}

func TestStampAIResolution(t *testing.T) {
	tx := newDraft()
	accountID := uuid.New()
	tx.StampAIResolution(AIResolution{Model: "gemini", Confidence: 0.9, AccountID: &accountID, Tier: "high"})

	res := tx.metadata().AIResolution
	require.NotNil(t, res)
	assert.Equal(t, "gemini", res.Model)
	assert.Equal(t, accountID, *res.AccountID)
}

func TestInvolvesAccount(t *testing.T) {
	tx := newDraft()
	target := uuid.New()
	require.NoError(t, tx.AddDebit(target, accountdomain.AccountTypeExpense, decimal.NewFromInt(5)))
	require.NoError(t, tx.AddCredit(uuid.New(), accountdomain.AccountTypeAsset, decimal.NewFromInt(5)))

	assert.True(t, tx.InvolvesAccount(target))
	assert.False(t, tx.InvolvesAccount(uuid.New()))
}
