// Package service computes and posts the single equity transaction that
// primes an account's ledger the first time it syncs (spec §4.3).
package service

import (
	"context"
	"time"

	accountdomain "ledgersync/internal/module/accounting/account/domain"
	accountservice "ledgersync/internal/module/accounting/account/service"
	"ledgersync/internal/module/accounting/transaction/domain"
	transactionservice "ledgersync/internal/module/accounting/transaction/service"
	"ledgersync/internal/module/banksync/adapter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BatchTransaction is the minimal shape this service needs from a sync
// batch: its signed amount and booking date.
type BatchTransaction struct {
	BookingDate time.Time
	Amount      decimal.Decimal
}

// Service primes an account's ledger with the bank-reported balance minus
// the net effect of the current sync batch, so that after the batch is
// imported the book matches the bank.
type Service interface {
	// Apply runs the priming algorithm for one account. It is best-effort:
	// any failure is logged and swallowed, never propagated to the caller,
	// since opening balance must never block the rest of a sync.
	Apply(ctx context.Context, userID uuid.UUID, assetAccount *accountdomain.Account, iban string, bank adapter.BankAdapter, batch []BatchTransaction, openingBalanceAccountNumber string)
}

type openingBalanceService struct {
	accounts     accountservice.Service
	transactions transactionservice.Service
	logger       *zap.Logger
}

// NewService builds the opening-balance service.
func NewService(accounts accountservice.Service, transactions transactionservice.Service, logger *zap.Logger) Service {
	return &openingBalanceService{
		accounts:     accounts,
		transactions: transactions,
		logger:       logger.Named("banksync.openingbalance"),
	}
}

func (s *openingBalanceService) Apply(
	ctx context.Context,
	userID uuid.UUID,
	assetAccount *accountdomain.Account,
	iban string,
	bank adapter.BankAdapter,
	batch []BatchTransaction,
	openingBalanceAccountNumber string,
) {
	if len(batch) == 0 {
		return
	}

	already, err := s.transactions.ExistsOpeningBalanceTransaction(ctx, userID, iban)
	if err != nil {
		s.logger.Warn("opening balance precondition check failed", zap.Error(err), zap.String("iban", iban))
		return
	}
	if already {
		return
	}

	equityAccount, err := s.accounts.GetByAccountNumber(ctx, userID, openingBalanceAccountNumber)
	if err != nil {
		s.logger.Warn("opening balance equity account missing", zap.Error(err), zap.String("account_number", openingBalanceAccountNumber))
		return
	}

	currentBalance, ok := s.fetchCurrentBalance(ctx, bank, iban)
	if !ok {
		return
	}

	batchTotal := decimal.Zero
	openingDate := batch[0].BookingDate
	for _, tx := range batch {
		batchTotal = batchTotal.Add(tx.Amount)
		if tx.BookingDate.Before(openingDate) {
			openingDate = tx.BookingDate
		}
	}

	openingBalance := currentBalance.Sub(batchTotal)
	if openingBalance.IsZero() {
		return
	}

	draft, err := s.transactions.ConstructDraft(ctx, userID, transactionservice.DraftRequest{
		Description: "Opening balance",
		Date:        openingDate,
		Source:      domain.SourceManual,
		Entries:     s.openingEntries(assetAccount.ID, equityAccount.ID, openingBalance),
	})
	if err != nil {
		s.logger.Warn("opening balance draft failed", zap.Error(err), zap.String("iban", iban))
		return
	}

	if _, err := s.transactions.StampOpeningBalance(ctx, draft.ID, iban); err != nil {
		s.logger.Warn("opening balance stamp failed", zap.Error(err), zap.String("iban", iban))
		return
	}

	if _, err := s.transactions.Post(ctx, draft.ID); err != nil {
		s.logger.Warn("opening balance post failed", zap.Error(err), zap.String("iban", iban))
		return
	}
}

// openingEntries builds the two legs per spec §4.3 step 6: a positive
// opening balance debits the asset account and credits equity; a negative
// one reverses the sides.
func (s *openingBalanceService) openingEntries(assetID, equityID uuid.UUID, openingBalance decimal.Decimal) []transactionservice.EntryInput {
	amount := openingBalance.Abs()
	if openingBalance.IsPositive() {
		return []transactionservice.EntryInput{
			{AccountID: assetID, Side: accountdomain.EntrySideDebit, Amount: amount},
			{AccountID: equityID, Side: accountdomain.EntrySideCredit, Amount: amount},
		}
	}
	return []transactionservice.EntryInput{
		{AccountID: equityID, Side: accountdomain.EntrySideDebit, Amount: amount},
		{AccountID: assetID, Side: accountdomain.EntrySideCredit, Amount: amount},
	}
}

func (s *openingBalanceService) fetchCurrentBalance(ctx context.Context, bank adapter.BankAdapter, iban string) (decimal.Decimal, bool) {
	accounts, err := bank.FetchAccounts(ctx)
	if err != nil {
		s.logger.Warn("opening balance fetch accounts failed", zap.Error(err), zap.String("iban", iban))
		return decimal.Zero, false
	}
	for _, a := range accounts {
		if a.IBAN == iban && a.Balance != nil {
			return *a.Balance, true
		}
	}
	s.logger.Warn("opening balance: no reported balance for iban", zap.String("iban", iban))
	return decimal.Zero, false
}
