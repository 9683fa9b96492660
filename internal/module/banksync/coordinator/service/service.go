// Package service implements the per-transaction import workflow that
// turns one stored bank transaction into a posted accounting transaction,
// or a recorded skip/duplicate/failure (spec §4.5).
package service

import (
	"context"

	accountdomain "ledgersync/internal/module/accounting/account/domain"
	accountservice "ledgersync/internal/module/accounting/account/service"
	transactiondomain "ledgersync/internal/module/accounting/transaction/domain"
	transactionservice "ledgersync/internal/module/accounting/transaction/service"
	banktxdomain "ledgersync/internal/module/banksync/banktransaction/domain"
	banktxservice "ledgersync/internal/module/banksync/banktransaction/service"
	importauditdomain "ledgersync/internal/module/banksync/importaudit/domain"
	importauditrepo "ledgersync/internal/module/banksync/importaudit/repository"
	mappingservice "ledgersync/internal/module/banksync/mapping/service"
	ruledomain "ledgersync/internal/module/banksync/rule/domain"
	ruleservice "ledgersync/internal/module/banksync/rule/service"
	transferdomain "ledgersync/internal/module/banksync/transfer/domain"
	transferservice "ledgersync/internal/module/banksync/transfer/service"
	"ledgersync/internal/database"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PreClassifiedResult is the batch-path shortcut around rules and the
// classification pipeline: an account id already chosen elsewhere (a prior
// ML pass run ahead of the import loop).
type PreClassifiedResult struct {
	AccountID  *uuid.UUID
	Confidence float64
}

// ClassificationResult is what the classification pipeline reports for one
// transaction.
type ClassificationResult struct {
	AccountID  *uuid.UUID
	Confidence float64
	ResolvedBy string
}

// Classifier is the counter-account classification pipeline's surface as
// seen by the coordinator. The classify/pipeline module provides the
// implementation; a coordinator built with a nil Classifier skips straight
// to the sign-based default.
type Classifier interface {
	Classify(ctx context.Context, userID uuid.UUID, tx banktxdomain.StoredBankTransaction) (*ClassificationResult, error)
}

// ImportRequest bundles one stored transaction with the per-import options
// the caller controls.
type ImportRequest struct {
	StoredTransaction banktxdomain.StoredBankTransaction
	AutoPost          bool
	PreClassified     *PreClassifiedResult
}

// Result is the outcome of one import attempt.
type Result struct {
	BankTransactionID       uuid.UUID
	Status                  importauditdomain.Status
	Reason                  string
	AccountingTransactionID *uuid.UUID
	WasReconciled           bool
}

// EventKind distinguishes the messages a streaming import emits.
type EventKind string

const (
	EventProgress EventKind = "progress"
	EventFinal    EventKind = "final"
)

// Event is one message of a streaming batch import.
type Event struct {
	Kind   EventKind
	Index  int
	Total  int
	Result *Result
}

// Service runs the import workflow for one or many stored transactions.
type Service interface {
	ImportOne(ctx context.Context, userID uuid.UUID, req ImportRequest) (*Result, error)
	ImportBatch(ctx context.Context, userID uuid.UUID, reqs []ImportRequest) ([]Result, error)
	// ImportBatchStreaming runs ImportOne over reqs in order, emitting a
	// progress event after each and a final event when done. The channel is
	// closed once the final event is sent or the batch aborts on an
	// infrastructure error.
	ImportBatchStreaming(ctx context.Context, userID uuid.UUID, reqs []ImportRequest) <-chan Event
}

type coordinator struct {
	bankTransactions banktxservice.Service
	imports          importauditrepo.Repository
	mappings         mappingservice.Service
	rules            ruleservice.Service
	transfers        transferservice.Service
	transactions     transactionservice.Service
	accounts         accountservice.Service
	classifier       Classifier
	db               *gorm.DB

	defaultCurrency             string
	defaultExpenseAccountNumber string
	defaultIncomeAccountNumber  string

	logger *zap.Logger
}

// NewService builds the import coordinator. classifier may be nil; when it
// is, unresolved transactions fall straight to the sign-based default. db
// is used to wrap each import's write sequence (draft, stamps, post, mark-
// imported, audit) in one transaction, so a failure partway through never
// leaves a posted transaction without its audit row or vice versa (spec
// §4.5 step 8).
func NewService(
	bankTransactions banktxservice.Service,
	imports importauditrepo.Repository,
	mappings mappingservice.Service,
	rules ruleservice.Service,
	transfers transferservice.Service,
	transactions transactionservice.Service,
	accounts accountservice.Service,
	classifier Classifier,
	db *gorm.DB,
	defaultCurrency, defaultExpenseAccountNumber, defaultIncomeAccountNumber string,
	logger *zap.Logger,
) Service {
	return &coordinator{
		bankTransactions:            bankTransactions,
		imports:                     imports,
		mappings:                    mappings,
		rules:                       rules,
		transfers:                   transfers,
		transactions:                transactions,
		accounts:                    accounts,
		classifier:                  classifier,
		db:                          db,
		defaultCurrency:             defaultCurrency,
		defaultExpenseAccountNumber: defaultExpenseAccountNumber,
		defaultIncomeAccountNumber:  defaultIncomeAccountNumber,
		logger:                      logger.Named("banksync.coordinator"),
	}
}

func (c *coordinator) ImportOne(ctx context.Context, userID uuid.UUID, req ImportRequest) (*Result, error) {
	stx := req.StoredTransaction

	if existing, err := c.imports.FindByBankTransactionID(ctx, stx.ID); err == nil {
		if existing.Status == importauditdomain.StatusSuccess {
			return &Result{
				BankTransactionID:       stx.ID,
				Status:                  importauditdomain.StatusDuplicate,
				AccountingTransactionID: existing.AccountingTransactionID,
			}, nil
		}
	} else if !isNotFound(err) {
		return nil, err
	}

	if stx.Amount.IsZero() {
		return c.finalize(ctx, userID, stx.ID, importauditdomain.StatusSkipped, "zero amount", nil, false)
	}
	if stx.Currency != c.defaultCurrency {
		return c.finalize(ctx, userID, stx.ID, importauditdomain.StatusSkipped, "unsupported currency", nil, false)
	}

	assetAccount, created, err := c.mappings.ResolveOrCreate(ctx, userID, stx.IBAN, stx.IBAN)
	if err != nil {
		return c.fail(ctx, userID, stx.ID, err)
	}
	if created {
		c.reconcileNewMapping(ctx, userID, stx.IBAN, assetAccount)
	}

	counterpartyIBAN := ""
	if stx.ApplicantIBAN != nil {
		counterpartyIBAN = *stx.ApplicantIBAN
	}

	transferCtx, err := c.transfers.DetectTransfer(ctx, userID, stx.IBAN, counterpartyIBAN, stx.BookingDate, stx.Amount)
	if err != nil {
		return c.fail(ctx, userID, stx.ID, err)
	}

	if transferCtx.IsInternalTransfer && transferCtx.CanReconcile {
		return c.importReconciledTransfer(ctx, userID, stx, assetAccount, counterpartyIBAN, transferCtx)
	}

	return c.importOrdinaryTransaction(ctx, userID, stx, req, assetAccount, counterpartyIBAN)
}

// reconcileNewMapping retroactively converts historical transactions that
// reference iban as a counterparty now that it resolves to one of the
// user's own accounts (spec §4.4 "counterpart account added after the
// first leg already imported"). Failures here never abort the import that
// triggered them; they're logged and left for the next reconciliation
// opportunity.
func (c *coordinator) reconcileNewMapping(ctx context.Context, userID uuid.UUID, iban string, account *accountdomain.Account) {
	converted, err := c.transfers.ReconcileForNewAccount(ctx, userID, iban, account)
	if err != nil {
		c.logger.Warn("retroactive transfer reconciliation failed", zap.Error(err), zap.String("iban", iban))
		return
	}
	if converted > 0 {
		c.logger.Info("retroactively reconciled transfers for new mapping", zap.String("iban", iban), zap.Int("converted", converted))
	}
}

// importReconciledTransfer converts the matching posted leg and marks the
// incoming bank transaction imported in one commit: either the conversion
// and its audit both land, or neither does (spec §4.4 "must be atomic").
func (c *coordinator) importReconciledTransfer(ctx context.Context, userID uuid.UUID, stx banktxdomain.StoredBankTransaction, assetAccount *accountdomain.Account, counterpartyIBAN string, transferCtx *transferservice.Context) (*Result, error) {
	existing := transferCtx.MatchingTransaction
	if existing.IsInternalTransfer {
		return c.finalize(ctx, userID, stx.ID, importauditdomain.StatusDuplicate, "already reconciled", &existing.ID, true)
	}

	var result *Result
	txErr := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := database.WithTx(ctx, tx)

		converted, err := c.transfers.ConvertToInternalTransfer(txCtx, existing.ID, assetAccount.ID, stx.IBAN, counterpartyIBAN, stx.BookingDate, stx.Amount)
		if err != nil {
			return err
		}
		if err := c.bankTransactions.MarkImported(txCtx, stx.ID); err != nil {
			return err
		}
		var finalizeErr error
		result, finalizeErr = c.finalize(txCtx, userID, stx.ID, importauditdomain.StatusSuccess, "", &converted.ID, true)
		return finalizeErr
	})
	if txErr != nil {
		return c.fail(ctx, userID, stx.ID, txErr)
	}
	return result, nil
}

// importOrdinaryTransaction builds, optionally posts, and records a regular
// (non-reconciled) accounting transaction. The whole write sequence commits
// or rolls back together, so a failure after posting never leaves a posted
// transaction without its import audit (spec §4.5 step 8, §7).
func (c *coordinator) importOrdinaryTransaction(ctx context.Context, userID uuid.UUID, stx banktxdomain.StoredBankTransaction, req ImportRequest, assetAccount *accountdomain.Account, counterpartyIBAN string) (*Result, error) {
	counterAccountID, resolvedBy, confidence, err := c.resolveCounterAccount(ctx, userID, stx, req.PreClassified)
	if err != nil {
		return c.fail(ctx, userID, stx.ID, err)
	}

	var result *Result
	txErr := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := database.WithTx(ctx, tx)

		draft, err := c.transactions.ConstructDraft(txCtx, userID, transactionservice.DraftRequest{
			Description:      stx.Purpose,
			Date:             stx.BookingDate,
			Counterparty:     stx.ApplicantName,
			CounterpartyIBAN: stx.ApplicantIBAN,
			Source:           transactiondomain.SourceBankImport,
			SourceIBAN:       &stx.IBAN,
			Entries:          c.buildEntries(assetAccount.ID, counterAccountID, stx.Amount),
		})
		if err != nil {
			return err
		}

		// Stamped whenever a counterparty IBAN is known at all, not only
		// when it's already mapped to one of the user's own accounts: the
		// mapping (and so IsInternalTransfer) may only appear later, and
		// findMatchingTransfer needs this leg's hash on row to find it
		// then (spec §8 seed scenario 3).
		if counterpartyIBAN != "" {
			hash := transferdomain.IdentityHash(stx.IBAN, counterpartyIBAN, stx.BookingDate, stx.Amount)
			if _, err := c.transactions.StampTransferCandidateHash(txCtx, draft.ID, hash); err != nil {
				return err
			}
		}

		if resolvedBy != "" {
			res := transactiondomain.AIResolution{AccountID: &counterAccountID, Confidence: confidence, Tier: resolvedBy}
			if _, err := c.transactions.StampAIResolution(txCtx, draft.ID, res); err != nil {
				return err
			}
		}

		if req.AutoPost {
			if _, err := c.transactions.Post(txCtx, draft.ID); err != nil {
				return err
			}
		}

		if err := c.bankTransactions.MarkImported(txCtx, stx.ID); err != nil {
			return err
		}

		var finalizeErr error
		result, finalizeErr = c.finalize(txCtx, userID, stx.ID, importauditdomain.StatusSuccess, "", &draft.ID, false)
		return finalizeErr
	})
	if txErr != nil {
		return c.fail(ctx, userID, stx.ID, txErr)
	}
	return result, nil
}

// resolveCounterAccount runs the fallback cascade of spec §4.5 step 5.
func (c *coordinator) resolveCounterAccount(ctx context.Context, userID uuid.UUID, stx banktxdomain.StoredBankTransaction, pre *PreClassifiedResult) (uuid.UUID, string, float64, error) {
	if pre != nil {
		if pre.AccountID != nil {
			if _, err := c.accounts.GetByID(ctx, *pre.AccountID, userID); err == nil {
				return *pre.AccountID, "preclassified", pre.Confidence, nil
			}
		}
		return c.defaultBySign(ctx, userID, stx.Amount)
	}

	applicantName := ""
	if stx.ApplicantName != nil {
		applicantName = *stx.ApplicantName
	}
	applicantIBAN := ""
	if stx.ApplicantIBAN != nil {
		applicantIBAN = *stx.ApplicantIBAN
	}

	rule, err := c.rules.Resolve(ctx, userID, ruledomain.MatchInput{
		CounterpartyName: applicantName,
		CounterpartyIBAN: applicantIBAN,
		Purpose:          stx.Purpose,
		Amount:           stx.Amount,
	})
	if err != nil {
		return uuid.Nil, "", 0, err
	}
	if rule != nil {
		return rule.AccountID, "rule", 1.0, nil
	}

	if c.classifier != nil {
		result, err := c.classifier.Classify(ctx, userID, stx)
		if err != nil {
			return uuid.Nil, "", 0, err
		}
		if result != nil && result.AccountID != nil {
			return *result.AccountID, result.ResolvedBy, result.Confidence, nil
		}
	}

	return c.defaultBySign(ctx, userID, stx.Amount)
}

func (c *coordinator) defaultBySign(ctx context.Context, userID uuid.UUID, amount decimal.Decimal) (uuid.UUID, string, float64, error) {
	accountNumber := c.defaultExpenseAccountNumber
	if amount.IsPositive() {
		accountNumber = c.defaultIncomeAccountNumber
	}
	account, err := c.accounts.GetByAccountNumber(ctx, userID, accountNumber)
	if err != nil {
		return uuid.Nil, "", 0, err
	}
	return account.ID, "default", 0, nil
}

// buildEntries mirrors a negative (outgoing) amount as debit-counter,
// credit-asset and a positive (incoming) one as debit-asset, credit-counter.
func (c *coordinator) buildEntries(assetID, counterID uuid.UUID, amount decimal.Decimal) []transactionservice.EntryInput {
	abs := amount.Abs()
	if amount.IsNegative() {
		return []transactionservice.EntryInput{
			{AccountID: counterID, Side: accountdomain.EntrySideDebit, Amount: abs},
			{AccountID: assetID, Side: accountdomain.EntrySideCredit, Amount: abs},
		}
	}
	return []transactionservice.EntryInput{
		{AccountID: assetID, Side: accountdomain.EntrySideDebit, Amount: abs},
		{AccountID: counterID, Side: accountdomain.EntrySideCredit, Amount: abs},
	}
}

func (c *coordinator) finalize(ctx context.Context, userID, bankTxID uuid.UUID, status importauditdomain.Status, reason string, accountingTxID *uuid.UUID, reconciled bool) (*Result, error) {
	id := uuid.New()
	if existing, err := c.imports.FindByBankTransactionID(ctx, bankTxID); err == nil {
		id = existing.ID
	}

	var errMsg *string
	if reason != "" {
		errMsg = &reason
	}

	if err := c.imports.Save(ctx, &importauditdomain.Import{
		ID:                      id,
		UserID:                  userID,
		BankTransactionID:       bankTxID,
		Status:                  status,
		AccountingTransactionID: accountingTxID,
		WasReconciled:           reconciled,
		ErrorMessage:            errMsg,
	}); err != nil {
		return nil, err
	}

	return &Result{
		BankTransactionID:       bankTxID,
		Status:                  status,
		Reason:                  reason,
		AccountingTransactionID: accountingTxID,
		WasReconciled:           reconciled,
	}, nil
}

// fail records a FAILED audit and surfaces the result without propagating
// the error, so a single bad transaction never aborts the rest of a batch.
func (c *coordinator) fail(ctx context.Context, userID, bankTxID uuid.UUID, cause error) (*Result, error) {
	c.logger.Warn("import failed", zap.Error(cause), zap.String("bank_transaction_id", bankTxID.String()))
	return c.finalize(ctx, userID, bankTxID, importauditdomain.StatusFailed, cause.Error(), nil, false)
}

func (c *coordinator) ImportBatch(ctx context.Context, userID uuid.UUID, reqs []ImportRequest) ([]Result, error) {
	results := make([]Result, 0, len(reqs))
	for _, req := range reqs {
		result, err := c.ImportOne(ctx, userID, req)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func (c *coordinator) ImportBatchStreaming(ctx context.Context, userID uuid.UUID, reqs []ImportRequest) <-chan Event {
	events := make(chan Event)

	go func() {
		defer close(events)
		total := len(reqs)
		for i, req := range reqs {
			result, err := c.ImportOne(ctx, userID, req)
			if err != nil {
				c.logger.Error("streaming import batch aborted", zap.Error(err))
				return
			}
			select {
			case events <- Event{Kind: EventProgress, Index: i + 1, Total: total, Result: result}:
			case <-ctx.Done():
				return
			}
		}
		select {
		case events <- Event{Kind: EventFinal, Total: total}:
		case <-ctx.Done():
		}
	}()

	return events
}

func isNotFound(err error) bool {
	return shared.IsAppError(err) && shared.ToAppError(err).Code == shared.ErrCodeNotFound
}
