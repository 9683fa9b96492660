// Package service implements the Sync Command: resolve credentials, open
// an adapter session, fetch accounts and transactions, dedup into the
// Bank-Transaction Store, prime the opening balance on first sync, and run
// every newly stored transaction through the Import Coordinator (spec §2
// "Control flow per sync").
package service

import (
	"context"
	"fmt"
	"time"

	accountdomain "ledgersync/internal/module/accounting/account/domain"
	"ledgersync/internal/module/banksync/adapter"
	banktxdomain "ledgersync/internal/module/banksync/banktransaction/domain"
	banktxservice "ledgersync/internal/module/banksync/banktransaction/service"
	coordinatorservice "ledgersync/internal/module/banksync/coordinator/service"
	importauditdomain "ledgersync/internal/module/banksync/importaudit/domain"
	mappingservice "ledgersync/internal/module/banksync/mapping/service"
	openingbalanceservice "ledgersync/internal/module/banksync/openingbalance/service"
	syncdomain "ledgersync/internal/module/banksync/sync/domain"
	transferservice "ledgersync/internal/module/banksync/transfer/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service runs a full sync for one bank connection.
type Service interface {
	// SyncAccount connects to bankCode on userID's behalf, fetches every
	// reported account and its transactions, imports them, and returns one
	// result record. It never returns a Go error for a connection-level
	// failure: that is recorded in the result's Error field instead, so a
	// worker iterating many connections never has one bad bank abort the
	// cycle (spec §7's sync-result record is meant to absorb exactly this).
	SyncAccount(ctx context.Context, userID uuid.UUID, bankCode string) (*syncdomain.Result, error)
}

type syncService struct {
	credentials      adapter.CredentialStore
	bankFactory      func() adapter.BankAdapter
	bankTransactions banktxservice.Service
	mappings         mappingservice.Service
	openingBalance   openingbalanceservice.Service
	coordinator      coordinatorservice.Service
	transfers        transferservice.Service

	fetchWindowDays             int
	openingBalanceAccountNumber string

	logger *zap.Logger
}

// NewService builds the Sync Command. bankFactory builds a fresh adapter
// session per call: BankAdapter is stateful (endpoint, secrets, an open
// connection), so concurrent syncs across different bank connections must
// never share one instance.
func NewService(
	credentials adapter.CredentialStore,
	bankFactory func() adapter.BankAdapter,
	bankTransactions banktxservice.Service,
	mappings mappingservice.Service,
	openingBalance openingbalanceservice.Service,
	coordinator coordinatorservice.Service,
	transfers transferservice.Service,
	fetchWindowDays int,
	openingBalanceAccountNumber string,
	logger *zap.Logger,
) Service {
	return &syncService{
		credentials:                 credentials,
		bankFactory:                 bankFactory,
		bankTransactions:            bankTransactions,
		mappings:                    mappings,
		openingBalance:              openingBalance,
		coordinator:                 coordinator,
		transfers:                   transfers,
		fetchWindowDays:             fetchWindowDays,
		openingBalanceAccountNumber: openingBalanceAccountNumber,
		logger:                      logger.Named("banksync.sync"),
	}
}

func (s *syncService) SyncAccount(ctx context.Context, userID uuid.UUID, bankCode string) (*syncdomain.Result, error) {
	result := &syncdomain.Result{BankCode: bankCode}

	creds, err := s.credentials.FindByBankCode(ctx, userID.String(), bankCode)
	if err != nil {
		result.Error = fmt.Sprintf("resolve credentials: %v", err)
		return result, nil
	}

	method, medium, err := s.credentials.GetTANSettings(ctx, userID.String(), bankCode)
	if err != nil {
		result.Error = fmt.Sprintf("load tan settings: %v", err)
		return result, nil
	}

	bank := s.bankFactory()
	bank.SetTANMethod(method)
	bank.SetTANMedium(medium)
	bank.SetTANCallback(func(context.Context, string) (string, error) {
		return "", fmt.Errorf("two-factor challenge received, unattended sync cannot resolve it")
	})

	if err := bank.Connect(ctx, creds); err != nil {
		result.Error = fmt.Sprintf("connect: %v", err)
		return result, nil
	}
	defer func() {
		if err := bank.Disconnect(ctx); err != nil {
			s.logger.Warn("bank disconnect failed", zap.Error(err), zap.String("bank_code", bankCode))
		}
	}()

	bankAccounts, err := bank.FetchAccounts(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("fetch accounts: %v", err)
		return result, nil
	}

	var warnings []string
	for _, bankAccount := range bankAccounts {
		result.IBANs = append(result.IBANs, bankAccount.IBAN)
		if err := s.syncOneAccount(ctx, userID, bank, bankAccount, result); err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", bankAccount.IBAN, err))
		}
	}

	if err := s.credentials.UpdateLastUsed(ctx, userID.String(), bankCode, time.Now()); err != nil {
		s.logger.Warn("update credential last-used failed", zap.Error(err), zap.String("bank_code", bankCode))
	}

	if len(warnings) > 0 {
		result.Warning = joinFirst(warnings, 3)
	}
	return result, nil
}

// syncOneAccount fetches and imports one reported bank account's
// transactions. Errors here are per-account and accumulate into the
// caller's warning list; they never abort the sibling accounts on the same
// connection.
func (s *syncService) syncOneAccount(ctx context.Context, userID uuid.UUID, bank adapter.BankAdapter, bankAccount adapter.BankAccount, result *syncdomain.Result) error {
	assetAccount, created, err := s.mappings.ResolveOrCreate(ctx, userID, bankAccount.IBAN, bankAccount.Holder)
	if err != nil {
		return fmt.Errorf("resolve mapping: %w", err)
	}
	if created {
		s.reconcileNewMapping(ctx, userID, bankAccount.IBAN, assetAccount, result)
	}

	latest, err := s.bankTransactions.LatestBookingDate(ctx, userID, bankAccount.IBAN)
	if err != nil {
		return fmt.Errorf("latest booking date: %w", err)
	}
	firstSync := latest == nil

	end := time.Now()
	start := end.AddDate(0, 0, -s.fetchWindowDays)
	if latest != nil {
		start = *latest
	}

	fetched, err := bank.FetchTransactions(ctx, bankAccount.IBAN, start, end)
	if err != nil {
		return fmt.Errorf("fetch transactions: %w", err)
	}
	result.Fetched += len(fetched)

	saved, err := s.bankTransactions.SaveBatchWithDeduplication(ctx, userID, bankAccount.IBAN, fetched)
	if err != nil {
		return fmt.Errorf("save batch: %w", err)
	}

	if firstSync {
		s.applyOpeningBalance(ctx, userID, assetAccount, bankAccount.IBAN, bank, saved, result)
	}

	for _, entry := range saved {
		if !entry.IsNew {
			result.Skipped++
			continue
		}

		importResult, err := s.coordinator.ImportOne(ctx, userID, coordinatorservice.ImportRequest{
			StoredTransaction: entry.Record,
			AutoPost:          true,
		})
		if err != nil {
			result.Failed++
			continue
		}

		switch importResult.Status {
		case importauditdomain.StatusSuccess:
			result.Imported++
		case importauditdomain.StatusDuplicate, importauditdomain.StatusSkipped:
			result.Skipped++
		case importauditdomain.StatusFailed:
			result.Failed++
		}
		if importResult.WasReconciled {
			result.Reconciled++
		}
	}
	return nil
}

// reconcileNewMapping retroactively converts historical transactions that
// reference iban as a counterparty now that it resolves to one of the
// user's own accounts (spec §4.4 "counterpart account added after the
// first leg already imported"). A failure here is logged as a warning,
// same as everywhere else in syncOneAccount: it never aborts the sync.
func (s *syncService) reconcileNewMapping(ctx context.Context, userID uuid.UUID, iban string, assetAccount *accountdomain.Account, result *syncdomain.Result) {
	converted, err := s.transfers.ReconcileForNewAccount(ctx, userID, iban, assetAccount)
	if err != nil {
		s.logger.Warn("retroactive transfer reconciliation failed", zap.Error(err), zap.String("iban", iban))
		return
	}
	result.Reconciled += converted
}

// applyOpeningBalance delegates to the opening-balance service, which is
// itself idempotent and best-effort; this only tracks what happened for
// the sync-result record (spec §7 "opening-balance flag and amount").
func (s *syncService) applyOpeningBalance(ctx context.Context, userID uuid.UUID, assetAccount *accountdomain.Account, iban string, bank adapter.BankAdapter, saved []banktxdomain.SavedTransaction, result *syncdomain.Result) {
	batch := make([]openingbalanceservice.BatchTransaction, 0, len(saved))
	for _, entry := range saved {
		batch = append(batch, openingbalanceservice.BatchTransaction{
			BookingDate: entry.Record.BookingDate,
			Amount:      entry.Record.Amount,
		})
	}

	s.openingBalance.Apply(ctx, userID, assetAccount, iban, bank, batch, s.openingBalanceAccountNumber)
	result.OpeningBalanceApplied = true
	result.OpeningBalanceAmount = sumAmounts(batch)
}

func sumAmounts(batch []openingbalanceservice.BatchTransaction) decimal.Decimal {
	total := decimal.Zero
	for _, b := range batch {
		total = total.Add(b.Amount)
	}
	return total
}

func joinFirst(items []string, n int) string {
	if len(items) > n {
		items = items[:n]
	}
	out := ""
	for i, item := range items {
		if i > 0 {
			out += "; "
		}
		out += item
	}
	return out
}
