// Package service detects and performs internal-transfer reconciliation
// between a user's own accounts (spec §4.4).
package service

import (
	"context"
	"fmt"
	"time"

	accountdomain "ledgersync/internal/module/accounting/account/domain"
	accountservice "ledgersync/internal/module/accounting/account/service"
	transactiondomain "ledgersync/internal/module/accounting/transaction/domain"
	transactionservice "ledgersync/internal/module/accounting/transaction/service"
	mappingservice "ledgersync/internal/module/banksync/mapping/service"
	"ledgersync/internal/module/banksync/transfer/domain"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Context is the outcome of DetectTransfer: whether the incoming
// transaction is an internal transfer, and if so whether a prior leg is
// already in the book ready to be merged with it.
type Context struct {
	IsInternalTransfer  bool
	CounterpartyAccount *accountdomain.Account
	CanReconcile        bool
	MatchingTransaction *transactiondomain.Transaction
}

// Service detects and converts internal transfers.
type Service interface {
	DetectTransfer(ctx context.Context, userID uuid.UUID, sourceIBAN, counterpartyIBAN string, bookingDate time.Time, amount decimal.Decimal) (*Context, error)
	// ConvertToInternalTransfer rebuilds existingTxID as a transfer whose new
	// leg posts against newAssetAccountID, stamping both sides with the
	// shared transfer identity hash.
	ConvertToInternalTransfer(ctx context.Context, existingTxID, newAssetAccountID uuid.UUID, sourceIBAN, counterpartyIBAN string, bookingDate time.Time, amount decimal.Decimal) (*transactiondomain.Transaction, error)
	// ReconcileForNewAccount scans historical transactions whose counterparty
	// IBAN is iban and converts them in bulk, for when a user maps an
	// external account after the fact. Returns the count converted.
	ReconcileForNewAccount(ctx context.Context, userID uuid.UUID, iban string, assetAccount *accountdomain.Account) (int, error)
}

type transferService struct {
	transactions transactionservice.Service
	mappings     mappingservice.Service
	accounts     accountservice.Service
}

// NewService builds the transfer reconciliation service.
func NewService(transactions transactionservice.Service, mappings mappingservice.Service, accounts accountservice.Service) Service {
	return &transferService{transactions: transactions, mappings: mappings, accounts: accounts}
}

func (s *transferService) DetectTransfer(ctx context.Context, userID uuid.UUID, sourceIBAN, counterpartyIBAN string, bookingDate time.Time, amount decimal.Decimal) (*Context, error) {
	if counterpartyIBAN == "" {
		return &Context{}, nil
	}

	mapping, err := s.mappings.FindByIBAN(ctx, userID, counterpartyIBAN)
	if err != nil {
		if shared.IsAppError(err) && shared.ToAppError(err).Code == shared.ErrCodeNotFound {
			return &Context{}, nil
		}
		return nil, err
	}

	counterpartyAccount, err := s.accounts.GetByID(ctx, mapping.AccountID, userID)
	if err != nil {
		return nil, err
	}

	match, err := s.findMatchingTransfer(ctx, userID, sourceIBAN, counterpartyIBAN, bookingDate, amount)
	if err != nil {
		return nil, err
	}

	return &Context{
		IsInternalTransfer:  true,
		CounterpartyAccount: counterpartyAccount,
		CanReconcile:        match != nil,
		MatchingTransaction: match,
	}, nil
}

// findMatchingTransfer looks for a posted, not-yet-converted transaction
// that is the other leg of this transfer: it shares the transfer identity
// hash, was booked against the other IBAN, and its magnitude matches.
func (s *transferService) findMatchingTransfer(ctx context.Context, userID uuid.UUID, sourceIBAN, counterpartyIBAN string, bookingDate time.Time, amount decimal.Decimal) (*transactiondomain.Transaction, error) {
	hash := domain.IdentityHash(sourceIBAN, counterpartyIBAN, bookingDate, amount)
	candidates, err := s.transactions.ListByTransferCandidateHash(ctx, userID, hash)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		c := &candidates[i]
		if !c.Posted || c.IsInternalTransfer {
			continue
		}
		if c.SourceIBAN == nil || *c.SourceIBAN != counterpartyIBAN {
			continue
		}
		if !c.TotalAmount().Equal(amount.Abs()) {
			continue
		}
		return c, nil
	}
	return nil, nil
}

func (s *transferService) ConvertToInternalTransfer(ctx context.Context, existingTxID, newAssetAccountID uuid.UUID, sourceIBAN, counterpartyIBAN string, bookingDate time.Time, amount decimal.Decimal) (*transactiondomain.Transaction, error) {
	hash := domain.IdentityHash(sourceIBAN, counterpartyIBAN, bookingDate, amount)
	converted, err := s.transactions.ConvertToInternalTransfer(ctx, existingTxID, newAssetAccountID, hash)
	if err != nil {
		return nil, fmt.Errorf("convert to internal transfer: %w", err)
	}
	return converted, nil
}

func (s *transferService) ReconcileForNewAccount(ctx context.Context, userID uuid.UUID, iban string, assetAccount *accountdomain.Account) (int, error) {
	historical, err := s.transactions.ListByCounterpartyIBAN(ctx, userID, iban)
	if err != nil {
		return 0, err
	}

	converted := 0
	for _, tx := range historical {
		if tx.IsInternalTransfer || tx.SourceIBAN == nil {
			continue
		}
		hash := domain.IdentityHash(*tx.SourceIBAN, iban, tx.Date, tx.TotalAmount())
		if _, err := s.transactions.ConvertToInternalTransfer(ctx, tx.ID, assetAccount.ID, hash); err != nil {
			return converted, fmt.Errorf("reconcile transaction %s: %w", tx.ID, err)
		}
		converted++
	}
	return converted, nil
}
