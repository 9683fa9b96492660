// Package service orchestrates the transaction kernel: constructing drafts,
// mutating their entries, and posting them once double-entry and business
// rules hold (spec §4.1).
package service

import (
	"context"
	"fmt"
	"time"

	accountdomain "ledgersync/internal/module/accounting/account/domain"
	accountrepo "ledgersync/internal/module/accounting/account/repository"
	"ledgersync/internal/module/accounting/transaction/domain"
	"ledgersync/internal/module/accounting/transaction/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EntryInput describes one leg supplied by a caller.
type EntryInput struct {
	AccountID uuid.UUID
	Side      accountdomain.EntrySide
	Amount    decimal.Decimal
}

// DraftRequest describes a new transaction before its entries are attached.
type DraftRequest struct {
	Description      string
	Date             time.Time
	Counterparty     *string
	CounterpartyIBAN *string
	Source           domain.TransactionSource
	SourceIBAN       *string
	Entries          []EntryInput
}

// Service is the kernel's use-case surface.
type Service interface {
	ConstructDraft(ctx context.Context, userID uuid.UUID, req DraftRequest) (*domain.Transaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) ([]domain.Transaction, error)
	AddEntry(ctx context.Context, txID uuid.UUID, entry EntryInput) (*domain.Transaction, error)
	RemoveEntry(ctx context.Context, txID, entryID uuid.UUID) (*domain.Transaction, error)
	ReplaceUnprotectedEntries(ctx context.Context, txID uuid.UUID, entries []EntryInput) (*domain.Transaction, error)
	UpdateDescription(ctx context.Context, txID uuid.UUID, description string) (*domain.Transaction, error)
	UpdateCounterparty(ctx context.Context, txID uuid.UUID, counterparty *string) (*domain.Transaction, error)
	Post(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error)
	Unpost(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error)
	ConvertToInternalTransfer(ctx context.Context, txID, newAssetAccountID uuid.UUID, transferHash string) (*domain.Transaction, error)
	// StampOpeningBalance marks a draft as the priming entry for iban, for
	// the Opening-Balance Service's idempotency bookkeeping (spec §4.3).
	StampOpeningBalance(ctx context.Context, txID uuid.UUID, iban string) (*domain.Transaction, error)
	// StampAIResolution records the classification pipeline's verdict on a
	// draft transaction.
	StampAIResolution(ctx context.Context, txID uuid.UUID, res domain.AIResolution) (*domain.Transaction, error)
	// ExistsOpeningBalanceTransaction reports whether iban already has an
	// opening-balance transaction for userID.
	ExistsOpeningBalanceTransaction(ctx context.Context, userID uuid.UUID, iban string) (bool, error)
	// ListByCounterpartyIBAN supports bulk reconciliation against historical
	// transactions when a new external account is added (spec §4.4).
	ListByCounterpartyIBAN(ctx context.Context, userID uuid.UUID, iban string) ([]domain.Transaction, error)
	// ListByTransferCandidateHash finds transactions (converted or not) that
	// share a transfer identity hash.
	ListByTransferCandidateHash(ctx context.Context, userID uuid.UUID, hash string) ([]domain.Transaction, error)
	// StampTransferCandidateHash records the transfer-identity hash on a
	// transaction before it is known whether reconciliation will apply.
	StampTransferCandidateHash(ctx context.Context, txID uuid.UUID, hash string) (*domain.Transaction, error)
}

type transactionService struct {
	repo            repository.Repository
	accounts        accountrepo.Repository
	defaultCurrency string
	logger          *zap.Logger
}

// NewService builds the transaction kernel service.
func NewService(repo repository.Repository, accounts accountrepo.Repository, defaultCurrency string, logger *zap.Logger) Service {
	return &transactionService{
		repo:            repo,
		accounts:        accounts,
		defaultCurrency: defaultCurrency,
		logger:          logger.Named("accounting.transaction.service"),
	}
}

func (s *transactionService) resolveAccount(ctx context.Context, id uuid.UUID) (*accountdomain.Account, error) {
	return s.accounts.GetByID(ctx, id.String())
}

func (s *transactionService) ConstructDraft(ctx context.Context, userID uuid.UUID, req DraftRequest) (*domain.Transaction, error) {
	tx := domain.New(userID, req.Description, req.Date, req.Source, s.defaultCurrency)
	tx.Counterparty = req.Counterparty
	tx.CounterpartyIBAN = req.CounterpartyIBAN
	tx.SourceIBAN = req.SourceIBAN

	for _, in := range req.Entries {
		account, err := s.resolveAccount(ctx, in.AccountID)
		if err != nil {
			return nil, err
		}
		if err := tx.AddEntry(account.ID, account.Type, in.Side, in.Amount); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Create(ctx, tx); err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}

func (s *transactionService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *transactionService) ListByUserID(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) ([]domain.Transaction, error) {
	return s.repo.ListByUserID(ctx, userID, filter)
}

func (s *transactionService) AddEntry(ctx context.Context, txID uuid.UUID, entry EntryInput) (*domain.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	account, err := s.resolveAccount(ctx, entry.AccountID)
	if err != nil {
		return nil, err
	}
	if err := tx.AddEntry(account.ID, account.Type, entry.Side, entry.Amount); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) RemoveEntry(ctx context.Context, txID, entryID uuid.UUID) (*domain.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	if err := tx.RemoveEntry(entryID); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) ReplaceUnprotectedEntries(ctx context.Context, txID uuid.UUID, entries []EntryInput) (*domain.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}

	inputs := make([]domain.NewEntryInput, 0, len(entries))
	for _, in := range entries {
		account, err := s.resolveAccount(ctx, in.AccountID)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, domain.NewEntryInput{
			AccountID:   account.ID,
			AccountType: account.Type,
			Side:        in.Side,
			Amount:      in.Amount,
		})
	}

	if err := tx.ReplaceUnprotectedEntries(inputs); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) UpdateDescription(ctx context.Context, txID uuid.UUID, description string) (*domain.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	if err := tx.UpdateDescription(description); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) UpdateCounterparty(ctx context.Context, txID uuid.UUID, counterparty *string) (*domain.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	if err := tx.UpdateCounterparty(counterparty); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// activeByAccount builds the lookup Transaction.ValidateBusinessRules needs.
func (s *transactionService) activeByAccount(ctx context.Context, tx *domain.Transaction) (map[uuid.UUID]bool, error) {
	active := make(map[uuid.UUID]bool, len(tx.Entries))
	for _, e := range tx.Entries {
		if _, ok := active[e.AccountID]; ok {
			continue
		}
		account, err := s.resolveAccount(ctx, e.AccountID)
		if err != nil {
			return nil, err
		}
		active[e.AccountID] = account.Active
	}
	return active, nil
}

func (s *transactionService) Post(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	active, err := s.activeByAccount(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Post(s.defaultCurrency, active); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) Unpost(ctx context.Context, txID uuid.UUID) (*domain.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	tx.Unpost()
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) StampOpeningBalance(ctx context.Context, txID uuid.UUID, iban string) (*domain.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	tx.StampOpeningBalance(iban)
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) StampAIResolution(ctx context.Context, txID uuid.UUID, res domain.AIResolution) (*domain.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	tx.StampAIResolution(res)
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) ExistsOpeningBalanceTransaction(ctx context.Context, userID uuid.UUID, iban string) (bool, error) {
	return s.repo.ExistsOpeningBalanceTransaction(ctx, userID, iban)
}

func (s *transactionService) ListByCounterpartyIBAN(ctx context.Context, userID uuid.UUID, iban string) ([]domain.Transaction, error) {
	return s.repo.ListByCounterpartyIBAN(ctx, userID, iban)
}

func (s *transactionService) ListByTransferCandidateHash(ctx context.Context, userID uuid.UUID, hash string) ([]domain.Transaction, error) {
	return s.repo.ListByTransferCandidateHash(ctx, userID, hash)
}

func (s *transactionService) StampTransferCandidateHash(ctx context.Context, txID uuid.UUID, hash string) (*domain.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	tx.StampTransferCandidateHash(hash)
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (s *transactionService) ConvertToInternalTransfer(ctx context.Context, txID, newAssetAccountID uuid.UUID, transferHash string) (*domain.Transaction, error) {
	tx, err := s.repo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	newAssetAccount, err := s.resolveAccount(ctx, newAssetAccountID)
	if err != nil {
		return nil, err
	}
	active, err := s.activeByAccount(ctx, tx)
	if err != nil {
		return nil, err
	}
	active[newAssetAccount.ID] = newAssetAccount.Active

	converted, err := tx.ConvertToInternalTransfer(newAssetAccount.ID, newAssetAccount.Name, transferHash, s.defaultCurrency, active)
	if err != nil {
		return nil, err
	}
	if !converted {
		return tx, nil
	}
	if err := s.repo.Save(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}
