// Package repository persists transactions and their journal entries.
package repository

import (
	"context"

	"ledgersync/internal/module/accounting/transaction/domain"

	"github.com/google/uuid"
)

// Repository is the persistence port for transactions.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) ([]domain.Transaction, error)
	// ListByTransferCandidateHash finds candidate counterpart transactions for
	// transfer reconciliation (spec §4.4).
	ListByTransferCandidateHash(ctx context.Context, userID uuid.UUID, hash string) ([]domain.Transaction, error)
	// ExistsOpeningBalanceTransaction backs the Opening-Balance Service's
	// idempotency check (spec §4.3 step 1).
	ExistsOpeningBalanceTransaction(ctx context.Context, userID uuid.UUID, iban string) (bool, error)
	// ListByCounterpartyIBAN finds historical transactions to reconcile when
	// a user adds a new external account after imports are already posted
	// (spec §4.4 reconcile_for_new_account).
	ListByCounterpartyIBAN(ctx context.Context, userID uuid.UUID, iban string) ([]domain.Transaction, error)
	Create(ctx context.Context, tx *domain.Transaction) error
	// Save replaces a transaction's entries and scalar fields in one write,
	// since posting/unposting/converting all touch both.
	Save(ctx context.Context, tx *domain.Transaction) error
}
