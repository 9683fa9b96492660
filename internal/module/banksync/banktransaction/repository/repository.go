// Package repository persists the content-addressed bank transaction store.
package repository

import (
	"context"
	"time"

	"ledgersync/internal/module/banksync/banktransaction/domain"

	"github.com/google/uuid"
)

// Repository is the persistence port for stored bank transactions.
type Repository interface {
	// SaveBatchWithDeduplication allocates (identity-hash, hash-sequence)
	// pairs within the batch and checks each against existing rows for the
	// IBAN, returning one SavedTransaction per input in input order.
	SaveBatchWithDeduplication(ctx context.Context, userID uuid.UUID, iban string, txs []domain.BankTransaction) ([]domain.SavedTransaction, error)
	Query(ctx context.Context, userID uuid.UUID, iban string, filter domain.ListFilter) ([]domain.StoredBankTransaction, error)
	LatestBookingDate(ctx context.Context, userID uuid.UUID, iban string) (*time.Time, error)
	MarkImported(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredBankTransaction, error)
}
