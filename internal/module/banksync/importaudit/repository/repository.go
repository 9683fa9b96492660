// Package repository persists import audit records.
package repository

import (
	"context"

	"ledgersync/internal/module/banksync/importaudit/domain"

	"github.com/google/uuid"
)

// Repository is the persistence port for import audit records.
type Repository interface {
	FindByBankTransactionID(ctx context.Context, bankTransactionID uuid.UUID) (*domain.Import, error)
	Save(ctx context.Context, imp *domain.Import) error
}
