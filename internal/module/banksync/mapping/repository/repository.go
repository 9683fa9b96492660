// Package repository persists account mappings.
package repository

import (
	"context"

	"ledgersync/internal/module/banksync/mapping/domain"

	"github.com/google/uuid"
)

// Repository is the persistence port for account mappings.
type Repository interface {
	FindByIBAN(ctx context.Context, userID uuid.UUID, iban string) (*domain.AccountMapping, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.AccountMapping, error)
	Save(ctx context.Context, mapping *domain.AccountMapping) error
}
