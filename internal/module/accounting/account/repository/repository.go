// Package repository persists accounts for the accounting kernel.
package repository

import (
	"context"

	"ledgersync/internal/module/accounting/account/domain"
)

// Repository is the persistence port for accounts.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDAndUserID(ctx context.Context, id, userID string) (*domain.Account, error)
	GetByAccountNumber(ctx context.Context, userID, accountNumber string) (*domain.Account, error)
	ListByUserID(ctx context.Context, userID string, filter domain.ListFilter) ([]domain.Account, error)
	CountByUserID(ctx context.Context, userID string, filter domain.ListFilter) (int64, error)
	// ListChildren returns the direct children of an account.
	ListChildren(ctx context.Context, parentID string) ([]domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	UpdateColumns(ctx context.Context, id string, columns map[string]any) error
}
