package repository

import (
	"context"
	"errors"

	"ledgersync/internal/database"
	"ledgersync/internal/module/banksync/importaudit/domain"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// New creates a new import audit repository instance.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByBankTransactionID(ctx context.Context, bankTransactionID uuid.UUID) (*domain.Import, error) {
	var imp domain.Import
	err := database.Resolve(ctx, r.db).WithContext(ctx).Where("bank_transaction_id = ?", bankTransactionID).First(&imp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &imp, nil
}

// Save upserts on bank_transaction_id so a retried import attempt updates
// the same audit row rather than violating its uniqueness constraint.
func (r *gormRepository) Save(ctx context.Context, imp *domain.Import) error {
	var existing domain.Import
	err := database.Resolve(ctx, r.db).WithContext(ctx).Where("bank_transaction_id = ?", imp.BankTransactionID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if imp.ID == (uuid.UUID{}) {
			imp.ID = uuid.New()
		}
		return database.Resolve(ctx, r.db).WithContext(ctx).Create(imp).Error
	}
	if err != nil {
		return err
	}
	imp.ID = existing.ID
	return database.Resolve(ctx, r.db).WithContext(ctx).Save(imp).Error
}
