package repository

import (
	"context"
	"errors"

	"ledgersync/internal/module/banksync/mapping/domain"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// New creates a new account mapping repository instance.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByIBAN(ctx context.Context, userID uuid.UUID, iban string) (*domain.AccountMapping, error) {
	var m domain.AccountMapping
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND iban = ? AND active = ?", userID, iban, true).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.AccountMapping, error) {
	var rows []domain.AccountMapping
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gormRepository) Save(ctx context.Context, mapping *domain.AccountMapping) error {
	return r.db.WithContext(ctx).Save(mapping).Error
}
