package repository

import (
	"context"
	"errors"

	"ledgersync/internal/module/accounting/account/domain"
	"ledgersync/internal/shared"

	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// New creates a new account repository instance.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *gormRepository) GetByIDAndUserID(ctx context.Context, id, userID string) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.WithContext(ctx).
		First(&account, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *gormRepository) GetByAccountNumber(ctx context.Context, userID, accountNumber string) (*domain.Account, error) {
	var account domain.Account
	if err := r.db.WithContext(ctx).
		First(&account, "user_id = ? AND account_number = ?", userID, accountNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

func (r *gormRepository) ListByUserID(ctx context.Context, userID string, filter domain.ListFilter) ([]domain.Account, error) {
	var accounts []domain.Account
	query := r.applyFilters(r.db, filter)

	if err := query.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("account_number ASC").
		Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *gormRepository) CountByUserID(ctx context.Context, userID string, filter domain.ListFilter) (int64, error) {
	var count int64
	query := r.applyFilters(r.db, filter)

	if err := query.WithContext(ctx).
		Model(&domain.Account{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *gormRepository) ListChildren(ctx context.Context, parentID string) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := r.db.WithContext(ctx).Where("parent_id = ?", parentID).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

func (r *gormRepository) applyFilters(db *gorm.DB, filter domain.ListFilter) *gorm.DB {
	q := db
	if filter.Type != nil {
		q = q.Where("type = ?", *filter.Type)
	}
	if filter.Active != nil {
		q = q.Where("active = ?", *filter.Active)
	}
	return q
}

func (r *gormRepository) Create(ctx context.Context, account *domain.Account) error {
	return r.db.WithContext(ctx).Create(account).Error
}

func (r *gormRepository) Update(ctx context.Context, account *domain.Account) error {
	return r.db.WithContext(ctx).Save(account).Error
}

func (r *gormRepository) UpdateColumns(ctx context.Context, id string, columns map[string]any) error {
	result := r.db.WithContext(ctx).Model(&domain.Account{}).
		Where("id = ?", id).
		Updates(columns)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
