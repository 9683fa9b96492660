package repository

import (
	"context"

	"ledgersync/internal/module/classify/example/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// New creates a new example embedding repository instance.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Example, error) {
	var rows []domain.Example
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gormRepository) Append(ctx context.Context, example *domain.Example) error {
	return r.db.WithContext(ctx).Create(example).Error
}

func (r *gormRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Example{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *gormRepository) DeleteOldest(ctx context.Context, userID uuid.UUID, n int) error {
	if n <= 0 {
		return nil
	}
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&domain.Example{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Limit(n).
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Example{}).Error
}
