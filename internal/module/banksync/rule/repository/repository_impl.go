package repository

import (
	"context"

	"ledgersync/internal/module/banksync/rule/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// New creates a new counter-account rule repository instance.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListByUserIDOrderedByPriority(ctx context.Context, userID uuid.UUID) ([]domain.Rule, error) {
	var rows []domain.Rule
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND active = ?", userID, true).
		Order("priority DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gormRepository) IncrementMatchCount(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.Rule{}).
		Where("id = ?", id).
		UpdateColumn("match_count", gorm.Expr("match_count + 1")).Error
}

func (r *gormRepository) Save(ctx context.Context, rule *domain.Rule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}
