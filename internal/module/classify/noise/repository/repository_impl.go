package repository

import (
	"context"
	"errors"

	"ledgersync/internal/module/classify/noise/domain"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// New creates a new noise model repository instance.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Model, error) {
	var m domain.Model
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *gormRepository) Save(ctx context.Context, model *domain.Model) error {
	return r.db.WithContext(ctx).Save(model).Error
}

func (r *gormRepository) ListAll(ctx context.Context) ([]domain.Model, error) {
	var models []domain.Model
	if err := r.db.WithContext(ctx).Find(&models).Error; err != nil {
		return nil, err
	}
	return models, nil
}
