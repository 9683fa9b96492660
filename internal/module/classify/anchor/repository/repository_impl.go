package repository

import (
	"context"

	"ledgersync/internal/module/classify/anchor/domain"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormRepository struct {
	db *gorm.DB
}

// New creates a new anchor embedding repository instance.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Anchor, error) {
	var rows []domain.Anchor
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gormRepository) Upsert(ctx context.Context, userID, accountID uuid.UUID, vector []float32) error {
	anchor := &domain.Anchor{
		ID:        uuid.New(),
		UserID:    userID,
		AccountID: accountID,
		Vector:    datatypes.NewJSONType(vector),
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "account_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"vector", "updated_at"}),
		}).
		Create(anchor).Error
}
