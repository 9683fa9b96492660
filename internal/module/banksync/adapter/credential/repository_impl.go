package credential

import (
	"context"
	"errors"
	"time"

	"ledgersync/internal/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// New creates a new bank credential repository instance.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) FindByUserIDAndBankCode(ctx context.Context, userID uuid.UUID, bankCode string) (*StoredCredential, error) {
	var row StoredCredential
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND bank_code = ?", userID, bankCode).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *gormRepository) Save(ctx context.Context, cred *StoredCredential) error {
	return r.db.WithContext(ctx).Save(cred).Error
}

func (r *gormRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&StoredCredential{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}

func (r *gormRepository) ListAll(ctx context.Context) ([]StoredCredential, error) {
	var rows []StoredCredential
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
