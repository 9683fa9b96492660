// Package repository persists per-user noise models.
package repository

import (
	"context"

	"ledgersync/internal/module/classify/noise/domain"

	"github.com/google/uuid"
)

// Repository is the persistence port for noise models.
type Repository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.Model, error)
	Save(ctx context.Context, model *domain.Model) error
	// ListAll returns every user's noise model, for the nightly garbage
	// collection pass.
	ListAll(ctx context.Context) ([]domain.Model, error)
}
