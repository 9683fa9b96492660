// Package repository persists the anchor embedding store.
package repository

import (
	"context"

	"ledgersync/internal/module/classify/anchor/domain"

	"github.com/google/uuid"
)

// Repository is the persistence port for anchor embeddings.
type Repository interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Anchor, error)
	// Upsert replaces the anchor for (userID, accountID) if one exists, or
	// creates it otherwise.
	Upsert(ctx context.Context, userID, accountID uuid.UUID, vector []float32) error
}
