// Package repository persists the example embedding store.
package repository

import (
	"context"

	"ledgersync/internal/module/classify/example/domain"

	"github.com/google/uuid"
)

// Repository is the persistence port for example embeddings.
type Repository interface {
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.Example, error)
	Append(ctx context.Context, example *domain.Example) error
	// CountByUserID backs the FIFO cap: once a user's example count reaches
	// the configured ceiling, the oldest row is evicted before a new one
	// is appended.
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteOldest(ctx context.Context, userID uuid.UUID, n int) error
}
