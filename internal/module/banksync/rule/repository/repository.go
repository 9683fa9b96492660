// Package repository persists counter-account rules.
package repository

import (
	"context"

	"ledgersync/internal/module/banksync/rule/domain"

	"github.com/google/uuid"
)

// Repository is the persistence port for counter-account rules.
type Repository interface {
	// ListByUserIDOrderedByPriority returns only active rules, ordered
	// highest priority first, the order the Import Coordinator evaluates
	// them in (spec §4.5 step 5).
	ListByUserIDOrderedByPriority(ctx context.Context, userID uuid.UUID) ([]domain.Rule, error)
	IncrementMatchCount(ctx context.Context, id uuid.UUID) error
	Save(ctx context.Context, rule *domain.Rule) error
}
