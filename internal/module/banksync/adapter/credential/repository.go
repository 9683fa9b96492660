package credential

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists bank credential records.
type Repository interface {
	FindByUserIDAndBankCode(ctx context.Context, userID uuid.UUID, bankCode string) (*StoredCredential, error)
	Save(ctx context.Context, cred *StoredCredential) error
	UpdateLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	// ListAll returns every stored bank connection, across all users. The
	// sync worker uses this to discover what needs syncing on each tick, and
	// the classification maintenance worker uses it to enumerate users.
	ListAll(ctx context.Context) ([]StoredCredential, error)
}
