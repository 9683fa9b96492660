// Package credential stores and resolves per-user bank credentials used to
// open an adapter.BankAdapter session, with secrets encrypted at rest.
package credential

import (
	"time"

	"github.com/google/uuid"
)

// StoredCredential is one user's persisted connection to one bank. Secrets
// is the JSON-encoded secret bundle (login, PIN, whatever the bank requires)
// encrypted with the server's AES-256-GCM key before it ever reaches the
// database; nothing sensitive is stored in cleartext.
type StoredCredential struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID `gorm:"type:uuid;not null;index:idx_credential_user_bank,unique"`
	BankCode        string    `gorm:"not null;index:idx_credential_user_bank,unique"`
	Endpoint        string    `gorm:"not null"`
	EncryptedSecrets string   `gorm:"column:encrypted_secrets;not null"`
	TANMethod       string    `gorm:""`
	TANMedium       string    `gorm:""`
	LastUsedAt      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (StoredCredential) TableName() string { return "bank_credentials" }
