// Package domain holds the import audit trail: exactly one record per
// attempted bank-transaction import, carrying its terminal status (spec §3).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the closed set of outcomes an import attempt can reach.
// Replaces the source's duck-typed status strings (spec §9): only these
// variants are ever constructed; any legacy string form is translated at
// the storage boundary, never accepted as a runtime value.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSuccess   Status = "success"
	StatusDuplicate Status = "duplicate"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Import is the audit record for one bank-transaction import attempt.
type Import struct {
	ID                   uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID  `gorm:"type:uuid;not null;column:user_id;index" json:"user_id"`
	BankTransactionID    uuid.UUID  `gorm:"type:uuid;not null;column:bank_transaction_id;index:idx_import_bank_tx,unique" json:"bank_transaction_id"`
	Status               Status     `gorm:"type:varchar(20);not null;column:status" json:"status"`
	AccountingTransactionID *uuid.UUID `gorm:"type:uuid;column:accounting_transaction_id" json:"accounting_transaction_id,omitempty"`
	WasReconciled        bool       `gorm:"not null;default:false;column:was_reconciled" json:"was_reconciled"`
	ErrorMessage         *string    `gorm:"type:text;column:error_message" json:"error_message,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Import) TableName() string { return "banksync_import_audits" }
