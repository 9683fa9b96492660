// Package domain holds the mapping from an external bank IBAN to the
// accounting account it books against (spec §3 AccountMapping).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountMapping is the one active (user, IBAN) -> account binding.
type AccountMapping struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;column:user_id;index:idx_mapping_user_iban,unique" json:"user_id"`
	IBAN        string    `gorm:"type:varchar(34);not null;column:iban;index:idx_mapping_user_iban,unique" json:"iban"`
	AccountID   uuid.UUID `gorm:"type:uuid;not null;column:account_id" json:"account_id"`
	DisplayName string    `gorm:"type:varchar(255);column:display_name" json:"display_name"`
	Active      bool      `gorm:"not null;default:true;column:active" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (AccountMapping) TableName() string { return "banksync_account_mappings" }
