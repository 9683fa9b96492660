// Package domain holds the anchor embedding store: one vector per eligible
// counter-account, computed from its name and description, used for
// cold-start classification when no examples exist yet (spec §4.6 tier 4,
// GLOSSARY "Anchor embedding").
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Anchor is the current embedding for one account's name+description.
// Unique per (user, account) — recomputing an anchor overwrites the prior
// vector rather than accumulating history.
type Anchor struct {
	ID        uuid.UUID                     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID                     `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_anchor_user_account" json:"user_id"`
	AccountID uuid.UUID                     `gorm:"type:uuid;not null;column:account_id;uniqueIndex:idx_anchor_user_account" json:"account_id"`
	Vector    datatypes.JSONType[[]float32] `gorm:"column:vector" json:"vector"`
	UpdatedAt time.Time                     `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Anchor) TableName() string { return "classify_anchors" }
