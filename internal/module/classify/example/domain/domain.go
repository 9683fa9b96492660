// Package domain holds the example embedding store: one row per previously
// posted counter-account attribution, used for warm-start classification
// (spec §4.6 tier 2, GLOSSARY "Example embedding").
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Example is one (text, account) pair the user has already confirmed,
// encoded once and reused for future cosine matches.
type Example struct {
	ID        uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID                      `gorm:"type:uuid;not null;column:user_id;index:idx_example_user,priority:1" json:"user_id"`
	AccountID uuid.UUID                      `gorm:"type:uuid;not null;column:account_id" json:"account_id"`
	Text      string                         `gorm:"type:text;not null;column:text" json:"text"`
	Vector    datatypes.JSONType[[]float32]  `gorm:"column:vector" json:"vector"`
	CreatedAt time.Time                      `gorm:"autoCreateTime;column:created_at;index:idx_example_user,priority:2" json:"created_at"`
}

func (Example) TableName() string { return "classify_examples" }

// New builds an example row ready to persist.
func New(userID, accountID uuid.UUID, text string, vector []float32) *Example {
	return &Example{
		ID:        uuid.New(),
		UserID:    userID,
		AccountID: accountID,
		Text:      text,
		Vector:    datatypes.NewJSONType(vector),
	}
}
