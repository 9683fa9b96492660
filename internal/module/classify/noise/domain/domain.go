// Package domain holds the per-user noise model: a document-frequency
// table over purpose-text tokens, used to drop boilerplate words before
// embedding (spec §4.6 tier 1).
package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Model tracks how many observed purpose texts ("documents") each token
// appeared in, plus the total document count the ratio is relative to.
type Model struct {
	ID             uuid.UUID                            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID                             `gorm:"type:uuid;not null;column:user_id;uniqueIndex" json:"user_id"`
	DocFrequency   datatypes.JSONType[map[string]int]    `gorm:"column:doc_frequency" json:"doc_frequency"`
	TotalDocuments int                                   `gorm:"not null;default:0;column:total_documents" json:"total_documents"`
	UpdatedAt      time.Time                              `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Model) TableName() string { return "classify_noise_models" }

// New builds an empty model for a user who has never been observed.
func New(userID uuid.UUID) *Model {
	return &Model{
		ID:           uuid.New(),
		UserID:       userID,
		DocFrequency: datatypes.NewJSONType(map[string]int{}),
	}
}

// Ratio reports how often token appeared across observed documents, 0 if
// the model has never seen a document.
func (m *Model) Ratio(token string) float64 {
	if m.TotalDocuments == 0 {
		return 0
	}
	freq := m.DocFrequency.Data()
	return float64(freq[token]) / float64(m.TotalDocuments)
}

// Observe increments the document-frequency count of every distinct token
// in tokens (one document, regardless of in-document repeats) and bumps
// the total document count by one. dampenerCap saturates an individual
// token's count: once a token hits the cap its count stops climbing, so a
// token that goes quiet afterwards drifts back below the noise threshold
// as TotalDocuments keeps growing, instead of being remembered as
// permanent boilerplate from a single noisy period.
func (m *Model) Observe(tokens []string, dampenerCap int) {
	freq := m.DocFrequency.Data()
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		if tok == "" || seen[tok] {
			continue
		}
		seen[tok] = true
		if dampenerCap <= 0 || freq[tok] < dampenerCap {
			freq[tok]++
		}
	}
	m.TotalDocuments++
	m.DocFrequency = datatypes.NewJSONType(freq)
}

// Prune drops tokens whose document-frequency count is below minCount. The
// table otherwise grows without bound, one entry per distinct token ever
// observed, most of which settle at a count of one or two and never again
// influence Ratio meaningfully; this is the nightly garbage collection pass
// that keeps it bounded.
func (m *Model) Prune(minCount int) int {
	freq := m.DocFrequency.Data()
	removed := 0
	for tok, count := range freq {
		if count < minCount {
			delete(freq, tok)
			removed++
		}
	}
	m.DocFrequency = datatypes.NewJSONType(freq)
	return removed
}
