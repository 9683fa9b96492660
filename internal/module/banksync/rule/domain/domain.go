// Package domain holds user- and system-defined counter-account rules:
// the second-priority counter-account resolution strategy, tried before
// falling back to the classification pipeline (spec §4.5 step 5).
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PatternType is the closed set of ways a rule can match a transaction.
type PatternType string

const (
	PatternCounterpartyName PatternType = "counterparty_name"
	PatternPurposeText      PatternType = "purpose_text"
	PatternAmountExact      PatternType = "amount_exact"
	PatternAmountRange      PatternType = "amount_range"
	PatternIBAN             PatternType = "iban"
	PatternCombined         PatternType = "combined"
)

// Source records who authored a rule.
type Source string

const (
	SourceSystem    Source = "system"
	SourceUser      Source = "user"
	SourceAILearned Source = "ai_learned"
	SourceAIGenerated Source = "ai_generated"
)

// Rule is a single counter-account resolution rule.
type Rule struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;column:user_id;index" json:"user_id"`
	PatternType   PatternType     `gorm:"type:varchar(30);not null;column:pattern_type" json:"pattern_type"`
	PatternValue  string          `gorm:"type:text;not null;column:pattern_value" json:"pattern_value"`
	AccountID     uuid.UUID       `gorm:"type:uuid;not null;column:account_id" json:"account_id"`
	Priority      int             `gorm:"not null;default:0;column:priority" json:"priority"`
	Source        Source          `gorm:"type:varchar(20);not null;column:source" json:"source"`
	Active        bool            `gorm:"not null;default:true;column:active" json:"active"`
	MatchCount    int             `gorm:"not null;default:0;column:match_count" json:"match_count"`

	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

func (Rule) TableName() string { return "banksync_counter_account_rules" }

// MatchInput carries the transaction fields a rule can be evaluated against.
type MatchInput struct {
	CounterpartyName string
	CounterpartyIBAN string
	Purpose          string
	Amount           decimal.Decimal // signed
}

// Matches reports whether the rule applies to the given transaction fields.
// Inactive rules never match, regardless of pattern.
func (r Rule) Matches(in MatchInput) bool {
	if !r.Active {
		return false
	}

	switch r.PatternType {
	case PatternCounterpartyName:
		return containsFold(in.CounterpartyName, r.PatternValue)
	case PatternPurposeText:
		return containsFold(in.Purpose, r.PatternValue)
	case PatternIBAN:
		return strings.EqualFold(strings.TrimSpace(in.CounterpartyIBAN), strings.TrimSpace(r.PatternValue))
	case PatternAmountExact:
		value, err := decimal.NewFromString(r.PatternValue)
		if err != nil {
			return false
		}
		return in.Amount.Abs().Equal(value.Abs())
	case PatternAmountRange:
		lo, hi, ok := parseRange(r.PatternValue)
		if !ok {
			return false
		}
		abs := in.Amount.Abs()
		return abs.GreaterThanOrEqual(lo) && abs.LessThanOrEqual(hi)
	case PatternCombined:
		return matchesCombined(r.PatternValue, in)
	default:
		return false
	}
}

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// parseRange parses a "low,high" pattern value.
func parseRange(value string) (decimal.Decimal, decimal.Decimal, bool) {
	parts := strings.SplitN(value, ",", 2)
	if len(parts) != 2 {
		return decimal.Zero, decimal.Zero, false
	}
	lo, err1 := decimal.NewFromString(strings.TrimSpace(parts[0]))
	hi, err2 := decimal.NewFromString(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil {
		return decimal.Zero, decimal.Zero, false
	}
	return lo, hi, true
}

// matchesCombined treats the pattern value as "counterparty_substring" and
// additionally requires the purpose text to contain it too — a stricter
// variant for disambiguating a common counterparty name across contexts.
func matchesCombined(value string, in MatchInput) bool {
	return containsFold(in.CounterpartyName, value) && containsFold(in.Purpose, value)
}

// ListFilter narrows ListByUserID.
type ListFilter struct {
	ActiveOnly bool
}
