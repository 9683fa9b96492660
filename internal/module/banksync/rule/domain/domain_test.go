package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRule_TableName(t *testing.T) {
	assert.Equal(t, "banksync_counter_account_rules", Rule{}.TableName())
}

func TestRule_Matches_InactiveNeverMatches(t *testing.T) {
	r := Rule{Active: false, PatternType: PatternCounterpartyName, PatternValue: "Netflix"}
	assert.False(t, r.Matches(MatchInput{CounterpartyName: "Netflix International"}))
}

func TestRule_Matches_CounterpartyName(t *testing.T) {
	r := Rule{Active: true, PatternType: PatternCounterpartyName, PatternValue: "netflix"}
	assert.True(t, r.Matches(MatchInput{CounterpartyName: "NETFLIX.COM"}))
	assert.False(t, r.Matches(MatchInput{CounterpartyName: "Spotify"}))
}

func TestRule_Matches_PurposeText(t *testing.T) {
	r := Rule{Active: true, PatternType: PatternPurposeText, PatternValue: "invoice"}
	assert.True(t, r.Matches(MatchInput{Purpose: "Invoice 2026-01 payment"}))
	assert.False(t, r.Matches(MatchInput{Purpose: "salary"}))
}

func TestRule_Matches_IBAN(t *testing.T) {
	r := Rule{Active: true, PatternType: PatternIBAN, PatternValue: " DE89370400440532013000 "}
	assert.True(t, r.Matches(MatchInput{CounterpartyIBAN: "de89370400440532013000"}))
	assert.False(t, r.Matches(MatchInput{CounterpartyIBAN: "DE00000000000000000000"}))
}

func TestRule_Matches_AmountExact(t *testing.T) {
	r := Rule{Active: true, PatternType: PatternAmountExact, PatternValue: "9.99"}
	assert.True(t, r.Matches(MatchInput{Amount: decimal.NewFromFloat(-9.99)}))
	assert.True(t, r.Matches(MatchInput{Amount: decimal.NewFromFloat(9.99)}))
	assert.False(t, r.Matches(MatchInput{Amount: decimal.NewFromFloat(10.00)}))
}

func TestRule_Matches_AmountExact_InvalidPatternNeverMatches(t *testing.T) {
	r := Rule{Active: true, PatternType: PatternAmountExact, PatternValue: "not-a-number"}
	assert.False(t, r.Matches(MatchInput{Amount: decimal.NewFromInt(10)}))
}

func TestRule_Matches_AmountRange(t *testing.T) {
	r := Rule{Active: true, PatternType: PatternAmountRange, PatternValue: "10, 20"}
	assert.True(t, r.Matches(MatchInput{Amount: decimal.NewFromInt(-15)}))
	assert.False(t, r.Matches(MatchInput{Amount: decimal.NewFromInt(25)}))
}

func TestRule_Matches_AmountRange_MalformedPatternNeverMatches(t *testing.T) {
	r := Rule{Active: true, PatternType: PatternAmountRange, PatternValue: "10-20"}
	assert.False(t, r.Matches(MatchInput{Amount: decimal.NewFromInt(15)}))
}

func TestRule_Matches_Combined_RequiresBothCounterpartyAndPurpose(t *testing.T) {
	r := Rule{Active: true, PatternType: PatternCombined, PatternValue: "amazon"}
	assert.True(t, r.Matches(MatchInput{CounterpartyName: "Amazon EU", Purpose: "Amazon order 123"}))
	assert.False(t, r.Matches(MatchInput{CounterpartyName: "Amazon EU", Purpose: "unrelated purpose"}))
}

func TestRule_Matches_UnknownPatternTypeNeverMatches(t *testing.T) {
	r := Rule{Active: true, PatternType: PatternType("unknown"), PatternValue: "x"}
	assert.False(t, r.Matches(MatchInput{}))
}

func TestRule_Matches_EmptyPatternValueNeverMatches(t *testing.T) {
	r := Rule{Active: true, PatternType: PatternCounterpartyName, PatternValue: ""}
	assert.False(t, r.Matches(MatchInput{CounterpartyName: "anything"}))
}
