package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccountType_NormalSide(t *testing.T) {
	tests := []struct {
		accountType AccountType
		want        EntrySide
	}{
		{AccountTypeAsset, EntrySideDebit},
		{AccountTypeExpense, EntrySideDebit},
		{AccountTypeLiability, EntrySideCredit},
		{AccountTypeEquity, EntrySideCredit},
		{AccountTypeIncome, EntrySideCredit},
	}
	for _, tt := range tests {
		t.Run(string(tt.accountType), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.accountType.NormalSide())
		})
	}
}

func TestAccount_TableName(t *testing.T) {
	assert.Equal(t, "accounting_accounts", Account{}.TableName())
}

func TestAccount_AcceptsPosting(t *testing.T) {
	active := Account{Active: true}
	inactive := Account{Active: false}

	assert.True(t, active.AcceptsPosting())
	assert.False(t, inactive.AcceptsPosting())
}
