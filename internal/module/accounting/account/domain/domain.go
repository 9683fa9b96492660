// Package domain holds the Account aggregate of the accounting kernel.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountType is immutable once an account is created.
type AccountType string

const (
	AccountTypeAsset     AccountType = "asset"
	AccountTypeLiability AccountType = "liability"
	AccountTypeEquity    AccountType = "equity"
	AccountTypeIncome    AccountType = "income"
	AccountTypeExpense   AccountType = "expense"
)

// NormalSide reports whether balances of this account type increase on the
// debit or the credit side, per standard double-entry convention.
func (t AccountType) NormalSide() EntrySide {
	switch t {
	case AccountTypeAsset, AccountTypeExpense:
		return EntrySideDebit
	default:
		return EntrySideCredit
	}
}

// EntrySide distinguishes the two legs of a journal entry.
type EntrySide string

const (
	EntrySideDebit  EntrySide = "debit"
	EntrySideCredit EntrySide = "credit"
)

// MaxHierarchyDepth bounds how many parent links an account chain may have.
const MaxHierarchyDepth = 3

// Account is a node in a user's chart of accounts.
type Account struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;column:user_id;index:idx_accounts_user_name,unique;index:idx_accounts_user_number,unique" json:"user_id"`
	Name          string     `gorm:"type:varchar(255);not null;column:name;index:idx_accounts_user_name,unique" json:"name"`
	Type          AccountType `gorm:"type:varchar(20);not null;column:type" json:"type"`
	AccountNumber string     `gorm:"type:varchar(50);not null;column:account_number;index:idx_accounts_user_number,unique" json:"account_number"`
	IBAN          *string    `gorm:"type:varchar(34);column:iban" json:"iban,omitempty"`
	ParentID      *uuid.UUID `gorm:"type:uuid;column:parent_id" json:"parent_id,omitempty"`
	Description   string     `gorm:"type:text;column:description" json:"description,omitempty"`
	Currency      string     `gorm:"type:varchar(3);not null;column:currency" json:"currency"`
	Active        bool       `gorm:"not null;default:true;column:active" json:"active"`

	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

// TableName matches the database table.
func (Account) TableName() string {
	return "accounting_accounts"
}

// AcceptsPosting reports whether this account may receive a new entry at
// all. Both debit and credit entries are legitimate on every account type
// under double-entry bookkeeping (an asset account is credited when money
// leaves it); the business rule the kernel enforces at post() step (ii) is
// narrower: an entry cannot land on a deactivated account.
func (a *Account) AcceptsPosting() bool {
	return a.Active
}

// ListFilter narrows ListByUserID/CountByUserID queries. Accounts are never
// physically deleted (spec §3: deactivated only, and only once childless and
// unreferenced by a posted entry), so there is no soft-delete flag to filter.
type ListFilter struct {
	Type   *AccountType
	Active *bool
}
