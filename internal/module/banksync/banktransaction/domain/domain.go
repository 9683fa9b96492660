// Package domain holds the content-addressed raw bank transaction store
// (spec §4.2): the record of what the bank actually reported, independent
// of how it was later booked into the ledger.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BankTransaction is one line item as reported by the bank adapter, before
// dedup/sequencing. Fetched transactions carry no id or sequence yet.
type BankTransaction struct {
	IBAN             string
	BookingDate      time.Time
	ValueDate        time.Time
	Amount           decimal.Decimal // signed: negative = outgoing
	Currency         string
	Purpose          string
	ApplicantName    *string
	ApplicantIBAN    *string
	ApplicantBIC     *string
	BankReference    *string
	CustomerRef      *string
	EndToEndRef      *string
	MandateRef       *string
}

// IdentityHash derives a stable key over the fields that make a bank
// transaction what it is, independent of any sequence disambiguation.
// Two real occurrences of the same counterparty/date/amount (e.g. two
// identical refunds on one day) hash identically by design; hash-sequence
// is what tells them apart.
func (t BankTransaction) IdentityHash() string {
	h := sha256.New()
	applicantName := ""
	if t.ApplicantName != nil {
		applicantName = *t.ApplicantName
	}
	applicantIBAN := ""
	if t.ApplicantIBAN != nil {
		applicantIBAN = *t.ApplicantIBAN
	}
	endToEnd := ""
	if t.EndToEndRef != nil {
		endToEnd = *t.EndToEndRef
	}

	parts := []string{
		t.BookingDate.Format("2006-01-02"),
		t.Amount.StringFixed(2),
		t.Currency,
		strings.TrimSpace(t.Purpose),
		strings.TrimSpace(applicantName),
		strings.TrimSpace(applicantIBAN),
		strings.TrimSpace(endToEnd),
	}
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))
}

// StoredBankTransaction is a BankTransaction after dedup, with the identity
// carried forward and a flag marking whether the Import Coordinator has
// finalised an accounting transaction for it.
type StoredBankTransaction struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;column:user_id;index" json:"user_id"`
	IBAN          string    `gorm:"type:varchar(34);not null;column:iban" json:"iban"`
	BookingDate   time.Time `gorm:"not null;column:booking_date;index" json:"booking_date"`
	ValueDate     time.Time `gorm:"not null;column:value_date" json:"value_date"`
	Amount        decimal.Decimal `gorm:"type:numeric(18,2);not null;column:amount" json:"amount"`
	Currency      string    `gorm:"type:varchar(3);not null;column:currency" json:"currency"`
	Purpose       string    `gorm:"type:text;column:purpose" json:"purpose"`
	ApplicantName *string   `gorm:"type:varchar(255);column:applicant_name" json:"applicant_name,omitempty"`
	ApplicantIBAN *string   `gorm:"type:varchar(34);column:applicant_iban" json:"applicant_iban,omitempty"`
	ApplicantBIC  *string   `gorm:"type:varchar(11);column:applicant_bic" json:"applicant_bic,omitempty"`
	BankReference *string   `gorm:"type:varchar(255);column:bank_reference" json:"bank_reference,omitempty"`
	CustomerRef   *string   `gorm:"type:varchar(255);column:customer_ref" json:"customer_ref,omitempty"`
	EndToEndRef   *string   `gorm:"type:varchar(255);column:end_to_end_ref" json:"end_to_end_ref,omitempty"`
	MandateRef    *string   `gorm:"type:varchar(255);column:mandate_ref" json:"mandate_ref,omitempty"`

	IdentityHash string `gorm:"type:varchar(64);not null;column:identity_hash;index:idx_bank_tx_identity,unique" json:"identity_hash"`
	HashSequence int    `gorm:"not null;column:hash_sequence;index:idx_bank_tx_identity,unique" json:"hash_sequence"`
	IsImported   bool   `gorm:"not null;default:false;column:is_imported" json:"is_imported"`

	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (StoredBankTransaction) TableName() string { return "banksync_bank_transactions" }

// SavedTransaction pairs a stored record with whether this save call
// actually created it, per save_batch_with_deduplication's contract.
type SavedTransaction struct {
	Record StoredBankTransaction
	IsNew  bool
}

// ListFilter narrows Query.
type ListFilter struct {
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
}
