// Package domain holds the Transaction aggregate of the accounting kernel:
// a set of balanced journal entries plus the invariants that keep double
// entry bookkeeping honest (spec §4.1).
package domain

import (
	"time"

	accountdomain "ledgersync/internal/module/accounting/account/domain"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// TransactionSource records where a transaction originated.
type TransactionSource string

const (
	SourceManual     TransactionSource = "manual"
	SourceBankImport TransactionSource = "bank_import"
)

// AIResolution records how the classification pipeline resolved a category
// entry, for audit and for feeding accepted/corrected matches back into the
// example store.
type AIResolution struct {
	Model      string     `json:"model,omitempty"`
	Confidence float64    `json:"confidence,omitempty"`
	AccountID  *uuid.UUID `json:"account_id,omitempty"`
	Tier       string     `json:"tier,omitempty"`
}

// TransactionMetadata is the enumerated, validated replacement for a
// free-form key/value bag. Every field the system actually consults is
// named here; nothing reads an untyped map.
type TransactionMetadata struct {
	Source               string        `json:"source,omitempty"`
	OpeningBalance       bool          `json:"opening_balance,omitempty"`
	OpeningBalanceIBAN   *string       `json:"opening_balance_iban,omitempty"`
	SourceAccount        *string       `json:"source_account,omitempty"`
	DestinationAccount   *string       `json:"destination_account,omitempty"`
	TransferIdentityHash *string       `json:"transfer_identity_hash,omitempty"`
	AIResolution         *AIResolution `json:"ai_resolution,omitempty"`
}

// JournalEntry is one leg of a transaction. AccountType is denormalized at
// entry-creation time: account type is immutable for the account's lifetime
// (spec §3), so the entry can answer protection and business-rule questions
// without a join back to the account table.
type JournalEntry struct {
	ID            uuid.UUID                `gorm:"type:uuid;primaryKey" json:"id"`
	TransactionID uuid.UUID                `gorm:"type:uuid;not null;column:transaction_id;index" json:"transaction_id"`
	AccountID     uuid.UUID                `gorm:"type:uuid;not null;column:account_id;index" json:"account_id"`
	AccountType   accountdomain.AccountType `gorm:"type:varchar(20);not null;column:account_type" json:"account_type"`
	Side          accountdomain.EntrySide   `gorm:"type:varchar(10);not null;column:side" json:"side"`
	Amount        decimal.Decimal          `gorm:"type:numeric(18,2);not null;column:amount" json:"amount"`
	CreatedAt     time.Time                `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

func (JournalEntry) TableName() string { return "accounting_journal_entries" }

func (e JournalEntry) IsDebit() bool  { return e.Side == accountdomain.EntrySideDebit }
func (e JournalEntry) IsCredit() bool { return e.Side == accountdomain.EntrySideCredit }

// Transaction is the aggregate root: a balanced set of journal entries with
// a lifecycle of draft -> posted (immutable).
type Transaction struct {
	ID                 uuid.UUID                                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID                                   `gorm:"type:uuid;not null;column:user_id;index" json:"user_id"`
	Description        string                                      `gorm:"type:text;not null;column:description" json:"description"`
	Date               time.Time                                   `gorm:"not null;column:date;index" json:"date"`
	Counterparty       *string                                     `gorm:"type:varchar(255);column:counterparty" json:"counterparty,omitempty"`
	CounterpartyIBAN   *string                                     `gorm:"type:varchar(34);column:counterparty_iban" json:"counterparty_iban,omitempty"`
	Source             TransactionSource                           `gorm:"type:varchar(20);not null;column:source" json:"source"`
	SourceIBAN         *string                                     `gorm:"type:varchar(34);column:source_iban" json:"source_iban,omitempty"`
	Currency           string                                      `gorm:"type:varchar(3);not null;column:currency" json:"currency"`
	IsInternalTransfer bool                                        `gorm:"not null;default:false;column:is_internal_transfer" json:"is_internal_transfer"`
	// TransferIdentityHash is denormalized out of Metadata so reconciliation
	// can look up the counterpart leg with an indexed equality query instead
	// of a JSON scan.
	TransferIdentityHash *string                                   `gorm:"type:varchar(64);column:transfer_identity_hash;index" json:"transfer_identity_hash,omitempty"`
	// OpeningBalanceIBAN mirrors Metadata.OpeningBalanceIBAN as an indexed
	// column for the same reason TransferIdentityHash is denormalized: the
	// Opening-Balance Service's idempotency check needs an equality lookup
	// the JSONB-in-SQLite test driver can't index efficiently.
	OpeningBalanceIBAN *string                                    `gorm:"type:varchar(34);column:opening_balance_iban;index" json:"opening_balance_iban,omitempty"`
	Metadata           datatypes.JSONType[TransactionMetadata]     `gorm:"column:metadata" json:"metadata"`
	Posted             bool                                        `gorm:"not null;default:false;column:posted" json:"posted"`
	CreatedAt          time.Time                                   `gorm:"autoCreateTime;column:created_at" json:"created_at"`

	Entries []JournalEntry `gorm:"foreignKey:TransactionID" json:"entries,omitempty"`
}

func (Transaction) TableName() string { return "accounting_transactions" }

// New constructs a draft transaction. Metadata.Source is always synced to
// the first-class Source field.
func New(userID uuid.UUID, description string, date time.Time, source TransactionSource, currency string) *Transaction {
	meta := TransactionMetadata{Source: string(source)}
	return &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Description: description,
		Date:        date,
		Source:      source,
		Currency:    currency,
		Metadata:    datatypes.NewJSONType(meta),
		CreatedAt:   time.Now().UTC(),
	}
}

func (t *Transaction) ensureDraft() error {
	if t.Posted {
		return shared.ErrPostedImmutable
	}
	return nil
}

// AddEntry appends one journal leg. Entries of the same currency as the
// transaction are assumed; currency consistency is checked at ValidateDoubleEntry.
func (t *Transaction) AddEntry(accountID uuid.UUID, accountType accountdomain.AccountType, side accountdomain.EntrySide, amount decimal.Decimal) error {
	if err := t.ensureDraft(); err != nil {
		return err
	}
	if amount.IsZero() {
		return shared.ErrZeroAmount
	}

	t.Entries = append(t.Entries, JournalEntry{
		ID:            uuid.New(),
		TransactionID: t.ID,
		AccountID:     accountID,
		AccountType:   accountType,
		Side:          side,
		Amount:        amount,
		CreatedAt:     time.Now().UTC(),
	})
	return nil
}

func (t *Transaction) AddDebit(accountID uuid.UUID, accountType accountdomain.AccountType, amount decimal.Decimal) error {
	return t.AddEntry(accountID, accountType, accountdomain.EntrySideDebit, amount)
}

func (t *Transaction) AddCredit(accountID uuid.UUID, accountType accountdomain.AccountType, amount decimal.Decimal) error {
	return t.AddEntry(accountID, accountType, accountdomain.EntrySideCredit, amount)
}

// RemoveEntry drops a single entry by id. Protected entries refuse removal.
func (t *Transaction) RemoveEntry(entryID uuid.UUID) error {
	if err := t.ensureDraft(); err != nil {
		return err
	}
	for _, e := range t.Entries {
		if e.ID == entryID && t.IsEntryProtected(e) {
			return shared.ErrProtectedEntry
		}
	}
	filtered := t.Entries[:0]
	for _, e := range t.Entries {
		if e.ID != entryID {
			filtered = append(filtered, e)
		}
	}
	t.Entries = filtered
	return nil
}

// ClearEntries drops all unprotected (category) entries. For a bank import
// the asset-side entries that mirror the bank statement are preserved.
func (t *Transaction) ClearEntries() error {
	if err := t.ensureDraft(); err != nil {
		return err
	}
	if t.IsBankImport() {
		kept := t.Entries[:0]
		for _, e := range t.Entries {
			if t.IsEntryProtected(e) {
				kept = append(kept, e)
			}
		}
		t.Entries = kept
		return nil
	}
	t.Entries = nil
	return nil
}

// UpdateDescription replaces the description. Posted transactions are immutable.
func (t *Transaction) UpdateDescription(description string) error {
	if err := t.ensureDraft(); err != nil {
		return err
	}
	if description == "" {
		return shared.ErrValidation.WithDetails("field", "description")
	}
	t.Description = description
	return nil
}

// UpdateCounterparty replaces the counterparty name. Posted transactions are immutable.
func (t *Transaction) UpdateCounterparty(counterparty *string) error {
	if err := t.ensureDraft(); err != nil {
		return err
	}
	t.Counterparty = counterparty
	return nil
}

// IsBankImport reports whether this transaction originated from bank sync.
func (t *Transaction) IsBankImport() bool {
	return t.Source == SourceBankImport
}

// IsEntryProtected reports whether entry is a bank-imported asset leg that
// reconciliation depends on and that may never be rewritten.
func (t *Transaction) IsEntryProtected(entry JournalEntry) bool {
	if !t.IsBankImport() {
		return false
	}
	return entry.AccountType == accountdomain.AccountTypeAsset
}

// ProtectedEntries returns the entries IsEntryProtected accepts.
func (t *Transaction) ProtectedEntries() []JournalEntry {
	if !t.IsBankImport() {
		return nil
	}
	var out []JournalEntry
	for _, e := range t.Entries {
		if e.AccountType == accountdomain.AccountTypeAsset {
			out = append(out, e)
		}
	}
	return out
}

const minEntries = 2

// ValidateDoubleEntry enforces: at least two legs, one shared currency equal
// to the system default, and sum(debits) == sum(credits).
func (t *Transaction) ValidateDoubleEntry(defaultCurrency string) error {
	if len(t.Entries) < minEntries {
		return shared.ErrEmptyTransaction
	}

	if t.Currency != defaultCurrency {
		return shared.ErrUnsupportedCurrency.WithDetails("currency", t.Currency)
	}

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero
	for _, e := range t.Entries {
		if e.IsDebit() {
			totalDebit = totalDebit.Add(e.Amount)
		} else {
			totalCredit = totalCredit.Add(e.Amount)
		}
	}

	if !totalDebit.Equal(totalCredit) {
		return shared.ErrUnbalanced.
			WithDetails("debit", totalDebit.String()).
			WithDetails("credit", totalCredit.String())
	}
	return nil
}

// ValidateBusinessRules refuses postings against a deactivated account.
// Only entries whose account id is present in activeByAccount are checked;
// an account missing from the map (or a nil map) is not rejected.
func (t *Transaction) ValidateBusinessRules(activeByAccount map[uuid.UUID]bool) error {
	for _, e := range t.Entries {
		if active, ok := activeByAccount[e.AccountID]; ok && !active {
			return shared.ErrBusinessRuleViolation.WithDetails("account_id", e.AccountID.String())
		}
	}
	return nil
}

// Post validates and freezes the transaction.
func (t *Transaction) Post(defaultCurrency string, activeByAccount map[uuid.UUID]bool) error {
	if err := t.ensureDraft(); err != nil {
		return err
	}
	if err := t.ValidateDoubleEntry(defaultCurrency); err != nil {
		return err
	}
	if err := t.ValidateBusinessRules(activeByAccount); err != nil {
		return err
	}
	t.Posted = true
	return nil
}

// Unpost reopens a posted transaction for correction.
func (t *Transaction) Unpost() {
	t.Posted = false
}

// TotalAmount sums the debit side, which equals the credit side once balanced.
func (t *Transaction) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, e := range t.Entries {
		if e.IsDebit() {
			total = total.Add(e.Amount)
		}
	}
	return total
}

// InvolvesAccount reports whether any entry targets accountID.
func (t *Transaction) InvolvesAccount(accountID uuid.UUID) bool {
	for _, e := range t.Entries {
		if e.AccountID == accountID {
			return true
		}
	}
	return false
}

// NewEntryInput describes one leg for ReplaceUnprotectedEntries.
type NewEntryInput struct {
	AccountID   uuid.UUID
	AccountType accountdomain.AccountType
	Side        accountdomain.EntrySide
	Amount      decimal.Decimal
}

// ReplaceUnprotectedEntries swaps the category legs for a fresh set while
// preserving any protected bank-import legs.
func (t *Transaction) ReplaceUnprotectedEntries(entries []NewEntryInput) error {
	if err := t.ensureDraft(); err != nil {
		return err
	}
	if err := t.ClearEntries(); err != nil {
		return err
	}
	for _, in := range entries {
		if err := t.AddEntry(in.AccountID, in.AccountType, in.Side, in.Amount); err != nil {
			return err
		}
	}
	return nil
}

func (t *Transaction) metadata() TransactionMetadata {
	return t.Metadata.Data()
}

func (t *Transaction) setMetadata(m TransactionMetadata) {
	t.Metadata = datatypes.NewJSONType(m)
}

// ConvertToInternalTransfer rewrites an external income/expense transaction
// into an Asset<->Asset transfer once the counterpart leg on the other of
// the user's own accounts has been matched (spec §4.4). Returns false if the
// transaction has no income/expense leg to convert.
func (t *Transaction) ConvertToInternalTransfer(
	newAssetAccountID uuid.UUID,
	newAssetAccountName string,
	transferHash string,
	defaultCurrency string,
	activeByAccount map[uuid.UUID]bool,
) (bool, error) {
	wasPosted := t.Posted
	if wasPosted {
		t.Unpost()
	}

	incomeExpense, asset := t.findConvertibleEntries()
	if incomeExpense == nil {
		if wasPosted {
			if err := t.Post(defaultCurrency, activeByAccount); err != nil {
				return false, err
			}
		}
		return false, nil
	}

	if err := t.rebuildAsTransfer(*incomeExpense, asset, newAssetAccountID); err != nil {
		return false, err
	}

	var sourceName *string
	if asset != nil {
		// The domain only knows entry account ids and no caller passes the
		// source account's name, so SourceAccount stays unset in the metadata.
		sourceName = nil
	}

	t.markAsInternalTransfer(sourceName, newAssetAccountName, transferHash)
	t.updateTransferDescription(newAssetAccountName, asset)

	if wasPosted {
		if err := t.Post(defaultCurrency, activeByAccount); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (t *Transaction) findConvertibleEntries() (*JournalEntry, *JournalEntry) {
	var incomeExpense, asset *JournalEntry
	for i := range t.Entries {
		e := &t.Entries[i]
		switch e.AccountType {
		case accountdomain.AccountTypeIncome, accountdomain.AccountTypeExpense:
			incomeExpense = e
		case accountdomain.AccountTypeAsset:
			asset = e
		}
	}
	return incomeExpense, asset
}

// rebuildAsTransfer mirrors the Python conversion: a debited expense becomes
// a debited new-asset leg (money moving to the destination); a credited
// income becomes a credited new-asset leg (money coming from the source).
// For bank imports ClearEntries already preserved the asset leg, so it is
// not re-added.
func (t *Transaction) rebuildAsTransfer(incomeExpense JournalEntry, asset *JournalEntry, newAssetAccountID uuid.UUID) error {
	if err := t.ClearEntries(); err != nil {
		return err
	}

	assetPreserved := false
	for _, e := range t.Entries {
		if e.AccountType == accountdomain.AccountTypeAsset {
			assetPreserved = true
			break
		}
	}

	if incomeExpense.IsDebit() {
		if err := t.AddDebit(newAssetAccountID, accountdomain.AccountTypeAsset, incomeExpense.Amount); err != nil {
			return err
		}
		if asset != nil && !assetPreserved {
			if err := t.AddCredit(asset.AccountID, accountdomain.AccountTypeAsset, incomeExpense.Amount); err != nil {
				return err
			}
		}
		return nil
	}

	if asset != nil && !assetPreserved {
		if err := t.AddDebit(asset.AccountID, accountdomain.AccountTypeAsset, incomeExpense.Amount); err != nil {
			return err
		}
	}
	return t.AddCredit(newAssetAccountID, accountdomain.AccountTypeAsset, incomeExpense.Amount)
}

func (t *Transaction) markAsInternalTransfer(sourceAccountName *string, destinationAccountName, transferHash string) {
	t.IsInternalTransfer = true
	t.Counterparty = &destinationAccountName

	m := t.metadata()
	m.SourceAccount = sourceAccountName
	m.DestinationAccount = &destinationAccountName
	m.TransferIdentityHash = &transferHash
	t.setMetadata(m)
	t.TransferIdentityHash = &transferHash
}

func (t *Transaction) updateTransferDescription(newAssetAccountName string, originalAsset *JournalEntry) {
	direction := t.determineTransferDirection(originalAsset)
	t.Description = "Transfer " + direction + " " + newAssetAccountName
	t.Counterparty = &newAssetAccountName
}

func (t *Transaction) determineTransferDirection(originalAsset *JournalEntry) string {
	if originalAsset == nil {
		return "from"
	}
	for _, e := range t.Entries {
		if e.AccountID == originalAsset.AccountID && e.IsCredit() {
			return "to"
		}
	}
	return "from"
}

// StampOpeningBalance marks this draft as the priming entry for iban (spec
// §4.3 step 6). It is idempotent to call more than once with the same iban.
func (t *Transaction) StampOpeningBalance(iban string) {
	m := t.metadata()
	m.OpeningBalance = true
	m.OpeningBalanceIBAN = &iban
	t.setMetadata(m)
	t.OpeningBalanceIBAN = &iban
}

// StampTransferCandidateHash stamps the symmetric transfer-identity hash
// (spec §4.4) on a transaction as soon as its counterparty IBAN is known,
// independent of whether it is ever converted to an internal transfer. This
// lets reconciliation find an unconverted first leg by the same indexed
// column markAsInternalTransfer later writes.
func (t *Transaction) StampTransferCandidateHash(hash string) {
	t.TransferIdentityHash = &hash
}

// StampAIResolution records how the classification pipeline resolved this
// transaction's counter-account, for audit and for feeding corrected
// classifications back into the example store.
func (t *Transaction) StampAIResolution(res AIResolution) {
	m := t.metadata()
	m.AIResolution = &res
	t.setMetadata(m)
}

// ListFilter narrows transaction listing queries.
type ListFilter struct {
	Posted      *bool
	AccountID   *uuid.UUID
	FromDate    *time.Time
	ToDate      *time.Time
}
