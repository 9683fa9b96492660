// Package adapter defines the bank adapter and credential store ports the
// sync pipeline depends on (spec §6) and a reference FinTS-style adapter.
package adapter

import (
	"context"
	"time"

	"ledgersync/internal/module/banksync/banktransaction/domain"

	"github.com/shopspring/decimal"
)

// BankAccount is what the adapter reports about one external account.
type BankAccount struct {
	IBAN     string
	Balance  *decimal.Decimal
	Currency string
	Holder   string
}

// TANCallback resolves a two-factor challenge to a one-time code. The
// caller (a UI, a CLI prompt, a push-notification responder) supplies it.
type TANCallback func(ctx context.Context, challenge string) (string, error)

// Credentials is the opaque, per-user secret bundle the credential store
// resolves and the adapter consumes. Endpoint and secrets are themselves
// provider-specific; the adapter decides how to interpret them.
type Credentials struct {
	BankCode string
	Endpoint string
	Secrets  map[string]string
}

// BankAdapter is a connected session over one banking protocol endpoint.
// Connect/disconnect bracket the entire fetch-and-import phase as a scoped
// resource (spec §5): callers must disconnect on every exit path, including
// cancellation and error.
type BankAdapter interface {
	Connect(ctx context.Context, credentials Credentials) error
	Disconnect(ctx context.Context) error
	FetchAccounts(ctx context.Context) ([]BankAccount, error)
	FetchTransactions(ctx context.Context, iban string, start, end time.Time) ([]domain.BankTransaction, error)
	SetTANMethod(method string)
	SetTANMedium(medium string)
	SetTANCallback(cb TANCallback)
}

// CredentialStore resolves and tracks per-user bank credentials.
type CredentialStore interface {
	FindByBankCode(ctx context.Context, userID, bankCode string) (Credentials, error)
	GetTANSettings(ctx context.Context, userID, bankCode string) (method, medium string, err error)
	UpdateLastUsed(ctx context.Context, userID, bankCode string, at time.Time) error
}
