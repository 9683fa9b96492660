// Package domain holds the sync-result record the Sync Command produces
// for one bank connection (spec §7): "a single sync-result record carrying
// counts (fetched, imported, skipped, failed, reconciled), optional error
// and warning strings, opening-balance flag and amount".
package domain

import "github.com/shopspring/decimal"

// Result is the outcome of syncing one (user, bank connection) pair. It
// always has a value, even when the connection failed outright: Error
// carries the reason and every count stays zero.
type Result struct {
	BankCode string
	IBANs    []string

	Fetched     int
	Imported    int
	Skipped     int
	Failed      int
	Reconciled  int

	OpeningBalanceApplied bool
	OpeningBalanceAmount  decimal.Decimal

	Error   string
	Warning string
}
