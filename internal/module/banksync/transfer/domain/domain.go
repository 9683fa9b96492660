// Package domain computes the transfer identity hash used to recognize
// both legs of one internal transfer between a user's own accounts
// (spec §4.4).
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// IdentityHash is symmetric in (ibanA, ibanB): either leg computes the same
// value independently, since the pair is sorted before hashing.
func IdentityHash(ibanA, ibanB string, bookingDate time.Time, amount decimal.Decimal) string {
	pair := []string{ibanA, ibanB}
	sort.Strings(pair)

	h := sha256.New()
	h.Write([]byte(pair[0]))
	h.Write([]byte("|"))
	h.Write([]byte(pair[1]))
	h.Write([]byte("|"))
	h.Write([]byte(bookingDate.Format("2006-01-02")))
	h.Write([]byte("|"))
	h.Write([]byte(amount.Abs().String()))
	return hex.EncodeToString(h.Sum(nil))
}

// Context describes how an incoming bank transaction relates to the user's
// other accounts.
type Context struct {
	IsInternalTransfer bool
	CounterpartyIBAN   string
	CanReconcile       bool
}
