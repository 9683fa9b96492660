// Package merchant implements the merchant-name extraction pipeline: an
// auxiliary, off-critical-path helper for metadata and recurring-transaction
// detection (spec §4.6 "auxiliary pipelines").
package merchant

import (
	"strings"

	"ledgersync/internal/module/classify/textclean"
)

// Extract strips any payment-provider prefix from the raw counterparty and
// returns its leading token, a cheap stand-in for "who actually got paid"
// when the full counterparty string is a provider-mangled mess.
func Extract(rawCounterparty string) string {
	cleaned := textclean.CleanCounterparty(rawCounterparty)
	if cleaned == "" {
		return ""
	}
	fields := strings.Fields(cleaned)
	return fields[0]
}
