// Package textclean holds the stateless text-normalisation helpers shared
// by the classification pipeline's preprocessing tier (spec §4.6 tier 1).
// Nothing here talks to storage; the noise model's frequency-based
// filtering lives one layer up in classify/noise.
package textclean

import (
	"strings"
)

// providerPrefixes are payment-provider labels that precede the real
// counterparty name in raw bank statement text (e.g. "PAYPAL *NETFLIX").
var providerPrefixes = []string{
	"PAYPAL", "SUMUP", "ZETTLE", "STRIPE", "KLARNA",
}

// separatorReplacer turns punctuation commonly used as a word separator in
// raw statement text into spaces, ahead of whitespace collapsing.
var separatorReplacer = strings.NewReplacer(
	"*", " ", "/", " ", "-", " ", "_", " ", ".", " ", ",", " ", ":", " ",
)

// CleanCounterparty strips a leading payment-provider prefix, normalises
// punctuation-as-separator into spaces, and collapses whitespace.
func CleanCounterparty(raw string) string {
	text := strings.ToUpper(strings.TrimSpace(raw))
	for _, prefix := range providerPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			break
		}
	}
	return collapse(separatorReplacer.Replace(text))
}

// Normalize applies the punctuation and whitespace rules CleanCounterparty
// uses, without the provider-prefix strip — used for purpose text ahead of
// noise-model filtering.
func Normalize(raw string) string {
	return collapse(separatorReplacer.Replace(strings.ToUpper(strings.TrimSpace(raw))))
}

func collapse(text string) string {
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}

// categoryKeywords is the lexical table backing the pattern-matcher's
// metadata-only category labels (spec §4.6 tier 1). Labels never drive
// classification. MatchLabels has no caller: the labels are not attached
// to transactions, and the enrichment tier uses its own keyword table.
var categoryKeywords = map[string][]string{
	"rent":         {"RENT", "MIETE", "LANDLORD", "LEASE"},
	"fuel":         {"FUEL", "SHELL", "ESSO", "ARAL", "TANKSTELLE", "GAS STATION"},
	"subscription": {"SUBSCRIPTION", "ABO", "NETFLIX", "SPOTIFY", "PRIME"},
	"groceries":    {"SUPERMARKET", "GROCERY", "REWE", "EDEKA", "ALDI", "LIDL"},
	"utilities":    {"ELECTRIC", "STROM", "WASSER", "WATER", "GAS BILL"},
	"insurance":    {"INSURANCE", "VERSICHERUNG"},
}

// MatchLabels scans cleaned counterparty and purpose text for known
// category keywords, returning every label whose keyword list matches.
func MatchLabels(cleanedCounterparty, cleanedPurpose string) []string {
	haystack := cleanedCounterparty + " " + cleanedPurpose
	var labels []string
	for label, keywords := range categoryKeywords {
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				labels = append(labels, label)
				break
			}
		}
	}
	return labels
}
