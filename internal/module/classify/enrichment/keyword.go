package enrichment

import "strings"

// keywordTable is the local merchant/purpose-token lookup tried before any
// external search, per spec §4.6 tier 3 ("a keyword-based enrichment
// first"). Entries are short descriptive snippets, not categories — the
// anchor tier's embedding is what turns them into a classification.
var keywordTable = map[string]string{
	"NETFLIX":  "Netflix, a subscription video streaming service.",
	"SPOTIFY":  "Spotify, a subscription music streaming service.",
	"AMAZON":   "Amazon, an online retailer selling general merchandise.",
	"UBER":     "Uber, a ride-hailing and food delivery service.",
	"REWE":     "REWE, a German supermarket chain selling groceries.",
	"EDEKA":    "EDEKA, a German supermarket chain selling groceries.",
	"ALDI":     "ALDI, a discount supermarket chain selling groceries.",
	"LIDL":     "LIDL, a discount supermarket chain selling groceries.",
	"SHELL":    "Shell, a fuel station selling petrol and diesel.",
	"ARAL":     "Aral, a fuel station selling petrol and diesel.",
	"DB BAHN":  "Deutsche Bahn, a railway operator selling train tickets.",
}

// LookupKeyword returns a keyword-table entry whose key appears in text, if
// any. When several keys appear, which of their entries is returned is not
// defined.
func LookupKeyword(text string) (string, bool) {
	for keyword, description := range keywordTable {
		if strings.Contains(text, keyword) {
			return description, true
		}
	}
	return "", false
}
