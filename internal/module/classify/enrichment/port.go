// Package enrichment implements the classification pipeline's enrichment
// tier: a keyword table tried first, an external search collaborator tried
// second (spec §4.6 tier 3).
package enrichment

import (
	"context"

	"ledgersync/internal/module/classify/enrichment/domain"
)

// SearchBackend is the external search port (spec §6). It may return an
// empty slice; it must honour ctx cancellation/timeout.
type SearchBackend interface {
	Search(ctx context.Context, query string) ([]domain.SearchResult, error)
}
