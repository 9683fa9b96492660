// Package service implements the enrichment tier's orchestration: try the
// keyword table, fall back to a rate-limited external search, and extract
// a short enrichment text from whatever comes back (spec §4.6 tier 3).
package service

import (
	"context"
	"strings"
	"time"

	"ledgersync/internal/module/classify/enrichment"
	enrichmentdomain "ledgersync/internal/module/classify/enrichment/domain"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// maxEnrichmentLength bounds the text handed to the anchor tier's query
// builder, per spec §4.6 tier 3 ("≤~300 character").
const maxEnrichmentLength = 300

// Service resolves an enrichment text for a cleaned counterparty, or an
// empty string if neither source applies.
type Service interface {
	Enrich(ctx context.Context, counterparty string) (string, error)
}

type enrichmentService struct {
	search    enrichment.SearchBackend
	limiter   *rate.Limiter
	distLimit *distributedLimiter
	timeout   time.Duration
}

// NewService builds the enrichment service. search may be nil, in which
// case only the keyword table is consulted. redisClient may also be nil,
// in which case the rate limit is enforced per-process only. rateLimitSeconds
// is the cooperative minimum gap between search calls; timeoutSeconds bounds
// a single search call, returning empty enrichment on expiry rather than an
// error (spec §7 "Search enrichment failures / timeouts: swallowed").
func NewService(search enrichment.SearchBackend, redisClient *redis.Client, rateLimitSeconds, timeoutSeconds int) Service {
	interval := time.Duration(rateLimitSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &enrichmentService{
		search:    search,
		limiter:   rate.NewLimiter(rate.Every(interval), 1),
		distLimit: newDistributedLimiter(redisClient, interval),
		timeout:   timeout,
	}
}

func (s *enrichmentService) Enrich(ctx context.Context, counterparty string) (string, error) {
	if text, ok := enrichment.LookupKeyword(counterparty); ok {
		return text, nil
	}

	if s.search == nil {
		return "", nil
	}

	if err := s.distLimit.wait(ctx); err != nil {
		return "", nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return "", nil
	}

	searchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results, err := s.search.Search(searchCtx, counterparty)
	if err != nil || len(results) == 0 {
		return "", nil
	}

	return extractEnrichment(results), nil
}

// extractEnrichment builds a short text out of titles and the first
// sentence of each result's content, truncated to maxEnrichmentLength.
func extractEnrichment(results []enrichmentdomain.SearchResult) string {
	var b strings.Builder
	for _, r := range results {
		if r.Title != "" {
			b.WriteString(r.Title)
			b.WriteString(". ")
		}
		if sentence := firstSentence(r.Content); sentence != "" {
			b.WriteString(sentence)
			b.WriteString(". ")
		}
		if b.Len() >= maxEnrichmentLength {
			break
		}
	}

	text := strings.TrimSpace(b.String())
	if len(text) > maxEnrichmentLength {
		text = strings.TrimSpace(text[:maxEnrichmentLength])
	}
	return text
}

func firstSentence(content string) string {
	content = strings.TrimSpace(content)
	if content == "" {
		return ""
	}
	if idx := strings.IndexAny(content, ".!?"); idx >= 0 {
		return content[:idx]
	}
	return content
}
