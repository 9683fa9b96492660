// Package service implements the classification pipeline's orchestration:
// preprocessing, example tier, enrichment tier, anchor tier, in that order,
// short-circuiting on the first tier that resolves (spec §4.6). It
// implements the Import Coordinator's Classifier port.
package service

import (
	"context"

	banktxdomain "ledgersync/internal/module/banksync/banktransaction/domain"
	coordinatorservice "ledgersync/internal/module/banksync/coordinator/service"
	anchorservice "ledgersync/internal/module/classify/anchor/service"
	"ledgersync/internal/module/classify/encoder"
	enrichmentservice "ledgersync/internal/module/classify/enrichment/service"
	exampleservice "ledgersync/internal/module/classify/example/service"
	noiseservice "ledgersync/internal/module/classify/noise/service"
	"ledgersync/internal/module/classify/textclean"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	resolvedByExample = "example"
	resolvedByAnchor  = "anchor"
)

// Thresholds carries the per-deployment accept/margin cutoffs (spec §9
// "recognised options", defaults 0.85/0.70/0.10/0.55).
type Thresholds struct {
	ExampleHighConfidence  float64
	ExampleAcceptThreshold float64
	ExampleMarginThreshold float64
	AnchorAcceptThreshold  float64
}

type pipeline struct {
	noise      noiseservice.Service
	examples   exampleservice.Service
	anchors    anchorservice.Service
	enrichment enrichmentservice.Service
	encoder    encoder.Encoder
	thresholds Thresholds
	logger     *zap.Logger
}

// NewService builds the classification pipeline.
func NewService(
	noise noiseservice.Service,
	examples exampleservice.Service,
	anchors anchorservice.Service,
	enrichment enrichmentservice.Service,
	enc encoder.Encoder,
	thresholds Thresholds,
	logger *zap.Logger,
) coordinatorservice.Classifier {
	return &pipeline{
		noise:      noise,
		examples:   examples,
		anchors:    anchors,
		enrichment: enrichment,
		encoder:    enc,
		thresholds: thresholds,
		logger:     logger.Named("classify.pipeline"),
	}
}

// Classify never returns an error: any internal failure (encoder down,
// store unreadable) is logged and reported as an unresolved classification,
// so the Import Coordinator always has a safe sign-based fallback to fall
// back to (spec §5 "The classifier returns None on any internal error and
// never masks importer-level exceptions").
func (p *pipeline) Classify(ctx context.Context, userID uuid.UUID, tx banktxdomain.StoredBankTransaction) (*coordinatorservice.ClassificationResult, error) {
	counterparty := ""
	if tx.ApplicantName != nil {
		counterparty = *tx.ApplicantName
	}
	cleanedCounterparty := textclean.CleanCounterparty(counterparty)

	cleanedPurpose, err := p.noise.Clean(ctx, userID, tx.Purpose)
	if err != nil {
		p.logger.Warn("noise clean failed, classification unresolved", zap.Error(err))
		return nil, nil
	}
	if err := p.noise.Observe(ctx, userID, []string{tx.Purpose}); err != nil {
		p.logger.Warn("noise observe failed", zap.Error(err))
	}

	if result := p.tryExampleTier(ctx, userID, cleanedCounterparty, cleanedPurpose); result != nil {
		return result, nil
	}

	enrichmentText := p.tryEnrichmentTier(ctx, cleanedCounterparty)

	return p.tryAnchorTier(ctx, userID, cleanedCounterparty, cleanedPurpose, enrichmentText), nil
}

func (p *pipeline) tryExampleTier(ctx context.Context, userID uuid.UUID, cleanedCounterparty, cleanedPurpose string) *coordinatorservice.ClassificationResult {
	matrix, err := p.examples.GetMatrix(ctx, userID)
	if err != nil {
		p.logger.Warn("example matrix load failed", zap.Error(err))
		return nil
	}
	if len(matrix.Vectors) == 0 {
		return nil
	}

	query := cleanedCounterparty + " " + cleanedPurpose
	vectors, err := p.encoder.Encode(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		p.logger.Warn("example tier encode failed", zap.Error(err))
		return nil
	}

	top1, top1Idx, top2 := bestTwo(vectors[0], matrix.Vectors)
	if top1Idx < 0 {
		return nil
	}

	accept := top1 >= p.thresholds.ExampleHighConfidence ||
		(top1 >= p.thresholds.ExampleAcceptThreshold && top1-top2 >= p.thresholds.ExampleMarginThreshold)
	if !accept {
		return nil
	}

	accountID := matrix.AccountIDs[top1Idx]
	return &coordinatorservice.ClassificationResult{
		AccountID:  &accountID,
		Confidence: top1,
		ResolvedBy: resolvedByExample,
	}
}

func (p *pipeline) tryEnrichmentTier(ctx context.Context, cleanedCounterparty string) string {
	text, err := p.enrichment.Enrich(ctx, cleanedCounterparty)
	if err != nil {
		p.logger.Warn("enrichment tier failed", zap.Error(err))
		return ""
	}
	return text
}

func (p *pipeline) tryAnchorTier(ctx context.Context, userID uuid.UUID, cleanedCounterparty, cleanedPurpose, enrichmentText string) *coordinatorservice.ClassificationResult {
	matrix, err := p.anchors.GetMatrix(ctx, userID)
	if err != nil {
		p.logger.Warn("anchor matrix load failed", zap.Error(err))
		return nil
	}
	if len(matrix.Vectors) == 0 {
		return nil
	}

	query := cleanedCounterparty + " " + cleanedPurpose
	if enrichmentText != "" {
		query += " " + enrichmentText
	}

	vectors, err := p.encoder.Encode(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		p.logger.Warn("anchor tier encode failed", zap.Error(err))
		return nil
	}

	best, bestIdx, _ := bestTwo(vectors[0], matrix.Vectors)
	if bestIdx < 0 || best < p.thresholds.AnchorAcceptThreshold {
		return nil
	}

	accountID := matrix.AccountIDs[bestIdx]
	return &coordinatorservice.ClassificationResult{
		AccountID:  &accountID,
		Confidence: best,
		ResolvedBy: resolvedByAnchor,
	}
}

// bestTwo returns the top and second-best cosine similarity of query
// against candidates, along with the index of the best match (-1 if
// candidates is empty).
func bestTwo(query []float32, candidates [][]float32) (top1 float64, top1Idx int, top2 float64) {
	top1Idx = -1
	for i, candidate := range candidates {
		score := cosineSimilarity(query, candidate)
		if top1Idx == -1 || score > top1 {
			top2 = top1
			top1 = score
			top1Idx = i
		} else if score > top2 {
			top2 = score
		}
	}
	return top1, top1Idx, top2
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}
