package service

import (
	"context"
	"testing"

	banktxdomain "ledgersync/internal/module/banksync/banktransaction/domain"
	anchorservice "ledgersync/internal/module/classify/anchor/service"
	exampleservice "ledgersync/internal/module/classify/example/service"
	noiseservice "ledgersync/internal/module/classify/noise/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBestTwo(t *testing.T) {
	query := []float32{1, 0}
	candidates := [][]float32{{1, 0}, {0, 1}, {0.9, 0.1}}

	top1, top1Idx, top2 := bestTwo(query, candidates)
	assert.Equal(t, 0, top1Idx)
	assert.InDelta(t, 1.0, top1, 1e-9)
	assert.InDelta(t, float64(float32(0.9)), top2, 1e-9)
}

func TestBestTwo_EmptyCandidates(t *testing.T) {
	_, idx, _ := bestTwo([]float32{1, 0}, nil)
	assert.Equal(t, -1, idx)
}

// noopNoise passes purpose text through unmodified.
type noopNoise struct{}

func (noopNoise) Clean(ctx context.Context, userID uuid.UUID, text string) (string, error) {
	return text, nil
}
func (noopNoise) Observe(ctx context.Context, userID uuid.UUID, texts []string) error { return nil }
func (noopNoise) GC(ctx context.Context, minCount int) (int, int, error) { return 0, 0, nil }

type stubExamples struct{ matrix *exampleservice.Matrix }

func (s stubExamples) GetMatrix(ctx context.Context, userID uuid.UUID) (*exampleservice.Matrix, error) {
	return s.matrix, nil
}
func (s stubExamples) Append(ctx context.Context, userID, accountID uuid.UUID, text string, vector []float32) error {
	return nil
}

type stubAnchors struct{ matrix *anchorservice.Matrix }

func (s stubAnchors) GetMatrix(ctx context.Context, userID uuid.UUID) (*anchorservice.Matrix, error) {
	return s.matrix, nil
}
func (s stubAnchors) RecomputeAll(ctx context.Context, userID uuid.UUID) error { return nil }

type stubEnrichment struct{ text string }

func (s stubEnrichment) Enrich(ctx context.Context, counterparty string) (string, error) {
	return s.text, nil
}

// fixedEncoder returns the same vector for every text so test cases can
// control similarity by choosing vectors directly, instead of encoding real
// text.
type fixedEncoder struct{ vector []float32 }

func (e fixedEncoder) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = e.vector
	}
	return out, nil
}
func (e fixedEncoder) Dimension() int { return len(e.vector) }

func counterpartyName(s string) *string { return &s }

func TestClassify_ResolvesViaExampleTierOnHighConfidence(t *testing.T) {
	accountID := uuid.New()
	examples := stubExamples{matrix: &exampleservice.Matrix{
		AccountIDs: []uuid.UUID{accountID},
		Vectors:    [][]float32{{1, 0}},
	}}
	anchors := stubAnchors{matrix: &anchorservice.Matrix{}}

	p := NewService(noopNoise{}, examples, anchors, stubEnrichment{}, fixedEncoder{vector: []float32{1, 0}},
		Thresholds{ExampleHighConfidence: 0.85, ExampleAcceptThreshold: 0.7, ExampleMarginThreshold: 0.1, AnchorAcceptThreshold: 0.55},
		zap.NewNop())

	tx := banktxdomain.StoredBankTransaction{Purpose: "groceries", ApplicantName: counterpartyName("Rewe")}
	result, err := p.Classify(context.Background(), uuid.New(), tx)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, accountID, *result.AccountID)
	assert.Equal(t, resolvedByExample, result.ResolvedBy)
}

func TestClassify_FallsThroughToAnchorTierWhenExamplesEmpty(t *testing.T) {
	accountID := uuid.New()
	examples := stubExamples{matrix: &exampleservice.Matrix{}}
	anchors := stubAnchors{matrix: &anchorservice.Matrix{
		AccountIDs: []uuid.UUID{accountID},
		Vectors:    [][]float32{{1, 0}},
	}}

	p := NewService(noopNoise{}, examples, anchors, stubEnrichment{}, fixedEncoder{vector: []float32{1, 0}},
		Thresholds{ExampleHighConfidence: 0.85, ExampleAcceptThreshold: 0.7, ExampleMarginThreshold: 0.1, AnchorAcceptThreshold: 0.55},
		zap.NewNop())

	tx := banktxdomain.StoredBankTransaction{Purpose: "rent", ApplicantName: counterpartyName("Landlord")}
	result, err := p.Classify(context.Background(), uuid.New(), tx)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, accountID, *result.AccountID)
	assert.Equal(t, resolvedByAnchor, result.ResolvedBy)
}

func TestClassify_UnresolvedWhenBothTiersEmpty(t *testing.T) {
	examples := stubExamples{matrix: &exampleservice.Matrix{}}
	anchors := stubAnchors{matrix: &anchorservice.Matrix{}}

	p := NewService(noopNoise{}, examples, anchors, stubEnrichment{}, fixedEncoder{vector: []float32{1, 0}},
		Thresholds{ExampleHighConfidence: 0.85, ExampleAcceptThreshold: 0.7, ExampleMarginThreshold: 0.1, AnchorAcceptThreshold: 0.55},
		zap.NewNop())

	tx := banktxdomain.StoredBankTransaction{Purpose: "misc"}
	result, err := p.Classify(context.Background(), uuid.New(), tx)
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestClassify_AnchorTierRejectsBelowThreshold(t *testing.T) {
	accountID := uuid.New()
	examples := stubExamples{matrix: &exampleservice.Matrix{}}
	anchors := stubAnchors{matrix: &anchorservice.Matrix{
		AccountIDs: []uuid.UUID{accountID},
		Vectors:    [][]float32{{0, 1}},
	}}

	// Orthogonal query vector: cosine similarity is 0, well under AnchorAcceptThreshold.
	p := NewService(noopNoise{}, examples, anchors, stubEnrichment{}, fixedEncoder{vector: []float32{1, 0}},
		Thresholds{ExampleHighConfidence: 0.85, ExampleAcceptThreshold: 0.7, ExampleMarginThreshold: 0.1, AnchorAcceptThreshold: 0.55},
		zap.NewNop())

	tx := banktxdomain.StoredBankTransaction{Purpose: "misc"}
	result, err := p.Classify(context.Background(), uuid.New(), tx)
	require.NoError(t, err)
	assert.Nil(t, result)
}
