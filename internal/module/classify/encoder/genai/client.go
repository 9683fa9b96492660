// Package genai implements the text encoder port against Google's
// generative AI embedding endpoint, grounded on the teacher's
// chatbot/provider genai client construction (same genai.Client, same
// context/config plumbing, different Models method).
package genai

import (
	"context"
	"fmt"
	"math"

	"ledgersync/internal/module/classify/encoder"

	"google.golang.org/genai"
)

// Config holds the encoder's deployment settings.
type Config struct {
	APIKey    string
	ModelID   string
	Dimension int
}

type client struct {
	genai     *genai.Client
	modelID   string
	dimension int
}

// New builds a genai-backed encoder. modelID defaults to
// "text-embedding-004" and dimension to 768 when left unset, matching the
// classification pipeline's configured defaults.
func New(cfg Config) (encoder.Encoder, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("genai encoder: API key is required")
	}

	ctx := context.Background()
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai encoder: create client: %w", err)
	}

	modelID := cfg.ModelID
	if modelID == "" {
		modelID = "text-embedding-004"
	}
	dimension := cfg.Dimension
	if dimension == 0 {
		dimension = 768
	}

	return &client{genai: genaiClient, modelID: modelID, dimension: dimension}, nil
}

func (c *client) Dimension() int { return c.dimension }

func (c *client) Encode(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = &genai.Content{Parts: []*genai.Part{{Text: text}}}
	}

	resp, err := c.genai.Models.EmbedContent(ctx, c.modelID, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("genai encoder: embed content: %w", err)
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, embedding := range resp.Embeddings {
		vectors[i] = normalize(embedding.Values)
	}
	return vectors, nil
}

// normalize returns an L2-normalised copy of v; the zero vector is returned
// unchanged.
func normalize(v []float32) []float32 {
	var sumSquares float64
	for _, x := range v {
		sumSquares += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSquares)
	if norm == 0 {
		return v
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
