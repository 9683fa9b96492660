// Package encoder defines the text encoder port the classification
// pipeline's example and anchor tiers embed queries through (spec §6
// "Text encoder"). Deterministic for a fixed model id; vectors are
// L2-normalised so a dot product is a cosine similarity.
package encoder

import "context"

// Encoder turns a batch of strings into L2-normalised embedding vectors,
// one per input, in the same order.
type Encoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension reports the vector width this encoder produces.
	Dimension() int
}
