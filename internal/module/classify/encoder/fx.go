package encoder

import (
	"ledgersync/internal/config"
	genaiencoder "ledgersync/internal/module/classify/encoder/genai"

	"go.uber.org/fx"
)

// Module provides the genai-backed text encoder.
var Module = fx.Module("encoder",
	fx.Provide(provideEncoder),
)

func provideEncoder(cfg *config.Config) (Encoder, error) {
	return genaiencoder.New(genaiencoder.Config{
		APIKey:    cfg.ExternalAPIs.GeminiAPIKey,
		ModelID:   cfg.Classify.EncoderModelID,
		Dimension: cfg.Classify.EncoderDimension,
	})
}
