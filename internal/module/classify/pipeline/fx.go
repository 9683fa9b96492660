// Package pipeline wires the classification tiers together into the
// Import Coordinator's Classifier implementation.
package pipeline

import (
	coordinatorservice "ledgersync/internal/module/banksync/coordinator/service"
	anchorservice "ledgersync/internal/module/classify/anchor/service"
	"ledgersync/internal/module/classify/encoder"
	enrichmentservice "ledgersync/internal/module/classify/enrichment/service"
	exampleservice "ledgersync/internal/module/classify/example/service"
	noiseservice "ledgersync/internal/module/classify/noise/service"
	"ledgersync/internal/module/classify/pipeline/service"
	"ledgersync/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the classification pipeline as the coordinator's
// Classifier.
var Module = fx.Module("classifypipeline",
	fx.Provide(provideClassifier),
)

func provideClassifier(
	noise noiseservice.Service,
	examples exampleservice.Service,
	anchors anchorservice.Service,
	enrichment enrichmentservice.Service,
	enc encoder.Encoder,
	cfg *config.Config,
	logger *zap.Logger,
) coordinatorservice.Classifier {
	return service.NewService(noise, examples, anchors, enrichment, enc, service.Thresholds{
		ExampleHighConfidence:  cfg.Classify.ExampleHighConfidence,
		ExampleAcceptThreshold: cfg.Classify.ExampleAcceptThreshold,
		ExampleMarginThreshold: cfg.Classify.ExampleMarginThreshold,
		AnchorAcceptThreshold:  cfg.Classify.AnchorAcceptThreshold,
	}, logger)
}
