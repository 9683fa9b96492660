// Package noise provides the per-user boilerplate-token filter that feeds
// the classification pipeline's preprocessing tier.
package noise

import (
	"ledgersync/internal/config"
	"ledgersync/internal/module/classify/cache"
	"ledgersync/internal/module/classify/noise/repository"
	"ledgersync/internal/module/classify/noise/service"

	"go.uber.org/fx"
)

// Module provides the noise model repository and service.
var Module = fx.Module("noise",
	fx.Provide(
		fx.Annotate(repository.New, fx.As(new(repository.Repository))),
		fx.Annotate(provideService, fx.As(new(service.Service))),
	),
)

func provideService(repo repository.Repository, store *cache.Store, cfg *config.Config) service.Service {
	return service.NewService(repo, store, cfg.Classify.NoiseFrequencyThreshold, cfg.Classify.NoiseDampenerCap)
}
