// Package example provides the warm-start classification example store.
package example

import (
	"ledgersync/internal/config"
	"ledgersync/internal/module/classify/cache"
	"ledgersync/internal/module/classify/example/repository"
	"ledgersync/internal/module/classify/example/service"

	"go.uber.org/fx"
)

// Module provides the example embedding repository and service.
var Module = fx.Module("example",
	fx.Provide(
		fx.Annotate(repository.New, fx.As(new(repository.Repository))),
		fx.Annotate(provideService, fx.As(new(service.Service))),
	),
)

func provideService(repo repository.Repository, cfg *config.Config, store *cache.Store) service.Service {
	base := service.NewService(repo, cfg.Classify.ExampleStoreCapPerAccount)
	return service.NewCachingService(base, store)
}
