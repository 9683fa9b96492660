// Package anchor provides the cold-start classification anchor embedding
// store.
package anchor

import (
	"ledgersync/internal/module/classify/anchor/repository"
	"ledgersync/internal/module/classify/anchor/service"
	"ledgersync/internal/module/classify/cache"

	accountservice "ledgersync/internal/module/accounting/account/service"
	"ledgersync/internal/module/classify/encoder"

	"go.uber.org/fx"
)

// Module provides the anchor embedding repository and service.
var Module = fx.Module("anchor",
	fx.Provide(
		fx.Annotate(repository.New, fx.As(new(repository.Repository))),
		fx.Annotate(provideService, fx.As(new(service.Service))),
	),
)

func provideService(repo repository.Repository, accounts accountservice.Service, enc encoder.Encoder, store *cache.Store) service.Service {
	base := service.NewService(repo, accounts, enc)
	return service.NewCachingService(base, store)
}
