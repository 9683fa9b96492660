package mapping

import (
	accountservice "ledgersync/internal/module/accounting/account/service"
	"ledgersync/internal/module/banksync/mapping/repository"
	"ledgersync/internal/module/banksync/mapping/service"

	"ledgersync/internal/config"

	"go.uber.org/fx"
)

// Module provides account-mapping dependencies.
var Module = fx.Module("mapping",
	fx.Provide(
		fx.Annotate(
			repository.New,
			fx.As(new(repository.Repository)),
		),
		fx.Annotate(
			provideService,
			fx.As(new(service.Service)),
		),
	),
)

func provideService(repo repository.Repository, accounts accountservice.Service, cfg *config.Config) service.Service {
	return service.NewService(repo, accounts, cfg.Accounting.DefaultCurrency)
}
