package transaction

import (
	"ledgersync/internal/config"
	"ledgersync/internal/module/accounting/transaction/repository"
	"ledgersync/internal/module/accounting/transaction/service"

	accountrepo "ledgersync/internal/module/accounting/account/repository"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func provideService(repo repository.Repository, accounts accountrepo.Repository, cfg *config.Config, logger *zap.Logger) service.Service {
	return service.NewService(repo, accounts, cfg.Accounting.DefaultCurrency, logger)
}

// Module provides transaction module dependencies.
var Module = fx.Module("transaction",
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
