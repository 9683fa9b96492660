package banktransaction

import (
	"ledgersync/internal/module/banksync/banktransaction/repository"
	"ledgersync/internal/module/banksync/banktransaction/service"

	"go.uber.org/fx"
)

// Module provides the bank-transaction store's dependencies.
var Module = fx.Module("banktransaction",
	fx.Provide(
		fx.Annotate(
			repository.New,
			fx.As(new(repository.Repository)),
		),
		fx.Annotate(
			service.NewService,
			fx.As(new(service.Service)),
		),
	),
)
