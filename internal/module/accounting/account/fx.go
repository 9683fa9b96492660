package account

import (
	"ledgersync/internal/module/accounting/account/repository"
	"ledgersync/internal/module/accounting/account/service"

	"go.uber.org/fx"
)

// Module provides account module dependencies.
var Module = fx.Module("account",
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
