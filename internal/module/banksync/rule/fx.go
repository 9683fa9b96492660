package rule

import (
	"ledgersync/internal/module/banksync/rule/repository"
	"ledgersync/internal/module/banksync/rule/service"

	"go.uber.org/fx"
)

// Module provides counter-account rule dependencies.
var Module = fx.Module("rule",
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
