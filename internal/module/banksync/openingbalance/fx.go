// Package openingbalance provides the opening-balance priming step of a
// bank sync (spec §4.3).
package openingbalance

import (
	"ledgersync/internal/module/banksync/openingbalance/service"

	"go.uber.org/fx"
)

// Module provides the opening-balance service.
var Module = fx.Module("openingbalance",
	fx.Provide(
		fx.Annotate(
			service.NewService,
			fx.As(new(service.Service)),
		),
	),
)
