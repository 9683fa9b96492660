// Package transfer reconciles bank-imported transactions that are really
// transfers between a user's own accounts (spec §4.4).
package transfer

import (
	"ledgersync/internal/module/banksync/transfer/service"

	"go.uber.org/fx"
)

// Module provides the transfer reconciliation service.
var Module = fx.Module("transfer",
	fx.Provide(
		fx.Annotate(
			service.NewService,
			fx.As(new(service.Service)),
		),
	),
)
