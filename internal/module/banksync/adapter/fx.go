package adapter

import (
	"ledgersync/internal/module/banksync/adapter/fints"

	"go.uber.org/fx"
)

// Module provides the bank adapter. A single FinTS-style implementation is
// wired today; additional bank protocols register here behind the same
// BankAdapter port as they're added.
var Module = fx.Module("bankadapter",
	fx.Provide(
		fx.Annotate(fints.NewClient, fx.As(new(BankAdapter))),
	),
)
