package credential

import (
	"ledgersync/internal/module/banksync/adapter"

	"go.uber.org/fx"
)

// Module provides bank-credential storage dependencies.
var Module = fx.Module("bankcredential",
	fx.Provide(
		fx.Annotate(New, fx.As(new(Repository))),
		fx.Annotate(NewStore, fx.As(new(adapter.CredentialStore))),
	),
)
