package importaudit

import (
	"ledgersync/internal/module/banksync/importaudit/repository"

	"go.uber.org/fx"
)

// Module provides the import-audit repository. The Import Coordinator
// consumes it directly; there is no use case beyond find-and-upsert that
// would justify a separate service layer.
var Module = fx.Module("importaudit",
	fx.Provide(
		fx.Annotate(
			repository.New,
			fx.As(new(repository.Repository)),
		),
	),
)
