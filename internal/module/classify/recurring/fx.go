// Package recurring detects recurring transaction groups, an auxiliary
// pipeline off the classification critical path.
package recurring

import (
	"ledgersync/internal/module/classify/recurring/service"

	"go.uber.org/fx"
)

// Module provides the recurring-transaction detector.
var Module = fx.Module("recurring",
	fx.Provide(
		fx.Annotate(service.NewService, fx.As(new(service.Service))),
	),
)
