package enrichment

import (
	"ledgersync/internal/config"
	"ledgersync/internal/module/classify/enrichment/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

// params lets the search backend be absent: no example repo or
// other_examples source gives this codebase a real external search client
// to ground one on, so the enrichment tier runs with the keyword table
// only until a concrete SearchBackend is registered (spec §4.6 tier 3,
// "Skip if neither enrichment source is configured").
type params struct {
	fx.In
	Search SearchBackend `optional:"true"`
}

// Module provides the enrichment tier service.
var Module = fx.Module("enrichment",
	fx.Provide(provideService),
)

func provideService(p params, client *redis.Client, cfg *config.Config) service.Service {
	return service.NewService(p.Search, client, cfg.Classify.SearchRateLimitSeconds, cfg.Classify.SearchTimeoutSeconds)
}
