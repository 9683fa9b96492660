package streaming

import (
	"context"

	"ledgersync/internal/config"
	"ledgersync/internal/identity"

	"go.uber.org/fx"
)

// Module provides the streaming hub and its websocket upgrade handler.
var Module = fx.Module("banksyncstreaming",
	fx.Provide(
		NewHub,
		provideDecoder,
		NewHandler,
	),
	fx.Invoke(registerHubLifecycle),
)

func provideDecoder(cfg *config.Config) *identity.Decoder {
	return identity.NewDecoder(cfg.Auth.JWTSecret)
}

func registerHubLifecycle(lc fx.Lifecycle, hub *Hub) {
	stop := make(chan struct{})
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go hub.Run(stop)
			return nil
		},
		OnStop: func(context.Context) error {
			close(stop)
			return nil
		},
	})
}
