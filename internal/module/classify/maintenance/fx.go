package maintenance

import (
	"context"

	"ledgersync/internal/config"
	"ledgersync/internal/module/banksync/adapter/credential"
	anchorservice "ledgersync/internal/module/classify/anchor/service"
	noiseservice "ledgersync/internal/module/classify/noise/service"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module provides the nightly maintenance worker and its lifecycle hook.
var Module = fx.Module("classifymaintenance",
	fx.Provide(
		fx.Annotate(newCredentialUserSource, fx.As(new(UserSource))),
		provideWorker,
	),
	fx.Invoke(registerWorkerLifecycle),
)

// credentialUserSource derives the distinct user set from stored bank
// connections, the same "no central user table" workaround the sync worker
// uses.
type credentialUserSource struct {
	credentials credential.Repository
}

func newCredentialUserSource(credentials credential.Repository) *credentialUserSource {
	return &credentialUserSource{credentials: credentials}
}

func (s *credentialUserSource) DistinctUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	connections, err := s.credentials.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]bool, len(connections))
	var ids []uuid.UUID
	for _, conn := range connections {
		if seen[conn.UserID] {
			continue
		}
		seen[conn.UserID] = true
		ids = append(ids, conn.UserID)
	}
	return ids, nil
}

func provideWorker(cfg *config.Config, noise noiseservice.Service, anchor anchorservice.Service, users UserSource, logger *zap.Logger) *Worker {
	return NewWorker(Config{
		Enabled:         cfg.Maintenance.Enabled,
		Schedule:        cfg.Maintenance.Schedule,
		NoiseGCMinCount: cfg.Maintenance.NoiseGCMinCount,
	}, noise, anchor, users, logger)
}

func registerWorkerLifecycle(lc fx.Lifecycle, w *Worker, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return w.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return w.Stop(ctx)
		},
	})
}
