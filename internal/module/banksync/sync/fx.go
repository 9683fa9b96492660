package sync

import (
	"context"
	"time"

	"ledgersync/internal/config"
	"ledgersync/internal/module/banksync/adapter"
	"ledgersync/internal/module/banksync/adapter/credential"
	"ledgersync/internal/module/banksync/adapter/fints"
	banktxservice "ledgersync/internal/module/banksync/banktransaction/service"
	coordinatorservice "ledgersync/internal/module/banksync/coordinator/service"
	mappingservice "ledgersync/internal/module/banksync/mapping/service"
	openingbalanceservice "ledgersync/internal/module/banksync/openingbalance/service"
	"ledgersync/internal/module/banksync/sync/service"
	"ledgersync/internal/module/banksync/sync/streaming"
	transferservice "ledgersync/internal/module/banksync/transfer/service"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// workerParams lets the streaming hub be absent: the sync worker runs fine
// publishing nowhere if the streaming module isn't wired into the build.
type workerParams struct {
	fx.In
	Hub *streaming.Hub `optional:"true"`
}

// Module provides the Sync Command and its periodic worker.
var Module = fx.Module("banksyncworker",
	fx.Provide(
		ProvideService,
		provideWorker,
	),
	fx.Invoke(registerWorkerLifecycle),
)

// ProvideService builds the Sync Command service. Exported so a one-shot
// CLI invocation can wire the service alone, without the periodic worker's
// lifecycle hook.
func ProvideService(
	credentials adapter.CredentialStore,
	bankTransactions banktxservice.Service,
	mappings mappingservice.Service,
	openingBalance openingbalanceservice.Service,
	coordinator coordinatorservice.Service,
	transfers transferservice.Service,
	cfg *config.Config,
	logger *zap.Logger,
) service.Service {
	return service.NewService(
		credentials,
		func() adapter.BankAdapter { return fints.NewClient() },
		bankTransactions,
		mappings,
		openingBalance,
		coordinator,
		transfers,
		cfg.BankSync.FetchWindowDays,
		cfg.Accounting.OpeningBalanceAccountNumber,
		logger,
	)
}

func provideWorker(p workerParams, cfg *config.Config, credentials credential.Repository, syncService service.Service, logger *zap.Logger) *Worker {
	var publisher Publisher
	if p.Hub != nil {
		publisher = p.Hub
	}
	return NewWorker(WorkerConfig{
		Enabled:       cfg.SyncWorker.Enabled,
		Interval:      time.Duration(cfg.SyncWorker.IntervalMin) * time.Minute,
		MaxConcurrent: cfg.SyncWorker.MaxConcurrent,
		SyncTimeout:   time.Duration(cfg.SyncWorker.TimeoutMin) * time.Minute,
	}, credentials, syncService, publisher, logger)
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
