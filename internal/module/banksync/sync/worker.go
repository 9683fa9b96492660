// Package sync wires the Sync Command into a periodic worker that syncs
// every stored bank connection on a ticker, bounded by a semaphore, in the
// shape of the broker sync worker this codebase is descended from.
package sync

import (
	"context"
	"sync"
	"time"

	"ledgersync/internal/module/banksync/adapter/credential"
	"ledgersync/internal/module/banksync/sync/domain"
	"ledgersync/internal/module/banksync/sync/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// WorkerConfig holds the periodic sync worker's tunables.
type WorkerConfig struct {
	Enabled       bool
	Interval      time.Duration
	MaxConcurrent int
	SyncTimeout   time.Duration
}

// Publisher fans a sync cycle's progress out to any interested subscriber.
// It is optional: a Worker with no Publisher wired simply logs, same as the
// enrichment tier's optional search backend.
type Publisher interface {
	Publish(userID uuid.UUID, kind string, payload interface{})
}

// Worker runs Service.SyncAccount for every stored bank connection on a
// fixed interval.
type Worker struct {
	config      WorkerConfig
	credentials credential.Repository
	sync        service.Service
	publisher   Publisher
	logger      *zap.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
	semaphore   chan struct{}
}

// NewWorker builds the periodic sync worker. publisher may be nil.
func NewWorker(config WorkerConfig, credentials credential.Repository, syncService service.Service, publisher Publisher, logger *zap.Logger) *Worker {
	return &Worker{
		config:      config,
		credentials: credentials,
		sync:        syncService,
		publisher:   publisher,
		logger:      logger.Named("banksync.syncworker"),
		stopChan:    make(chan struct{}),
		semaphore:   make(chan struct{}, config.MaxConcurrent),
	}
}

// Start launches the worker's background loop. It is a no-op if the worker
// is disabled.
func (w *Worker) Start(ctx context.Context) error {
	if !w.config.Enabled {
		w.logger.Info("sync worker disabled")
		return nil
	}

	w.logger.Info("starting sync worker",
		zap.Duration("interval", w.config.Interval),
		zap.Int("max_concurrent", w.config.MaxConcurrent),
		zap.Duration("sync_timeout", w.config.SyncTimeout),
	)

	w.wg.Add(1)
	go w.run(ctx)
	return nil
}

// Stop signals the loop to stop and waits for the current cycle to finish.
func (w *Worker) Stop(ctx context.Context) error {
	w.logger.Info("stopping sync worker")
	close(w.stopChan)

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("sync worker stopped")
		return nil
	case <-ctx.Done():
		w.logger.Warn("sync worker shutdown timeout")
		return ctx.Err()
	}
}

func (w *Worker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	w.syncAll(ctx)

	for {
		select {
		case <-ticker.C:
			w.syncAll(ctx)
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

// syncAll runs one sync cycle across every stored bank connection,
// bounded by the configured concurrency limit.
func (w *Worker) syncAll(ctx context.Context) {
	start := time.Now()

	connections, err := w.credentials.ListAll(ctx)
	if err != nil {
		w.logger.Error("failed to list bank connections", zap.Error(err))
		return
	}
	if len(connections) == 0 {
		return
	}

	var cycleWg sync.WaitGroup
	var mu sync.Mutex
	var results []*domain.Result

	for _, conn := range connections {
		w.semaphore <- struct{}{}
		cycleWg.Add(1)

		go func(userID uuid.UUID, bankCode string) {
			defer cycleWg.Done()
			defer func() { <-w.semaphore }()

			syncCtx, cancel := context.WithTimeout(ctx, w.config.SyncTimeout)
			defer cancel()

			result, err := w.sync.SyncAccount(syncCtx, userID, bankCode)
			if err != nil {
				w.logger.Error("sync failed", zap.String("bank_code", bankCode), zap.Error(err))
				return
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()

			if result.Error != "" {
				w.logger.Warn("sync connection error", zap.String("bank_code", bankCode), zap.String("error", result.Error))
			}

			if w.publisher != nil {
				w.publisher.Publish(userID, "sync.result", result)
			}
		}(conn.UserID, conn.BankCode)
	}

	cycleWg.Wait()

	w.logger.Info("sync cycle completed",
		zap.Int("connections", len(connections)),
		zap.Int("results", len(results)),
		zap.Duration("duration", time.Since(start)),
	)
}

// ForceSync triggers an immediate sync cycle outside the regular interval.
func (w *Worker) ForceSync(ctx context.Context) {
	w.syncAll(ctx)
}
