// Package maintenance runs the nightly upkeep pass the classification
// pipeline depends on but nothing on the request path has time for: noise
// model garbage collection and anchor embedding recompute, one cron-scheduled
// job per tick in the shape of the bank-sync worker's ticker loop, substituting
// a cron expression for a fixed interval.
package maintenance

import (
	"context"

	anchorservice "ledgersync/internal/module/classify/anchor/service"
	noiseservice "ledgersync/internal/module/classify/noise/service"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// UserSource enumerates the users the nightly pass needs to visit. There is
// no central user table in this system: the set of known users is whoever
// has a stored bank connection, the same source the sync worker already
// uses to discover what to sync.
type UserSource interface {
	DistinctUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Config holds the maintenance worker's tunables.
type Config struct {
	Enabled         bool
	Schedule        string
	NoiseGCMinCount int
}

// Worker runs the nightly noise-model GC and anchor recompute jobs on a
// cron schedule.
type Worker struct {
	config Config
	noise  noiseservice.Service
	anchor anchorservice.Service
	users  UserSource
	logger *zap.Logger
	cron   *cron.Cron
}

// NewWorker builds the maintenance worker.
func NewWorker(config Config, noise noiseservice.Service, anchor anchorservice.Service, users UserSource, logger *zap.Logger) *Worker {
	return &Worker{
		config: config,
		noise:  noise,
		anchor: anchor,
		users:  users,
		logger: logger.Named("classify.maintenance"),
	}
}

// Start schedules the nightly pass. It is a no-op if the worker is disabled.
func (w *Worker) Start(ctx context.Context) error {
	if !w.config.Enabled {
		w.logger.Info("maintenance worker disabled")
		return nil
	}

	w.cron = cron.New()
	_, err := w.cron.AddFunc(w.config.Schedule, func() {
		w.run(context.Background())
	})
	if err != nil {
		return err
	}

	w.logger.Info("starting maintenance worker", zap.String("schedule", w.config.Schedule))
	w.cron.Start()
	return nil
}

// Stop halts the cron scheduler and waits for any in-flight run to finish.
func (w *Worker) Stop(ctx context.Context) error {
	if w.cron == nil {
		return nil
	}
	w.logger.Info("stopping maintenance worker")
	stopped := w.cron.Stop()
	select {
	case <-stopped.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run executes one nightly pass: noise model GC across every user, then an
// anchor recompute per user. A failure in one user's recompute is logged and
// does not stop the rest.
func (w *Worker) run(ctx context.Context) {
	usersPruned, tokensRemoved, err := w.noise.GC(ctx, w.config.NoiseGCMinCount)
	if err != nil {
		w.logger.Error("noise model garbage collection failed", zap.Error(err))
	} else {
		w.logger.Info("noise model garbage collection complete",
			zap.Int("users_pruned", usersPruned),
			zap.Int("tokens_removed", tokensRemoved),
		)
	}

	userIDs, err := w.users.DistinctUserIDs(ctx)
	if err != nil {
		w.logger.Error("failed to enumerate users for anchor recompute", zap.Error(err))
		return
	}

	recomputed := 0
	for _, userID := range userIDs {
		if err := w.anchor.RecomputeAll(ctx, userID); err != nil {
			w.logger.Error("anchor recompute failed", zap.String("user_id", userID.String()), zap.Error(err))
			continue
		}
		recomputed++
	}
	w.logger.Info("anchor recompute complete", zap.Int("users", recomputed), zap.Int("users_total", len(userIDs)))
}

// RunNow triggers the nightly pass immediately, outside the cron schedule.
func (w *Worker) RunNow(ctx context.Context) {
	w.run(ctx)
}
