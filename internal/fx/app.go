package fx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ledgersync/internal/config"
	"ledgersync/internal/database"
	"ledgersync/internal/module/banksync/sync/streaming"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AppModule wires database migration and the websocket streaming server on
// top of the feature modules.
var AppModule = fx.Module("app",
	fx.Invoke(
		RunMigrations,
		StartServer,
	),
)

// RunMigrations runs the automatic schema migration. Seeding is out of
// scope for this domain: there is no fixed admin user or demo dataset to
// prime, every account and category is created by a real sync or a manual
// accounting entry.
func RunMigrations(db *gorm.DB, logger *zap.Logger) {
	logger.Info("running database migrations")
	if err := database.AutoMigrate(db, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
}

// StartServer hosts the streaming progress websocket and a health check.
// No Gin router and no REST surface exist in this build: every write path
// is driven by the sync worker or the CLI, and the only thing a client
// subscribes to over HTTP is sync/import progress.
func StartServer(lc fx.Lifecycle, wsHandler *streaming.Handler, cfg *config.Config, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.Handle("/ws/sync", wsHandler)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("starting http server",
					zap.String("addr", server.Addr),
					zap.String("websocket", "/ws/sync"),
					zap.String("health", "/health"),
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("failed to start server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down http server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Error("server forced to shutdown", zap.Error(err))
				return err
			}
			logger.Info("server gracefully stopped")
			return nil
		},
	})
}
