package cmd

import (
	"log"

	"ledgersync/internal/config"
	"ledgersync/internal/fx"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations, the periodic sync worker, and the streaming websocket",
	Long: `serve starts the long-running process: it migrates the schema, then
runs the periodic bank-sync worker and hosts the sync/import progress
websocket until terminated.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() {
	log.Println("========================================")
	log.Println("  ledgersync")
	log.Println("========================================")

	log.Println("loading configuration...")
	cfg := config.Load()

	log.Println("validating configuration...")
	if err := config.ValidateConfig(); err != nil {
		log.Fatalf("configuration validation failed: %v", err)
	}

	config.PrintConfig()

	log.Println("starting application...")
	log.Printf("  http: http://%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("  websocket: ws://%s:%s/ws/sync", cfg.Server.Host, cfg.Server.Port)
	if config.IsDevelopment() {
		log.Println("  mode: development")
	} else {
		log.Println("  mode: production")
	}

	fx.Application().Run()
}
