package cmd

import (
	"context"
	"log"

	ledgersyncfx "ledgersync/internal/fx"
	"ledgersync/internal/module/accounting/account"
	"ledgersync/internal/module/accounting/transaction"
	"ledgersync/internal/module/banksync/adapter"
	"ledgersync/internal/module/banksync/adapter/credential"
	"ledgersync/internal/module/classify/anchor"
	"ledgersync/internal/module/classify/encoder"
	"ledgersync/internal/module/classify/maintenance"
	"ledgersync/internal/module/classify/noise"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var maintainCmd = &cobra.Command{
	Use:   "maintain",
	Short: "Run the nightly noise-model GC and anchor recompute pass once",
	Long: `maintain runs the same job the maintenance worker's cron schedule fires
every night — noise model garbage collection across every user, then an
anchor embedding recompute per user — immediately and once, without waiting
for the schedule or starting the long-running server.`,
	Run: func(cmd *cobra.Command, args []string) {
		runMaintenanceOnce()
	},
}

func init() {
	rootCmd.AddCommand(maintainCmd)
}

func runMaintenanceOnce() {
	var worker *maintenance.Worker
	app := fx.New(
		ledgersyncfx.CoreModule,
		account.Module,
		transaction.Module,
		credential.Module,
		adapter.Module,
		noise.Module,
		encoder.Module,
		anchor.Module,
		maintenance.Module,
		fx.Populate(&worker),
		fx.NopLogger,
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("failed to start application: %v", err)
	}
	defer app.Stop(ctx)

	worker.RunNow(ctx)
}
