package cmd

import (
	"context"
	"fmt"
	"log"

	ledgersyncfx "ledgersync/internal/fx"
	"ledgersync/internal/module/accounting/account"
	"ledgersync/internal/module/accounting/transaction"
	"ledgersync/internal/module/banksync/adapter"
	"ledgersync/internal/module/banksync/adapter/credential"
	"ledgersync/internal/module/banksync/banktransaction"
	"ledgersync/internal/module/banksync/coordinator"
	"ledgersync/internal/module/banksync/importaudit"
	"ledgersync/internal/module/banksync/mapping"
	"ledgersync/internal/module/banksync/openingbalance"
	"ledgersync/internal/module/banksync/rule"
	banksyncworker "ledgersync/internal/module/banksync/sync"
	"ledgersync/internal/module/banksync/sync/service"
	"ledgersync/internal/module/banksync/transfer"
	"ledgersync/internal/module/classify/anchor"
	"ledgersync/internal/module/classify/encoder"
	"ledgersync/internal/module/classify/enrichment"
	"ledgersync/internal/module/classify/example"
	"ledgersync/internal/module/classify/noise"
	"ledgersync/internal/module/classify/pipeline"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var (
	syncUserID   string
	syncBankCode string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run a one-off bank sync outside the periodic worker",
	Long: `sync connects to one stored bank connection, fetches and imports its
transactions, and prints the resulting sync-result record, without starting
the long-running server or the periodic worker.`,
	Run: func(cmd *cobra.Command, args []string) {
		runSyncOnce()
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncUserID, "user-id", "", "user id owning the bank connection (required)")
	syncCmd.Flags().StringVar(&syncBankCode, "bank-code", "", "bank code of the stored connection to sync (required)")
	syncCmd.MarkFlagRequired("user-id")
	syncCmd.MarkFlagRequired("bank-code")
	rootCmd.AddCommand(syncCmd)
}

func runSyncOnce() {
	userID, err := uuid.Parse(syncUserID)
	if err != nil {
		log.Fatalf("invalid --user-id: %v", err)
	}

	var syncSvc service.Service
	app := fx.New(
		ledgersyncfx.CoreModule,
		account.Module,
		transaction.Module,
		credential.Module,
		adapter.Module,
		banktransaction.Module,
		mapping.Module,
		rule.Module,
		importaudit.Module,
		openingbalance.Module,
		transfer.Module,
		coordinator.Module,
		noise.Module,
		example.Module,
		anchor.Module,
		encoder.Module,
		enrichment.Module,
		pipeline.Module,
		fx.Provide(banksyncworker.ProvideService),
		fx.Populate(&syncSvc),
		fx.NopLogger,
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("failed to start application: %v", err)
	}
	defer app.Stop(ctx)

	result, err := syncSvc.SyncAccount(ctx, userID, syncBankCode)
	if err != nil {
		log.Fatalf("sync failed: %v", err)
	}

	fmt.Printf("bank_code=%s ibans=%v fetched=%d imported=%d skipped=%d failed=%d reconciled=%d\n",
		result.BankCode, result.IBANs, result.Fetched, result.Imported, result.Skipped, result.Failed, result.Reconciled)
	if result.OpeningBalanceApplied {
		fmt.Printf("opening balance applied: %s\n", result.OpeningBalanceAmount.String())
	}
	if result.Warning != "" {
		fmt.Printf("warning: %s\n", result.Warning)
	}
	if result.Error != "" {
		fmt.Printf("error: %s\n", result.Error)
	}
}
