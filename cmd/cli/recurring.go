package cmd

import (
	"context"
	"fmt"
	"log"

	ledgersyncfx "ledgersync/internal/fx"
	"ledgersync/internal/module/accounting/account"
	"ledgersync/internal/module/accounting/transaction"
	"ledgersync/internal/module/classify/recurring"
	"ledgersync/internal/module/classify/recurring/service"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var recurringUserID string

var recurringCmd = &cobra.Command{
	Use:   "recurring",
	Short: "List detected recurring transaction groups for a user",
	Long: `recurring groups a user's imported transactions by counterparty and
amount and prints every group of two or more transactions with its booking
cadence (weekly, monthly or none).`,
	Run: func(cmd *cobra.Command, args []string) {
		runRecurringReport()
	},
}

func init() {
	recurringCmd.Flags().StringVar(&recurringUserID, "user-id", "", "user id to report on (required)")
	recurringCmd.MarkFlagRequired("user-id")
	rootCmd.AddCommand(recurringCmd)
}

func runRecurringReport() {
	userID, err := uuid.Parse(recurringUserID)
	if err != nil {
		log.Fatalf("invalid --user-id: %v", err)
	}

	var detector service.Service
	app := fx.New(
		ledgersyncfx.CoreModule,
		account.Module,
		transaction.Module,
		recurring.Module,
		fx.Populate(&detector),
		fx.NopLogger,
	)

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("failed to start application: %v", err)
	}
	defer app.Stop(ctx)

	groups, err := detector.Detect(ctx, userID)
	if err != nil {
		log.Fatalf("recurring detection failed: %v", err)
	}

	if len(groups) == 0 {
		fmt.Println("no recurring groups found")
		return
	}
	for _, g := range groups {
		fmt.Printf("%-30s %10s  %-8s  seen=%d\n", g.Counterparty, g.Amount.StringFixed(2), g.Cadence, g.Count)
	}
}
