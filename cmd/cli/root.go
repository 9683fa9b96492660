package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ledgersync",
	Short: "ledgersync - bank sync and double-entry accounting",
	Long: `ledgersync connects to a bank over FinTS, imports and classifies
transactions into a double-entry ledger, and keeps the two reconciled on a
recurring schedule.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
