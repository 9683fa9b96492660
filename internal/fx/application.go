package fx

import (
	"ledgersync/internal/config"

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
	"ledgersync/internal/module/banksync/sync/streaming"
	"ledgersync/internal/module/banksync/transfer"

	"ledgersync/internal/module/classify/anchor"
	"ledgersync/internal/module/classify/encoder"
	"ledgersync/internal/module/classify/enrichment"
	"ledgersync/internal/module/classify/example"
	"ledgersync/internal/module/classify/maintenance"
	"ledgersync/internal/module/classify/noise"
	"ledgersync/internal/module/classify/pipeline"
	"ledgersync/internal/module/classify/recurring"

	"go.uber.org/fx"
)

// Application creates the main FX application with all modules.
func Application() *fx.App {
	options := []fx.Option{
		// Core modules
		CoreModule,

		// Accounting kernel
		account.Module,
		transaction.Module,

		// Bank-sync and import pipeline
		credential.Module,
		adapter.Module,
		banktransaction.Module,
		mapping.Module,
		rule.Module,
		importaudit.Module,
		openingbalance.Module,
		transfer.Module,
		coordinator.Module,
		banksyncworker.Module,
		streaming.Module,

		// Classification pipeline
		noise.Module,
		example.Module,
		anchor.Module,
		encoder.Module,
		enrichment.Module,
		recurring.Module,
		pipeline.Module,
		maintenance.Module,

		// App module (wires everything together)
		AppModule,
	}

	if config.IsProduction() {
		options = append(options, fx.NopLogger)
	}

	return fx.New(options...)
}
