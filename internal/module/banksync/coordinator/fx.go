// Package coordinator runs the per-transaction import workflow (spec §4.5).
package coordinator

import (
	accountservice "ledgersync/internal/module/accounting/account/service"
	transactionservice "ledgersync/internal/module/accounting/transaction/service"
	banktxservice "ledgersync/internal/module/banksync/banktransaction/service"
	"ledgersync/internal/module/banksync/coordinator/service"
	importauditrepo "ledgersync/internal/module/banksync/importaudit/repository"
	mappingservice "ledgersync/internal/module/banksync/mapping/service"
	ruleservice "ledgersync/internal/module/banksync/rule/service"
	transferservice "ledgersync/internal/module/banksync/transfer/service"
	"ledgersync/internal/config"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Module provides the import coordinator.
var Module = fx.Module("coordinator",
	fx.Provide(
		fx.Annotate(
			provideService,
			fx.As(new(service.Service)),
		),
	),
)

func provideService(
	bankTransactions banktxservice.Service,
	imports importauditrepo.Repository,
	mappings mappingservice.Service,
	rules ruleservice.Service,
	transfers transferservice.Service,
	transactions transactionservice.Service,
	accounts accountservice.Service,
	classifier service.Classifier,
	db *gorm.DB,
	cfg *config.Config,
	logger *zap.Logger,
) service.Service {
	return service.NewService(
		bankTransactions, imports, mappings, rules, transfers, transactions, accounts, classifier, db,
		cfg.Accounting.DefaultCurrency, cfg.Accounting.DefaultExpenseAccountNumber, cfg.Accounting.DefaultIncomeAccountNumber,
		logger,
	)
}
