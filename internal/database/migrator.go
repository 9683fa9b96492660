package database

import (
	"fmt"

	accountdomain "ledgersync/internal/module/accounting/account/domain"
	transactiondomain "ledgersync/internal/module/accounting/transaction/domain"
	"ledgersync/internal/module/banksync/adapter/credential"
	banktxdomain "ledgersync/internal/module/banksync/banktransaction/domain"
	importauditdomain "ledgersync/internal/module/banksync/importaudit/domain"
	mappingdomain "ledgersync/internal/module/banksync/mapping/domain"
	ruledomain "ledgersync/internal/module/banksync/rule/domain"
	anchordomain "ledgersync/internal/module/classify/anchor/domain"
	exampledomain "ledgersync/internal/module/classify/example/domain"
	noisedomain "ledgersync/internal/module/classify/noise/domain"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate runs automatic database migrations for every entity, in an
// order that respects foreign-key dependencies: the accounting kernel
// first (nothing else can exist without an account to book against), then
// the bank-sync pipeline, then the classification pipeline's learned state.
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	if err := enableUUIDExtension(db, log); err != nil {
		return fmt.Errorf("enable postgresql extensions: %w", err)
	}

	entities := []interface{}{
		// Accounting Kernel
		&accountdomain.Account{},
		&transactiondomain.Transaction{},
		&transactiondomain.JournalEntry{},

		// Bank-Sync and Import Pipeline
		&credential.StoredCredential{},
		&banktxdomain.StoredBankTransaction{},
		&mappingdomain.AccountMapping{},
		&ruledomain.Rule{},
		&importauditdomain.Import{},

		// Classification Pipeline
		&noisedomain.Model{},
		&exampledomain.Example{},
		&anchordomain.Anchor{},
	}

	log.Info("migrating entities", zap.Int("entity_count", len(entities)))
	if err := db.AutoMigrate(entities...); err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}

func enableUUIDExtension(db *gorm.DB, log *zap.Logger) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`).Error; err != nil {
		log.Warn("uuid-ossp extension not available, checking for pgcrypto", zap.Error(err))
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error; err != nil {
			log.Warn("pgcrypto extension not available either, relying on built-in gen_random_uuid()", zap.Error(err))
		}
	}
	return nil
}

// DropAllTables drops every migrated table, in reverse dependency order.
// Development-only: it deletes all data.
func DropAllTables(db *gorm.DB, log *zap.Logger) error {
	log.Warn("dropping all tables")

	entities := []interface{}{
		&anchordomain.Anchor{},
		&exampledomain.Example{},
		&noisedomain.Model{},

		&importauditdomain.Import{},
		&ruledomain.Rule{},
		&mappingdomain.AccountMapping{},
		&banktxdomain.StoredBankTransaction{},
		&credential.StoredCredential{},

		&transactiondomain.JournalEntry{},
		&transactiondomain.Transaction{},
		&accountdomain.Account{},
	}

	log.Info("dropping tables", zap.Int("entity_count", len(entities)))
	if err := db.Migrator().DropTable(entities...); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}

	log.Info("all tables dropped")
	return nil
}
