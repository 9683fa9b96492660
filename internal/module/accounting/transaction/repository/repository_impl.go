package repository

import (
	"context"
	"errors"

	"ledgersync/internal/database"
	"ledgersync/internal/module/accounting/transaction/domain"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// New creates a new transaction repository instance.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	var tx domain.Transaction
	if err := database.Resolve(ctx, r.db).WithContext(ctx).Preload("Entries").First(&tx, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *gormRepository) ListByUserID(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) ([]domain.Transaction, error) {
	q := database.Resolve(ctx, r.db).WithContext(ctx).Preload("Entries").Where("user_id = ?", userID)
	if filter.Posted != nil {
		q = q.Where("posted = ?", *filter.Posted)
	}
	if filter.FromDate != nil {
		q = q.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("date <= ?", *filter.ToDate)
	}
	if filter.AccountID != nil {
		q = q.Joins("JOIN accounting_journal_entries je ON je.transaction_id = accounting_transactions.id").
			Where("je.account_id = ?", *filter.AccountID)
	}

	var txs []domain.Transaction
	if err := q.Order("date DESC").Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *gormRepository) ListByTransferCandidateHash(ctx context.Context, userID uuid.UUID, hash string) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := database.Resolve(ctx, r.db).WithContext(ctx).Preload("Entries").
		Where("user_id = ? AND transfer_identity_hash = ?", userID, hash).
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *gormRepository) ExistsOpeningBalanceTransaction(ctx context.Context, userID uuid.UUID, iban string) (bool, error) {
	var count int64
	err := database.Resolve(ctx, r.db).WithContext(ctx).Model(&domain.Transaction{}).
		Where("user_id = ? AND opening_balance_iban = ?", userID, iban).
		Count(&count).Error
	return count > 0, err
}

func (r *gormRepository) ListByCounterpartyIBAN(ctx context.Context, userID uuid.UUID, iban string) ([]domain.Transaction, error) {
	var txs []domain.Transaction
	if err := database.Resolve(ctx, r.db).WithContext(ctx).Preload("Entries").
		Where("user_id = ? AND counterparty_iban = ?", userID, iban).
		Find(&txs).Error; err != nil {
		return nil, err
	}
	return txs, nil
}

func (r *gormRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	return database.Resolve(ctx, r.db).WithContext(ctx).Create(tx).Error
}

// Save persists both scalar changes and the current entry set, deleting
// entries that no longer exist on the in-memory aggregate.
func (r *gormRepository) Save(ctx context.Context, tx *domain.Transaction) error {
	return database.Resolve(ctx, r.db).WithContext(ctx).Transaction(func(db *gorm.DB) error {
		if err := db.Save(tx).Error; err != nil {
			return err
		}
		if err := db.Where("transaction_id = ?", tx.ID).Delete(&domain.JournalEntry{}).Error; err != nil {
			return err
		}
		if len(tx.Entries) == 0 {
			return nil
		}
		return db.Create(&tx.Entries).Error
	})
}
