package repository

import (
	"context"
	"errors"
	"time"

	"ledgersync/internal/database"
	"ledgersync/internal/module/banksync/banktransaction/domain"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type gormRepository struct {
	db *gorm.DB
}

// New creates a new bank transaction repository instance.
func New(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// SaveBatchWithDeduplication assigns sequence numbers within the batch by
// counting repetitions of the same identity hash as they're encountered,
// then upserts each (hash, seq) against what's already stored for the IBAN.
// The whole batch commits as one transaction so a retry of a partially
// applied batch is idempotent: rows already present are returned as-is.
func (r *gormRepository) SaveBatchWithDeduplication(ctx context.Context, userID uuid.UUID, iban string, txs []domain.BankTransaction) ([]domain.SavedTransaction, error) {
	results := make([]domain.SavedTransaction, len(txs))
	seenInBatch := make(map[string]int, len(txs))

	err := r.db.WithContext(ctx).Transaction(func(db *gorm.DB) error {
		for i, tx := range txs {
			hash := tx.IdentityHash()
			seenInBatch[hash]++
			seq := seenInBatch[hash]

			var existing domain.StoredBankTransaction
			err := db.Where("user_id = ? AND iban = ? AND identity_hash = ? AND hash_sequence = ?", userID, iban, hash, seq).
				First(&existing).Error
			switch {
			case err == nil:
				results[i] = domain.SavedTransaction{Record: existing, IsNew: false}
			case errors.Is(err, gorm.ErrRecordNotFound):
				record := domain.StoredBankTransaction{
					ID:            uuid.New(),
					UserID:        userID,
					IBAN:          iban,
					BookingDate:   tx.BookingDate,
					ValueDate:     tx.ValueDate,
					Amount:        tx.Amount,
					Currency:      tx.Currency,
					Purpose:       tx.Purpose,
					ApplicantName: tx.ApplicantName,
					ApplicantIBAN: tx.ApplicantIBAN,
					ApplicantBIC:  tx.ApplicantBIC,
					BankReference: tx.BankReference,
					CustomerRef:   tx.CustomerRef,
					EndToEndRef:   tx.EndToEndRef,
					MandateRef:    tx.MandateRef,
					IdentityHash:  hash,
					HashSequence:  seq,
					CreatedAt:     time.Now().UTC(),
				}
				if err := db.Create(&record).Error; err != nil {
					return err
				}
				results[i] = domain.SavedTransaction{Record: record, IsNew: true}
			default:
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *gormRepository) Query(ctx context.Context, userID uuid.UUID, iban string, filter domain.ListFilter) ([]domain.StoredBankTransaction, error) {
	q := r.db.WithContext(ctx).Where("user_id = ? AND iban = ?", userID, iban)
	if filter.FromDate != nil {
		q = q.Where("booking_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		q = q.Where("booking_date <= ?", *filter.ToDate)
	}
	q = q.Order("booking_date ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []domain.StoredBankTransaction
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *gormRepository) LatestBookingDate(ctx context.Context, userID uuid.UUID, iban string) (*time.Time, error) {
	var row domain.StoredBankTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND iban = ?", userID, iban).
		Order("booking_date DESC").
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row.BookingDate, nil
}

func (r *gormRepository) MarkImported(ctx context.Context, id uuid.UUID) error {
	result := database.Resolve(ctx, r.db).WithContext(ctx).Model(&domain.StoredBankTransaction{}).
		Where("id = ?", id).
		Update("is_imported", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *gormRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredBankTransaction, error) {
	var row domain.StoredBankTransaction
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &row, nil
}
