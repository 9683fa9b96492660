// Package service exposes the bank-transaction store's two operations to
// the rest of the sync pipeline (spec §4.2).
package service

import (
	"context"
	"time"

	"ledgersync/internal/module/banksync/banktransaction/domain"
	"ledgersync/internal/module/banksync/banktransaction/repository"

	"github.com/google/uuid"
)

// Service is the bank-transaction store's use-case surface.
type Service interface {
	SaveBatchWithDeduplication(ctx context.Context, userID uuid.UUID, iban string, txs []domain.BankTransaction) ([]domain.SavedTransaction, error)
	Query(ctx context.Context, userID uuid.UUID, iban string, filter domain.ListFilter) ([]domain.StoredBankTransaction, error)
	LatestBookingDate(ctx context.Context, userID uuid.UUID, iban string) (*time.Time, error)
	MarkImported(ctx context.Context, id uuid.UUID) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredBankTransaction, error)
}

type store struct {
	repo repository.Repository
}

// NewService builds the bank-transaction store service.
func NewService(repo repository.Repository) Service {
	return &store{repo: repo}
}

func (s *store) SaveBatchWithDeduplication(ctx context.Context, userID uuid.UUID, iban string, txs []domain.BankTransaction) ([]domain.SavedTransaction, error) {
	return s.repo.SaveBatchWithDeduplication(ctx, userID, iban, txs)
}

func (s *store) Query(ctx context.Context, userID uuid.UUID, iban string, filter domain.ListFilter) ([]domain.StoredBankTransaction, error) {
	return s.repo.Query(ctx, userID, iban, filter)
}

func (s *store) LatestBookingDate(ctx context.Context, userID uuid.UUID, iban string) (*time.Time, error) {
	return s.repo.LatestBookingDate(ctx, userID, iban)
}

func (s *store) MarkImported(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkImported(ctx, id)
}

func (s *store) GetByID(ctx context.Context, id uuid.UUID) (*domain.StoredBankTransaction, error) {
	return s.repo.GetByID(ctx, id)
}
