// Package service maintains the per-user example embedding store consumed
// by the classification pipeline's example tier (spec §4.6 tier 2).
package service

import (
	"context"

	"ledgersync/internal/module/classify/example/domain"
	"ledgersync/internal/module/classify/example/repository"

	"github.com/google/uuid"
)

// Matrix is the contiguous read shape the DESIGN NOTES ask for: every
// account id's vector, ready for a linear scan of cosine similarities.
type Matrix struct {
	AccountIDs []uuid.UUID
	Vectors    [][]float32
}

// Service reads and appends example embeddings.
type Service interface {
	GetMatrix(ctx context.Context, userID uuid.UUID) (*Matrix, error)
	// Append stores a new confirmed (text, account) example, evicting the
	// oldest example for the user first if the store is already at cap.
	Append(ctx context.Context, userID, accountID uuid.UUID, text string, vector []float32) error
}

type exampleService struct {
	repo repository.Repository
	cap  int
}

// NewService builds the example store service. cap is the FIFO ceiling on
// examples retained per user (default 500).
func NewService(repo repository.Repository, cap int) Service {
	return &exampleService{repo: repo, cap: cap}
}

func (s *exampleService) GetMatrix(ctx context.Context, userID uuid.UUID) (*Matrix, error) {
	rows, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	m := &Matrix{
		AccountIDs: make([]uuid.UUID, len(rows)),
		Vectors:    make([][]float32, len(rows)),
	}
	for i, row := range rows {
		m.AccountIDs[i] = row.AccountID
		m.Vectors[i] = row.Vector.Data()
	}
	return m, nil
}

func (s *exampleService) Append(ctx context.Context, userID, accountID uuid.UUID, text string, vector []float32) error {
	if s.cap > 0 {
		count, err := s.repo.CountByUserID(ctx, userID)
		if err != nil {
			return err
		}
		if count >= int64(s.cap) {
			if err := s.repo.DeleteOldest(ctx, userID, int(count)-s.cap+1); err != nil {
				return err
			}
		}
	}
	return s.repo.Append(ctx, domain.New(userID, accountID, text, vector))
}
