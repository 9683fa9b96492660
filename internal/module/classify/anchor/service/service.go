// Package service maintains the per-user anchor embedding store consumed
// by the classification pipeline's anchor tier (spec §4.6 tier 4).
package service

import (
	"context"
	"fmt"

	accountdomain "ledgersync/internal/module/accounting/account/domain"
	accountservice "ledgersync/internal/module/accounting/account/service"
	"ledgersync/internal/module/classify/anchor/repository"
	"ledgersync/internal/module/classify/encoder"

	"github.com/google/uuid"
)

// Matrix mirrors example.Matrix's contiguous read shape.
type Matrix struct {
	AccountIDs []uuid.UUID
	Vectors    [][]float32
}

// Service reads and recomputes anchor embeddings.
type Service interface {
	GetMatrix(ctx context.Context, userID uuid.UUID) (*Matrix, error)
	// RecomputeAll re-embeds name+description for every eligible account of
	// userID and upserts the result. Run from the nightly maintenance
	// worker only; a user with no anchors gets none until that run.
	RecomputeAll(ctx context.Context, userID uuid.UUID) error
}

type anchorService struct {
	repo     repository.Repository
	accounts accountservice.Service
	encoder  encoder.Encoder
}

// NewService builds the anchor store service.
func NewService(repo repository.Repository, accounts accountservice.Service, enc encoder.Encoder) Service {
	return &anchorService{repo: repo, accounts: accounts, encoder: enc}
}

func (s *anchorService) GetMatrix(ctx context.Context, userID uuid.UUID) (*Matrix, error) {
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

func (s *anchorService) RecomputeAll(ctx context.Context, userID uuid.UUID) error {
	accounts, _, err := s.accounts.ListByUserID(ctx, userID, accountdomain.ListFilter{})
	if err != nil {
		return fmt.Errorf("list accounts for anchor recompute: %w", err)
	}

	eligible := eligibleAccounts(accounts)
	if len(eligible) == 0 {
		return nil
	}

	texts := make([]string, len(eligible))
	for i, acc := range eligible {
		texts[i] = acc.Name + " " + acc.Description
	}

	vectors, err := s.encoder.Encode(ctx, texts)
	if err != nil {
		return fmt.Errorf("encode account anchors: %w", err)
	}

	for i, acc := range eligible {
		if err := s.repo.Upsert(ctx, userID, acc.ID, vectors[i]); err != nil {
			return fmt.Errorf("upsert anchor for account %s: %w", acc.ID, err)
		}
	}
	return nil
}

// eligibleAccounts restricts anchors to the account types a bank-imported
// transaction's counter-account resolution ever lands on — expense and
// income — so a transfer's asset-to-asset legs never pollute the anchor
// space with accounts classification should never pick.
func eligibleAccounts(accounts []accountdomain.Account) []accountdomain.Account {
	eligible := make([]accountdomain.Account, 0, len(accounts))
	for _, acc := range accounts {
		if !acc.Active {
			continue
		}
		if acc.Type == accountdomain.AccountTypeExpense || acc.Type == accountdomain.AccountTypeIncome {
			eligible = append(eligible, acc)
		}
	}
	return eligible
}
