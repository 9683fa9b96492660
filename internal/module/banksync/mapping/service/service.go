// Package service resolves and maintains IBAN-to-account mappings.
package service

import (
	"context"
	"fmt"

	accountdomain "ledgersync/internal/module/accounting/account/domain"
	accountservice "ledgersync/internal/module/accounting/account/service"
	"ledgersync/internal/module/banksync/mapping/domain"
	"ledgersync/internal/module/banksync/mapping/repository"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
)

// Service is the account-mapping use-case surface.
type Service interface {
	FindByIBAN(ctx context.Context, userID uuid.UUID, iban string) (*domain.AccountMapping, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.AccountMapping, error)
	Save(ctx context.Context, mapping *domain.AccountMapping) error
	// ResolveOrCreate returns the mapped asset account for iban, creating a
	// default chart-of-account entry when no mapping exists yet (spec §4.5
	// step 3 delegates this to an "external account-import collaborator" —
	// here, the account service itself). The bool reports whether a new
	// mapping was created, so a caller can trigger retroactive transfer
	// reconciliation for historical transactions referencing iban (spec
	// §4.4 "counterpart account added after the first leg already
	// imported").
	ResolveOrCreate(ctx context.Context, userID uuid.UUID, iban, displayName string) (*accountdomain.Account, bool, error)
}

type mappingService struct {
	repo            repository.Repository
	accounts        accountservice.Service
	defaultCurrency string
}

// NewService builds the account-mapping service. defaultCurrency is used
// for the asset account auto-created the first time an IBAN is seen.
func NewService(repo repository.Repository, accounts accountservice.Service, defaultCurrency string) Service {
	return &mappingService{repo: repo, accounts: accounts, defaultCurrency: defaultCurrency}
}

func (s *mappingService) FindByIBAN(ctx context.Context, userID uuid.UUID, iban string) (*domain.AccountMapping, error) {
	return s.repo.FindByIBAN(ctx, userID, iban)
}

func (s *mappingService) ListByUserID(ctx context.Context, userID uuid.UUID) ([]domain.AccountMapping, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *mappingService) Save(ctx context.Context, mapping *domain.AccountMapping) error {
	return s.repo.Save(ctx, mapping)
}

func (s *mappingService) ResolveOrCreate(ctx context.Context, userID uuid.UUID, iban, displayName string) (*accountdomain.Account, bool, error) {
	mapping, err := s.repo.FindByIBAN(ctx, userID, iban)
	if err == nil {
		account, err := s.accounts.GetByID(ctx, mapping.AccountID, userID)
		return account, false, err
	}
	if !shared.IsAppError(err) || shared.ToAppError(err).Code != shared.ErrCodeNotFound {
		return nil, false, err
	}

	account, err := s.accounts.CreateAccount(ctx, userID, accountservice.CreateAccountRequest{
		Name:          displayName,
		Type:          accountdomain.AccountTypeAsset,
		AccountNumber: iban,
		IBAN:          &iban,
		Currency:      s.defaultCurrency,
	})
	if err != nil {
		return nil, false, fmt.Errorf("create default account for iban: %w", err)
	}

	if err := s.repo.Save(ctx, &domain.AccountMapping{
		ID:          uuid.New(),
		UserID:      userID,
		IBAN:        iban,
		AccountID:   account.ID,
		DisplayName: displayName,
		Active:      true,
	}); err != nil {
		return nil, false, fmt.Errorf("save account mapping: %w", err)
	}

	return account, true, nil
}
