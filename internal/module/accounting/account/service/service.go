// Package service implements chart-of-account lifecycle and hierarchy rules.
package service

import (
	"context"
	"fmt"

	"ledgersync/internal/module/accounting/account/domain"
	"ledgersync/internal/module/accounting/account/repository"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateAccountRequest describes a new chart-of-account node.
type CreateAccountRequest struct {
	Name          string
	Type          domain.AccountType
	AccountNumber string
	IBAN          *string
	ParentID      *uuid.UUID
	Description   string
	Currency      string
}

// UpdateAccountRequest carries the mutable fields of an account.
type UpdateAccountRequest struct {
	Name        *string
	Description *string
	IBAN        *string
}

// AccountCreator creates accounts and validates placement in the hierarchy.
type AccountCreator interface {
	CreateAccount(ctx context.Context, userID uuid.UUID, req CreateAccountRequest) (*domain.Account, error)
}

// AccountReader serves single-account and listing queries.
type AccountReader interface {
	GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Account, error)
	GetByAccountNumber(ctx context.Context, userID uuid.UUID, accountNumber string) (*domain.Account, error)
	ListByUserID(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) ([]domain.Account, int64, error)
}

// AccountUpdater mutates account fields and hierarchy placement.
type AccountUpdater interface {
	UpdateAccount(ctx context.Context, id, userID uuid.UUID, req UpdateAccountRequest) (*domain.Account, error)
	SetParent(ctx context.Context, id, userID uuid.UUID, parentID *uuid.UUID) (*domain.Account, error)
}

// AccountDeactivator retires accounts no longer in use.
type AccountDeactivator interface {
	Deactivate(ctx context.Context, id, userID uuid.UUID) error
}

// Service is the composite interface for all account operations.
type Service interface {
	AccountCreator
	AccountReader
	AccountUpdater
	AccountDeactivator
}

type accountService struct {
	repo   repository.Repository
	logger *zap.Logger
}

// NewService builds the account service.
func NewService(repo repository.Repository, logger *zap.Logger) Service {
	return &accountService{repo: repo, logger: logger.Named("accounting.account.service")}
}

func (s *accountService) CreateAccount(ctx context.Context, userID uuid.UUID, req CreateAccountRequest) (*domain.Account, error) {
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}

	account := &domain.Account{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          req.Name,
		Type:          req.Type,
		AccountNumber: req.AccountNumber,
		IBAN:          req.IBAN,
		Description:   req.Description,
		Currency:      currency,
		Active:        true,
	}

	if req.ParentID != nil {
		if err := s.validateParent(ctx, userID, *req.ParentID, uuid.Nil); err != nil {
			return nil, err
		}
		account.ParentID = req.ParentID
	}

	if err := s.repo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return account, nil
}

func (s *accountService) GetByID(ctx context.Context, id, userID uuid.UUID) (*domain.Account, error) {
	return s.repo.GetByIDAndUserID(ctx, id.String(), userID.String())
}

func (s *accountService) GetByAccountNumber(ctx context.Context, userID uuid.UUID, accountNumber string) (*domain.Account, error) {
	return s.repo.GetByAccountNumber(ctx, userID.String(), accountNumber)
}

func (s *accountService) ListByUserID(ctx context.Context, userID uuid.UUID, filter domain.ListFilter) ([]domain.Account, int64, error) {
	accounts, err := s.repo.ListByUserID(ctx, userID.String(), filter)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.CountByUserID(ctx, userID.String(), filter)
	if err != nil {
		return nil, 0, err
	}
	return accounts, count, nil
}

func (s *accountService) UpdateAccount(ctx context.Context, id, userID uuid.UUID, req UpdateAccountRequest) (*domain.Account, error) {
	account, err := s.repo.GetByIDAndUserID(ctx, id.String(), userID.String())
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	if req.IBAN != nil {
		account.IBAN = req.IBAN
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	return account, nil
}

// SetParent moves an account under a new parent, or detaches it when
// parentID is nil. Depth and cycle constraints are re-checked every time.
func (s *accountService) SetParent(ctx context.Context, id, userID uuid.UUID, parentID *uuid.UUID) (*domain.Account, error) {
	account, err := s.repo.GetByIDAndUserID(ctx, id.String(), userID.String())
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if err := s.validateParent(ctx, userID, *parentID, id); err != nil {
			return nil, err
		}
	}

	account.ParentID = parentID
	if err := s.repo.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("set parent: %w", err)
	}
	return account, nil
}

// Deactivate retires an account. It refuses accounts that still have
// children, since a deactivated parent would orphan the hierarchy.
func (s *accountService) Deactivate(ctx context.Context, id, userID uuid.UUID) error {
	account, err := s.repo.GetByIDAndUserID(ctx, id.String(), userID.String())
	if err != nil {
		return err
	}

	children, err := s.repo.ListChildren(ctx, account.ID.String())
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return shared.ErrBusinessRuleViolation.WithDetails("reason", "account has children and cannot be deactivated")
	}

	account.Active = false
	return s.repo.Update(ctx, account)
}

// validateParent checks that candidateParentID belongs to the same user,
// that attaching it would not exceed MaxHierarchyDepth, and that it would
// not introduce a cycle back to selfID (selfID is uuid.Nil for new accounts).
func (s *accountService) validateParent(ctx context.Context, userID, candidateParentID, selfID uuid.UUID) error {
	depth := 1
	current := candidateParentID
	for {
		if current == selfID && selfID != uuid.Nil {
			return shared.ErrHierarchyCycle.WithDetails("reason", "account cannot be its own ancestor")
		}

		parent, err := s.repo.GetByIDAndUserID(ctx, current.String(), userID.String())
		if err != nil {
			return err
		}

		if parent.ParentID == nil {
			break
		}

		depth++
		if depth > domain.MaxHierarchyDepth {
			return shared.ErrHierarchyDepth.WithDetails("max_depth", domain.MaxHierarchyDepth)
		}
		current = *parent.ParentID
	}
	return nil
}
