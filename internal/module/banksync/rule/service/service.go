// Package service evaluates counter-account rules against a transaction.
package service

import (
	"context"

	"ledgersync/internal/module/banksync/rule/domain"
	"ledgersync/internal/module/banksync/rule/repository"

	"github.com/google/uuid"
)

// Service is the rule-matching use-case surface.
type Service interface {
	// Resolve returns the highest-priority active rule matching in, or nil
	// if none match. On a match, the rule's match counter is incremented.
	Resolve(ctx context.Context, userID uuid.UUID, in domain.MatchInput) (*domain.Rule, error)
}

type ruleService struct {
	repo repository.Repository
}

// NewService builds the rule-matching service.
func NewService(repo repository.Repository) Service {
	return &ruleService{repo: repo}
}

func (s *ruleService) Resolve(ctx context.Context, userID uuid.UUID, in domain.MatchInput) (*domain.Rule, error) {
	rules, err := s.repo.ListByUserIDOrderedByPriority(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, rule := range rules {
		if rule.Matches(in) {
			if err := s.repo.IncrementMatchCount(ctx, rule.ID); err != nil {
				return nil, err
			}
			return &rule, nil
		}
	}
	return nil, nil
}
