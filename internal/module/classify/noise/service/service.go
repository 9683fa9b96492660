// Package service cleans purpose text by dropping high-frequency
// boilerplate tokens and keeps the per-user frequency table that decision
// is based on up to date (spec §4.6 tier 1).
package service

import (
	"context"
	"strings"

	"ledgersync/internal/module/classify/cache"
	"ledgersync/internal/module/classify/noise/domain"
	"ledgersync/internal/module/classify/noise/repository"
	"ledgersync/internal/shared"

	"github.com/google/uuid"
)

// Service is the noise model's use case boundary: clean a text against the
// user's model, and observe new texts to keep the model current.
type Service interface {
	// Clean drops tokens whose document frequency exceeds threshold,
	// returning the remaining tokens rejoined with single spaces.
	Clean(ctx context.Context, userID uuid.UUID, text string) (string, error)
	// Observe folds texts into the user's model as new documents and
	// persists the result. The pipeline calls it once per classified
	// transaction with that transaction's purpose text alone, not once
	// per import batch.
	Observe(ctx context.Context, userID uuid.UUID, texts []string) error
	// GC prunes every user's model of tokens seen fewer than minCount times
	// and persists the ones it changed. Run from the nightly maintenance
	// worker, not the import path.
	GC(ctx context.Context, minCount int) (usersPruned int, tokensRemoved int, err error)
}

const modelCacheKey = "classify:noise:model"

type noiseService struct {
	repo        repository.Repository
	cache       *cache.Store
	threshold   float64
	dampenerCap int
}

// NewService builds the noise model service. threshold is the document-
// frequency ratio above which a token is considered boilerplate (default
// 0.30); dampenerCap saturates a single token's observed count (default
// 100). store caches the loaded model across the many Clean calls a single
// import batch makes for one user, invalidated the moment Observe or GC
// changes it; store may be nil, in which case every Clean hits Postgres.
func NewService(repo repository.Repository, store *cache.Store, threshold float64, dampenerCap int) Service {
	return &noiseService{repo: repo, cache: store, threshold: threshold, dampenerCap: dampenerCap}
}

func (s *noiseService) Clean(ctx context.Context, userID uuid.UUID, text string) (string, error) {
	model, err := s.loadOrNew(ctx, userID)
	if err != nil {
		return "", err
	}

	tokens := tokenize(text)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if model.Ratio(tok) > s.threshold {
			continue
		}
		kept = append(kept, tok)
	}
	return strings.Join(kept, " "), nil
}

func (s *noiseService) Observe(ctx context.Context, userID uuid.UUID, texts []string) error {
	model, err := s.loadOrNew(ctx, userID)
	if err != nil {
		return err
	}

	for _, text := range texts {
		model.Observe(tokenize(text), s.dampenerCap)
	}
	if err := s.repo.Save(ctx, model); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, modelCacheKey, userID)
	}
	return nil
}

func (s *noiseService) GC(ctx context.Context, minCount int) (int, int, error) {
	models, err := s.repo.ListAll(ctx)
	if err != nil {
		return 0, 0, err
	}

	usersPruned, tokensRemoved := 0, 0
	for i := range models {
		removed := models[i].Prune(minCount)
		if removed == 0 {
			continue
		}
		if err := s.repo.Save(ctx, &models[i]); err != nil {
			return usersPruned, tokensRemoved, err
		}
		if s.cache != nil {
			s.cache.Invalidate(ctx, modelCacheKey, models[i].UserID)
		}
		usersPruned++
		tokensRemoved += removed
	}
	return usersPruned, tokensRemoved, nil
}

func (s *noiseService) loadOrNew(ctx context.Context, userID uuid.UUID) (*domain.Model, error) {
	if s.cache != nil {
		var cached domain.Model
		if s.cache.Get(ctx, modelCacheKey, userID, &cached) {
			return &cached, nil
		}
	}

	model, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if shared.IsAppError(err) && shared.ToAppError(err).Code == shared.ErrCodeNotFound {
			return domain.New(userID), nil
		}
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, modelCacheKey, userID, model)
	}
	return model, nil
}

// tokenize lower-cases and splits on anything that isn't a letter or digit,
// so punctuation never survives as a pseudo-word in the frequency table.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r >= 'à' && r <= 'ÿ')
	})
	return fields
}
