package maintenance

import (
	"context"
	"testing"
	"time"

	"ledgersync/internal/module/banksync/adapter/credential"
	anchorservice "ledgersync/internal/module/classify/anchor/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubUserSource struct {
	ids []uuid.UUID
	err error
}

func (s *stubUserSource) DistinctUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

type stubNoiseService struct {
	usersPruned, tokensRemoved int
	err                        error
	called                     bool
}

func (s *stubNoiseService) Clean(ctx context.Context, userID uuid.UUID, text string) (string, error) {
	panic("not used")
}
func (s *stubNoiseService) Observe(ctx context.Context, userID uuid.UUID, texts []string) error {
	panic("not used")
}
func (s *stubNoiseService) GC(ctx context.Context, minCount int) (int, int, error) {
	s.called = true
	return s.usersPruned, s.tokensRemoved, s.err
}

type stubAnchorService struct {
	recomputed []uuid.UUID
	failFor    map[uuid.UUID]bool
}

func (s *stubAnchorService) GetMatrix(ctx context.Context, userID uuid.UUID) (*anchorservice.Matrix, error) {
	panic("not used")
}
func (s *stubAnchorService) RecomputeAll(ctx context.Context, userID uuid.UUID) error {
	if s.failFor[userID] {
		return assert.AnError
	}
	s.recomputed = append(s.recomputed, userID)
	return nil
}

func TestWorker_RunNow_PrunesThenRecomputesEveryUser(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	noise := &stubNoiseService{usersPruned: 2, tokensRemoved: 5}
	anchor := &stubAnchorService{}
	users := &stubUserSource{ids: []uuid.UUID{userA, userB}}

	w := NewWorker(Config{Enabled: true, NoiseGCMinCount: 2}, noise, anchor, users, zap.NewNop())
	w.RunNow(context.Background())

	assert.True(t, noise.called)
	assert.ElementsMatch(t, []uuid.UUID{userA, userB}, anchor.recomputed)
}

func TestWorker_RunNow_ToleratesOneUserFailing(t *testing.T) {
	userA, userB := uuid.New(), uuid.New()
	noise := &stubNoiseService{}
	anchor := &stubAnchorService{failFor: map[uuid.UUID]bool{userA: true}}
	users := &stubUserSource{ids: []uuid.UUID{userA, userB}}

	w := NewWorker(Config{Enabled: true}, noise, anchor, users, zap.NewNop())
	assert.NotPanics(t, func() { w.RunNow(context.Background()) })
	assert.Equal(t, []uuid.UUID{userB}, anchor.recomputed)
}

func TestWorker_RunNow_NoiseGCErrorDoesNotBlockAnchorRecompute(t *testing.T) {
	userA := uuid.New()
	noise := &stubNoiseService{err: assert.AnError}
	anchor := &stubAnchorService{}
	users := &stubUserSource{ids: []uuid.UUID{userA}}

	w := NewWorker(Config{Enabled: true}, noise, anchor, users, zap.NewNop())
	w.RunNow(context.Background())

	assert.Equal(t, []uuid.UUID{userA}, anchor.recomputed)
}

func TestWorker_RunNow_UserEnumerationErrorSkipsRecompute(t *testing.T) {
	noise := &stubNoiseService{}
	anchor := &stubAnchorService{}
	users := &stubUserSource{err: assert.AnError}

	w := NewWorker(Config{Enabled: true}, noise, anchor, users, zap.NewNop())
	w.RunNow(context.Background())

	assert.True(t, noise.called)
	assert.Empty(t, anchor.recomputed)
}

func TestWorker_Start_NoopWhenDisabled(t *testing.T) {
	w := NewWorker(Config{Enabled: false}, &stubNoiseService{}, &stubAnchorService{}, &stubUserSource{}, zap.NewNop())
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop(context.Background()))
}

func TestWorker_StartStop_SchedulesAndStopsCleanly(t *testing.T) {
	w := NewWorker(Config{Enabled: true, Schedule: "@every 1h", NoiseGCMinCount: 1}, &stubNoiseService{}, &stubAnchorService{}, &stubUserSource{}, zap.NewNop())
	require.NoError(t, w.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, w.Stop(ctx))
}

type stubCredentialRepo struct {
	connections []credential.StoredCredential
}

func (s *stubCredentialRepo) FindByUserIDAndBankCode(ctx context.Context, userID uuid.UUID, bankCode string) (*credential.StoredCredential, error) {
	panic("not used")
}
func (s *stubCredentialRepo) Save(ctx context.Context, cred *credential.StoredCredential) error {
	panic("not used")
}
func (s *stubCredentialRepo) UpdateLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	panic("not used")
}
func (s *stubCredentialRepo) ListAll(ctx context.Context) ([]credential.StoredCredential, error) {
	return s.connections, nil
}

func TestCredentialUserSource_DedupesUserIDs(t *testing.T) {
	userA := uuid.New()
	repo := &stubCredentialRepo{connections: []credential.StoredCredential{
		{UserID: userA, BankCode: "bank-a"},
		{UserID: userA, BankCode: "bank-b"},
	}}
	source := newCredentialUserSource(repo)

	ids, err := source.DistinctUserIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userA}, ids)
}
