package sync

import (
	"context"
	"sync"
	"testing"
	"time"

	"ledgersync/internal/module/banksync/adapter/credential"
	syncdomain "ledgersync/internal/module/banksync/sync/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

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

type stubSyncService struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (s *stubSyncService) SyncAccount(ctx context.Context, userID uuid.UUID, bankCode string) (*syncdomain.Result, error) {
	s.mu.Lock()
	s.calls = append(s.calls, bankCode)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return &syncdomain.Result{BankCode: bankCode, Fetched: 1, Imported: 1}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) Publish(userID uuid.UUID, kind string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, kind)
}

func TestWorker_ForceSyncPublishesOneResultPerConnection(t *testing.T) {
	repo := &stubCredentialRepo{connections: []credential.StoredCredential{
		{UserID: uuid.New(), BankCode: "bank-a"},
		{UserID: uuid.New(), BankCode: "bank-b"},
	}}
	svc := &stubSyncService{}
	publisher := &recordingPublisher{}

	w := NewWorker(WorkerConfig{MaxConcurrent: 2, SyncTimeout: time.Second}, repo, svc, publisher, zap.NewNop())
	w.ForceSync(context.Background())

	assert.Len(t, svc.calls, 2)
	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	assert.Len(t, publisher.events, 2)
	for _, kind := range publisher.events {
		assert.Equal(t, "sync.result", kind)
	}
}

func TestWorker_ForceSyncToleratesNilPublisher(t *testing.T) {
	repo := &stubCredentialRepo{connections: []credential.StoredCredential{{UserID: uuid.New(), BankCode: "bank-a"}}}
	svc := &stubSyncService{}

	w := NewWorker(WorkerConfig{MaxConcurrent: 1, SyncTimeout: time.Second}, repo, svc, nil, zap.NewNop())
	assert.NotPanics(t, func() { w.ForceSync(context.Background()) })
}

func TestWorker_NoConnectionsIsANoop(t *testing.T) {
	repo := &stubCredentialRepo{}
	svc := &stubSyncService{}
	publisher := &recordingPublisher{}

	w := NewWorker(WorkerConfig{MaxConcurrent: 1, SyncTimeout: time.Second}, repo, svc, publisher, zap.NewNop())
	w.ForceSync(context.Background())

	assert.Empty(t, svc.calls)
	assert.Empty(t, publisher.events)
}

func TestWorker_StartIsNoopWhenDisabled(t *testing.T) {
	repo := &stubCredentialRepo{}
	svc := &stubSyncService{}

	w := NewWorker(WorkerConfig{Enabled: false}, repo, svc, nil, zap.NewNop())
	require.NoError(t, w.Start(context.Background()))
	require.NoError(t, w.Stop(context.Background()))
}

func TestWorker_SyncErrorDoesNotPublish(t *testing.T) {
	repo := &stubCredentialRepo{connections: []credential.StoredCredential{{UserID: uuid.New(), BankCode: "bank-a"}}}
	svc := &stubSyncService{err: assert.AnError}
	publisher := &recordingPublisher{}

	w := NewWorker(WorkerConfig{MaxConcurrent: 1, SyncTimeout: time.Second}, repo, svc, publisher, zap.NewNop())
	w.ForceSync(context.Background())

	assert.Empty(t, publisher.events)
}
