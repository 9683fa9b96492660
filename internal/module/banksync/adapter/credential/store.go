package credential

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ledgersync/internal/module/banksync/adapter"
	"ledgersync/internal/service"

	"github.com/google/uuid"
)

// Store implements adapter.CredentialStore on top of Repository, encrypting
// the secret bundle at rest with the server's AES-256-GCM key.
type Store struct {
	repo       Repository
	encryption *service.EncryptionService
}

// NewStore builds a credential store bridging Repository and the bank
// adapter's credential port.
func NewStore(repo Repository, encryption *service.EncryptionService) *Store {
	return &Store{repo: repo, encryption: encryption}
}

func (s *Store) FindByBankCode(ctx context.Context, userID, bankCode string) (adapter.Credentials, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return adapter.Credentials{}, fmt.Errorf("credential store: invalid user id: %w", err)
	}

	row, err := s.repo.FindByUserIDAndBankCode(ctx, uid, bankCode)
	if err != nil {
		return adapter.Credentials{}, err
	}

	plaintext, err := s.encryption.Decrypt(row.EncryptedSecrets)
	if err != nil {
		return adapter.Credentials{}, fmt.Errorf("credential store: decrypt secrets: %w", err)
	}

	var secrets map[string]string
	if err := json.Unmarshal([]byte(plaintext), &secrets); err != nil {
		return adapter.Credentials{}, fmt.Errorf("credential store: decode secrets: %w", err)
	}

	return adapter.Credentials{
		BankCode: row.BankCode,
		Endpoint: row.Endpoint,
		Secrets:  secrets,
	}, nil
}

func (s *Store) GetTANSettings(ctx context.Context, userID, bankCode string) (string, string, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return "", "", fmt.Errorf("credential store: invalid user id: %w", err)
	}
	row, err := s.repo.FindByUserIDAndBankCode(ctx, uid, bankCode)
	if err != nil {
		return "", "", err
	}
	return row.TANMethod, row.TANMedium, nil
}

func (s *Store) UpdateLastUsed(ctx context.Context, userID, bankCode string, at time.Time) error {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("credential store: invalid user id: %w", err)
	}
	row, err := s.repo.FindByUserIDAndBankCode(ctx, uid, bankCode)
	if err != nil {
		return err
	}
	return s.repo.UpdateLastUsed(ctx, row.ID, at)
}

// Register encrypts secrets and persists a new or updated credential record
// for userID's connection to bankCode. Not part of adapter.CredentialStore;
// this is the write path used when a user links a bank account.
func (s *Store) Register(ctx context.Context, userID uuid.UUID, bankCode, endpoint string, secrets map[string]string, tanMethod, tanMedium string) error {
	raw, err := json.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("credential store: encode secrets: %w", err)
	}
	encrypted, err := s.encryption.Encrypt(string(raw))
	if err != nil {
		return fmt.Errorf("credential store: encrypt secrets: %w", err)
	}

	id := uuid.New()
	if existing, err := s.repo.FindByUserIDAndBankCode(ctx, userID, bankCode); err == nil {
		id = existing.ID
	}

	return s.repo.Save(ctx, &StoredCredential{
		ID:               id,
		UserID:           userID,
		BankCode:         bankCode,
		Endpoint:         endpoint,
		EncryptedSecrets: encrypted,
		TANMethod:        tanMethod,
		TANMedium:        tanMedium,
	})
}

var _ adapter.CredentialStore = (*Store)(nil)
