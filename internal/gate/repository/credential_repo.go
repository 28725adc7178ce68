package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/taha-association/links-backend/internal/gate/domain"
)

const credentialKey = "links:gate:credential" // single slot: {authenticated, timestamp, credentialId}

// CredentialRepository persists the gate's access credential in one named
// slot. The slot is never expired by the store; validity is the service's
// call at read time.
type CredentialRepository struct {
	client *redis.Client
}

func NewCredentialRepository(client *redis.Client) *CredentialRepository {
	return &CredentialRepository{client: client}
}

// Get returns the stored credential, or ErrNoCredential when the slot is
// empty or unreadable.
func (r *CredentialRepository) Get(ctx context.Context) (*domain.Credential, error) {
	data, err := r.client.Get(ctx, credentialKey).Result()
	if err == redis.Nil {
		return nil, domain.ErrNoCredential
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential: %w", err)
	}

	var cred domain.Credential
	if err := json.Unmarshal([]byte(data), &cred); err != nil {
		return nil, domain.ErrNoCredential
	}
	return &cred, nil
}

// Save overwrites the credential slot.
func (r *CredentialRepository) Save(ctx context.Context, cred *domain.Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to marshal credential: %w", err)
	}
	if err := r.client.Set(ctx, credentialKey, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store credential: %w", err)
	}
	return nil
}

// Clear empties the credential slot. Clearing an empty slot is not an error.
func (r *CredentialRepository) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, credentialKey).Err(); err != nil {
		return fmt.Errorf("failed to clear credential: %w", err)
	}
	return nil
}
