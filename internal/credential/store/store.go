package store

import (
	"context"

	"skillproof/internal/credential/models"
	id "skillproof/pkg/domain"
)

// Store persists credentials. Implementations return sentinel.ErrNotFound
// when no credential matches, and must treat VCJSON as write-once: an
// update never clears or replaces a value that is already set.
type Store interface {
	Create(ctx context.Context, c *models.Credential) error
	FindByID(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error)
	FindByCandidate(ctx context.Context, candidateID id.CandidateID) ([]*models.Credential, error)
	Update(ctx context.Context, c *models.Credential) error
}
