package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillproof/internal/credential/models"
	id "skillproof/pkg/domain"
)

func TestMemoryStoreListsByCreationTime(t *testing.T) {
	s := NewMemoryStore()
	candidateID := id.CandidateID(uuid.New())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Inserted out of order on purpose.
	for _, offset := range []int{2, 0, 1} {
		cred := &models.Credential{
			ID:          id.NewCredentialID(),
			Title:       "Credential",
			CandidateID: candidateID,
			Status:      models.StatusUnverified,
			CreatedAt:   base.Add(time.Duration(offset) * time.Minute),
		}
		require.NoError(t, s.Create(context.Background(), cred))
	}

	creds, err := s.FindByCandidate(context.Background(), candidateID)

	require.NoError(t, err)
	require.Len(t, creds, 3)
	for i := 1; i < len(creds); i++ {
		assert.True(t, !creds[i].CreatedAt.Before(creds[i-1].CreatedAt),
			"results must come back oldest first, like the SQL store")
	}
}

func TestMemoryStorePreservesAnchoredDocumentOnUpdate(t *testing.T) {
	s := NewMemoryStore()
	cred := &models.Credential{
		ID:          id.NewCredentialID(),
		Title:       "Credential",
		CandidateID: id.CandidateID(uuid.New()),
		Status:      models.StatusPending,
		VCJSON:      []byte(`{"tokenId":42}`),
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.Create(context.Background(), cred))

	cred.VCJSON = nil
	cred.Status = models.StatusVerified
	require.NoError(t, s.Update(context.Background(), cred))

	stored, err := s.FindByID(context.Background(), cred.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"tokenId":42}`, string(stored.VCJSON))
	assert.Equal(t, models.StatusVerified, stored.Status)
}
