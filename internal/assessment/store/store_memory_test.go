package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillproof/internal/assessment/models"
	id "skillproof/pkg/domain"
)

func TestMemoryStoreListsAttemptsByCreationTime(t *testing.T) {
	s := NewMemoryStore()
	candidateID := id.CandidateID(uuid.New())
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	// Inserted out of order on purpose.
	for _, offset := range []int{1, 2, 0} {
		attempt := &models.Attempt{
			ID:          id.NewAttemptID(),
			QuizID:      id.QuizID(uuid.New()),
			CandidateID: candidateID,
			Seed:        "0x1",
			Score:       offset,
			MaxScore:    models.MaxScore,
			CreatedAt:   base.Add(time.Duration(offset) * time.Minute),
		}
		require.NoError(t, s.CreateAttempt(context.Background(), attempt))
	}

	attempts, err := s.FindAttemptsByCandidate(context.Background(), candidateID)

	require.NoError(t, err)
	require.Len(t, attempts, 3)
	for i := 1; i < len(attempts); i++ {
		assert.True(t, !attempts[i].CreatedAt.Before(attempts[i-1].CreatedAt),
			"results must come back oldest first, like the SQL store")
	}
}
