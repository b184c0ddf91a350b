package store

import (
	"context"

	"skillproof/internal/assessment/models"
	id "skillproof/pkg/domain"
)

// QuizStore reads quiz definitions. Quizzes are authored out of band;
// this service only consumes them.
type QuizStore interface {
	FindQuiz(ctx context.Context, quizID id.QuizID) (*models.Quiz, error)
}

// AttemptStore persists graded attempts. Attempts are append-only:
// there is no update operation by design of the data model.
type AttemptStore interface {
	CreateAttempt(ctx context.Context, attempt *models.Attempt) error
	FindAttempt(ctx context.Context, attemptID id.AttemptID) (*models.Attempt, error)
	FindAttemptsByCandidate(ctx context.Context, candidateID id.CandidateID) ([]*models.Attempt, error)
}
