package store

import (
	"context"
	"sort"
	"sync"

	"skillproof/internal/assessment/models"
	"skillproof/internal/sentinel"
	id "skillproof/pkg/domain"
)

// MemoryStore is an in-memory quiz and attempt store for tests and local
// development.
type MemoryStore struct {
	mu       sync.RWMutex
	quizzes  map[id.QuizID]*models.Quiz
	attempts map[id.AttemptID]*models.Attempt
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		quizzes:  make(map[id.QuizID]*models.Quiz),
		attempts: make(map[id.AttemptID]*models.Attempt),
	}
}

// SeedQuiz registers a quiz definition. Test helper.
func (s *MemoryStore) SeedQuiz(quiz *models.Quiz) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = quiz
}

func (s *MemoryStore) FindQuiz(_ context.Context, quizID id.QuizID) (*models.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *quiz
	cp.Questions = append([]models.Question(nil), quiz.Questions...)
	return &cp, nil
}

func (s *MemoryStore) CreateAttempt(_ context.Context, attempt *models.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attempts[attempt.ID]; ok {
		return sentinel.ErrInvalidState
	}
	s.attempts[attempt.ID] = cloneAttempt(attempt)
	return nil
}

func (s *MemoryStore) FindAttempt(_ context.Context, attemptID id.AttemptID) (*models.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneAttempt(attempt), nil
}

func (s *MemoryStore) FindAttemptsByCandidate(_ context.Context, candidateID id.CandidateID) ([]*models.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Attempt
	for _, a := range s.attempts {
		if a.CandidateID == candidateID {
			out = append(out, cloneAttempt(a))
		}
	}
	// Same order as the SQL store.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func cloneAttempt(a *models.Attempt) *models.Attempt {
	cp := *a
	if a.VCJSON != nil {
		cp.VCJSON = append([]byte(nil), a.VCJSON...)
	}
	return &cp
}
