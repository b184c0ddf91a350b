// Package models defines quizzes and the append-only attempt record.
package models

import (
	"time"

	id "skillproof/pkg/domain"
)

// PassThreshold is the minimum score that earns a skill pass.
const PassThreshold = 70

// MaxScore is the grading scale ceiling.
const MaxScore = 100

// Question is one prompt within a quiz.
type Question struct {
	ID     string `json:"id"`
	Prompt string `json:"prompt"`
}

// Quiz is a titled, ordered question set. The stored order is the canonical
// one; per-attempt presentation order is derived from the attempt's seed.
type Quiz struct {
	ID        id.QuizID
	Title     string
	SkillTag  string
	Questions []Question
	CreatedAt time.Time
}

// Attempt is one candidate's run at one quiz.
//
// Invariants:
//   - Pass is true iff Score >= PassThreshold.
//   - Seed is immutable once recorded; together with the quiz's question
//     set it fully determines the ordering shown to the candidate.
//   - Attempts are append-only: they are written exactly once, after
//     grading, and never updated.
type Attempt struct {
	ID          id.AttemptID
	QuizID      id.QuizID
	CandidateID id.CandidateID
	TeamID      id.TeamID
	Seed        string
	Answer      string
	Score       int
	MaxScore    int
	Pass        bool
	AnchorTx    string
	VCJSON      []byte
	Message     string
	CreatedAt   time.Time
}

// Anchored reports whether the attempt's skill pass was anchored.
func (a Attempt) Anchored() bool {
	return len(a.VCJSON) > 0
}
