// Package seeder populates in-memory stores with demo data so the service
// is exercisable locally without a database or an identity-creation flow.
package seeder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	assessmentmodels "skillproof/internal/assessment/models"
	"skillproof/internal/identity"
	id "skillproof/pkg/domain"
)

// QuizStore accepts seeded quiz definitions.
type QuizStore interface {
	SeedQuiz(quiz *assessmentmodels.Quiz)
}

// Seeder writes demo teams, issuers, and quizzes.
type Seeder struct {
	identities identity.Store
	quizzes    QuizStore
	logger     *slog.Logger
}

// New creates a seeder.
func New(identities identity.Store, quizzes QuizStore, logger *slog.Logger) *Seeder {
	return &Seeder{identities: identities, quizzes: quizzes, logger: logger}
}

// Fixed IDs so tokengen output and curl examples are reproducible across
// restarts.
var (
	DemoTeamID   = id.TeamID(uuid.MustParse("11111111-1111-1111-1111-111111111111"))
	DemoIssuerID = id.IssuerID(uuid.MustParse("22222222-2222-2222-2222-222222222222"))
	DemoQuizID   = id.QuizID(uuid.MustParse("33333333-3333-3333-3333-333333333333"))
)

// SeedAll writes the demo fixtures.
func (s *Seeder) SeedAll(ctx context.Context) error {
	now := time.Now().UTC()

	teamDID := id.MustDID("did:skill:0x00000000000000000000000000000000000000aa")
	if err := s.identities.SaveTeam(ctx, identity.Team{
		ID:        DemoTeamID,
		Name:      "Demo Team",
		DID:       &teamDID,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("seed team: %w", err)
	}

	issuerDID := id.MustDID("did:skill:0x00000000000000000000000000000000000000bb")
	if err := s.identities.SaveIssuer(ctx, identity.Issuer{
		ID:        DemoIssuerID,
		Name:      "Demo Issuer",
		Status:    identity.IssuerStatusActive,
		DID:       &issuerDID,
		CreatedAt: now,
	}); err != nil {
		return fmt.Errorf("seed issuer: %w", err)
	}

	s.quizzes.SeedQuiz(&assessmentmodels.Quiz{
		ID:       DemoQuizID,
		Title:    "Go Fundamentals",
		SkillTag: "golang",
		Questions: []assessmentmodels.Question{
			{ID: "q0", Prompt: "Explain how goroutines differ from OS threads."},
			{ID: "q1", Prompt: "When does a send on a channel block?"},
			{ID: "q2", Prompt: "What does context cancellation propagate?"},
			{ID: "q3", Prompt: "Why are errors values in Go?"},
			{ID: "q4", Prompt: "Describe the memory model guarantee of a mutex."},
		},
		CreatedAt: now,
	})

	s.logger.Info("seeded demo data",
		"team_id", DemoTeamID.String(),
		"issuer_id", DemoIssuerID.String(),
		"quiz_id", DemoQuizID.String(),
	)
	return nil
}
