// Package service implements the deterministic skill-assessment flow: a
// ledger-sourced seed, a reproducible question ordering, collaborator
// grading, and anchoring of passing attempts. Attempts are graded exactly
// once and persisted even when anchoring fails; a passing score is never
// lost to ledger unavailability.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"skillproof/internal/assessment/grader"
	"skillproof/internal/assessment/models"
	"skillproof/internal/assessment/shuffle"
	"skillproof/internal/assessment/store"
	"skillproof/internal/ledger"
	"skillproof/internal/sentinel"
	"skillproof/internal/vc"
	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
	"skillproof/pkg/platform/audit"
)

// seedBound caps the random value requested from the ledger. It fills the
// 31 bits the permutation generator consumes.
const seedBound = 1 << 31

// Ledger is the anchoring-client dependency: randomness for seeds and
// minting for skill passes.
type Ledger interface {
	ReadRandom(ctx context.Context, bound int64) (int64, error)
	MintCredential(ctx context.Context, toAddress, contentHash, metadataURI, signerAddress string) (ledger.MintReceipt, error)
}

// Gate enforces the subject DID precondition before grading.
type Gate interface {
	RequireSubjectDID(ctx context.Context, teamID id.TeamID) (id.DID, error)
}

// SeedResult carries a fresh seed and the question order it produces.
type SeedResult struct {
	Seed      string
	Questions []models.Question
}

// SubmitRequest is one candidate's answer to a seeded quiz run.
type SubmitRequest struct {
	CandidateID id.CandidateID
	TeamID      id.TeamID
	QuizID      id.QuizID
	Seed        string
	Answer      string
}

// Service runs assessments.
type Service struct {
	quizzes     store.QuizStore
	attempts    store.AttemptStore
	ledger      Ledger
	gate        Gate
	grader      grader.Grader
	journal     ledger.Journal
	audit       audit.Publisher
	logger      *slog.Logger
	now         func() time.Time
	metadataURI string
}

// Option configures the Service.
type Option func(*Service)

// WithJournal records indeterminate anchoring outcomes for reconciliation.
func WithJournal(j ledger.Journal) Option {
	return func(s *Service) { s.journal = j }
}

// WithAudit sets the audit event publisher.
func WithAudit(p audit.Publisher) Option {
	return func(s *Service) { s.audit = p }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock overrides the time source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetadataBaseURI sets the base URI embedded in minted token metadata.
func WithMetadataBaseURI(base string) Option {
	return func(s *Service) { s.metadataURI = base }
}

// New creates the assessment service.
func New(quizzes store.QuizStore, attempts store.AttemptStore, lc Ledger, gate Gate, g grader.Grader, opts ...Option) *Service {
	s := &Service{
		quizzes:     quizzes,
		attempts:    attempts,
		ledger:      lc,
		gate:        gate,
		grader:      g,
		journal:     ledger.NewMemoryJournal(),
		audit:       audit.NopPublisher{},
		logger:      slog.Default(),
		now:         time.Now,
		metadataURI: "https://skillproof.example/attempts",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequestSeed fetches verifiable randomness from the ledger and returns it
// as a hex seed together with the question order it determines. The seed is
// the only randomness source for the attempt; anyone holding it and the
// quiz's question set can reproduce the ordering.
func (s *Service) RequestSeed(ctx context.Context, quizID id.QuizID) (*SeedResult, error) {
	quiz, err := s.quiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	value, err := s.ledger.ReadRandom(ctx, seedBound)
	if err != nil {
		return nil, err
	}
	seed := fmt.Sprintf("0x%08x", value)
	return &SeedResult{
		Seed:      seed,
		Questions: shuffle.Apply(seed, quiz.Questions),
	}, nil
}

// SubmitAttempt grades an answer and records the attempt. A passing attempt
// is anchored in the same call; anchoring failure downgrades to a message on
// the recorded attempt rather than losing the grade. The seed and the
// subject DID are checked before grading so a hopeless attempt never reaches
// the collaborator.
func (s *Service) SubmitAttempt(ctx context.Context, req SubmitRequest) (*models.Attempt, error) {
	if err := validateSeed(req.Seed); err != nil {
		return nil, err
	}
	quiz, err := s.quiz(ctx, req.QuizID)
	if err != nil {
		return nil, err
	}
	subjectDID, err := s.gate.RequireSubjectDID(ctx, req.TeamID)
	if err != nil {
		return nil, err
	}

	score, err := s.grader.Grade(ctx, quiz.Title, req.Answer)
	if err != nil {
		return nil, err
	}

	attempt := &models.Attempt{
		ID:          id.NewAttemptID(),
		QuizID:      quiz.ID,
		CandidateID: req.CandidateID,
		TeamID:      req.TeamID,
		Seed:        req.Seed,
		Answer:      req.Answer,
		Score:       score,
		MaxScore:    models.MaxScore,
		Pass:        score >= models.PassThreshold,
		CreatedAt:   s.now().UTC(),
	}

	if attempt.Pass {
		attempt.Message = fmt.Sprintf("passed with score %d/%d", score, models.MaxScore)
		s.anchorPass(ctx, attempt, quiz, subjectDID)
	} else {
		attempt.Message = fmt.Sprintf("scored %d/%d, below the pass mark", score, models.MaxScore)
	}

	if err := s.attempts.CreateAttempt(ctx, attempt); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist attempt")
	}

	s.emit(ctx, audit.ActionAttemptGraded, req.CandidateID.String(), attempt.ID.String(), map[string]string{
		"quiz":  quiz.ID.String(),
		"score": fmt.Sprintf("%d", score),
		"pass":  fmt.Sprintf("%t", attempt.Pass),
	})
	return attempt, nil
}

// anchorPass mints a skill pass for the attempt. The subject's own address
// is both recipient and signer. Failures mutate only the attempt's message;
// the graded result itself is kept.
func (s *Service) anchorPass(ctx context.Context, attempt *models.Attempt, quiz *models.Quiz, subjectDID id.DID) {
	title := fmt.Sprintf("%s (score %d/%d)", quiz.Title, attempt.Score, attempt.MaxScore)
	doc, hash, err := vc.Build(subjectDID, subjectDID, title, quiz.SkillTag, "", s.now().UTC())
	if err != nil {
		attempt.Message += "; anchoring failed: " + err.Error()
		return
	}

	metadataURI := s.metadataURI + "/" + attempt.ID.String()
	receipt, err := s.ledger.MintCredential(ctx, subjectDID.Address(), hash.Hex(), metadataURI, subjectDID.Address())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeAnchoringIndeterminate) {
			s.recordIndeterminate(ctx, attempt.ID.String(), hash.Hex(), err)
		}
		s.logger.WarnContext(ctx, "skill pass anchoring failed",
			"attempt_id", attempt.ID.String(),
			"error", err,
		)
		attempt.Message += "; anchoring failed: " + err.Error()
		return
	}

	anchored, err := vc.MarshalAnchored(receipt.TokenID, receipt.TxHash, doc)
	if err != nil {
		attempt.Message += "; anchoring failed: " + err.Error()
		return
	}
	attempt.AnchorTx = receipt.TxHash
	attempt.VCJSON = anchored
	attempt.Message += "; anchored in " + receipt.TxHash
}

// GetAttempt returns a single attempt.
func (s *Service) GetAttempt(ctx context.Context, attemptID id.AttemptID) (*models.Attempt, error) {
	attempt, err := s.attempts.FindAttempt(ctx, attemptID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "attempt not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up attempt")
	}
	return attempt, nil
}

// ListAttempts returns all attempts by a candidate.
func (s *Service) ListAttempts(ctx context.Context, candidateID id.CandidateID) ([]*models.Attempt, error) {
	attempts, err := s.attempts.FindAttemptsByCandidate(ctx, candidateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list attempts")
	}
	return attempts, nil
}

func (s *Service) quiz(ctx context.Context, quizID id.QuizID) (*models.Quiz, error) {
	quiz, err := s.quizzes.FindQuiz(ctx, quizID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "quiz not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up quiz")
	}
	return quiz, nil
}

func validateSeed(seed string) error {
	s := strings.TrimPrefix(seed, "0x")
	if s == "" {
		return dErrors.New(dErrors.CodeValidation, "seed is required")
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return dErrors.New(dErrors.CodeValidation, "seed must be a hex string")
		}
	}
	return nil
}

func (s *Service) recordIndeterminate(ctx context.Context, resource, contentHash string, cause error) {
	txHash := ledger.IndeterminateTxHash(cause)
	entry := ledger.JournalEntry{
		Resource:    resource,
		TxHash:      txHash,
		ContentHash: contentHash,
		Reason:      cause.Error(),
		RecordedAt:  s.now().UTC(),
	}
	if err := s.journal.Record(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "journal write failed", "resource", resource, "error", err)
	}
	s.emit(ctx, audit.ActionAnchorIndeterminate, "", resource, map[string]string{
		"content_hash": contentHash,
		"tx_hash":      txHash,
	})
}

func (s *Service) emit(ctx context.Context, action audit.Action, actor, resource string, detail map[string]string) {
	event := audit.Event{
		Action:    action,
		Actor:     actor,
		Resource:  resource,
		Detail:    detail,
		Timestamp: s.now().UTC(),
	}
	if err := s.audit.Emit(ctx, event); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "audit emit failed", "action", string(action), "error", err)
	}
}
