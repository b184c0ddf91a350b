package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"

	"skillproof/internal/assessment/models"
	"skillproof/internal/assessment/store"
	"skillproof/internal/ledger"
	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
	"skillproof/pkg/platform/audit"
)

type fakeLedger struct {
	random    int64
	randomErr error
	mintCalls int
	mintErr   error
	receipt   ledger.MintReceipt
}

func (f *fakeLedger) ReadRandom(context.Context, int64) (int64, error) {
	return f.random, f.randomErr
}

func (f *fakeLedger) MintCredential(context.Context, string, string, string, string) (ledger.MintReceipt, error) {
	f.mintCalls++
	if f.mintErr != nil {
		return ledger.MintReceipt{}, f.mintErr
	}
	return f.receipt, nil
}

type fakeGate struct {
	did id.DID
	err error
}

func (f *fakeGate) RequireSubjectDID(context.Context, id.TeamID) (id.DID, error) {
	return f.did, f.err
}

type fakeGrader struct {
	score int
	err   error
	calls int
}

func (f *fakeGrader) Grade(context.Context, string, string) (int, error) {
	f.calls++
	return f.score, f.err
}

type AssessmentSuite struct {
	suite.Suite

	store   *store.MemoryStore
	ledger  *fakeLedger
	gate    *fakeGate
	grader  *fakeGrader
	journal *ledger.MemoryJournal
	sink    *audit.MemorySink
	svc     *Service

	quiz *models.Quiz
}

func TestAssessmentSuite(t *testing.T) {
	suite.Run(t, new(AssessmentSuite))
}

func (s *AssessmentSuite) SetupTest() {
	s.store = store.NewMemoryStore()
	s.ledger = &fakeLedger{
		random:  1,
		receipt: ledger.MintReceipt{TokenID: 9, TxHash: "0xbeef"},
	}
	s.gate = &fakeGate{did: id.MustDID("did:skill:0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")}
	s.grader = &fakeGrader{score: 85}
	s.journal = ledger.NewMemoryJournal()
	s.sink = audit.NewMemorySink()

	s.quiz = &models.Quiz{
		ID:       id.QuizID(uuid.New()),
		Title:    "Go Concurrency",
		SkillTag: "golang",
		Questions: []models.Question{
			{ID: "q0", Prompt: "channels"},
			{ID: "q1", Prompt: "mutexes"},
			{ID: "q2", Prompt: "select"},
			{ID: "q3", Prompt: "context"},
			{ID: "q4", Prompt: "errgroup"},
		},
	}
	s.store.SeedQuiz(s.quiz)

	s.svc = New(s.store, s.store, s.ledger, s.gate, s.grader,
		WithJournal(s.journal),
		WithAudit(s.sink),
		WithClock(func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }),
	)
}

func (s *AssessmentSuite) request() SubmitRequest {
	return SubmitRequest{
		CandidateID: id.CandidateID(uuid.New()),
		TeamID:      id.TeamID(uuid.New()),
		QuizID:      s.quiz.ID,
		Seed:        "0x1",
		Answer:      "share memory by communicating",
	}
}

func (s *AssessmentSuite) TestRequestSeedOrdersQuestions() {
	result, err := s.svc.RequestSeed(context.Background(), s.quiz.ID)

	s.Require().NoError(err)
	s.Equal("0x00000001", result.Seed)
	// seed value 1 over five questions yields the documented fixed ordering
	s.Equal([]string{"q4", "q2", "q1", "q0", "q3"}, questionIDs(result.Questions))
}

func (s *AssessmentSuite) TestRequestSeedUnknownQuiz() {
	_, err := s.svc.RequestSeed(context.Background(), id.QuizID(uuid.New()))

	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *AssessmentSuite) TestSameSeedSameOrdering() {
	first, err := s.svc.RequestSeed(context.Background(), s.quiz.ID)
	s.Require().NoError(err)
	second, err := s.svc.RequestSeed(context.Background(), s.quiz.ID)
	s.Require().NoError(err)

	s.Equal(questionIDs(first.Questions), questionIDs(second.Questions))
}

func (s *AssessmentSuite) TestPassingAttemptIsAnchored() {
	attempt, err := s.svc.SubmitAttempt(context.Background(), s.request())

	s.Require().NoError(err)
	s.True(attempt.Pass)
	s.Equal(85, attempt.Score)
	s.Equal(1, s.ledger.mintCalls)
	s.Equal("0xbeef", attempt.AnchorTx)
	s.Equal(int64(9), gjson.GetBytes(attempt.VCJSON, "tokenId").Int())
	s.Contains(gjson.GetBytes(attempt.VCJSON, "vc.credentialSubject.title").String(), "Go Concurrency")

	stored, err := s.store.FindAttempt(context.Background(), attempt.ID)
	s.Require().NoError(err)
	s.Equal(attempt.VCJSON, stored.VCJSON)
	s.Len(s.sink.ByAction(audit.ActionAttemptGraded), 1)
}

func (s *AssessmentSuite) TestScore69NeverAnchors() {
	s.grader.score = 69

	attempt, err := s.svc.SubmitAttempt(context.Background(), s.request())

	s.Require().NoError(err)
	s.False(attempt.Pass)
	s.Zero(s.ledger.mintCalls)
	s.Empty(attempt.AnchorTx)
	s.Nil(attempt.VCJSON)
}

func (s *AssessmentSuite) TestScore70Anchors() {
	s.grader.score = 70

	attempt, err := s.svc.SubmitAttempt(context.Background(), s.request())

	s.Require().NoError(err)
	s.True(attempt.Pass)
	s.Equal(1, s.ledger.mintCalls)
}

func (s *AssessmentSuite) TestMalformedSeedFailsBeforeGrading() {
	req := s.request()
	req.Seed = "not-a-seed"

	_, err := s.svc.SubmitAttempt(context.Background(), req)

	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Zero(s.grader.calls)
}

func (s *AssessmentSuite) TestMissingSeedFailsBeforeGrading() {
	req := s.request()
	req.Seed = ""

	_, err := s.svc.SubmitAttempt(context.Background(), req)

	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Zero(s.grader.calls)
}

func (s *AssessmentSuite) TestMissingSubjectDIDFailsBeforeGrading() {
	s.gate.err = dErrors.New(dErrors.CodePrecondition, "subject DID missing")

	_, err := s.svc.SubmitAttempt(context.Background(), s.request())

	s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
	s.Zero(s.grader.calls)
	s.Zero(s.ledger.mintCalls)
}

func (s *AssessmentSuite) TestGradingUnavailablePropagates() {
	s.grader.err = dErrors.New(dErrors.CodeGradingUnavailable, "grading service unreachable")

	_, err := s.svc.SubmitAttempt(context.Background(), s.request())

	s.True(dErrors.HasCode(err, dErrors.CodeGradingUnavailable))
	s.Zero(s.ledger.mintCalls)
}

func (s *AssessmentSuite) TestAnchoringFailurePreservesPassingAttempt() {
	s.ledger.mintErr = dErrors.New(dErrors.CodeAnchoringFailed, "transaction reverted")

	attempt, err := s.svc.SubmitAttempt(context.Background(), s.request())

	s.Require().NoError(err, "a graded attempt is never lost to the ledger")
	s.True(attempt.Pass)
	s.Equal(85, attempt.Score)
	s.Empty(attempt.AnchorTx)
	s.Nil(attempt.VCJSON)
	s.Contains(attempt.Message, "anchoring failed")

	stored, findErr := s.store.FindAttempt(context.Background(), attempt.ID)
	s.Require().NoError(findErr)
	s.True(stored.Pass)
}

func (s *AssessmentSuite) TestIndeterminateAnchorIsJournaled() {
	s.ledger.mintErr = &ledger.IndeterminateError{
		TxHash: "0xabc",
		Err:    dErrors.New(dErrors.CodeAnchoringIndeterminate, "timed out awaiting inclusion of tx 0xabc"),
	}

	attempt, err := s.svc.SubmitAttempt(context.Background(), s.request())

	s.Require().NoError(err)
	s.True(attempt.Pass)
	entries := s.journal.Entries()
	s.Require().Len(entries, 1)
	s.Equal(attempt.ID.String(), entries[0].Resource)
	s.Equal("0xabc", entries[0].TxHash, "journal must carry the submitted tx hash for reconciliation")
	s.Len(s.sink.ByAction(audit.ActionAnchorIndeterminate), 1)
}

func questionIDs(questions []models.Question) []string {
	out := make([]string, len(questions))
	for i, q := range questions {
		out[i] = q.ID
	}
	return out
}
