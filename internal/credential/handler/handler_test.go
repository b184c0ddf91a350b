package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/tidwall/gjson"

	"skillproof/internal/credential/models"
	"skillproof/internal/credential/service"
	"skillproof/internal/platform/middleware"
	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
)

type fakeService struct {
	submitted  *models.SubmitRequest
	credential *models.Credential
	approve    *service.ApproveResult
	report     *service.VerificationReport
	verifiedAs id.CandidateID
	err        error
}

func (f *fakeService) Submit(_ context.Context, req *models.SubmitRequest) (*models.Credential, error) {
	f.submitted = req
	return f.credential, f.err
}

func (f *fakeService) Approve(context.Context, id.IssuerID, id.CredentialID) (*service.ApproveResult, error) {
	return f.approve, f.err
}

func (f *fakeService) Reject(context.Context, id.IssuerID, id.CredentialID) (*models.Credential, error) {
	return f.credential, f.err
}

func (f *fakeService) Unverify(context.Context, id.IssuerID, id.CredentialID) (*models.Credential, error) {
	return f.credential, f.err
}

func (f *fakeService) Get(context.Context, id.CredentialID) (*models.Credential, error) {
	return f.credential, f.err
}

func (f *fakeService) Verify(_ context.Context, candidateID id.CandidateID, _ id.CredentialID) (*service.VerificationReport, error) {
	f.verifiedAs = candidateID
	return f.report, f.err
}

func (f *fakeService) ListByCandidate(context.Context, id.CandidateID) ([]*models.Credential, error) {
	if f.credential == nil {
		return nil, f.err
	}
	return []*models.Credential{f.credential}, f.err
}

type HandlerSuite struct {
	suite.Suite

	svc    *fakeService
	router chi.Router

	candidate middleware.Actor
	issuer    middleware.Actor
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.svc = &fakeService{}
	s.router = chi.NewRouter()
	New(s.svc, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)

	s.candidate = middleware.Actor{
		Role:        middleware.RoleCandidate,
		CandidateID: id.CandidateID(uuid.New()),
		TeamID:      id.TeamID(uuid.New()),
	}
	s.issuer = middleware.Actor{
		Role:     middleware.RoleIssuer,
		IssuerID: id.IssuerID(uuid.New()),
	}
}

func (s *HandlerSuite) do(actor middleware.Actor, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req = req.WithContext(middleware.WithActor(req.Context(), actor))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func sampleCredential(issuerID *id.IssuerID) *models.Credential {
	proof, _ := models.ParseProof("none", "")
	return &models.Credential{
		ID:        id.NewCredentialID(),
		Title:     "Kubernetes Administration",
		Category:  models.CategoryCertification,
		Status:    models.StatusPending,
		IssuerID:  issuerID,
		Proof:     proof,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *HandlerSuite) TestSubmitCreated() {
	s.svc.credential = sampleCredential(nil)
	body := `{"title":"Kubernetes Administration","category":"certification","proof_type":"none"}`

	rec := s.do(s.candidate, http.MethodPost, "/credentials", body)

	s.Equal(http.StatusCreated, rec.Code)
	s.Equal("Kubernetes Administration", gjson.Get(rec.Body.String(), "title").String())
	s.Require().NotNil(s.svc.submitted)
	s.Equal(s.candidate.CandidateID, s.svc.submitted.CandidateID)
	s.Equal(s.candidate.TeamID, s.svc.submitted.TeamID)
}

func (s *HandlerSuite) TestSubmitRejectsIssuers() {
	rec := s.do(s.issuer, http.MethodPost, "/credentials", `{"title":"x"}`)

	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerSuite) TestSubmitUnknownFieldIsBadRequest() {
	rec := s.do(s.candidate, http.MethodPost, "/credentials", `{"title":"x","bogus":true}`)

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestApproveReturnsAnchorDetails() {
	cred := sampleCredential(&s.issuer.IssuerID)
	cred.Status = models.StatusVerified
	cred.Verified = true
	s.svc.approve = &service.ApproveResult{
		Credential: cred,
		Outcome:    service.OutcomeMinted,
		TokenID:    42,
		TxHash:     "0xfeed",
	}

	rec := s.do(s.issuer, http.MethodPost, "/credentials/"+cred.ID.String()+"/approve", "")

	s.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.Equal("minted", gjson.Get(body, "outcome").String())
	s.Equal(int64(42), gjson.Get(body, "token_id").Int())
	s.Equal("0xfeed", gjson.Get(body, "tx_hash").String())
	s.Equal("verified", gjson.Get(body, "credential.status").String())
}

func (s *HandlerSuite) TestApproveRejectsCandidates() {
	rec := s.do(s.candidate, http.MethodPost, "/credentials/"+uuid.NewString()+"/approve", "")

	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerSuite) TestApproveAlreadyVerifiedIsConflict() {
	s.svc.err = dErrors.New(dErrors.CodeAlreadyInState, "credential is already verified")

	rec := s.do(s.issuer, http.MethodPost, "/credentials/"+uuid.NewString()+"/approve", "")

	s.Equal(http.StatusConflict, rec.Code)
}

func (s *HandlerSuite) TestApprovePreconditionIs412() {
	s.svc.err = dErrors.New(dErrors.CodePrecondition, "issuer DID missing")

	rec := s.do(s.issuer, http.MethodPost, "/credentials/"+uuid.NewString()+"/approve", "")

	s.Equal(http.StatusPreconditionFailed, rec.Code)
	s.Equal("issuer DID missing", gjson.Get(rec.Body.String(), "error_description").String())
}

func (s *HandlerSuite) TestUnverify() {
	cred := sampleCredential(&s.issuer.IssuerID)
	cred.Status = models.StatusUnverified
	s.svc.credential = cred

	rec := s.do(s.issuer, http.MethodPost, "/credentials/"+cred.ID.String()+"/unverify", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Equal("unverified", gjson.Get(rec.Body.String(), "status").String())
}

func (s *HandlerSuite) TestVerificationReportsLedgerState() {
	cred := sampleCredential(nil)
	s.svc.report = &service.VerificationReport{
		Credential:      cred,
		Anchored:        true,
		TokenID:         42,
		TxHash:          "0xfeed",
		ContentHash:     "0xaa",
		LedgerHash:      "0xaa",
		HashMatches:     true,
		SubjectDID:      "did:skill:0x00000000000000000000000000000000000000aa",
		SubjectOnLedger: true,
	}

	rec := s.do(s.candidate, http.MethodGet, "/credentials/"+cred.ID.String()+"/verification", "")

	s.Equal(http.StatusOK, rec.Code)
	body := rec.Body.String()
	s.True(gjson.Get(body, "hash_matches").Bool())
	s.True(gjson.Get(body, "subject_on_ledger").Bool())
	s.Equal(int64(42), gjson.Get(body, "token_id").Int())
	s.Equal(s.candidate.CandidateID, s.svc.verifiedAs)
}

func (s *HandlerSuite) TestVerificationRejectsIssuers() {
	rec := s.do(s.issuer, http.MethodGet, "/credentials/"+uuid.NewString()+"/verification", "")

	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *HandlerSuite) TestGetMalformedID() {
	rec := s.do(s.candidate, http.MethodGet, "/credentials/not-a-uuid", "")

	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *HandlerSuite) TestList() {
	s.svc.credential = sampleCredential(nil)

	rec := s.do(s.candidate, http.MethodGet, "/credentials", "")

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(int64(1), gjson.Get(rec.Body.String(), "credentials.#").Int())
}
