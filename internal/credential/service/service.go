// Package service implements the credential lifecycle state machine. It is
// the only writer of credential status and the only caller of the anchoring
// client for credentials, which is what lets it enforce the anchor-once
// invariant: at most one mint per credential across any number of
// approve/unverify/approve cycles.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"skillproof/internal/credential/models"
	"skillproof/internal/credential/store"
	"skillproof/internal/identity"
	"skillproof/internal/ledger"
	"skillproof/internal/sentinel"
	"skillproof/internal/vc"
	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
	"skillproof/pkg/platform/audit"
	psync "skillproof/pkg/platform/sync"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

// Anchorer is the ledger write dependency.
type Anchorer interface {
	MintCredential(ctx context.Context, toAddress, contentHash, metadataURI, signerAddress string) (ledger.MintReceipt, error)
}

// Gate enforces DID and issuer preconditions before any mint, and answers
// cached on-ledger existence reads for the verification path.
type Gate interface {
	RequireSubjectDID(ctx context.Context, teamID id.TeamID) (id.DID, error)
	RequireIssuerDID(ctx context.Context, issuerID id.IssuerID) (id.DID, error)
	RequireActiveIssuer(ctx context.Context, issuerID id.IssuerID) (identity.Issuer, error)
	ExistsOnLedger(ctx context.Context, did id.DID) (bool, error)
}

// HashReader is the read-only ledger dependency behind Verify. Verification
// re-derives anchoring state from ledger reads and never writes.
type HashReader interface {
	ReadCredentialHash(ctx context.Context, tokenID uint64) (string, error)
}

// ApproveOutcome distinguishes a fresh mint from a reuse of a prior anchor.
type ApproveOutcome string

const (
	OutcomeMinted ApproveOutcome = "minted"
	OutcomeReused ApproveOutcome = "reused"
)

// ApproveResult is the success result of an Approve call.
type ApproveResult struct {
	Credential *models.Credential
	Outcome    ApproveOutcome
	TokenID    uint64
	TxHash     string
}

// Service orchestrates credential lifecycle transitions.
type Service struct {
	store       store.Store
	gate        Gate
	anchorer    Anchorer
	hashes      HashReader
	journal     ledger.Journal
	audit       audit.Publisher
	locks       *psync.ShardedMutex
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

// WithHashReader enables ledger hash read-back on the verification endpoint.
func WithHashReader(r HashReader) Option {
	return func(s *Service) { s.hashes = r }
}

// New creates the credential service.
func New(st store.Store, gate Gate, anchorer Anchorer, opts ...Option) *Service {
	s := &Service{
		store:       st,
		gate:        gate,
		anchorer:    anchorer,
		journal:     ledger.NewMemoryJournal(),
		audit:       audit.NopPublisher{},
		locks:       psync.NewShardedMutex(),
		logger:      slog.Default(),
		now:         time.Now,
		metadataURI: "https://skillproof.example/credentials",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates and records a new claim. If an issuer is named, the issuer
// must be active and the candidate's team must already hold a DID; the claim
// then enters PENDING for issuer review. No anchoring happens on submit.
func (s *Service) Submit(ctx context.Context, req *models.SubmitRequest) (*models.Credential, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	status := models.StatusUnverified
	if req.IssuerID != nil {
		if _, err := s.gate.RequireActiveIssuer(ctx, *req.IssuerID); err != nil {
			return nil, err
		}
		if _, err := s.gate.RequireSubjectDID(ctx, req.TeamID); err != nil {
			return nil, err
		}
		status = models.StatusPending
	}

	cred := &models.Credential{
		ID:            id.NewCredentialID(),
		Title:         req.Title,
		Category:      req.ParsedCategory(),
		SubType:       req.SubType,
		URL:           req.URL,
		CandidateID:   req.CandidateID,
		CandidateName: req.CandidateName,
		TeamID:        req.TeamID,
		IssuerID:      req.IssuerID,
		Proof:         req.ParsedProof(),
		Status:        status,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.Create(ctx, cred); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "create credential")
	}

	s.emit(ctx, audit.ActionCredentialSubmitted, req.CandidateID.String(), cred.ID.String(), map[string]string{
		"status": string(cred.Status),
	})
	return cred, nil
}

// Approve verifies a credential, anchoring it on first approval. A credential
// that already carries an anchored document is re-verified without touching
// the ledger; the stored document is reused verbatim.
func (s *Service) Approve(ctx context.Context, issuerID id.IssuerID, credentialID id.CredentialID) (*ApproveResult, error) {
	s.locks.Lock(credentialID.String())
	defer s.locks.Unlock(credentialID.String())

	cred, err := s.ownedCredential(ctx, issuerID, credentialID)
	if err != nil {
		return nil, err
	}
	if cred.Status == models.StatusVerified {
		return nil, dErrors.New(dErrors.CodeAlreadyInState, "credential is already verified")
	}

	// DID preconditions come before any ledger traffic, issuer first.
	issuerDID, err := s.gate.RequireIssuerDID(ctx, issuerID)
	if err != nil {
		return nil, err
	}
	subjectDID, err := s.gate.RequireSubjectDID(ctx, cred.TeamID)
	if err != nil {
		return nil, err
	}

	result := &ApproveResult{Outcome: OutcomeReused}
	if !cred.Anchored() {
		receipt, err := s.anchor(ctx, cred, issuerDID, subjectDID)
		if err != nil {
			return nil, err
		}
		result.Outcome = OutcomeMinted
		result.TokenID = receipt.TokenID
		result.TxHash = receipt.TxHash
	} else {
		anchored, err := vc.ParseAnchored(cred.VCJSON)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode stored credential document")
		}
		result.TokenID = anchored.TokenID
		result.TxHash = anchored.TxHash
	}

	now := s.now().UTC()
	cred.Status = models.StatusVerified
	cred.Verified = true
	cred.VerifiedAt = &now
	if err := s.store.Update(ctx, cred); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist verified credential")
	}
	result.Credential = cred

	s.emit(ctx, audit.ActionCredentialVerified, issuerID.String(), cred.ID.String(), map[string]string{
		"outcome": string(result.Outcome),
		"tx_hash": result.TxHash,
		"token":   fmt.Sprintf("%d", result.TokenID),
	})
	return result, nil
}

// anchor builds the canonical document, mints it, and persists the anchored
// payload. It is only reached for credentials that have never been anchored.
func (s *Service) anchor(ctx context.Context, cred *models.Credential, issuerDID, subjectDID id.DID) (ledger.MintReceipt, error) {
	doc, hash, err := vc.Build(issuerDID, subjectDID, cred.Title, cred.SubType, cred.CandidateName, s.now().UTC())
	if err != nil {
		return ledger.MintReceipt{}, err
	}

	metadataURI := s.metadataURI + "/" + cred.ID.String()
	receipt, err := s.anchorer.MintCredential(ctx, subjectDID.Address(), hash.Hex(), metadataURI, issuerDID.Address())
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeAnchoringIndeterminate) {
			s.recordIndeterminate(ctx, cred.ID.String(), hash.Hex(), err)
		}
		return ledger.MintReceipt{}, err
	}

	anchored, err := vc.MarshalAnchored(receipt.TokenID, receipt.TxHash, doc)
	if err != nil {
		return ledger.MintReceipt{}, dErrors.Wrap(err, dErrors.CodeInternal, "encode anchored credential document")
	}
	cred.VCJSON = anchored
	return receipt, nil
}

// Reject refuses a claim. It is ownership-gated but otherwise unconditional
// and never touches the ledger.
func (s *Service) Reject(ctx context.Context, issuerID id.IssuerID, credentialID id.CredentialID) (*models.Credential, error) {
	s.locks.Lock(credentialID.String())
	defer s.locks.Unlock(credentialID.String())

	cred, err := s.ownedCredential(ctx, issuerID, credentialID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	cred.Status = models.StatusRejected
	cred.Verified = false
	cred.VerifiedAt = &now
	if err := s.store.Update(ctx, cred); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist rejected credential")
	}

	s.emit(ctx, audit.ActionCredentialRejected, issuerID.String(), cred.ID.String(), nil)
	return cred, nil
}

// Unverify resets a VERIFIED credential back to UNVERIFIED. The anchored
// document survives the reset so a later re-approval reuses it instead of
// minting again.
func (s *Service) Unverify(ctx context.Context, issuerID id.IssuerID, credentialID id.CredentialID) (*models.Credential, error) {
	s.locks.Lock(credentialID.String())
	defer s.locks.Unlock(credentialID.String())

	cred, err := s.ownedCredential(ctx, issuerID, credentialID)
	if err != nil {
		return nil, err
	}
	if cred.Status != models.StatusVerified {
		return nil, dErrors.New(dErrors.CodeAlreadyInState, "credential is not verified")
	}

	cred.Status = models.StatusUnverified
	cred.Verified = false
	cred.VerifiedAt = nil
	if err := s.store.Update(ctx, cred); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist unverified credential")
	}

	s.emit(ctx, audit.ActionCredentialUnverified, issuerID.String(), cred.ID.String(), nil)
	return cred, nil
}

// Get returns a single credential by ID.
func (s *Service) Get(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	cred, err := s.store.FindByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up credential")
	}
	return cred, nil
}

// VerificationReport cross-checks a credential's stored anchor against the
// ledger: the content hash anchored under its token and the on-ledger
// existence of the subject's DID. Stored columns are never trusted as the
// source of anchoring truth here.
type VerificationReport struct {
	Credential      *models.Credential
	Anchored        bool
	TokenID         uint64
	TxHash          string
	ContentHash     string
	LedgerHash      string
	HashMatches     bool
	SubjectDID      string
	SubjectOnLedger bool
}

// Verify reports a credential's anchoring state as read back from the
// ledger. A credential without an anchored document reports without any
// hash read; a team without a DID reports SubjectOnLedger false.
func (s *Service) Verify(ctx context.Context, candidateID id.CandidateID, credentialID id.CredentialID) (*VerificationReport, error) {
	cred, err := s.Get(ctx, credentialID)
	if err != nil {
		return nil, err
	}
	if cred.CandidateID != candidateID {
		return nil, dErrors.New(dErrors.CodeForbidden, "credential does not belong to this candidate")
	}

	report := &VerificationReport{Credential: cred}

	subjectDID, err := s.gate.RequireSubjectDID(ctx, cred.TeamID)
	switch {
	case err == nil:
		report.SubjectDID = subjectDID.String()
		exists, lookupErr := s.gate.ExistsOnLedger(ctx, subjectDID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		report.SubjectOnLedger = exists
	case dErrors.HasCode(err, dErrors.CodePrecondition):
		// No DID assigned yet, so there is nothing to look up.
	default:
		return nil, err
	}

	if !cred.Anchored() {
		return report, nil
	}
	if s.hashes == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "ledger hash reader not configured")
	}

	anchored, err := vc.ParseAnchored(cred.VCJSON)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "decode stored credential document")
	}
	report.Anchored = true
	report.TokenID = anchored.TokenID
	report.TxHash = anchored.TxHash

	hash, err := anchored.VC.ContentHash()
	if err != nil {
		return nil, err
	}
	report.ContentHash = hash.Hex()

	ledgerHash, err := s.hashes.ReadCredentialHash(ctx, anchored.TokenID)
	if err != nil {
		return nil, err
	}
	report.LedgerHash = ledgerHash
	report.HashMatches = ledgerHash == report.ContentHash
	return report, nil
}

// ListByCandidate returns all credentials owned by a candidate.
func (s *Service) ListByCandidate(ctx context.Context, candidateID id.CandidateID) ([]*models.Credential, error) {
	creds, err := s.store.FindByCandidate(ctx, candidateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "list credentials")
	}
	return creds, nil
}

func (s *Service) ownedCredential(ctx context.Context, issuerID id.IssuerID, credentialID id.CredentialID) (*models.Credential, error) {
	if issuerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "issuer is required")
	}
	cred, err := s.store.FindByID(ctx, credentialID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "credential not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "look up credential")
	}
	if !cred.OwnedBy(issuerID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "credential does not belong to this issuer")
	}
	return cred, nil
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
