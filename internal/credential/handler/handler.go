// Package handler exposes the credential lifecycle over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skillproof/internal/credential/models"
	"skillproof/internal/credential/service"
	"skillproof/internal/platform/middleware"
	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
	"skillproof/pkg/platform/httputil"
)

// Service defines the lifecycle operations the handler exposes.
type Service interface {
	Submit(ctx context.Context, req *models.SubmitRequest) (*models.Credential, error)
	Approve(ctx context.Context, issuerID id.IssuerID, credentialID id.CredentialID) (*service.ApproveResult, error)
	Reject(ctx context.Context, issuerID id.IssuerID, credentialID id.CredentialID) (*models.Credential, error)
	Unverify(ctx context.Context, issuerID id.IssuerID, credentialID id.CredentialID) (*models.Credential, error)
	Get(ctx context.Context, credentialID id.CredentialID) (*models.Credential, error)
	Verify(ctx context.Context, candidateID id.CandidateID, credentialID id.CredentialID) (*service.VerificationReport, error)
	ListByCandidate(ctx context.Context, candidateID id.CandidateID) ([]*models.Credential, error)
}

// Handler handles credential endpoints.
type Handler struct {
	logger      *slog.Logger
	credentials Service
}

// New creates a credential Handler.
func New(credentials Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:      logger,
		credentials: credentials,
	}
}

// Register registers the credential routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/credentials", h.handleSubmit)
	r.Get("/credentials", h.handleList)
	r.Get("/credentials/{credentialID}", h.handleGet)
	r.Get("/credentials/{credentialID}/verification", h.handleVerification)
	r.Post("/credentials/{credentialID}/approve", h.handleApprove)
	r.Post("/credentials/{credentialID}/reject", h.handleReject)
	r.Post("/credentials/{credentialID}/unverify", h.handleUnverify)
}

type submitPayload struct {
	Title         string `json:"title"`
	Category      string `json:"category"`
	SubType       string `json:"sub_type,omitempty"`
	URL           string `json:"url,omitempty"`
	ProofType     string `json:"proof_type"`
	ProofPayload  string `json:"proof_payload,omitempty"`
	IssuerID      string `json:"issuer_id,omitempty"`
	CandidateName string `json:"candidate_name,omitempty"`
}

type credentialResponse struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Category   string     `json:"category"`
	SubType    string     `json:"sub_type,omitempty"`
	URL        string     `json:"url,omitempty"`
	Status     string     `json:"status"`
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verified_at,omitempty"`
	IssuerID   string     `json:"issuer_id,omitempty"`
	Anchored   bool       `json:"anchored"`
	CreatedAt  time.Time  `json:"created_at"`
}

type verificationResponse struct {
	Credential      credentialResponse `json:"credential"`
	Anchored        bool               `json:"anchored"`
	TokenID         uint64             `json:"token_id,omitempty"`
	TxHash          string             `json:"tx_hash,omitempty"`
	ContentHash     string             `json:"content_hash,omitempty"`
	LedgerHash      string             `json:"ledger_hash,omitempty"`
	HashMatches     bool               `json:"hash_matches"`
	SubjectDID      string             `json:"subject_did,omitempty"`
	SubjectOnLedger bool               `json:"subject_on_ledger"`
}

type approveResponse struct {
	Credential credentialResponse `json:"credential"`
	Outcome    string             `json:"outcome"`
	TokenID    uint64             `json:"token_id"`
	TxHash     string             `json:"tx_hash"`
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := middleware.GetActor(ctx)
	if !ok || actor.Role != middleware.RoleCandidate {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only candidates may submit credentials"))
		return
	}

	var payload submitPayload
	if err := httputil.DecodeJSON(r, &payload); err != nil {
		httputil.WriteError(w, err)
		return
	}

	req := &models.SubmitRequest{
		CandidateID:   actor.CandidateID,
		CandidateName: payload.CandidateName,
		TeamID:        actor.TeamID,
		Title:         payload.Title,
		Category:      payload.Category,
		SubType:       payload.SubType,
		URL:           payload.URL,
		ProofType:     payload.ProofType,
		ProofPayload:  payload.ProofPayload,
	}
	if payload.IssuerID != "" {
		issuerID, err := id.ParseIssuerID(payload.IssuerID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		req.IssuerID = &issuerID
	}

	cred, err := h.credentials.Submit(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "credential submit failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(cred))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := middleware.GetActor(ctx)
	if !ok || actor.Role != middleware.RoleCandidate {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only candidates may list their credentials"))
		return
	}

	creds, err := h.credentials.ListByCandidate(ctx, actor.CandidateID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]credentialResponse, 0, len(creds))
	for _, c := range creds {
		out = append(out, toResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"credentials": out})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "credentialID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	cred, err := h.credentials.Get(ctx, credentialID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(cred))
}

func (h *Handler) handleVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := middleware.GetActor(ctx)
	if !ok || actor.Role != middleware.RoleCandidate {
		httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "only candidates may verify their credentials"))
		return
	}
	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "credentialID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	report, err := h.credentials.Verify(ctx, actor.CandidateID, credentialID)
	if err != nil {
		h.logger.WarnContext(ctx, "credential verification failed",
			"request_id", middleware.GetRequestID(ctx),
			"credential_id", credentialID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, verificationResponse{
		Credential:      toResponse(report.Credential),
		Anchored:        report.Anchored,
		TokenID:         report.TokenID,
		TxHash:          report.TxHash,
		ContentHash:     report.ContentHash,
		LedgerHash:      report.LedgerHash,
		HashMatches:     report.HashMatches,
		SubjectDID:      report.SubjectDID,
		SubjectOnLedger: report.SubjectOnLedger,
	})
}

func (h *Handler) handleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	issuerID, credentialID, err := h.issuerAction(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.credentials.Approve(ctx, issuerID, credentialID)
	if err != nil {
		h.logger.WarnContext(ctx, "credential approve failed",
			"request_id", middleware.GetRequestID(ctx),
			"credential_id", credentialID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, approveResponse{
		Credential: toResponse(result.Credential),
		Outcome:    string(result.Outcome),
		TokenID:    result.TokenID,
		TxHash:     result.TxHash,
	})
}

func (h *Handler) handleReject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	issuerID, credentialID, err := h.issuerAction(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cred, err := h.credentials.Reject(ctx, issuerID, credentialID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(cred))
}

func (h *Handler) handleUnverify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	issuerID, credentialID, err := h.issuerAction(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	cred, err := h.credentials.Unverify(ctx, issuerID, credentialID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(cred))
}

func (h *Handler) issuerAction(r *http.Request) (id.IssuerID, id.CredentialID, error) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok || actor.Role != middleware.RoleIssuer {
		return id.IssuerID{}, id.CredentialID{}, dErrors.New(dErrors.CodeForbidden, "only issuers may review credentials")
	}
	credentialID, err := id.ParseCredentialID(chi.URLParam(r, "credentialID"))
	if err != nil {
		return id.IssuerID{}, id.CredentialID{}, err
	}
	return actor.IssuerID, credentialID, nil
}

func toResponse(c *models.Credential) credentialResponse {
	resp := credentialResponse{
		ID:         c.ID.String(),
		Title:      c.Title,
		Category:   string(c.Category),
		SubType:    c.SubType,
		URL:        c.URL,
		Status:     string(c.Status),
		Verified:   c.Verified,
		VerifiedAt: c.VerifiedAt,
		Anchored:   c.Anchored(),
		CreatedAt:  c.CreatedAt,
	}
	if c.IssuerID != nil {
		resp.IssuerID = c.IssuerID.String()
	}
	return resp
}
