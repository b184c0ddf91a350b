package models

import (
	"net/url"

	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
)

const (
	titleMinLen = 3
	titleMaxLen = 200
)

// SubmitRequest carries a candidate's new claim into the state machine.
type SubmitRequest struct {
	CandidateID   id.CandidateID
	CandidateName string
	TeamID        id.TeamID
	Title         string
	Category      string
	SubType       string
	URL           string
	ProofType     string
	ProofPayload  string
	IssuerID      *id.IssuerID

	parsedCategory Category
	parsedProof    Proof
}

// Validate checks the payload without touching any collaborator.
// Validation failures never reach the store or the ledger.
func (r *SubmitRequest) Validate() error {
	if r.CandidateID.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "candidate is required")
	}
	if r.TeamID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "team is required")
	}
	if len(r.Title) < titleMinLen || len(r.Title) > titleMaxLen {
		return dErrors.New(dErrors.CodeValidation, "title must be 3-200 characters")
	}

	category, err := ParseCategory(r.Category)
	if err != nil {
		return err
	}
	r.parsedCategory = category

	proof, err := ParseProof(r.ProofType, r.ProofPayload)
	if err != nil {
		return err
	}
	r.parsedProof = proof

	if r.URL != "" {
		parsed, err := url.ParseRequestURI(r.URL)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			return dErrors.New(dErrors.CodeValidation, "url must be a well-formed http(s) URL")
		}
	}
	return nil
}

// ParsedCategory returns the validated category. Call Validate first.
func (r *SubmitRequest) ParsedCategory() Category { return r.parsedCategory }

// ParsedProof returns the validated proof variant. Call Validate first.
func (r *SubmitRequest) ParsedProof() Proof { return r.parsedProof }
