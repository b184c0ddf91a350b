// Package models defines the credential aggregate and its lifecycle states.
package models

import (
	"time"

	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
)

// Status is the credential lifecycle state.
//
// Transitions: UNVERIFIED -> PENDING -> VERIFIED, PENDING -> REJECTED,
// VERIFIED -> UNVERIFIED (manual reset). UNVERIFIED and REJECTED are
// re-enterable; there is no terminal state.
type Status string

const (
	StatusUnverified Status = "unverified"
	StatusPending    Status = "pending"
	StatusVerified   Status = "verified"
	StatusRejected   Status = "rejected"
)

// ParseStatus validates a stored status value.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusUnverified, StatusPending, StatusVerified, StatusRejected:
		return Status(s), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown credential status: "+s)
}

// Category classifies the claim being made.
type Category string

const (
	CategoryEducation     Category = "education"
	CategoryExperience    Category = "experience"
	CategoryProject       Category = "project"
	CategoryAward         Category = "award"
	CategoryCertification Category = "certification"
	CategoryOther         Category = "other"
)

// ParseCategory validates a category value.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryEducation, CategoryExperience, CategoryProject,
		CategoryAward, CategoryCertification, CategoryOther:
		return Category(s), nil
	}
	return "", dErrors.New(dErrors.CodeValidation, "unknown credential category: "+s)
}

// Credential is a claim made by a candidate, optionally scoped to an issuer.
//
// Invariants:
//   - Verified is true iff Status is StatusVerified.
//   - VCJSON is non-nil iff the credential has been anchored at least once.
//     It is write-once: a later re-verification reuses it verbatim.
type Credential struct {
	ID            id.CredentialID
	Title         string
	Category      Category
	SubType       string
	URL           string
	CandidateID   id.CandidateID
	CandidateName string
	TeamID        id.TeamID
	IssuerID      *id.IssuerID
	Proof         Proof
	Status        Status
	Verified      bool
	VerifiedAt    *time.Time
	VCJSON        []byte
	CreatedAt     time.Time
}

// OwnedBy reports whether the credential is scoped to the given issuer.
func (c Credential) OwnedBy(issuerID id.IssuerID) bool {
	return c.IssuerID != nil && *c.IssuerID == issuerID
}

// Anchored reports whether the credential has ever been anchored.
func (c Credential) Anchored() bool {
	return len(c.VCJSON) > 0
}
