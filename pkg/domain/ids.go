// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "skillproof/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing a CandidateID where an IssuerID is expected.
type (
	CandidateID  uuid.UUID
	IssuerID     uuid.UUID
	TeamID       uuid.UUID
	CredentialID uuid.UUID
	QuizID       uuid.UUID
	AttemptID    uuid.UUID
)

// Parse functions - use at trust boundaries (handlers, API inputs).

func ParseCandidateID(s string) (CandidateID, error) {
	id, err := parseUUID(s, "candidate ID")
	return CandidateID(id), err
}

func ParseIssuerID(s string) (IssuerID, error) {
	id, err := parseUUID(s, "issuer ID")
	return IssuerID(id), err
}

func ParseTeamID(s string) (TeamID, error) {
	id, err := parseUUID(s, "team ID")
	return TeamID(id), err
}

func ParseCredentialID(s string) (CredentialID, error) {
	id, err := parseUUID(s, "credential ID")
	return CredentialID(id), err
}

func ParseQuizID(s string) (QuizID, error) {
	id, err := parseUUID(s, "quiz ID")
	return QuizID(id), err
}

func ParseAttemptID(s string) (AttemptID, error) {
	id, err := parseUUID(s, "attempt ID")
	return AttemptID(id), err
}

// New functions - generate fresh identifiers at creation sites.

func NewCredentialID() CredentialID { return CredentialID(uuid.New()) }
func NewAttemptID() AttemptID       { return AttemptID(uuid.New()) }

// String methods - for logging and persistence.

func (id CandidateID) String() string  { return uuid.UUID(id).String() }
func (id IssuerID) String() string     { return uuid.UUID(id).String() }
func (id TeamID) String() string       { return uuid.UUID(id).String() }
func (id CredentialID) String() string { return uuid.UUID(id).String() }
func (id QuizID) String() string       { return uuid.UUID(id).String() }
func (id AttemptID) String() string    { return uuid.UUID(id).String() }

// IsNil checks - used for service-layer validation.

func (id CandidateID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id IssuerID) IsNil() bool     { return uuid.UUID(id) == uuid.Nil }
func (id TeamID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id CredentialID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id QuizID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id AttemptID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// parseUUID is the shared validation logic.
// Nil UUIDs are allowed here. Use IsNil() at the service layer for business
// validation, which lets store lookups return proper "not found" errors.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid "+label+" format")
	}
	return id, nil
}
