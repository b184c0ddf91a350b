// Package identity resolves and validates the decentralized identifiers
// required before any anchoring operation may proceed. DIDs are provisioned
// by a separate identity-creation flow; this package only gates on their
// presence and, for audit paths, their on-ledger existence.
package identity

import (
	"time"

	id "skillproof/pkg/domain"
)

// IssuerStatus tracks whether an issuer may receive and approve credentials.
type IssuerStatus string

const (
	IssuerStatusPending   IssuerStatus = "pending"
	IssuerStatusActive    IssuerStatus = "active"
	IssuerStatusSuspended IssuerStatus = "suspended"
)

// Team is the candidate-side subject record. The DID, once provisioned, binds
// the team to its on-ledger address and is never mutated by this service.
type Team struct {
	ID        id.TeamID
	Name      string
	DID       *id.DID
	CreatedAt time.Time
}

// Issuer is the attesting organization. Its DID signs credential anchors.
type Issuer struct {
	ID        id.IssuerID
	Name      string
	Status    IssuerStatus
	DID       *id.DID
	CreatedAt time.Time
}

// Active reports whether the issuer may be linked to new credentials.
func (i Issuer) Active() bool {
	return i.Status == IssuerStatusActive
}
