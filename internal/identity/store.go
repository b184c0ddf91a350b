package identity

import (
	"context"

	id "skillproof/pkg/domain"
)

// Store provides access to team and issuer records.
// Implementations return sentinel.ErrNotFound for missing rows.
type Store interface {
	FindTeam(ctx context.Context, teamID id.TeamID) (Team, error)
	FindIssuer(ctx context.Context, issuerID id.IssuerID) (Issuer, error)
	SaveTeam(ctx context.Context, team Team) error
	SaveIssuer(ctx context.Context, issuer Issuer) error
}
