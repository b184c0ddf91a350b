package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	id "skillproof/pkg/domain"
)

// Role distinguishes the two actor kinds that call lifecycle endpoints.
type Role string

const (
	RoleCandidate Role = "candidate"
	RoleIssuer    Role = "issuer"
)

// Actor is the authenticated caller resolved from a bearer token.
// Candidates carry their team reference; issuers carry their issuer reference.
type Actor struct {
	Role        Role
	CandidateID id.CandidateID
	TeamID      id.TeamID
	IssuerID    id.IssuerID
}

// TokenClaims is the validated claim set the middleware expects from tokens.
type TokenClaims struct {
	Role      string
	SubjectID string
	TeamID    string
}

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

type actorKey struct{}

// GetActor retrieves the authenticated actor from the context.
func GetActor(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok
}

// WithActor injects an actor into the context. Exposed for handler tests.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// RequireActor authenticates requests via Authorization: Bearer tokens and
// resolves the actor identity into the request context.
func RequireActor(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeAuthError(w, "missing bearer token")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "token validation failed",
					"request_id", GetRequestID(r.Context()),
					"error", err,
				)
				writeAuthError(w, "invalid token")
				return
			}

			actor, err := actorFromClaims(claims)
			if err != nil {
				writeAuthError(w, "invalid token subject")
				return
			}

			ctx := WithActor(r.Context(), actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func actorFromClaims(claims *TokenClaims) (Actor, error) {
	switch Role(claims.Role) {
	case RoleCandidate:
		candidateID, err := id.ParseCandidateID(claims.SubjectID)
		if err != nil {
			return Actor{}, err
		}
		teamID, err := id.ParseTeamID(claims.TeamID)
		if err != nil {
			return Actor{}, err
		}
		return Actor{Role: RoleCandidate, CandidateID: candidateID, TeamID: teamID}, nil
	case RoleIssuer:
		issuerID, err := id.ParseIssuerID(claims.SubjectID)
		if err != nil {
			return Actor{}, err
		}
		return Actor{Role: RoleIssuer, IssuerID: issuerID}, nil
	default:
		return Actor{}, errUnknownRole
	}
}

var errUnknownRole = &unknownRoleError{}

type unknownRoleError struct{}

func (*unknownRoleError) Error() string { return "unknown actor role" }

func writeAuthError(w http.ResponseWriter, desc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + desc + `"}`))
}
