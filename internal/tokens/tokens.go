// Package tokens issues and validates the bearer tokens that identify
// candidates and issuers on lifecycle endpoints.
package tokens

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"skillproof/internal/platform/middleware"
	dErrors "skillproof/pkg/domain-errors"
)

// Claims is the JWT claim set for actor tokens. Candidates carry their team
// reference; issuers leave it empty.
type Claims struct {
	Role   string `json:"role"`
	TeamID string `json:"team_id,omitempty"`
	jwt.RegisteredClaims
}

// Service signs and validates actor tokens with a shared HMAC key.
type Service struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
}

// New creates a token service.
func New(signingKey string, issuer string, ttl time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
	}
}

// IssueCandidateToken signs a token for a candidate and their team.
func (s *Service) IssueCandidateToken(candidateID, teamID string) (string, error) {
	return s.sign(Claims{
		Role:   string(middleware.RoleCandidate),
		TeamID: teamID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: candidateID,
		},
	})
}

// IssueIssuerToken signs a token for an issuer.
func (s *Service) IssueIssuerToken(issuerID string) (string, error) {
	return s.sign(Claims{
		Role: string(middleware.RoleIssuer),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: issuerID,
		},
	})
}

func (s *Service) sign(claims Claims) (string, error) {
	now := time.Now()
	claims.Issuer = s.issuer
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	claims.ID = uuid.NewString()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign token")
	}
	return signed, nil
}

// ValidateToken parses and verifies a bearer token and returns the actor
// claims. It implements middleware.TokenValidator.
func (s *Service) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenString, &claims,
		func(*jwt.Token) (any, error) { return s.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}
	return &middleware.TokenClaims{
		Role:      claims.Role,
		SubjectID: claims.Subject,
		TeamID:    claims.TeamID,
	}, nil
}
