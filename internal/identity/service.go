package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"skillproof/internal/sentinel"
	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
)

// LedgerReader is the read-only ledger dependency used for on-ledger
// existence checks. Gate checks never write to the ledger.
type LedgerReader interface {
	HasIdentity(ctx context.Context, address string) (bool, error)
}

// Gate enforces DID preconditions. Anchoring callers must pass through the
// gate before any mint; a missing DID is a precondition failure, not an
// anchoring failure.
type Gate struct {
	store  Store
	ledger LedgerReader
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// Option configures the Gate.
type Option func(*Gate)

// WithLedger enables on-ledger existence checks.
func WithLedger(ledger LedgerReader) Option {
	return func(g *Gate) {
		g.ledger = ledger
	}
}

// WithCache enables Redis caching of on-ledger existence results.
func WithCache(cache *redis.Client, ttl time.Duration) Option {
	return func(g *Gate) {
		g.cache = cache
		g.ttl = ttl
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

// NewGate creates an identity gate over the given store.
func NewGate(store Store, opts ...Option) *Gate {
	g := &Gate{store: store, ttl: 5 * time.Minute}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RequireSubjectDID returns the team's DID or fails with a precondition error.
func (g *Gate) RequireSubjectDID(ctx context.Context, teamID id.TeamID) (id.DID, error) {
	if teamID.IsNil() {
		return id.DID{}, dErrors.New(dErrors.CodeValidation, "team ID is required")
	}
	team, err := g.store.FindTeam(ctx, teamID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.DID{}, dErrors.New(dErrors.CodeNotFound, "team not found")
		}
		return id.DID{}, dErrors.Wrap(err, dErrors.CodeInternal, "look up team")
	}
	if team.DID == nil {
		return id.DID{}, dErrors.New(dErrors.CodePrecondition, "subject DID missing")
	}
	return *team.DID, nil
}

// RequireIssuerDID returns the issuer's DID or fails with a precondition error.
func (g *Gate) RequireIssuerDID(ctx context.Context, issuerID id.IssuerID) (id.DID, error) {
	if issuerID.IsNil() {
		return id.DID{}, dErrors.New(dErrors.CodeValidation, "issuer ID is required")
	}
	issuer, err := g.store.FindIssuer(ctx, issuerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.DID{}, dErrors.New(dErrors.CodeNotFound, "issuer not found")
		}
		return id.DID{}, dErrors.Wrap(err, dErrors.CodeInternal, "look up issuer")
	}
	if issuer.DID == nil {
		return id.DID{}, dErrors.New(dErrors.CodePrecondition, "issuer DID missing")
	}
	return *issuer.DID, nil
}

// RequireActiveIssuer returns the issuer if it exists and is active.
// Submitting a credential against an inactive issuer is a precondition failure.
func (g *Gate) RequireActiveIssuer(ctx context.Context, issuerID id.IssuerID) (Issuer, error) {
	if issuerID.IsNil() {
		return Issuer{}, dErrors.New(dErrors.CodeValidation, "issuer ID is required")
	}
	issuer, err := g.store.FindIssuer(ctx, issuerID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Issuer{}, dErrors.New(dErrors.CodeNotFound, "issuer not found")
		}
		return Issuer{}, dErrors.Wrap(err, dErrors.CodeInternal, "look up issuer")
	}
	if !issuer.Active() {
		return Issuer{}, dErrors.New(dErrors.CodePrecondition, "issuer is not active")
	}
	return issuer, nil
}

// ExistsOnLedger reports whether the DID's address has an on-ledger identity.
// Results are cached with a TTL; this backs audit and verification endpoints,
// not the mint precondition (which gates on the stored DID only).
func (g *Gate) ExistsOnLedger(ctx context.Context, did id.DID) (bool, error) {
	if did.IsZero() {
		return false, dErrors.New(dErrors.CodeValidation, "DID is required")
	}
	if g.ledger == nil {
		return false, dErrors.New(dErrors.CodeInternal, "ledger reader not configured")
	}

	cacheKey := "did:exists:" + did.Address()
	if g.cache != nil {
		cached, err := g.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			return cached == "1", nil
		}
		if !errors.Is(err, redis.Nil) && g.logger != nil {
			g.logger.WarnContext(ctx, "did cache read failed", "error", err)
		}
	}

	exists, err := g.ledger.HasIdentity(ctx, did.Address())
	if err != nil {
		return false, err
	}

	if g.cache != nil {
		value := "0"
		if exists {
			value = "1"
		}
		if err := g.cache.Set(ctx, cacheKey, value, g.ttl).Err(); err != nil && g.logger != nil {
			g.logger.WarnContext(ctx, "did cache write failed", "error", err)
		}
	}
	return exists, nil
}
