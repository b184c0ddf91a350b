// Package billing is a thin passthrough to the ledger's subscription
// contract: plan prices are read from the ledger and payments settle there.
// No billing state is kept locally.
package billing

import (
	"context"
	"log/slog"

	id "skillproof/pkg/domain"
)

// Ledger is the subscription surface of the anchoring client.
type Ledger interface {
	ReadPlanPrice(ctx context.Context, planKey string) (int64, error)
	PaySubscription(ctx context.Context, teamAddress, planKey string) (string, error)
}

// Gate resolves a team's DID before payment.
type Gate interface {
	RequireSubjectDID(ctx context.Context, teamID id.TeamID) (id.DID, error)
}

// Service reads plan prices and settles subscription payments.
type Service struct {
	ledger Ledger
	gate   Gate
	logger *slog.Logger
}

// New creates the billing service.
func New(ledger Ledger, gate Gate, logger *slog.Logger) *Service {
	return &Service{ledger: ledger, gate: gate, logger: logger}
}

// PlanPrice returns the ledger-native price for a plan.
func (s *Service) PlanPrice(ctx context.Context, planKey string) (int64, error) {
	return s.ledger.ReadPlanPrice(ctx, planKey)
}

// Pay settles a subscription for the team and returns the transaction hash.
// The team must hold a DID; payment settles against its address.
func (s *Service) Pay(ctx context.Context, teamID id.TeamID, planKey string) (string, error) {
	did, err := s.gate.RequireSubjectDID(ctx, teamID)
	if err != nil {
		return "", err
	}
	txHash, err := s.ledger.PaySubscription(ctx, did.Address(), planKey)
	if err != nil {
		return "", err
	}
	s.logger.InfoContext(ctx, "subscription paid",
		"team_id", teamID.String(),
		"plan", planKey,
		"tx_hash", txHash,
	)
	return txHash, nil
}
