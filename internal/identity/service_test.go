package identity_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"skillproof/internal/identity"
	id "skillproof/pkg/domain"
	dErrors "skillproof/pkg/domain-errors"
)

type fakeLedger struct {
	known map[string]bool
	calls int
}

func (f *fakeLedger) HasIdentity(_ context.Context, address string) (bool, error) {
	f.calls++
	return f.known[address], nil
}

type GateSuite struct {
	suite.Suite
	store *identity.MemoryStore
	gate  *identity.Gate

	teamID   id.TeamID
	issuerID id.IssuerID
	did      id.DID
}

func TestGateSuite(t *testing.T) {
	suite.Run(t, new(GateSuite))
}

func (s *GateSuite) SetupTest() {
	s.store = identity.NewMemoryStore()
	s.gate = identity.NewGate(s.store)
	s.teamID = id.TeamID(uuid.New())
	s.issuerID = id.IssuerID(uuid.New())
	s.did = id.MustDID("did:skill:0x1111111111111111111111111111111111111111")
}

func (s *GateSuite) TestRequireSubjectDID() {
	s.Run("missing team is not found", func() {
		_, err := s.gate.RequireSubjectDID(context.Background(), s.teamID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("team without DID fails precondition", func() {
		s.Require().NoError(s.store.SaveTeam(context.Background(), identity.Team{
			ID: s.teamID, Name: "acme", CreatedAt: time.Now(),
		}))
		_, err := s.gate.RequireSubjectDID(context.Background(), s.teamID)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
		s.Contains(err.Error(), "subject DID missing")
	})

	s.Run("team with DID passes", func() {
		s.Require().NoError(s.store.SaveTeam(context.Background(), identity.Team{
			ID: s.teamID, Name: "acme", DID: &s.did, CreatedAt: time.Now(),
		}))
		did, err := s.gate.RequireSubjectDID(context.Background(), s.teamID)
		s.Require().NoError(err)
		s.Equal(s.did, did)
	})
}

func (s *GateSuite) TestRequireIssuerDID() {
	s.Require().NoError(s.store.SaveIssuer(context.Background(), identity.Issuer{
		ID: s.issuerID, Name: "cert-org", Status: identity.IssuerStatusActive,
	}))

	_, err := s.gate.RequireIssuerDID(context.Background(), s.issuerID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
	s.Contains(err.Error(), "issuer DID missing")

	s.Require().NoError(s.store.SaveIssuer(context.Background(), identity.Issuer{
		ID: s.issuerID, Name: "cert-org", Status: identity.IssuerStatusActive, DID: &s.did,
	}))
	did, err := s.gate.RequireIssuerDID(context.Background(), s.issuerID)
	s.Require().NoError(err)
	s.Equal(s.did, did)
}

func (s *GateSuite) TestRequireActiveIssuer() {
	cases := []struct {
		name    string
		status  identity.IssuerStatus
		wantErr bool
	}{
		{"pending issuer rejected", identity.IssuerStatusPending, true},
		{"suspended issuer rejected", identity.IssuerStatusSuspended, true},
		{"active issuer accepted", identity.IssuerStatusActive, false},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.Require().NoError(s.store.SaveIssuer(context.Background(), identity.Issuer{
				ID: s.issuerID, Name: "cert-org", Status: tc.status,
			}))
			_, err := s.gate.RequireActiveIssuer(context.Background(), s.issuerID)
			if tc.wantErr {
				s.Require().Error(err)
				s.True(dErrors.HasCode(err, dErrors.CodePrecondition))
			} else {
				s.Require().NoError(err)
			}
		})
	}
}

func (s *GateSuite) TestExistsOnLedger() {
	ledger := &fakeLedger{known: map[string]bool{s.did.Address(): true}}
	gate := identity.NewGate(s.store, identity.WithLedger(ledger))

	exists, err := gate.ExistsOnLedger(context.Background(), s.did)
	s.Require().NoError(err)
	s.True(exists)
	s.Equal(1, ledger.calls)

	other := id.MustDID("did:skill:0x2222222222222222222222222222222222222222")
	exists, err = gate.ExistsOnLedger(context.Background(), other)
	s.Require().NoError(err)
	s.False(exists)
}
