package identity

import (
	"context"
	"sync"

	"skillproof/internal/sentinel"
	id "skillproof/pkg/domain"
)

// MemoryStore keeps teams and issuers in memory for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	teams   map[id.TeamID]Team
	issuers map[id.IssuerID]Issuer
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		teams:   make(map[id.TeamID]Team),
		issuers: make(map[id.IssuerID]Issuer),
	}
}

func (s *MemoryStore) FindTeam(_ context.Context, teamID id.TeamID) (Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	team, ok := s.teams[teamID]
	if !ok {
		return Team{}, sentinel.ErrNotFound
	}
	return team, nil
}

func (s *MemoryStore) FindIssuer(_ context.Context, issuerID id.IssuerID) (Issuer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	issuer, ok := s.issuers[issuerID]
	if !ok {
		return Issuer{}, sentinel.ErrNotFound
	}
	return issuer, nil
}

func (s *MemoryStore) SaveTeam(_ context.Context, team Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.ID] = team
	return nil
}

func (s *MemoryStore) SaveIssuer(_ context.Context, issuer Issuer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issuers[issuer.ID] = issuer
	return nil
}
