package store

import (
	"context"
	"sort"
	"sync"

	"skillproof/internal/credential/models"
	"skillproof/internal/sentinel"
	id "skillproof/pkg/domain"
)

// MemoryStore is an in-memory Store for tests and local development.
type MemoryStore struct {
	mu          sync.RWMutex
	credentials map[id.CredentialID]*models.Credential
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{credentials: make(map[id.CredentialID]*models.Credential)}
}

func (s *MemoryStore) Create(_ context.Context, c *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.credentials[c.ID]; ok {
		return sentinel.ErrInvalidState
	}
	s.credentials[c.ID] = cloneCredential(c)
	return nil
}

func (s *MemoryStore) FindByID(_ context.Context, credentialID id.CredentialID) (*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.credentials[credentialID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneCredential(c), nil
}

func (s *MemoryStore) FindByCandidate(_ context.Context, candidateID id.CandidateID) ([]*models.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Credential
	for _, c := range s.credentials {
		if c.CandidateID == candidateID {
			out = append(out, cloneCredential(c))
		}
	}
	// Same order as the SQL store.
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Update(_ context.Context, c *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.credentials[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	next := cloneCredential(c)
	// Anchored payloads are immutable once written.
	if existing.VCJSON != nil {
		next.VCJSON = existing.VCJSON
	}
	s.credentials[c.ID] = next
	return nil
}

func cloneCredential(c *models.Credential) *models.Credential {
	cp := *c
	if c.VCJSON != nil {
		cp.VCJSON = append([]byte(nil), c.VCJSON...)
	}
	if c.VerifiedAt != nil {
		t := *c.VerifiedAt
		cp.VerifiedAt = &t
	}
	if c.IssuerID != nil {
		iid := *c.IssuerID
		cp.IssuerID = &iid
	}
	return &cp
}
