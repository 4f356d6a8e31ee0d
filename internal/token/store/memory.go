package store

import (
	"context"
	"sort"
	"sync"

	"scanledger/internal/token"
	id "scanledger/pkg/domain"
	"scanledger/pkg/platform/sentinel"
)

// InMemory keeps tokens in a map keyed by value.
type InMemory struct {
	mu     sync.RWMutex
	tokens map[string]*token.Token
}

func NewInMemory() *InMemory {
	return &InMemory{tokens: make(map[string]*token.Token)}
}

func (s *InMemory) Create(_ context.Context, t *token.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tokens[t.Value]; exists {
		return sentinel.ErrConflict
	}
	s.tokens[t.Value] = t
	return nil
}

func (s *InMemory) FindByValue(_ context.Context, value string) (*token.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tokens[value]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return t, nil
}

func (s *InMemory) SetActive(_ context.Context, value string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[value]
	if !ok {
		return sentinel.ErrNotFound
	}
	t.IsActive = active
	return nil
}

func (s *InMemory) Delete(_ context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[value]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.tokens, value)
	return nil
}

func (s *InMemory) CountByDonor(_ context.Context, donorID id.DonorID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, t := range s.tokens {
		if identity, ok := t.Identity(); ok && identity.DonorID == donorID {
			count++
		}
	}
	return count, nil
}

func (s *InMemory) List(_ context.Context) ([]*token.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*token.Token, 0, len(s.tokens))
	for _, t := range s.tokens {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
