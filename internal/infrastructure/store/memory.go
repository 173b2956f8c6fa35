package store

import (
	"context"
	"sync"

	"financing-engine/internal/domain/financing"
)

// MemoryStore is the default backend for tests and local development.
type MemoryStore struct {
	mu    sync.Mutex
	loans []*financing.Loan
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(_ context.Context, loans []*financing.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make([]*financing.Loan, len(loans))
	copy(snapshot, loans)
	s.loans = snapshot
	return nil
}

func (s *MemoryStore) Load(_ context.Context) ([]*financing.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*financing.Loan, len(s.loans))
	copy(out, s.loans)
	return out, nil
}
