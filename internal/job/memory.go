package job

import (
	"context"
	"sync"
)

// MemoryStore is a thread-safe in-memory StateStore. Used in tests and as
// the single-process fallback when no redis address is configured.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[string]State)}
}

func (s *MemoryStore) Set(_ context.Context, jobID string, role Role, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[stateKey(jobID, role)] = st
	return nil
}

func (s *MemoryStore) Get(_ context.Context, jobID string, role Role) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[stateKey(jobID, role)]
	if !ok {
		return "", ErrNotFound
	}
	return st, nil
}
