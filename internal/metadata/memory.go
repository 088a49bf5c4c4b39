package metadata

import (
	"context"
	"sync"
)

// MemoryStore keeps values in process. Used for local development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Get(_ context.Context, tenant, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[tenant+"|"+key], nil
}

func (s *MemoryStore) Set(_ context.Context, tenant, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[tenant+"|"+key] = value
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, tenant, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, tenant+"|"+key)
	return nil
}
