package query

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu      sync.RWMutex
	results map[string][]*Result // tenantID -> results
}

// NewMemoryStore creates an in-memory query log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		results: make(map[string][]*Result),
	}
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Record(ctx context.Context, r *Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *r
	s.results[r.TenantID] = append(s.results[r.TenantID], &copied)
	return nil
}

func (s *MemoryStore) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.results[tenantID]
	if len(all) == 0 {
		return nil, nil
	}

	start := len(all) - limit
	if start < 0 {
		start = 0
	}

	// Most recent first
	result := make([]*Result, 0, len(all)-start)
	for i := len(all) - 1; i >= start; i-- {
		copied := *all[i]
		result = append(result, &copied)
	}
	return result, nil
}
