package behavior

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string][]*Profile // tenantID -> profiles
}

// NewMemoryStore creates an in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles: make(map[string][]*Profile),
	}
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Record(ctx context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[p.TenantID] = append(s.profiles[p.TenantID], copyProfile(p))
	return nil
}

func (s *MemoryStore) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.profiles[tenantID]
	if len(all) == 0 {
		return nil, nil
	}

	start := len(all) - limit
	if start < 0 {
		start = 0
	}

	// Most recent first
	result := make([]*Profile, 0, len(all)-start)
	for i := len(all) - 1; i >= start; i-- {
		result = append(result, copyProfile(all[i]))
	}
	return result, nil
}

func copyProfile(p *Profile) *Profile {
	out := *p
	out.RecommendedActions = append([]string(nil), p.RecommendedActions...)
	return &out
}
