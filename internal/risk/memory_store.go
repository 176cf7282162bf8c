package risk

import (
	"context"
	"sync"
)

// MemoryStore is an in-memory implementation of Store for demo/test use.
type MemoryStore struct {
	mu          sync.RWMutex
	assessments map[string][]*Assessment // tenantID -> assessments
}

// NewMemoryStore creates an in-memory assessment store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		assessments: make(map[string][]*Assessment),
	}
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Record(ctx context.Context, a *Assessment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.assessments[a.TenantID] = append(s.assessments[a.TenantID], copyAssessment(a))
	return nil
}

func (s *MemoryStore) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*Assessment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.assessments[tenantID]
	if len(all) == 0 {
		return nil, nil
	}

	start := len(all) - limit
	if start < 0 {
		start = 0
	}

	// Most recent first
	result := make([]*Assessment, 0, len(all)-start)
	for i := len(all) - 1; i >= start; i-- {
		result = append(result, copyAssessment(all[i]))
	}
	return result, nil
}

func copyAssessment(a *Assessment) *Assessment {
	out := *a
	out.Factors = make(map[string]float64, len(a.Factors))
	for k, v := range a.Factors {
		out.Factors[k] = v
	}
	out.Recommendations = append([]string(nil), a.Recommendations...)
	return &out
}
