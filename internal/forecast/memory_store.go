package forecast

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory forecast store for demo mode and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	forecasts []*Forecast
}

// NewMemoryStore creates an empty in-memory forecast store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Compile-time interface check
var _ Store = (*MemoryStore)(nil)

// Record stores a copy of the forecast.
func (m *MemoryStore) Record(ctx context.Context, f *Forecast) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *f
	cp.Features = make(map[string]float64, len(f.Features))
	for k, v := range f.Features {
		cp.Features[k] = v
	}
	m.forecasts = append(m.forecasts, &cp)
	return nil
}

// ListByTenant returns a tenant's forecasts, newest first.
func (m *MemoryStore) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*Forecast, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Forecast
	for _, f := range m.forecasts {
		if f.TenantID == tenantID {
			cp := *f
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
