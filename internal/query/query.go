// Package query routes free-text financial questions to the matching
// analytics engine and wraps the answer in an auditable result envelope.
//
// Routing is a boundary that never fails: handler errors are folded into
// the result with isSuccessful=false, and wall-clock processing time is
// recorded either way.
package query

import (
	"context"
	"time"
)

// Result is the envelope for one routed query.
type Result struct {
	ID               string    `json:"id"`
	TenantID         string    `json:"tenantId"`
	Query            string    `json:"query"`
	Intent           Intent    `json:"intent"`
	Summary          string    `json:"summary"`
	Response         any       `json:"response"`
	ProcessingTimeMs float64   `json:"processingTimeMs"`
	IsSuccessful     bool      `json:"isSuccessful"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Store persists routed queries for audit.
type Store interface {
	Record(ctx context.Context, r *Result) error
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]*Result, error)
}
