// Package behavior scores customers on recency, frequency and monetary
// value of their purchase history, deriving churn probability, a value
// segment, a next-purchase estimate and suggested retention actions.
package behavior

import (
	"context"
	"time"
)

// NeverPurchasedDays is the recency sentinel for customers with no
// invoices. It is a marker value, not an error.
const NeverPurchasedDays = 999

// Segment buckets a customer by spend and purchase frequency.
type Segment string

const (
	SegmentChampion          Segment = "Champion"
	SegmentLoyal             Segment = "Loyal Customer"
	SegmentPotentialLoyalist Segment = "Potential Loyalist"
	SegmentNewCustomer       Segment = "New Customer"
	SegmentAtRisk            Segment = "At Risk"
)

// Metrics are the per-customer aggregates every score derives from.
// Purely computed from invoice and contact history, never persisted.
type Metrics struct {
	TotalRevenue           float64 `json:"totalRevenue"`
	AvgOrderValue          float64 `json:"avgOrderValue"`
	PurchaseFrequency      int     `json:"purchaseFrequency"`
	DaysSinceLastPurchase  float64 `json:"daysSinceLastPurchase"`
	DaysSinceFirstPurchase float64 `json:"daysSinceFirstPurchase"`
	ContactFrequency       int     `json:"contactFrequency"`
}

// NextPurchase is the estimated timing and size of the next order.
type NextPurchase struct {
	Date       time.Time `json:"date"`
	Amount     float64   `json:"amount"`
	Confidence float64   `json:"confidence"`
}

// Profile is the full behavioral scoring result for one customer.
type Profile struct {
	ID                 string       `json:"id"`
	CustomerID         string       `json:"customerId"`
	TenantID           string       `json:"tenantId"`
	Metrics            Metrics      `json:"metrics"`
	ChurnProbability   float64      `json:"churnProbability"`
	Segment            Segment      `json:"segment"`
	NextPurchase       NextPurchase `json:"nextPurchase"`
	RecommendedActions []string     `json:"recommendedActions"`
	EvaluatedAt        time.Time    `json:"evaluatedAt"`
}

// Store persists behavioral profiles for later retrieval.
type Store interface {
	Record(ctx context.Context, p *Profile) error
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]*Profile, error)
}
