// Package risk implements rule-based financial risk assessment.
//
// Tenants are evaluated against additive rule tables for credit exposure
// (receivables quality) and liquidity (runway against burn). Each triggered
// rule contributes a fixed number of points; the total score maps to a
// severity band and a probability estimate. Scores are intentionally left
// unclamped - a tenant can trip every rule.
package risk

import (
	"context"
	"time"
)

// RiskType classifies what the assessment measures.
type RiskType string

const (
	TypeCredit    RiskType = "CREDIT_RISK"
	TypeLiquidity RiskType = "LIQUIDITY_RISK"
)

// Severity bands a risk score. Boundaries are exclusive: a score of
// exactly 70 is HIGH, 70.1 is CRITICAL.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Review cadence per risk type. Liquidity moves faster than credit.
const (
	creditReviewAfter    = 30 * 24 * time.Hour
	liquidityReviewAfter = 14 * 24 * time.Hour
)

// maxProbability caps the derived probability; no assessment claims certainty.
const maxProbability = 0.95

// Assessment is the result of evaluating one risk type for a tenant.
type Assessment struct {
	ID              string             `json:"id"`
	TenantID        string             `json:"tenantId"`
	Type            RiskType           `json:"type"`
	Severity        Severity           `json:"severity"`
	RiskScore       float64            `json:"riskScore"`
	Probability     float64            `json:"probability"`
	Factors         map[string]float64 `json:"factors"`
	Recommendations []string           `json:"recommendations"`
	Narrative       string             `json:"narrative,omitempty"`
	ReviewDate      time.Time          `json:"reviewDate"`
	EvaluatedAt     time.Time          `json:"evaluatedAt"`
}

// Store persists assessments for audit trail.
type Store interface {
	Record(ctx context.Context, a *Assessment) error
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]*Assessment, error)
}

// severityFor bands a score. Comparisons are strictly greater-than.
func severityFor(score float64) Severity {
	switch {
	case score > 70:
		return SeverityCritical
	case score > 50:
		return SeverityHigh
	case score > 30:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// probabilityFor converts a score to a probability estimate, capped at 0.95.
func probabilityFor(score float64) float64 {
	p := score / 100
	if p > maxProbability {
		return maxProbability
	}
	return p
}
