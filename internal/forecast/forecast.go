// Package forecast implements the predictive core of the analytics engine.
//
// Two forecasting strategies share the Forecast result type:
//
//   - Trend: deterministic least-squares extrapolation of an aggregated
//     series. Same input, same output, always.
//   - Simulator: Monte Carlo random walk seeded by historical volatility
//     plus known future cash events, reporting percentile bands.
//
// ExpandScenarios widens either result into optimistic/likely/pessimistic
// alternatives with fixed probability weights.
package forecast

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInsufficientHistory means the series is too short to fit.
	ErrInsufficientHistory = errors.New("insufficient history for forecasting")
	// ErrInvalidSimulationParams means trial count or dates are unusable.
	ErrInvalidSimulationParams = errors.New("invalid simulation parameters")
)

const (
	// MinHistoryPoints is the hard minimum sample count for trend fitting.
	// Not configurable per call - callers with less data get an error.
	MinHistoryPoints = 12

	// MinTrials is the floor for Monte Carlo trial counts.
	MinTrials = 100

	// Confidence is always reported inside this band.
	minConfidence = 0.1
	maxConfidence = 0.95
)

// Method identifies which strategy produced a forecast.
type Method string

const (
	MethodTrend      Method = "trend"
	MethodMonteCarlo Method = "monte_carlo"
)

// Forecast is an immutable point prediction with a confidence estimate.
// Features carries the intermediate numbers (slope, percentiles, variance)
// for auditability - downstream consumers rely on them being present.
type Forecast struct {
	ID             string             `json:"id"`
	TenantID       string             `json:"tenantId,omitempty"`
	Kind           string             `json:"kind,omitempty"` // "revenue", "expense", "cash_flow"
	Method         Method             `json:"method"`
	TargetDate     time.Time          `json:"targetDate"`
	PredictedValue float64            `json:"predictedValue"`
	Confidence     float64            `json:"confidence"`
	Features       map[string]float64 `json:"features"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// Store persists forecasts for audit. Persistence is fire-and-forget:
// a store failure never fails the computation that produced the forecast.
type Store interface {
	Record(ctx context.Context, f *Forecast) error
	ListByTenant(ctx context.Context, tenantID string, limit int) ([]*Forecast, error)
}

// clampConfidence bounds a raw confidence into [0.1, 0.95].
func clampConfidence(c float64) float64 {
	if c < minConfidence {
		return minConfidence
	}
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}
