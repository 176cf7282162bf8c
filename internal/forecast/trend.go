package forecast

import (
	"math"
	"time"

	"github.com/finsightlabs/finsight/internal/idgen"
	"github.com/finsightlabs/finsight/internal/timeseries"
)

// Trend fits an ordinary least-squares line to the series values against
// their sequential index 0..n-1 and projects the value at targetIndex.
// Negative projections clamp to zero - revenue and expense magnitudes are
// never negative. Requires at least MinHistoryPoints points.
func Trend(series []timeseries.Point, targetIndex int) (*Forecast, error) {
	n := len(series)
	if n < MinHistoryPoints {
		return nil, ErrInsufficientHistory
	}

	var sumX, sumY, sumXY, sumXX float64
	for i, p := range series {
		x := float64(i)
		sumX += x
		sumY += p.Value
		sumXY += x * p.Value
		sumXX += x * x
	}

	fn := float64(n)
	slope := (fn*sumXY - sumX*sumY) / (fn*sumXX - sumX*sumX)
	intercept := (sumY - slope*sumX) / fn

	predicted := slope*float64(targetIndex) + intercept
	if predicted < 0 {
		predicted = 0
	}

	// Residual variance of the fit drives confidence: a noisy series
	// relative to its projected magnitude earns a low score.
	var variance float64
	for i, p := range series {
		fitted := slope*float64(i) + intercept
		diff := p.Value - fitted
		variance += diff * diff
	}
	variance /= fn

	confidence := minConfidence
	if predicted != 0 {
		confidence = clampConfidence(1 - math.Sqrt(variance)/math.Abs(predicted))
	}

	return &Forecast{
		ID:             idgen.WithPrefix("fc_"),
		Method:         MethodTrend,
		PredictedValue: predicted,
		Confidence:     confidence,
		Features: map[string]float64{
			"slope":       slope,
			"intercept":   intercept,
			"variance":    variance,
			"points":      fn,
			"targetIndex": float64(targetIndex),
		},
		CreatedAt: time.Now(),
	}, nil
}

// TrendAt runs Trend and stamps the result with a target date and kind.
func TrendAt(series []timeseries.Point, targetIndex int, targetDate time.Time, kind string) (*Forecast, error) {
	f, err := Trend(series, targetIndex)
	if err != nil {
		return nil, err
	}
	f.TargetDate = targetDate
	f.Kind = kind
	return f, nil
}
