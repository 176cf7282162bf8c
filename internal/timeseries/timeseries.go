// Package timeseries turns raw ledger records into time-bucketed series.
//
// Aggregation is the root of every downstream computation: the trend
// forecaster and Monte Carlo simulator both consume the ordered points
// produced here. Buckets with no activity are not zero-filled - consumers
// must tolerate uneven spacing.
package timeseries

import (
	"sort"
	"time"

	"github.com/finsightlabs/finsight/internal/ledger"
)

// Bucket selects the aggregation granularity.
type Bucket string

const (
	BucketDay   Bucket = "day"
	BucketMonth Bucket = "month"
)

// Point is one aggregated bucket of a series.
type Point struct {
	Period string  `json:"period"` // "2026-01-15" for day, "2026-01" for month
	Value  float64 `json:"value"`
}

// Aggregate groups records by truncated date key and sums signed amounts
// (income positive, expense negative). Points come back in ascending period
// order with no duplicate keys. Empty input yields an empty series -
// minimum-sample policies belong to the callers, not here.
func Aggregate(records []ledger.Transaction, bucket Bucket) []Point {
	sums := make(map[string]float64, len(records))
	for _, rec := range records {
		key := periodKey(rec.Date, bucket)
		amount := rec.Amount
		if rec.Kind == ledger.KindExpense {
			amount = -amount
		}
		sums[key] += amount
	}

	points := make([]Point, 0, len(sums))
	for period, value := range sums {
		points = append(points, Point{Period: period, Value: value})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Period < points[j].Period })
	return points
}

// Values extracts the value column of a series.
func Values(series []Point) []float64 {
	out := make([]float64, len(series))
	for i, p := range series {
		out[i] = p.Value
	}
	return out
}

func periodKey(t time.Time, bucket Bucket) string {
	switch bucket {
	case BucketDay:
		return t.Format("2006-01-02")
	default:
		return t.Format("2006-01")
	}
}
