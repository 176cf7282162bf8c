package forecast

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/finsightlabs/finsight/internal/timeseries"
)

func flatSeries(n int, value float64) []timeseries.Point {
	series := make([]timeseries.Point, n)
	for i := 0; i < n; i++ {
		series[i] = timeseries.Point{Period: period(i), Value: value}
	}
	return series
}

func TestSimulateZeroStdDevCollapses(t *testing.T) {
	sim := NewSimulator()
	target := time.Now().AddDate(0, 3, 0)

	f, err := sim.Simulate(context.Background(), flatSeries(12, 100), nil, nil, target, 1000)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	// With stdDev=0 every trial collapses to the mean.
	if f.Features["p10"] != f.Features["p50"] || f.Features["p50"] != f.Features["p90"] {
		t.Errorf("percentiles should collapse: p10=%f p50=%f p90=%f",
			f.Features["p10"], f.Features["p50"], f.Features["p90"])
	}
	if f.PredictedValue != 100 {
		t.Errorf("predicted = %f, want 100", f.PredictedValue)
	}
	if f.Confidence != 0.95 {
		t.Errorf("zero spread should clamp confidence to 0.95, got %f", f.Confidence)
	}
}

func TestSimulateFeatureAudit(t *testing.T) {
	sim := NewSimulator()
	f, err := sim.Simulate(context.Background(), flatSeries(12, 250), nil, nil,
		time.Now().AddDate(0, 1, 0), 500)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	for _, key := range []string{"p10", "p50", "p90", "mean", "stdDev", "trials"} {
		if _, ok := f.Features[key]; !ok {
			t.Errorf("features missing %q", key)
		}
	}
	if f.Features["trials"] != 500 {
		t.Errorf("trials feature = %f, want 500", f.Features["trials"])
	}
}

func TestSimulateTrialFloor(t *testing.T) {
	sim := NewSimulator()
	_, err := sim.Simulate(context.Background(), flatSeries(12, 100), nil, nil,
		time.Now().AddDate(0, 1, 0), 99)
	if err != ErrInvalidSimulationParams {
		t.Errorf("99 trials: err = %v, want ErrInvalidSimulationParams", err)
	}

	if _, err := sim.Simulate(context.Background(), flatSeries(12, 100), nil, nil,
		time.Now().AddDate(0, 1, 0), 100); err != nil {
		t.Errorf("100 trials should succeed, got %v", err)
	}
}

func TestSimulateEmptySeries(t *testing.T) {
	sim := NewSimulator()
	_, err := sim.Simulate(context.Background(), nil, nil, nil, time.Now().AddDate(0, 1, 0), 1000)
	if err != ErrInsufficientHistory {
		t.Errorf("empty series: err = %v, want ErrInsufficientHistory", err)
	}
}

func TestSimulateZeroTargetDate(t *testing.T) {
	sim := NewSimulator()
	_, err := sim.Simulate(context.Background(), flatSeries(12, 100), nil, nil, time.Time{}, 1000)
	if err != ErrInvalidSimulationParams {
		t.Errorf("zero target date: err = %v, want ErrInvalidSimulationParams", err)
	}
}

func TestSimulateCollectionRateHaircut(t *testing.T) {
	sim := NewSimulator()
	target := time.Now().AddDate(0, 2, 0)
	due := time.Now().AddDate(0, 1, 0)

	// Flat zero history isolates the event contribution.
	series := flatSeries(12, 0)

	// Unconfirmed (invoice-type) inflow gets the 80% collection factor.
	f, err := sim.Simulate(context.Background(), series,
		[]CashEvent{{Date: due, Amount: 1000}}, nil, target, 1000)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if f.PredictedValue != 800 {
		t.Errorf("unconfirmed inflow: predicted = %f, want 800", f.PredictedValue)
	}

	// Confirmed cash events are not haircut.
	f, err = sim.Simulate(context.Background(), series,
		[]CashEvent{{Date: due, Amount: 1000, Confirmed: true}}, nil, target, 1000)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if f.PredictedValue != 1000 {
		t.Errorf("confirmed inflow: predicted = %f, want 1000", f.PredictedValue)
	}

	// Outflows subtract at face value.
	f, err = sim.Simulate(context.Background(), series,
		nil, []CashEvent{{Date: due, Amount: 300}}, target, 1000)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if f.PredictedValue != -300 {
		t.Errorf("outflow: predicted = %f, want -300", f.PredictedValue)
	}
}

func TestSimulateIgnoresEventsAfterTarget(t *testing.T) {
	sim := NewSimulator()
	target := time.Now().AddDate(0, 1, 0)
	late := time.Now().AddDate(0, 6, 0)

	f, err := sim.Simulate(context.Background(), flatSeries(12, 100),
		[]CashEvent{{Date: late, Amount: 99999, Confirmed: true}},
		[]CashEvent{{Date: late, Amount: 88888}},
		target, 1000)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if f.PredictedValue != 100 {
		t.Errorf("events past target must be ignored: predicted = %f, want 100", f.PredictedValue)
	}
}

func TestSimulateBoundedDraws(t *testing.T) {
	sim := NewSimulatorWithRand(rand.New(rand.NewSource(7)))
	target := time.Now().AddDate(0, 1, 0)

	// Alternating series: mean 150, stdDev 50.
	series := make([]timeseries.Point, 12)
	for i := range series {
		v := 100.0
		if i%2 == 1 {
			v = 200.0
		}
		series[i] = timeseries.Point{Period: period(i), Value: v}
	}

	f, err := sim.Simulate(context.Background(), series, nil, nil, target, 1000)
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}

	mean, stdDev := f.Features["mean"], f.Features["stdDev"]
	if mean != 150 || stdDev != 50 {
		t.Fatalf("mean/stdDev = %f/%f, want 150/50", mean, stdDev)
	}
	// Bounded uniform: no trial may land outside mean +/- stdDev.
	if f.Features["p10"] < mean-stdDev || f.Features["p90"] > mean+stdDev {
		t.Errorf("draws escaped the bounded range: p10=%f p90=%f", f.Features["p10"], f.Features["p90"])
	}
}

func TestSimulateSeededReproducibility(t *testing.T) {
	target := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	series := arithmeticSeries(12, 100, 10)

	run := func() *Forecast {
		sim := NewSimulatorWithRand(rand.New(rand.NewSource(42)))
		f, err := sim.Simulate(context.Background(), series, nil, nil, target, 1000)
		if err != nil {
			t.Fatalf("Simulate failed: %v", err)
		}
		return f
	}

	a, b := run(), run()
	if a.PredictedValue != b.PredictedValue {
		t.Errorf("seeded runs differ: %v vs %v", a.PredictedValue, b.PredictedValue)
	}
	for k, v := range a.Features {
		if math.Abs(b.Features[k]-v) > 0 {
			t.Errorf("feature %s differs under fixed seed: %v vs %v", k, v, b.Features[k])
		}
	}
}

func TestSimulateCancellation(t *testing.T) {
	sim := NewSimulator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.Simulate(ctx, flatSeries(12, 100), nil, nil, time.Now().AddDate(0, 1, 0), 1000)
	if err != context.Canceled {
		t.Errorf("cancelled simulation: err = %v, want context.Canceled", err)
	}
}
