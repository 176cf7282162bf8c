package forecast

import (
	"testing"

	"github.com/finsightlabs/finsight/internal/timeseries"
)

func arithmeticSeries(n int, start, step float64) []timeseries.Point {
	series := make([]timeseries.Point, n)
	for i := 0; i < n; i++ {
		series[i] = timeseries.Point{Period: period(i), Value: start + float64(i)*step}
	}
	return series
}

func period(i int) string {
	return "2025-" + string(rune('0'+(i/10))) + string(rune('0'+(i%10)))
}

func TestTrendPerfectProgression(t *testing.T) {
	// 12 monthly points 100..210 step 10: slope 10, intercept 100.
	series := arithmeticSeries(12, 100, 10)

	f, err := Trend(series, 12)
	if err != nil {
		t.Fatalf("Trend failed: %v", err)
	}

	if f.PredictedValue != 220 {
		t.Errorf("predicted = %f, want exactly 220", f.PredictedValue)
	}
	// Zero residual variance clamps confidence to the maximum.
	if f.Confidence != 0.95 {
		t.Errorf("confidence = %f, want 0.95", f.Confidence)
	}
	if f.Method != MethodTrend {
		t.Errorf("method = %s, want %s", f.Method, MethodTrend)
	}
	if f.Features["slope"] != 10 {
		t.Errorf("slope feature = %f, want 10", f.Features["slope"])
	}
}

func TestTrendSampleSizeGate(t *testing.T) {
	if _, err := Trend(arithmeticSeries(11, 100, 10), 11); err != ErrInsufficientHistory {
		t.Errorf("11-point series: err = %v, want ErrInsufficientHistory", err)
	}
	if _, err := Trend(arithmeticSeries(12, 100, 10), 12); err != nil {
		t.Errorf("12-point series should succeed, got %v", err)
	}
}

func TestTrendDeterminism(t *testing.T) {
	series := arithmeticSeries(24, 5000, 137.5)

	a, err := Trend(series, 30)
	if err != nil {
		t.Fatalf("Trend failed: %v", err)
	}
	b, err := Trend(series, 30)
	if err != nil {
		t.Fatalf("Trend failed: %v", err)
	}

	if a.PredictedValue != b.PredictedValue {
		t.Errorf("predicted values differ: %v vs %v", a.PredictedValue, b.PredictedValue)
	}
	if a.Confidence != b.Confidence {
		t.Errorf("confidences differ: %v vs %v", a.Confidence, b.Confidence)
	}
	for k, v := range a.Features {
		if b.Features[k] != v {
			t.Errorf("feature %s differs: %v vs %v", k, v, b.Features[k])
		}
	}
}

func TestTrendNegativeProjectionClampsToZero(t *testing.T) {
	// Steeply declining series: the fit projects below zero.
	series := arithmeticSeries(12, 1100, -100)

	f, err := Trend(series, 24)
	if err != nil {
		t.Fatalf("Trend failed: %v", err)
	}
	if f.PredictedValue != 0 {
		t.Errorf("predicted = %f, want clamp to 0", f.PredictedValue)
	}
	// Zero prediction defaults confidence to the floor.
	if f.Confidence != 0.1 {
		t.Errorf("confidence = %f, want 0.1", f.Confidence)
	}
}

func TestTrendNoisySeriesLowersConfidence(t *testing.T) {
	series := arithmeticSeries(12, 100, 10)
	// Perturb half the points heavily.
	for i := 0; i < len(series); i += 2 {
		series[i].Value += 80
	}

	f, err := Trend(series, 12)
	if err != nil {
		t.Fatalf("Trend failed: %v", err)
	}
	if f.Confidence >= 0.95 {
		t.Errorf("noisy fit should not reach max confidence, got %f", f.Confidence)
	}
	if f.Confidence < 0.1 {
		t.Errorf("confidence below floor: %f", f.Confidence)
	}
}
