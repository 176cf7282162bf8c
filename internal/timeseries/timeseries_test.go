package timeseries

import (
	"testing"
	"time"

	"github.com/finsightlabs/finsight/internal/ledger"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestAggregateByMonth(t *testing.T) {
	records := []ledger.Transaction{
		{Date: day(2026, 1, 5), Amount: 100, Kind: ledger.KindIncome},
		{Date: day(2026, 1, 20), Amount: 40, Kind: ledger.KindExpense},
		{Date: day(2026, 3, 1), Amount: 200, Kind: ledger.KindIncome},
	}

	points := Aggregate(records, BucketMonth)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Period != "2026-01" || points[0].Value != 60 {
		t.Errorf("first point = %+v, want 2026-01/60", points[0])
	}
	if points[1].Period != "2026-03" || points[1].Value != 200 {
		t.Errorf("second point = %+v, want 2026-03/200", points[1])
	}
}

func TestAggregateByDay(t *testing.T) {
	records := []ledger.Transaction{
		{Date: day(2026, 2, 10), Amount: 50, Kind: ledger.KindIncome},
		{Date: day(2026, 2, 10), Amount: 25, Kind: ledger.KindIncome},
		{Date: day(2026, 2, 11), Amount: 10, Kind: ledger.KindExpense},
	}

	points := Aggregate(records, BucketDay)
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[0].Period != "2026-02-10" || points[0].Value != 75 {
		t.Errorf("first point = %+v, want 2026-02-10/75", points[0])
	}
	if points[1].Period != "2026-02-11" || points[1].Value != -10 {
		t.Errorf("second point = %+v, want 2026-02-11/-10", points[1])
	}
}

func TestAggregateGapsNotZeroFilled(t *testing.T) {
	records := []ledger.Transaction{
		{Date: day(2026, 1, 1), Amount: 10, Kind: ledger.KindIncome},
		{Date: day(2026, 6, 1), Amount: 10, Kind: ledger.KindIncome},
	}

	points := Aggregate(records, BucketMonth)
	if len(points) != 2 {
		t.Errorf("gap months must not be synthesized, got %d points", len(points))
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	points := Aggregate(nil, BucketMonth)
	if len(points) != 0 {
		t.Errorf("empty input should aggregate to empty series, got %d points", len(points))
	}
}

func TestAggregateAscendingUnique(t *testing.T) {
	// Out-of-order input across many months
	var records []ledger.Transaction
	for m := 12; m >= 1; m-- {
		records = append(records, ledger.Transaction{
			Date: day(2025, time.Month(m), 15), Amount: float64(m), Kind: ledger.KindIncome,
		})
		records = append(records, ledger.Transaction{
			Date: day(2025, time.Month(m), 28), Amount: 1, Kind: ledger.KindIncome,
		})
	}

	points := Aggregate(records, BucketMonth)
	if len(points) != 12 {
		t.Fatalf("expected 12 unique buckets, got %d", len(points))
	}
	for i := 1; i < len(points); i++ {
		if points[i].Period <= points[i-1].Period {
			t.Errorf("periods not strictly increasing: %s then %s", points[i-1].Period, points[i].Period)
		}
	}
}
