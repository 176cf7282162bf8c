package behavior

import (
	"sort"
	"time"

	"github.com/finsightlabs/finsight/internal/ledger"
)

// Fallback next-purchase estimate for customers with under two invoices.
const (
	fallbackPurchaseDays   = 60
	fallbackPurchaseAmount = 5000
	fallbackConfidence     = 0.5
)

// maxRecommendations bounds the advice list; later candidates are dropped.
const maxRecommendations = 4

// ComputeMetrics aggregates a customer's invoice and contact history as of now.
func ComputeMetrics(invoices []ledger.Invoice, contacts []ledger.ContactEvent, now time.Time) Metrics {
	m := Metrics{
		PurchaseFrequency:     len(invoices),
		ContactFrequency:      len(contacts),
		DaysSinceLastPurchase: NeverPurchasedDays,
	}
	if len(invoices) == 0 {
		return m
	}

	first, last := invoices[0].IssueDate, invoices[0].IssueDate
	for _, inv := range invoices {
		m.TotalRevenue += inv.TotalAmount
		if inv.IssueDate.Before(first) {
			first = inv.IssueDate
		}
		if inv.IssueDate.After(last) {
			last = inv.IssueDate
		}
	}
	m.AvgOrderValue = m.TotalRevenue / float64(len(invoices))
	m.DaysSinceLastPurchase = now.Sub(last).Hours() / 24
	m.DaysSinceFirstPurchase = now.Sub(first).Hours() / 24
	return m
}

// ChurnProbability scores churn risk additively, capped at 1.0. The two
// recency terms are mutually exclusive; the frequency terms stack.
func ChurnProbability(m Metrics) float64 {
	score := 0.0
	if m.DaysSinceLastPurchase > 180 {
		score += 0.4
	} else if m.DaysSinceLastPurchase > 90 {
		score += 0.2
	}
	if m.PurchaseFrequency == 1 {
		score += 0.3
	}
	if m.PurchaseFrequency < 3 {
		score += 0.1
	}
	if m.AvgOrderValue < 1000 {
		score += 0.2
	}
	if m.ContactFrequency == 0 {
		score += 0.1
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// SegmentFor buckets a customer; the first matching rule wins.
func SegmentFor(m Metrics) Segment {
	switch {
	case m.TotalRevenue > 50000 && m.PurchaseFrequency > 10:
		return SegmentChampion
	case m.TotalRevenue > 25000 && m.PurchaseFrequency > 5:
		return SegmentLoyal
	case m.TotalRevenue > 10000:
		return SegmentPotentialLoyalist
	case m.PurchaseFrequency > 3:
		return SegmentNewCustomer
	default:
		return SegmentAtRisk
	}
}

// PredictNextPurchase estimates the next order from inter-purchase
// intervals. Customers with under two invoices get a fixed fallback.
func PredictNextPurchase(invoices []ledger.Invoice, now time.Time) NextPurchase {
	if len(invoices) < 2 {
		return NextPurchase{
			Date:       now.AddDate(0, 0, fallbackPurchaseDays),
			Amount:     fallbackPurchaseAmount,
			Confidence: fallbackConfidence,
		}
	}

	dates := make([]time.Time, len(invoices))
	var total float64
	for i, inv := range invoices {
		dates[i] = inv.IssueDate
		total += inv.TotalAmount
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	intervals := len(dates) - 1
	meanInterval := dates[len(dates)-1].Sub(dates[0]) / time.Duration(intervals)

	confidence := float64(intervals) / 10
	if confidence > 0.9 {
		confidence = 0.9
	}

	return NextPurchase{
		Date:       dates[len(dates)-1].Add(meanInterval),
		Amount:     total / float64(len(invoices)),
		Confidence: confidence,
	}
}

// Recommendations returns at most 4 retention actions, gated by churn
// probability and segment, in fixed priority order.
func Recommendations(churn float64, segment Segment, m Metrics) []string {
	var out []string
	add := func(s string) {
		if len(out) < maxRecommendations {
			out = append(out, s)
		}
	}

	if churn > 0.7 {
		add("Schedule an immediate check-in call to re-engage this customer")
	}
	if churn > 0.4 {
		add("Offer a tailored discount or loyalty incentive")
	}
	if segment == SegmentChampion || segment == SegmentLoyal {
		add("Introduce upsell and referral opportunities")
	}
	if m.AvgOrderValue < 1000 {
		add("Bundle complementary products to raise average order value")
	}
	if m.ContactFrequency == 0 {
		add("Establish a regular contact cadence")
	}
	return out
}

// Score assembles the full behavioral profile for one customer.
func Score(invoices []ledger.Invoice, contacts []ledger.ContactEvent, now time.Time) *Profile {
	m := ComputeMetrics(invoices, contacts, now)
	churn := ChurnProbability(m)
	segment := SegmentFor(m)

	return &Profile{
		Metrics:            m,
		ChurnProbability:   churn,
		Segment:            segment,
		NextPurchase:       PredictNextPurchase(invoices, now),
		RecommendedActions: Recommendations(churn, segment, m),
		EvaluatedAt:        now,
	}
}
