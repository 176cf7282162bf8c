package risk

import (
	"time"

	"github.com/finsightlabs/finsight/internal/idgen"
)

// AssessCredit runs the credit rule table over the inputs.
func AssessCredit(in CreditInputs) *Assessment {
	now := time.Now()
	score := 0.0
	var recommendations []string
	for _, rule := range creditRules {
		if rule.triggered(in) {
			score += rule.points
			recommendations = append(recommendations, rule.recommendation)
		}
	}

	return &Assessment{
		ID:          idgen.WithPrefix("risk_"),
		Type:        TypeCredit,
		Severity:    severityFor(score),
		RiskScore:   score,
		Probability: probabilityFor(score),
		Factors: map[string]float64{
			"overdueRatio":     in.OverdueRatio,
			"avgPaymentDays":   in.AvgPaymentDays,
			"totalOutstanding": in.TotalOutstanding,
			"customerCount":    float64(in.CustomerCount),
		},
		Recommendations: recommendations,
		ReviewDate:      now.Add(creditReviewAfter),
		EvaluatedAt:     now,
	}
}

// AssessLiquidity runs the liquidity rule table over the inputs.
func AssessLiquidity(in LiquidityInputs) *Assessment {
	now := time.Now()
	score := 0.0
	var recommendations []string
	for _, rule := range liquidityRules {
		if rule.triggered(in) {
			score += rule.points
			recommendations = append(recommendations, rule.recommendation)
		}
	}

	return &Assessment{
		ID:          idgen.WithPrefix("risk_"),
		Type:        TypeLiquidity,
		Severity:    severityFor(score),
		RiskScore:   score,
		Probability: probabilityFor(score),
		Factors: map[string]float64{
			"cashBalance":     in.CashBalance,
			"dailyBurnRate":   in.DailyBurnRate,
			"daysOfLiquidity": in.DaysOfLiquidity(),
			"currentRatio":    in.CurrentRatio,
		},
		Recommendations: recommendations,
		ReviewDate:      now.Add(liquidityReviewAfter),
		EvaluatedAt:     now,
	}
}
