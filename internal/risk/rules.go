package risk

import "math"

// CreditInputs are the receivables aggregates the credit rules fire on.
type CreditInputs struct {
	OverdueRatio     float64 // overdue invoices / total invoices
	AvgPaymentDays   float64 // mean issue-to-payment days across paid invoices
	TotalOutstanding float64 // sum of sent+overdue invoice amounts
	CustomerCount    int     // distinct invoiced customers
}

// LiquidityInputs are the cash-position aggregates the liquidity rules fire on.
type LiquidityInputs struct {
	CashBalance   float64 // current net cash position
	DailyBurnRate float64 // average daily outflow
	CurrentRatio  float64 // liquid assets / short-term liabilities
}

// DaysOfLiquidity is the runway in days at the current burn rate.
// The burn rate is floored at 1 to avoid division blowups for dormant books.
func (in LiquidityInputs) DaysOfLiquidity() float64 {
	return in.CashBalance / math.Max(in.DailyBurnRate, 1)
}

// creditRule contributes points when its condition holds.
type creditRule struct {
	name           string
	points         float64
	triggered      func(in CreditInputs) bool
	recommendation string
}

// creditRules is the additive credit scoring table. Rules are independent;
// every triggered rule contributes its points.
var creditRules = []creditRule{
	{
		name:           "high_overdue_ratio",
		points:         40,
		triggered:      func(in CreditInputs) bool { return in.OverdueRatio > 0.3 },
		recommendation: "Tighten collections: over 30% of invoices are past due",
	},
	{
		name:           "slow_payments",
		points:         30,
		triggered:      func(in CreditInputs) bool { return in.AvgPaymentDays > 45 },
		recommendation: "Shorten payment terms or offer early-payment discounts",
	},
	{
		name:           "large_outstanding",
		points:         20,
		triggered:      func(in CreditInputs) bool { return in.TotalOutstanding > 100000 },
		recommendation: "Consider credit insurance or factoring for the receivables book",
	},
	{
		name:           "concentrated_customers",
		points:         10,
		triggered:      func(in CreditInputs) bool { return in.CustomerCount < 5 },
		recommendation: "Diversify the customer base to reduce concentration risk",
	},
}

// liquidityRule contributes points when its condition holds.
type liquidityRule struct {
	name           string
	points         float64
	triggered      func(in LiquidityInputs) bool
	recommendation string
}

// liquidityRules is the additive liquidity scoring table. The two runway
// rules stack: a tenant under 30 days of runway is also under 60 and
// collects both contributions.
var liquidityRules = []liquidityRule{
	{
		name:           "runway_under_30d",
		points:         50,
		triggered:      func(in LiquidityInputs) bool { return in.DaysOfLiquidity() < 30 },
		recommendation: "Urgent: secure bridge financing, runway is under 30 days",
	},
	{
		name:           "runway_under_60d",
		points:         30,
		triggered:      func(in LiquidityInputs) bool { return in.DaysOfLiquidity() < 60 },
		recommendation: "Reduce discretionary spend and accelerate receivables",
	},
	{
		name:           "thin_current_ratio",
		points:         20,
		triggered:      func(in LiquidityInputs) bool { return in.CurrentRatio < 1.2 },
		recommendation: "Restructure short-term liabilities to improve the current ratio",
	},
}
