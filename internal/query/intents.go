package query

import "strings"

// Intent is the detected category of a free-text financial question.
type Intent string

const (
	IntentRevenue  Intent = "revenue_analysis"
	IntentExpense  Intent = "expense_analysis"
	IntentCashFlow Intent = "cash_flow"
	IntentBudget   Intent = "budget_check"
	IntentForecast Intent = "forecast"
	IntentRisk     Intent = "risk_assessment"
	IntentGeneral  Intent = "general"
)

// intentRule pairs an intent with its trigger keywords.
type intentRule struct {
	intent   Intent
	keywords []string
}

// intentRules is evaluated top to bottom; the first rule with any keyword
// contained in the query wins. The order is behaviorally significant -
// "revenue forecast" resolves to revenue_analysis, not forecast.
var intentRules = []intentRule{
	{IntentRevenue, []string{"revenue", "sales", "income", "earnings"}},
	{IntentExpense, []string{"expense", "spend", "cost", "outflow"}},
	{IntentCashFlow, []string{"cash flow", "cashflow", "cash position", "runway"}},
	{IntentBudget, []string{"budget", "allocation", "overspend"}},
	{IntentForecast, []string{"forecast", "predict", "projection", "outlook"}},
	{IntentRisk, []string{"risk", "exposure", "overdue", "liquidity"}},
}

// DetectIntent classifies a query by case-insensitive keyword containment.
func DetectIntent(q string) Intent {
	lowered := strings.ToLower(q)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lowered, kw) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}
