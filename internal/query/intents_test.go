package query

import "testing"

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		query string
		want  Intent
	}{
		{"What is our revenue this quarter?", IntentRevenue},
		{"show me SALES figures", IntentRevenue},
		{"how much did we spend on software", IntentExpense},
		{"what do our costs look like", IntentExpense},
		{"cash flow outlook for Q4", IntentCashFlow},
		{"how long is our runway", IntentCashFlow},
		{"are we over budget this month", IntentBudget},
		{"forecast next quarter", IntentForecast},
		{"predict where we land", IntentForecast},
		{"what is our credit risk", IntentRisk},
		{"any overdue invoices I should worry about", IntentRisk},
		{"hello there", IntentGeneral},
		{"", IntentGeneral},
	}

	for _, tt := range tests {
		if got := DetectIntent(tt.query); got != tt.want {
			t.Errorf("DetectIntent(%q) = %s, want %s", tt.query, got, tt.want)
		}
	}
}

func TestDetectIntentPriorityOrder(t *testing.T) {
	// Matches both revenue and forecast keywords: the earlier rule wins.
	if got := DetectIntent("forecast our revenue for next year"); got != IntentRevenue {
		t.Errorf("ambiguous query resolved to %s, want %s", got, IntentRevenue)
	}
	// Matches both expense and budget: expense is listed first.
	if got := DetectIntent("budget for expenses"); got != IntentExpense {
		t.Errorf("ambiguous query resolved to %s, want %s", got, IntentExpense)
	}
}
