package query

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finsightlabs/finsight/internal/forecast"
	"github.com/finsightlabs/finsight/internal/idgen"
	"github.com/finsightlabs/finsight/internal/ledger"
	"github.com/finsightlabs/finsight/internal/metrics"
	"github.com/finsightlabs/finsight/internal/risk"
	"github.com/finsightlabs/finsight/internal/timeseries"
)

// quarterMonths is the lookback window for the revenue/expense summaries.
const quarterMonths = 3

// Router dispatches classified queries to the analytics engines.
type Router struct {
	reader    ledger.Reader
	forecasts *forecast.Service
	risks     *risk.Service
	store     Store // nil disables audit logging
	logger    *slog.Logger
}

// Option configures the router.
type Option func(*Router)

// WithStore enables best-effort query audit logging.
func WithStore(store Store) Option {
	return func(r *Router) { r.store = store }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) { r.logger = logger }
}

// NewRouter creates a query router over the given engines.
func NewRouter(reader ledger.Reader, forecasts *forecast.Service, risks *risk.Service, opts ...Option) *Router {
	r := &Router{
		reader:    reader,
		forecasts: forecasts,
		risks:     risks,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route classifies and answers a free-text question. It never returns an
// error: failures are reported inside the result envelope.
func (r *Router) Route(ctx context.Context, tenantID, q string) *Result {
	start := time.Now()
	intent := DetectIntent(q)

	result := &Result{
		ID:        idgen.WithPrefix("qry_"),
		TenantID:  tenantID,
		Query:     q,
		Intent:    intent,
		CreatedAt: start,
	}

	summary, response, err := r.dispatch(ctx, tenantID, intent)
	result.ProcessingTimeMs = float64(time.Since(start).Microseconds()) / 1000
	if err != nil {
		result.IsSuccessful = false
		result.Summary = "Sorry, that question could not be answered right now."
		result.Response = map[string]string{"error": err.Error()}
	} else {
		result.IsSuccessful = true
		result.Summary = summary
		result.Response = response
	}

	metrics.QueriesRoutedTotal.WithLabelValues(string(intent)).Inc()

	if r.store != nil {
		go func() {
			if err := r.store.Record(context.Background(), result); err != nil {
				r.logger.Warn("failed to log query", "id", result.ID, "error", err)
			}
		}()
	}
	return result
}

func (r *Router) dispatch(ctx context.Context, tenantID string, intent Intent) (string, any, error) {
	switch intent {
	case IntentRevenue:
		return r.revenueSummary(ctx, tenantID)
	case IntentExpense:
		return r.expenseSummary(ctx, tenantID)
	case IntentCashFlow:
		return r.cashFlowAnswer(ctx, tenantID)
	case IntentBudget:
		return r.budgetCheck(ctx, tenantID)
	case IntentForecast:
		return r.forecastAnswer(ctx, tenantID)
	case IntentRisk:
		return r.riskAnswer(ctx, tenantID)
	default:
		return "I can answer questions about revenue, expenses, cash flow, budgets, forecasts and risk.",
			map[string]any{"intents": []Intent{
				IntentRevenue, IntentExpense, IntentCashFlow,
				IntentBudget, IntentForecast, IntentRisk,
			}}, nil
	}
}

func (r *Router) revenueSummary(ctx context.Context, tenantID string) (string, any, error) {
	series, total, err := r.quarterSeries(ctx, tenantID, ledger.KindIncome)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Revenue over the last %d months totals %.2f across %d active periods.",
		quarterMonths, total, len(series)), map[string]any{"total": total, "series": series}, nil
}

func (r *Router) expenseSummary(ctx context.Context, tenantID string) (string, any, error) {
	series, total, err := r.quarterSeries(ctx, tenantID, ledger.KindExpense)
	if err != nil {
		return "", nil, err
	}
	// Expense buckets are negative by sign convention; report magnitude.
	total = -total
	return fmt.Sprintf("Expenses over the last %d months total %.2f.", quarterMonths, total),
		map[string]any{"total": total, "series": series}, nil
}

func (r *Router) quarterSeries(ctx context.Context, tenantID string, kind ledger.Kind) ([]timeseries.Point, float64, error) {
	records, err := r.reader.ListTransactions(ctx, tenantID,
		ledger.DateRange{From: time.Now().AddDate(0, -quarterMonths, 0)}, kind)
	if err != nil {
		return nil, 0, err
	}
	series := timeseries.Aggregate(records, timeseries.BucketMonth)
	var total float64
	for _, p := range series {
		total += p.Value
	}
	return series, total, nil
}

func (r *Router) cashFlowAnswer(ctx context.Context, tenantID string) (string, any, error) {
	target := time.Now().AddDate(0, quarterMonths, 0)
	f, scenarios, err := r.forecasts.CashFlow(ctx, tenantID, target, 0)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Projected cash position on %s is %.2f (confidence %.0f%%).",
			target.Format("2006-01-02"), f.PredictedValue, f.Confidence*100),
		map[string]any{"forecast": f, "scenarios": scenarios}, nil
}

func (r *Router) budgetCheck(ctx context.Context, tenantID string) (string, any, error) {
	now := time.Now()
	budgets, err := r.reader.ListBudgets(ctx, tenantID, ledger.DateRange{From: now, To: now})
	if err != nil {
		return "", nil, err
	}

	over := 0
	for _, b := range budgets {
		if b.Spent > b.Amount {
			over++
		}
	}
	return fmt.Sprintf("%d of %d active budgets are over their limit.", over, len(budgets)),
		map[string]any{"budgets": budgets, "overLimit": over}, nil
}

func (r *Router) forecastAnswer(ctx context.Context, tenantID string) (string, any, error) {
	f, scenarios, err := r.forecasts.Revenue(ctx, tenantID, 1)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Next month's revenue is projected at %.2f (confidence %.0f%%).",
			f.PredictedValue, f.Confidence*100),
		map[string]any{"forecast": f, "scenarios": scenarios}, nil
}

func (r *Router) riskAnswer(ctx context.Context, tenantID string) (string, any, error) {
	credit, err := r.risks.Credit(ctx, tenantID)
	if err != nil {
		return "", nil, err
	}
	liquidity, err := r.risks.Liquidity(ctx, tenantID)
	if err != nil {
		return "", nil, err
	}
	return fmt.Sprintf("Credit risk is %s (score %.0f); liquidity risk is %s (score %.0f).",
			credit.Severity, credit.RiskScore, liquidity.Severity, liquidity.RiskScore),
		map[string]any{"credit": credit, "liquidity": liquidity}, nil
}
