package forecast

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finsightlabs/finsight/internal/ledger"
	"github.com/finsightlabs/finsight/internal/metrics"
	"github.com/finsightlabs/finsight/internal/timeseries"
)

// Default lookback and projection parameters.
const (
	DefaultHistoryMonths = 24
	DefaultTrials        = 1000
)

// Notifier receives freshly computed forecasts (e.g. the realtime hub).
type Notifier interface {
	ForecastCreated(f *Forecast)
}

// Service orchestrates data fetch, aggregation, forecasting and the
// best-effort persistence of results. All collaborators are injected -
// there is no shared state beyond them.
type Service struct {
	reader   ledger.Reader
	store    Store // nil disables persistence
	sim      *Simulator
	notifier Notifier
	logger   *slog.Logger
	trials   int
}

// Option configures the service.
type Option func(*Service)

// WithStore enables best-effort forecast persistence.
func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

// WithNotifier streams new forecasts to the given notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithSimulator overrides the default simulator (for seeded tests).
func WithSimulator(sim *Simulator) Option {
	return func(s *Service) { s.sim = sim }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithDefaultTrials overrides the default Monte Carlo trial count.
func WithDefaultTrials(n int) Option {
	return func(s *Service) { s.trials = n }
}

// NewService creates a forecasting service over the given ledger reader.
func NewService(reader ledger.Reader, opts ...Option) *Service {
	s := &Service{
		reader: reader,
		sim:    NewSimulator(),
		logger: slog.Default(),
		trials: DefaultTrials,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Revenue projects monthly revenue monthsAhead months out using the
// deterministic trend forecaster over up to two years of income history.
func (s *Service) Revenue(ctx context.Context, tenantID string, monthsAhead int) (*Forecast, []Scenario, error) {
	return s.trendForecast(ctx, tenantID, ledger.KindIncome, "revenue", monthsAhead)
}

// Expenses projects monthly expense magnitude monthsAhead months out.
func (s *Service) Expenses(ctx context.Context, tenantID string, monthsAhead int) (*Forecast, []Scenario, error) {
	return s.trendForecast(ctx, tenantID, ledger.KindExpense, "expense", monthsAhead)
}

func (s *Service) trendForecast(ctx context.Context, tenantID string, kind ledger.Kind, forecastKind string, monthsAhead int) (*Forecast, []Scenario, error) {
	if monthsAhead < 1 {
		monthsAhead = 1
	}
	now := time.Now()

	records, err := s.reader.ListTransactions(ctx, tenantID,
		ledger.DateRange{From: now.AddDate(0, -DefaultHistoryMonths, 0)}, kind)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch %s history: %w", forecastKind, err)
	}

	series := timeseries.Aggregate(records, timeseries.BucketMonth)
	if kind == ledger.KindExpense {
		// Aggregation signs expenses negative; forecasts report magnitude.
		for i := range series {
			series[i].Value = -series[i].Value
		}
	}

	targetDate := firstOfMonth(now).AddDate(0, monthsAhead, 0)
	f, err := TrendAt(series, len(series)-1+monthsAhead, targetDate, forecastKind)
	if err != nil {
		return nil, nil, err
	}
	f.TenantID = tenantID

	s.finish(f)
	return f, ExpandScenarios(f), nil
}

// CashFlow projects the net cash position at targetDate with a Monte
// Carlo simulation over the last year of net monthly flow, shifted by
// outstanding invoices (collection-rate adjusted) and scheduled expenses.
func (s *Service) CashFlow(ctx context.Context, tenantID string, targetDate time.Time, trials int) (*Forecast, []Scenario, error) {
	if trials <= 0 {
		trials = s.trials
	}
	now := time.Now()

	records, err := s.reader.ListTransactions(ctx, tenantID,
		ledger.DateRange{From: now.AddDate(-1, 0, 0)}, "")
	if err != nil {
		return nil, nil, fmt.Errorf("fetch cash flow history: %w", err)
	}
	series := timeseries.Aggregate(records, timeseries.BucketMonth)

	invoices, err := s.reader.ListInvoices(ctx, tenantID, ledger.InvoiceFilter{})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch open invoices: %w", err)
	}
	var inflows []CashEvent
	for _, inv := range invoices {
		if inv.Outstanding() {
			inflows = append(inflows, CashEvent{Date: inv.DueDate, Amount: inv.TotalAmount})
		}
	}

	expenses, err := s.reader.ListExpenses(ctx, tenantID, ledger.DateRange{From: now, To: targetDate})
	if err != nil {
		return nil, nil, fmt.Errorf("fetch scheduled expenses: %w", err)
	}
	var outflows []CashEvent
	for _, e := range expenses {
		outflows = append(outflows, CashEvent{Date: e.Date, Amount: e.Amount, Confirmed: true})
	}

	timer := metrics.NewSimulationTimer()
	f, err := s.sim.Simulate(ctx, series, inflows, outflows, targetDate, trials)
	timer.ObserveDuration()
	if err != nil {
		return nil, nil, err
	}
	f.TenantID = tenantID
	f.Kind = "cash_flow"

	s.finish(f)
	return f, ExpandScenarios(f), nil
}

// History lists persisted forecasts for a tenant, newest first.
func (s *Service) History(ctx context.Context, tenantID string, limit int) ([]*Forecast, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListByTenant(ctx, tenantID, limit)
}

// finish records metrics, persists and broadcasts a fresh forecast.
// Persistence is best-effort audit trail - failures are logged, not raised.
func (s *Service) finish(f *Forecast) {
	metrics.ForecastsComputedTotal.WithLabelValues(f.Kind, string(f.Method)).Inc()

	if s.store != nil {
		go func() {
			if err := s.store.Record(context.Background(), f); err != nil {
				s.logger.Warn("failed to persist forecast", "id", f.ID, "error", err)
			}
		}()
	}
	if s.notifier != nil {
		s.notifier.ForecastCreated(f)
	}
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
