package risk

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/finsightlabs/finsight/internal/ledger"
	"github.com/finsightlabs/finsight/internal/metrics"
)

// burnWindowDays is the lookback for computing the daily burn rate.
const burnWindowDays = 90

// fallbackNarrative is served when the text-generation collaborator is
// unavailable. Assessments always carry some mitigation prose.
const fallbackNarrative = "Review the flagged indicators with your finance team and act on the recommendations in priority order."

// Notifier receives freshly computed assessments (e.g. the realtime hub).
type Notifier interface {
	RiskAssessed(a *Assessment)
}

// Narrator turns a factor summary into management-readable prose.
// Implementations may fail; narration is always best-effort.
type Narrator interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Service derives rule inputs from the ledger and runs the scoring tables.
type Service struct {
	reader   ledger.Reader
	store    Store // nil disables persistence
	notifier Notifier
	narrator Narrator
	logger   *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithStore enables best-effort assessment persistence.
func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

// WithNotifier streams new assessments to the given notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithNarrator enables generated narratives on assessments.
func WithNarrator(n Narrator) Option {
	return func(s *Service) { s.narrator = n }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a risk service over the given ledger reader.
func NewService(reader ledger.Reader, opts ...Option) *Service {
	s := &Service{
		reader: reader,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Credit assesses the tenant's receivables book.
func (s *Service) Credit(ctx context.Context, tenantID string) (*Assessment, error) {
	in, err := s.creditInputs(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	a := AssessCredit(in)
	a.TenantID = tenantID
	s.finish(ctx, a)
	return a, nil
}

// Liquidity assesses the tenant's cash runway.
func (s *Service) Liquidity(ctx context.Context, tenantID string) (*Assessment, error) {
	in, err := s.liquidityInputs(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	a := AssessLiquidity(in)
	a.TenantID = tenantID
	s.finish(ctx, a)
	return a, nil
}

// History lists persisted assessments for a tenant, newest first.
func (s *Service) History(ctx context.Context, tenantID string, limit int) ([]*Assessment, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListByTenant(ctx, tenantID, limit)
}

func (s *Service) creditInputs(ctx context.Context, tenantID string) (CreditInputs, error) {
	invoices, err := s.reader.ListInvoices(ctx, tenantID, ledger.InvoiceFilter{})
	if err != nil {
		return CreditInputs{}, fmt.Errorf("fetch invoices: %w", err)
	}

	now := time.Now()
	var in CreditInputs
	var overdue int
	var paymentDaysSum float64
	var paidCount int
	customers := make(map[string]struct{})

	for _, inv := range invoices {
		customers[inv.CustomerID] = struct{}{}
		if inv.OverdueAt(now) {
			overdue++
		}
		if inv.Outstanding() {
			in.TotalOutstanding += inv.TotalAmount
		}
		if inv.PaidDate != nil {
			paymentDaysSum += inv.PaymentDays()
			paidCount++
		}
	}

	if len(invoices) > 0 {
		in.OverdueRatio = float64(overdue) / float64(len(invoices))
	}
	if paidCount > 0 {
		in.AvgPaymentDays = paymentDaysSum / float64(paidCount)
	}
	in.CustomerCount = len(customers)
	return in, nil
}

func (s *Service) liquidityInputs(ctx context.Context, tenantID string) (LiquidityInputs, error) {
	now := time.Now()

	// Full history nets out to the current cash position.
	records, err := s.reader.ListTransactions(ctx, tenantID, ledger.DateRange{}, "")
	if err != nil {
		return LiquidityInputs{}, fmt.Errorf("fetch transactions: %w", err)
	}

	var in LiquidityInputs
	burnCutoff := now.AddDate(0, 0, -burnWindowDays)
	var recentOutflow float64
	for _, tx := range records {
		switch tx.Kind {
		case ledger.KindIncome:
			in.CashBalance += tx.Amount
		case ledger.KindExpense:
			in.CashBalance -= tx.Amount
			if tx.Date.After(burnCutoff) {
				recentOutflow += tx.Amount
			}
		}
	}
	in.DailyBurnRate = recentOutflow / burnWindowDays

	// Committed expenses over the next quarter stand in for short-term
	// liabilities when computing the current ratio.
	upcoming, err := s.reader.ListExpenses(ctx, tenantID,
		ledger.DateRange{From: now, To: now.AddDate(0, 3, 0)})
	if err != nil {
		return LiquidityInputs{}, fmt.Errorf("fetch scheduled expenses: %w", err)
	}
	var liabilities float64
	for _, e := range upcoming {
		liabilities += e.Amount
	}
	in.CurrentRatio = in.CashBalance / math.Max(liabilities, 1)

	return in, nil
}

// finish records metrics, narrates, persists and broadcasts an assessment.
// Narration and persistence are best-effort; the assessment always returns.
func (s *Service) finish(ctx context.Context, a *Assessment) {
	metrics.RiskAssessmentsTotal.WithLabelValues(string(a.Type), string(a.Severity)).Inc()

	a.Narrative = fallbackNarrative
	if s.narrator != nil {
		narrative, err := s.narrator.Complete(ctx, narrationPrompt(a))
		if err != nil {
			s.logger.Warn("risk narration unavailable", "id", a.ID, "error", err)
			metrics.TextGenFallbacksTotal.Inc()
		} else {
			a.Narrative = narrative
		}
	}

	if s.store != nil {
		go func() {
			if err := s.store.Record(context.Background(), a); err != nil {
				s.logger.Warn("failed to persist assessment", "id", a.ID, "error", err)
			}
		}()
	}
	if s.notifier != nil {
		s.notifier.RiskAssessed(a)
	}
}

func narrationPrompt(a *Assessment) string {
	return fmt.Sprintf(
		"Summarize this %s assessment for a finance manager in two sentences. "+
			"Severity: %s. Score: %.0f. Factors: %v.",
		a.Type, a.Severity, a.RiskScore, a.Factors)
}
