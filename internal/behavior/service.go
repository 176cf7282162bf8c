package behavior

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/finsightlabs/finsight/internal/idgen"
	"github.com/finsightlabs/finsight/internal/ledger"
	"github.com/finsightlabs/finsight/internal/metrics"
)

// Service scores customers from their ledger history.
type Service struct {
	reader ledger.Reader
	store  Store // nil disables persistence
	logger *slog.Logger
}

// Option configures the service.
type Option func(*Service)

// WithStore enables best-effort profile persistence.
func WithStore(store Store) Option {
	return func(s *Service) { s.store = store }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a behavior scoring service over the given ledger reader.
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

// ScoreCustomer builds the behavioral profile for one customer.
func (s *Service) ScoreCustomer(ctx context.Context, tenantID, customerID string) (*Profile, error) {
	invoices, err := s.reader.ListInvoices(ctx, tenantID, ledger.InvoiceFilter{CustomerID: customerID})
	if err != nil {
		return nil, fmt.Errorf("fetch customer invoices: %w", err)
	}
	contacts, err := s.reader.ListContacts(ctx, tenantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("fetch customer contacts: %w", err)
	}

	p := Score(invoices, contacts, time.Now())
	p.ID = idgen.WithPrefix("beh_")
	p.TenantID = tenantID
	p.CustomerID = customerID

	metrics.BehaviorScoresTotal.WithLabelValues("profile").Inc()

	if s.store != nil {
		go func() {
			if err := s.store.Record(context.Background(), p); err != nil {
				s.logger.Warn("failed to persist behavior profile", "customer", customerID, "error", err)
			}
		}()
	}
	return p, nil
}

// History lists persisted profiles for a tenant, newest first.
func (s *Service) History(ctx context.Context, tenantID string, limit int) ([]*Profile, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.ListByTenant(ctx, tenantID, limit)
}
