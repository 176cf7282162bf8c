package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PostgresStore reads financial history from PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed ledger reader.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Compile-time interface check
var _ Reader = (*PostgresStore)(nil)

// Migrate creates the ledger tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id         VARCHAR(40) PRIMARY KEY,
			tenant_id  VARCHAR(40) NOT NULL,
			date       TIMESTAMPTZ NOT NULL,
			amount     NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
			kind       VARCHAR(10) NOT NULL CHECK (kind IN ('income', 'expense')),
			category   VARCHAR(100) NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_tenant_date
			ON transactions (tenant_id, date);

		CREATE TABLE IF NOT EXISTS invoices (
			id           VARCHAR(40) PRIMARY KEY,
			tenant_id    VARCHAR(40) NOT NULL,
			customer_id  VARCHAR(40) NOT NULL,
			issue_date   TIMESTAMPTZ NOT NULL,
			due_date     TIMESTAMPTZ NOT NULL,
			paid_date    TIMESTAMPTZ,
			total_amount NUMERIC(14,2) NOT NULL,
			status       VARCHAR(10) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_invoices_tenant_issue
			ON invoices (tenant_id, issue_date);
		CREATE INDEX IF NOT EXISTS idx_invoices_tenant_customer
			ON invoices (tenant_id, customer_id, issue_date);

		CREATE TABLE IF NOT EXISTS expenses (
			id         VARCHAR(40) PRIMARY KEY,
			tenant_id  VARCHAR(40) NOT NULL,
			date       TIMESTAMPTZ NOT NULL,
			amount     NUMERIC(14,2) NOT NULL,
			category   VARCHAR(100) NOT NULL DEFAULT '',
			recurring  BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE INDEX IF NOT EXISTS idx_expenses_tenant_date
			ON expenses (tenant_id, date);

		CREATE TABLE IF NOT EXISTS budgets (
			id           VARCHAR(40) PRIMARY KEY,
			tenant_id    VARCHAR(40) NOT NULL,
			category     VARCHAR(100) NOT NULL,
			amount       NUMERIC(14,2) NOT NULL,
			spent        NUMERIC(14,2) NOT NULL DEFAULT 0,
			period_start TIMESTAMPTZ NOT NULL,
			period_end   TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_budgets_tenant_period
			ON budgets (tenant_id, period_start);

		CREATE TABLE IF NOT EXISTS contact_events (
			id          VARCHAR(40) PRIMARY KEY,
			tenant_id   VARCHAR(40) NOT NULL,
			customer_id VARCHAR(40) NOT NULL,
			occurred_at TIMESTAMPTZ NOT NULL,
			channel     VARCHAR(30) NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_contact_events_tenant_customer
			ON contact_events (tenant_id, customer_id, occurred_at);
	`)
	return err
}

func (s *PostgresStore) ListTransactions(ctx context.Context, tenantID string, r DateRange, kind Kind) ([]Transaction, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, tenant_id, date, amount, kind, category
		FROM transactions
		WHERE tenant_id = $1
		  AND ($2::timestamptz IS NULL OR date >= $2)
		  AND ($3::timestamptz IS NULL OR date <= $3)
		  AND ($4 = '' OR kind = $4)
		ORDER BY date ASC`

	rows, err := s.db.QueryContext(ctx, query, tenantID, nullTime(r.From), nullTime(r.To), string(kind))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.TenantID, &tx.Date, &tx.Amount, &tx.Kind, &tx.Category); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListInvoices(ctx context.Context, tenantID string, f InvoiceFilter) ([]Invoice, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	if err := f.Range.Validate(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, tenant_id, customer_id, issue_date, due_date, paid_date, total_amount, status
		FROM invoices
		WHERE tenant_id = $1
		  AND ($2 = '' OR customer_id = $2)
		  AND ($3 = '' OR status = $3)
		  AND ($4::timestamptz IS NULL OR issue_date >= $4)
		  AND ($5::timestamptz IS NULL OR issue_date <= $5)
		ORDER BY issue_date ASC`

	rows, err := s.db.QueryContext(ctx, query,
		tenantID, f.CustomerID, string(f.Status), nullTime(f.Range.From), nullTime(f.Range.To))
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Invoice
	for rows.Next() {
		var inv Invoice
		var paid sql.NullTime
		if err := rows.Scan(&inv.ID, &inv.TenantID, &inv.CustomerID, &inv.IssueDate,
			&inv.DueDate, &paid, &inv.TotalAmount, &inv.Status); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		if paid.Valid {
			t := paid.Time
			inv.PaidDate = &t
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListExpenses(ctx context.Context, tenantID string, r DateRange) ([]Expense, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, date, amount, category, recurring
		FROM expenses
		WHERE tenant_id = $1
		  AND ($2::timestamptz IS NULL OR date >= $2)
		  AND ($3::timestamptz IS NULL OR date <= $3)
		ORDER BY date ASC`,
		tenantID, nullTime(r.From), nullTime(r.To))
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.TenantID, &e.Date, &e.Amount, &e.Category, &e.Recurring); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListBudgets(ctx context.Context, tenantID string, r DateRange) ([]Budget, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, category, amount, spent, period_start, period_end
		FROM budgets
		WHERE tenant_id = $1
		  AND ($2::timestamptz IS NULL OR period_end >= $2)
		  AND ($3::timestamptz IS NULL OR period_start <= $3)
		ORDER BY period_start ASC`,
		tenantID, nullTime(r.From), nullTime(r.To))
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Budget
	for rows.Next() {
		var b Budget
		if err := rows.Scan(&b.ID, &b.TenantID, &b.Category, &b.Amount, &b.Spent, &b.PeriodStart, &b.PeriodEnd); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListContacts(ctx context.Context, tenantID, customerID string) ([]ContactEvent, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, customer_id, occurred_at, channel
		FROM contact_events
		WHERE tenant_id = $1
		  AND ($2 = '' OR customer_id = $2)
		ORDER BY occurred_at ASC`,
		tenantID, customerID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []ContactEvent
	for rows.Next() {
		var c ContactEvent
		if err := rows.Scan(&c.ID, &c.TenantID, &c.CustomerID, &c.OccurredAt, &c.Channel); err != nil {
			return nil, fmt.Errorf("scan contact event: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// nullTime converts a zero time to a SQL NULL so optional bounds work.
func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
