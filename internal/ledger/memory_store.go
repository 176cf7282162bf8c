package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/finsightlabs/finsight/internal/idgen"
)

// MemoryStore is an in-memory Reader for demo mode and tests.
type MemoryStore struct {
	mu           sync.RWMutex
	transactions map[string][]Transaction // tenantID -> records
	invoices     map[string][]Invoice
	expenses     map[string][]Expense
	budgets      map[string][]Budget
	contacts     map[string][]ContactEvent
}

// NewMemoryStore creates an empty in-memory ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		transactions: make(map[string][]Transaction),
		invoices:     make(map[string][]Invoice),
		expenses:     make(map[string][]Expense),
		budgets:      make(map[string][]Budget),
		contacts:     make(map[string][]ContactEvent),
	}
}

// Compile-time interface check
var _ Reader = (*MemoryStore)(nil)

// AddTransaction inserts a transaction, assigning an ID if missing.
func (m *MemoryStore) AddTransaction(tx Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tx.ID == "" {
		tx.ID = idgen.WithPrefix("txn_")
	}
	m.transactions[tx.TenantID] = append(m.transactions[tx.TenantID], tx)
}

// AddInvoice inserts an invoice, assigning an ID if missing.
func (m *MemoryStore) AddInvoice(inv Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inv.ID == "" {
		inv.ID = idgen.WithPrefix("inv_")
	}
	m.invoices[inv.TenantID] = append(m.invoices[inv.TenantID], inv)
}

// AddExpense inserts an expense, assigning an ID if missing.
func (m *MemoryStore) AddExpense(e Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == "" {
		e.ID = idgen.WithPrefix("exp_")
	}
	m.expenses[e.TenantID] = append(m.expenses[e.TenantID], e)
}

// AddBudget inserts a budget, assigning an ID if missing.
func (m *MemoryStore) AddBudget(b Budget) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID == "" {
		b.ID = idgen.WithPrefix("bud_")
	}
	m.budgets[b.TenantID] = append(m.budgets[b.TenantID], b)
}

// AddContact inserts a contact event, assigning an ID if missing.
func (m *MemoryStore) AddContact(c ContactEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = idgen.WithPrefix("cte_")
	}
	m.contacts[c.TenantID] = append(m.contacts[c.TenantID], c)
}

func (m *MemoryStore) ListTransactions(ctx context.Context, tenantID string, r DateRange, kind Kind) ([]Transaction, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Transaction
	for _, tx := range m.transactions[tenantID] {
		if kind != "" && tx.Kind != kind {
			continue
		}
		if !r.Contains(tx.Date) {
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemoryStore) ListInvoices(ctx context.Context, tenantID string, f InvoiceFilter) ([]Invoice, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	if err := f.Range.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Invoice
	for _, inv := range m.invoices[tenantID] {
		if f.CustomerID != "" && inv.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		if !f.Range.Contains(inv.IssueDate) {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].IssueDate.Before(out[j].IssueDate) })
	return out, nil
}

func (m *MemoryStore) ListExpenses(ctx context.Context, tenantID string, r DateRange) ([]Expense, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Expense
	for _, e := range m.expenses[tenantID] {
		if !r.Contains(e.Date) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *MemoryStore) ListBudgets(ctx context.Context, tenantID string, r DateRange) ([]Budget, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Budget
	for _, b := range m.budgets[tenantID] {
		// A budget matches when its period overlaps the range.
		if !r.From.IsZero() && b.PeriodEnd.Before(r.From) {
			continue
		}
		if !r.To.IsZero() && b.PeriodStart.After(r.To) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodStart.Before(out[j].PeriodStart) })
	return out, nil
}

func (m *MemoryStore) ListContacts(ctx context.Context, tenantID, customerID string) ([]ContactEvent, error) {
	if tenantID == "" {
		return nil, ErrTenantRequired
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []ContactEvent
	for _, c := range m.contacts[tenantID] {
		if customerID != "" && c.CustomerID != customerID {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}
