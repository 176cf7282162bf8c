// Package ledger provides read access to a tenant's durable financial history.
//
// The analytics engine never owns this data - it reads transactions, invoices,
// expenses and budgets through the Reader interface and emits derived,
// disposable results. Two implementations ship with the engine: MemoryStore
// for demos and tests, PostgresStore for production.
package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	ErrTenantRequired = errors.New("tenant id is required")
	ErrInvalidRange   = errors.New("date range start is after end")
)

// Kind classifies a transaction's cash direction.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// InvoiceStatus tracks an invoice through its lifecycle.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Transaction is a single booked cash movement.
type Transaction struct {
	ID       string    `json:"id"`
	TenantID string    `json:"tenantId"`
	Date     time.Time `json:"date"`
	Amount   float64   `json:"amount"` // always positive; Kind carries the sign
	Kind     Kind      `json:"kind"`
	Category string    `json:"category"`
}

// Invoice is a receivable owed by a customer.
type Invoice struct {
	ID          string        `json:"id"`
	TenantID    string        `json:"tenantId"`
	CustomerID  string        `json:"customerId"`
	IssueDate   time.Time     `json:"issueDate"`
	DueDate     time.Time     `json:"dueDate"`
	PaidDate    *time.Time    `json:"paidDate,omitempty"`
	TotalAmount float64       `json:"totalAmount"`
	Status      InvoiceStatus `json:"status"`
}

// Outstanding reports whether the invoice still represents expected cash.
func (i Invoice) Outstanding() bool {
	return i.Status == InvoiceSent || i.Status == InvoiceOverdue
}

// OverdueAt reports whether the invoice was past due and unpaid at t.
func (i Invoice) OverdueAt(t time.Time) bool {
	return i.Outstanding() && i.DueDate.Before(t)
}

// PaymentDays returns the days between issue and payment, or 0 if unpaid.
func (i Invoice) PaymentDays() float64 {
	if i.PaidDate == nil {
		return 0
	}
	return i.PaidDate.Sub(i.IssueDate).Hours() / 24
}

// Expense is a committed or recurring outflow.
type Expense struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	Date      time.Time `json:"date"`
	Amount    float64   `json:"amount"`
	Category  string    `json:"category"`
	Recurring bool      `json:"recurring"`
}

// Budget is a planned spend ceiling for a category and period.
type Budget struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	Category    string    `json:"category"`
	Amount      float64   `json:"amount"`
	Spent       float64   `json:"spent"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
}

// ContactEvent records an interaction with a customer (call, email, meeting).
type ContactEvent struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenantId"`
	CustomerID string    `json:"customerId"`
	OccurredAt time.Time `json:"occurredAt"`
	Channel    string    `json:"channel"`
}

// DateRange bounds a query. A zero From or To means unbounded on that side.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// Validate checks the range is well formed.
func (r DateRange) Validate() error {
	if !r.From.IsZero() && !r.To.IsZero() && r.From.After(r.To) {
		return ErrInvalidRange
	}
	return nil
}

// InvoiceFilter narrows invoice queries.
type InvoiceFilter struct {
	CustomerID string
	Status     InvoiceStatus // empty = any
	Range      DateRange     // filters on issue date
}

// Reader is the data-store collaborator the engine depends on.
// Implementations must return records in ascending date order.
type Reader interface {
	ListTransactions(ctx context.Context, tenantID string, r DateRange, kind Kind) ([]Transaction, error)
	ListInvoices(ctx context.Context, tenantID string, f InvoiceFilter) ([]Invoice, error)
	ListExpenses(ctx context.Context, tenantID string, r DateRange) ([]Expense, error)
	ListBudgets(ctx context.Context, tenantID string, r DateRange) ([]Budget, error)
	ListContacts(ctx context.Context, tenantID, customerID string) ([]ContactEvent, error)
}
