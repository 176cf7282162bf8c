//go:build integration

package ledger

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/finsightlabs/finsight/internal/testutil"
)

func pgDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func insertTransaction(t *testing.T, db *sql.DB, tx Transaction) {
	t.Helper()
	_, err := db.Exec(`
		INSERT INTO transactions (id, tenant_id, date, amount, kind, category)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		tx.ID, tx.TenantID, tx.Date, tx.Amount, string(tx.Kind), tx.Category)
	if err != nil {
		t.Fatalf("insert transaction: %v", err)
	}
}

func insertInvoice(t *testing.T, db *sql.DB, inv Invoice) {
	t.Helper()
	var paid sql.NullTime
	if inv.PaidDate != nil {
		paid = sql.NullTime{Time: *inv.PaidDate, Valid: true}
	}
	_, err := db.Exec(`
		INSERT INTO invoices (id, tenant_id, customer_id, issue_date, due_date, paid_date, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		inv.ID, inv.TenantID, inv.CustomerID, inv.IssueDate, inv.DueDate, paid, inv.TotalAmount, string(inv.Status))
	if err != nil {
		t.Fatalf("insert invoice: %v", err)
	}
}

func TestPostgresStore_ListTransactions(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	insertTransaction(t, db, Transaction{ID: "txn_1", TenantID: "tnt_1", Date: pgDate(2026, 3, 10), Amount: 500, Kind: KindIncome, Category: "sales"})
	insertTransaction(t, db, Transaction{ID: "txn_2", TenantID: "tnt_1", Date: pgDate(2026, 1, 5), Amount: 300, Kind: KindIncome, Category: "sales"})
	insertTransaction(t, db, Transaction{ID: "txn_3", TenantID: "tnt_1", Date: pgDate(2026, 2, 20), Amount: 120, Kind: KindExpense, Category: "hosting"})
	insertTransaction(t, db, Transaction{ID: "txn_4", TenantID: "tnt_2", Date: pgDate(2026, 2, 1), Amount: 999, Kind: KindIncome, Category: "sales"})

	txs, err := store.ListTransactions(ctx, "tnt_1", DateRange{}, "")
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 transactions, got %d", len(txs))
	}
	// Ascending date order
	if txs[0].ID != "txn_2" || txs[2].ID != "txn_1" {
		t.Errorf("transactions not in date order: %v, %v, %v", txs[0].ID, txs[1].ID, txs[2].ID)
	}

	income, err := store.ListTransactions(ctx, "tnt_1", DateRange{}, KindIncome)
	if err != nil {
		t.Fatalf("ListTransactions income: %v", err)
	}
	if len(income) != 2 {
		t.Errorf("expected 2 income transactions, got %d", len(income))
	}

	feb, err := store.ListTransactions(ctx, "tnt_1", DateRange{From: pgDate(2026, 2, 1), To: pgDate(2026, 2, 28)}, "")
	if err != nil {
		t.Fatalf("ListTransactions range: %v", err)
	}
	if len(feb) != 1 || feb[0].ID != "txn_3" {
		t.Errorf("expected only txn_3 in February, got %+v", feb)
	}
}

func TestPostgresStore_ListTransactions_Validation(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	if _, err := store.ListTransactions(ctx, "", DateRange{}, ""); err == nil {
		t.Error("expected error for missing tenant")
	}

	bad := DateRange{From: pgDate(2026, 3, 1), To: pgDate(2026, 1, 1)}
	if _, err := store.ListTransactions(ctx, "tnt_1", bad, ""); err == nil {
		t.Error("expected error for inverted date range")
	}
}

func TestPostgresStore_ListInvoices(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	paid := pgDate(2026, 2, 15)
	insertInvoice(t, db, Invoice{ID: "inv_1", TenantID: "tnt_1", CustomerID: "cus_a", IssueDate: pgDate(2026, 1, 10), DueDate: pgDate(2026, 2, 9), PaidDate: &paid, TotalAmount: 1000, Status: InvoicePaid})
	insertInvoice(t, db, Invoice{ID: "inv_2", TenantID: "tnt_1", CustomerID: "cus_b", IssueDate: pgDate(2026, 3, 1), DueDate: pgDate(2026, 3, 31), TotalAmount: 750, Status: InvoiceSent})
	insertInvoice(t, db, Invoice{ID: "inv_3", TenantID: "tnt_1", CustomerID: "cus_a", IssueDate: pgDate(2026, 2, 1), DueDate: pgDate(2026, 3, 3), TotalAmount: 500, Status: InvoiceOverdue})

	all, err := store.ListInvoices(ctx, "tnt_1", InvoiceFilter{})
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 invoices, got %d", len(all))
	}

	// Paid date round-trips
	if all[0].PaidDate == nil || !all[0].PaidDate.Equal(paid) {
		t.Errorf("expected paid date %v, got %v", paid, all[0].PaidDate)
	}
	if all[1].PaidDate != nil {
		t.Error("expected nil paid date for open invoice")
	}

	byCustomer, err := store.ListInvoices(ctx, "tnt_1", InvoiceFilter{CustomerID: "cus_a"})
	if err != nil {
		t.Fatalf("ListInvoices by customer: %v", err)
	}
	if len(byCustomer) != 2 {
		t.Errorf("expected 2 invoices for cus_a, got %d", len(byCustomer))
	}

	overdue, err := store.ListInvoices(ctx, "tnt_1", InvoiceFilter{Status: InvoiceOverdue})
	if err != nil {
		t.Fatalf("ListInvoices overdue: %v", err)
	}
	if len(overdue) != 1 || overdue[0].ID != "inv_3" {
		t.Errorf("expected inv_3 overdue, got %+v", overdue)
	}
}

func TestPostgresStore_ExpensesBudgetsContacts(t *testing.T) {
	db, cleanup := testutil.PGTest(t)
	defer cleanup()

	store := NewPostgresStore(db)
	ctx := context.Background()

	_, err := db.Exec(`
		INSERT INTO expenses (id, tenant_id, date, amount, category, recurring)
		VALUES ('exp_1', 'tnt_1', $1, 2000, 'payroll', TRUE),
		       ('exp_2', 'tnt_1', $2, 150, 'tools', FALSE)`,
		pgDate(2026, 2, 1), pgDate(2026, 3, 1))
	if err != nil {
		t.Fatalf("insert expenses: %v", err)
	}

	expenses, err := store.ListExpenses(ctx, "tnt_1", DateRange{From: pgDate(2026, 3, 1)})
	if err != nil {
		t.Fatalf("ListExpenses: %v", err)
	}
	if len(expenses) != 1 || expenses[0].Category != "tools" {
		t.Errorf("expected the tools expense, got %+v", expenses)
	}

	_, err = db.Exec(`
		INSERT INTO budgets (id, tenant_id, category, amount, spent, period_start, period_end)
		VALUES ('bud_1', 'tnt_1', 'payroll', 6000, 2000, $1, $2)`,
		pgDate(2026, 1, 1), pgDate(2026, 3, 31))
	if err != nil {
		t.Fatalf("insert budget: %v", err)
	}

	// Overlap query: February falls inside the Q1 budget period
	budgets, err := store.ListBudgets(ctx, "tnt_1", DateRange{From: pgDate(2026, 2, 1), To: pgDate(2026, 2, 28)})
	if err != nil {
		t.Fatalf("ListBudgets: %v", err)
	}
	if len(budgets) != 1 {
		t.Fatalf("expected 1 overlapping budget, got %d", len(budgets))
	}

	_, err = db.Exec(`
		INSERT INTO contact_events (id, tenant_id, customer_id, occurred_at, channel)
		VALUES ('cte_1', 'tnt_1', 'cus_a', $1, 'email'),
		       ('cte_2', 'tnt_1', 'cus_b', $2, 'call')`,
		pgDate(2026, 1, 8), pgDate(2026, 2, 27))
	if err != nil {
		t.Fatalf("insert contacts: %v", err)
	}

	contacts, err := store.ListContacts(ctx, "tnt_1", "cus_b")
	if err != nil {
		t.Fatalf("ListContacts: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Channel != "call" {
		t.Errorf("expected the call event, got %+v", contacts)
	}
}
