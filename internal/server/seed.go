package server

import (
	"math"
	"time"

	"github.com/finsightlabs/finsight/internal/ledger"
)

// DemoTenant is the tenant ID the in-memory store is seeded with in development.
const DemoTenant = "demo"

// seedDemoData populates the memory store with two years of plausible
// financials for the demo tenant: trending revenue with seasonality,
// a mix of paid/overdue invoices across a handful of customers,
// recurring expenses, budgets and customer touchpoints. Enough history
// for every forecast and risk endpoint to return real numbers.
func seedDemoData(store *ledger.MemoryStore) {
	now := time.Now().UTC()
	start := now.AddDate(-2, 0, 0)

	// Monthly revenue: base 40k growing ~1.5% per month with a mild
	// seasonal swing, plus monthly operating costs.
	for m := 0; m < 24; m++ {
		date := start.AddDate(0, m, 14)
		growth := math.Pow(1.015, float64(m))
		seasonal := 1 + 0.08*math.Sin(2*math.Pi*float64(date.Month())/12)

		store.AddTransaction(ledger.Transaction{
			TenantID: DemoTenant,
			Date:     date,
			Amount:   40000 * growth * seasonal,
			Kind:     ledger.KindIncome,
			Category: "subscriptions",
		})
		store.AddTransaction(ledger.Transaction{
			TenantID: DemoTenant,
			Date:     date.AddDate(0, 0, 3),
			Amount:   6000 * growth,
			Kind:     ledger.KindIncome,
			Category: "services",
		})
		store.AddTransaction(ledger.Transaction{
			TenantID: DemoTenant,
			Date:     date,
			Amount:   22000 + 300*float64(m),
			Kind:     ledger.KindExpense,
			Category: "payroll",
		})
		store.AddTransaction(ledger.Transaction{
			TenantID: DemoTenant,
			Date:     date.AddDate(0, 0, 1),
			Amount:   4500,
			Kind:     ledger.KindExpense,
			Category: "infrastructure",
		})

		store.AddExpense(ledger.Expense{
			TenantID:  DemoTenant,
			Date:      date,
			Amount:    22000 + 300*float64(m),
			Category:  "payroll",
			Recurring: true,
		})
		store.AddExpense(ledger.Expense{
			TenantID:  DemoTenant,
			Date:      date.AddDate(0, 0, 1),
			Amount:    4500,
			Category:  "infrastructure",
			Recurring: true,
		})
		if m%3 == 0 {
			store.AddExpense(ledger.Expense{
				TenantID: DemoTenant,
				Date:     date.AddDate(0, 0, 7),
				Amount:   2800,
				Category: "marketing",
			})
		}
	}

	// Customers with distinct payment habits so behavior and credit risk
	// endpoints have something to chew on.
	customers := []struct {
		id       string
		invoices int
		amount   float64
		payDays  int  // how long they take to pay
		overdue  bool // leave the latest invoice overdue
	}{
		{"cus_acme", 12, 8500, 12, false},  // reliable, frequent: Champion
		{"cus_globex", 8, 15000, 28, true}, // big but slow payer
		{"cus_initech", 5, 3200, 45, true}, // habitually late
		{"cus_umbrella", 2, 6000, 10, false},
	}

	for _, c := range customers {
		for i := 0; i < c.invoices; i++ {
			issued := now.AddDate(0, -c.invoices+i, 2)
			due := issued.AddDate(0, 0, 30)
			inv := ledger.Invoice{
				TenantID:    DemoTenant,
				CustomerID:  c.id,
				IssueDate:   issued,
				DueDate:     due,
				TotalAmount: c.amount * (1 + 0.05*float64(i%3)),
				Status:      ledger.InvoicePaid,
			}
			paid := issued.AddDate(0, 0, c.payDays)
			inv.PaidDate = &paid

			// Most recent invoice may still be open
			if i == c.invoices-1 {
				inv.PaidDate = nil
				if c.overdue && due.Before(now) {
					inv.Status = ledger.InvoiceOverdue
				} else {
					inv.Status = ledger.InvoiceSent
				}
			}
			store.AddInvoice(inv)

			store.AddContact(ledger.ContactEvent{
				TenantID:   DemoTenant,
				CustomerID: c.id,
				OccurredAt: issued.AddDate(0, 0, -2),
				Channel:    "email",
			})
		}
	}

	// Budgets for the current quarter
	quarterStart := time.Date(now.Year(), ((now.Month()-1)/3)*3+1, 1, 0, 0, 0, 0, time.UTC)
	quarterEnd := quarterStart.AddDate(0, 3, 0).Add(-time.Second)
	for _, b := range []struct {
		category string
		amount   float64
		spent    float64
	}{
		{"payroll", 90000, 58000},
		{"infrastructure", 15000, 9200},
		{"marketing", 10000, 11400}, // over budget
	} {
		store.AddBudget(ledger.Budget{
			TenantID:    DemoTenant,
			Category:    b.category,
			Amount:      b.amount,
			Spent:       b.spent,
			PeriodStart: quarterStart,
			PeriodEnd:   quarterEnd,
		})
	}
}
