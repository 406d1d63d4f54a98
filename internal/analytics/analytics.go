// Package analytics derives dashboard metrics and revenue series from the
// invoices of a single user.
package analytics

import (
	"context"
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/diewo77/invoice-desk/internal/apperr"
	"github.com/diewo77/invoice-desk/internal/models"
	"github.com/diewo77/invoice-desk/internal/store"
)

// InvoiceReader is the read side of the data-access layer.
type InvoiceReader interface {
	ListInvoices(ctx context.Context, owner uint, f store.InvoiceFilter) ([]models.Invoice, error)
}

// Period selects how revenue is bucketed.
type Period string

const (
	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// ParsePeriod maps the `period` query parameter. Empty means monthly.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", Monthly:
		return Monthly, nil
	case Yearly:
		return Yearly, nil
	}
	return "", apperr.InvalidField("period", "Must be one of: monthly, yearly")
}

// Key derives the bucket key of an invoice. Keys are year first and zero
// padded so that sorting them as strings sorts them chronologically.
func (p Period) Key(inv *models.Invoice) string {
	if p == Yearly {
		return inv.Issued().Format("2006")
	}
	return inv.Issued().Format("2006-01")
}

// Metrics is the dashboard summary.
type Metrics struct {
	TotalInvoices   int
	PaidInvoices    int
	PendingInvoices int
	TotalRevenue    decimal.Decimal
}

// RevenueBucket is the paid revenue of one period.
type RevenueBucket struct {
	Period  string
	Revenue decimal.Decimal
}

// Engine computes aggregates over the invoices of one owner.
type Engine struct {
	invoices InvoiceReader
}

func NewEngine(invoices InvoiceReader) *Engine {
	return &Engine{invoices: invoices}
}

// Metrics counts the owner's invoices and sums the revenue of paid ones.
// Pending covers both sent and overdue invoices.
func (e *Engine) Metrics(ctx context.Context, owner uint) (Metrics, error) {
	if owner == 0 {
		return Metrics{}, apperr.ErrUnauthenticated
	}
	invoices, err := e.invoices.ListInvoices(ctx, owner, store.InvoiceFilter{})
	if err != nil {
		return Metrics{}, err
	}
	m := Metrics{TotalInvoices: len(invoices), TotalRevenue: decimal.Zero}
	for i := range invoices {
		switch st := invoices[i].Status; {
		case st == models.InvoiceStatusPaid:
			m.PaidInvoices++
			m.TotalRevenue = m.TotalRevenue.Add(invoices[i].TotalAmount)
		case st.IsPending():
			m.PendingInvoices++
		}
	}
	return m, nil
}

// RevenueSeries sums paid revenue per period, in ascending period order.
// Periods without paid invoices are omitted.
func (e *Engine) RevenueSeries(ctx context.Context, owner uint, period Period) ([]RevenueBucket, error) {
	if owner == 0 {
		return nil, apperr.ErrUnauthenticated
	}
	if period != Monthly && period != Yearly {
		return nil, apperr.InvalidField("period", "Must be one of: monthly, yearly")
	}
	paid, err := e.invoices.ListInvoices(ctx, owner, store.InvoiceFilter{
		Statuses: []models.InvoiceStatus{models.InvoiceStatusPaid},
	})
	if err != nil {
		return nil, err
	}
	return Bucket(paid, period), nil
}

// Bucket groups paid invoices by period key. Non-paid invoices are ignored.
func Bucket(invoices []models.Invoice, period Period) []RevenueBucket {
	sums := map[string]decimal.Decimal{}
	for i := range invoices {
		if !invoices[i].IsPaid() {
			continue
		}
		key := period.Key(&invoices[i])
		sum, ok := sums[key]
		if !ok {
			sum = decimal.Zero
		}
		sums[key] = sum.Add(invoices[i].TotalAmount)
	}
	keys := lo.Keys(sums)
	slices.Sort(keys)
	return lo.Map(keys, func(k string, _ int) RevenueBucket {
		return RevenueBucket{Period: k, Revenue: sums[k]}
	})
}
