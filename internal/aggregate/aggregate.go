// Package aggregate derives read-only figures from the ledger: budget and
// project consumption, dashboards, period summaries and the building blocks
// the report recipes share.
//
// Nothing here is cached or written back. Every call recomputes from the
// current store state, and every period window is computed from a caller
// supplied today so results are deterministic.
package aggregate

import (
	"sort"
	"time"

	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"

	"gorm.io/gorm"
)

// DefaultTopCategories is the number of expense categories dashboards and
// summaries list.
const DefaultTopCategories = 5

// DefaultRecentTransactions is the number of transactions listed as recent.
const DefaultRecentTransactions = 5

// sumAmount sums amount_cents as an integer on every supported driver.
const sumAmount = "CAST(COALESCE(SUM(amount_cents), 0) AS BIGINT) AS total"

// Engine computes derived figures for a user.
type Engine struct {
	db  *gorm.DB
	log logging.Logger
}

// NewEngine creates an aggregation engine.
func NewEngine(db *gorm.DB, log logging.Logger) *Engine {
	return &Engine{db: db, log: log}
}

// Window is an inclusive date range rendered as ISO dates.
type Window struct {
	StartDate string `json:"start_date" yaml:"start_date"`
	EndDate   string `json:"end_date" yaml:"end_date"`
}

// NewWindow builds a Window from two days.
func NewWindow(start, end time.Time) Window {
	return Window{StartDate: dateutils.ToISODate(start), EndDate: dateutils.ToISODate(end)}
}

// CategoryTotal is the summed amount of one expense category.
type CategoryTotal struct {
	Category string       `json:"category" yaml:"category"`
	Amount   models.Money `json:"amount" yaml:"amount"`
}

// DateTotal is the summed amount of one calendar day.
type DateTotal struct {
	Date   string       `json:"date" yaml:"date"`
	Amount models.Money `json:"amount" yaml:"amount"`
}

// TransactionView is a transaction with its references resolved to names.
type TransactionView struct {
	ID           uint                     `json:"id" yaml:"id"`
	Date         string                   `json:"date" yaml:"date"`
	Title        string                   `json:"title" yaml:"title"`
	Amount       models.Money             `json:"amount" yaml:"amount"`
	Type         models.TransactionType   `json:"type" yaml:"type"`
	Status       models.TransactionStatus `json:"status" yaml:"status"`
	Category     string                   `json:"category,omitempty" yaml:"category,omitempty"`
	Account      string                   `json:"account" yaml:"account"`
	Destination  string                   `json:"destination_account,omitempty" yaml:"destination_account,omitempty"`
	Organization string                   `json:"organization,omitempty" yaml:"organization,omitempty"`
	Project      string                   `json:"project,omitempty" yaml:"project,omitempty"`
	Reference    string                   `json:"reference,omitempty" yaml:"reference,omitempty"`
	Description  string                   `json:"description,omitempty" yaml:"description,omitempty"`
}

// SplitTotals sums completed incoming and completed outgoing amounts.
// Transfers and non-completed transactions count toward neither.
func SplitTotals(txs []models.Transaction) (income, expenses int64) {
	for _, t := range txs {
		if t.Status != models.StatusCompleted {
			continue
		}
		switch t.Type {
		case models.TransactionIncoming:
			income += t.AmountCents
		case models.TransactionOutgoing:
			expenses += t.AmountCents
		}
	}
	return income, expenses
}

// Expenses returns the completed outgoing transactions of txs.
func Expenses(txs []models.Transaction) []models.Transaction {
	var out []models.Transaction
	for _, t := range txs {
		if t.Status == models.StatusCompleted && t.Type == models.TransactionOutgoing {
			out = append(out, t)
		}
	}
	return out
}

// ExpensesByCategory groups completed outgoing amounts by category name,
// largest total first. Transactions without a category are grouped under
// models.CategoryUncategorized. A limit of zero or less keeps every group.
func ExpensesByCategory(txs []models.Transaction, lookup Lookup, limit int) []CategoryTotal {
	totals := map[string]int64{}
	for _, t := range Expenses(txs) {
		name := lookup.CategoryName(t.CategoryID)
		if name == "" {
			name = models.CategoryUncategorized
		}
		totals[name] += t.AmountCents
	}

	out := make([]CategoryTotal, 0, len(totals))
	for name, cents := range totals {
		out = append(out, CategoryTotal{Category: name, Amount: models.Money(cents)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		return out[i].Category < out[j].Category
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ExpensesByDate sums completed outgoing amounts per transaction date in
// ascending date order.
func ExpensesByDate(txs []models.Transaction) []DateTotal {
	totals := map[string]int64{}
	for _, t := range Expenses(txs) {
		totals[dateutils.ToISODate(t.TransactionDate)] += t.AmountCents
	}
	out := make([]DateTotal, 0, len(totals))
	for date, cents := range totals {
		out = append(out, DateTotal{Date: date, Amount: models.Money(cents)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Views resolves txs into display rows, keeping their order.
func Views(txs []models.Transaction, lookup Lookup) []TransactionView {
	out := make([]TransactionView, 0, len(txs))
	for _, t := range txs {
		out = append(out, lookup.View(t))
	}
	return out
}

// SortByDate orders txs by transaction date, then id.
func SortByDate(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].TransactionDate.Equal(txs[j].TransactionDate) {
			return txs[i].TransactionDate.Before(txs[j].TransactionDate)
		}
		return txs[i].ID < txs[j].ID
	})
}

// sumCents runs a SUM(amount_cents) over q.
func sumCents(q *gorm.DB) (int64, error) {
	var out struct{ Total int64 }
	if err := q.Select(sumAmount).Scan(&out).Error; err != nil {
		return 0, err
	}
	return out.Total, nil
}
