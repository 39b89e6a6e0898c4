package aggregate

import (
	"context"
	"strings"
	"time"

	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/scope"
)

// PeriodAll selects every transaction regardless of date.
const PeriodAll = "all"

// DailyTotals is the activity of one calendar day.
type DailyTotals struct {
	Date     string       `json:"date" yaml:"date"`
	Income   models.Money `json:"income" yaml:"income"`
	Expenses models.Money `json:"expenses" yaml:"expenses"`
	Net      models.Money `json:"net" yaml:"net"`
}

// FinancialSummary is a user's own activity over one period window.
type FinancialSummary struct {
	Period            dateutils.Period `json:"period" yaml:"period"`
	StartDate         string           `json:"start_date" yaml:"start_date"`
	EndDate           string           `json:"end_date" yaml:"end_date"`
	TotalIncome       models.Money     `json:"total_income" yaml:"total_income"`
	TotalExpenses     models.Money     `json:"total_expenses" yaml:"total_expenses"`
	NetIncome         models.Money     `json:"net_income" yaml:"net_income"`
	DailyData         []DailyTotals    `json:"daily_data" yaml:"daily_data"`
	CategoryBreakdown []CategoryTotal  `json:"category_breakdown" yaml:"category_breakdown"`
}

// SummaryFilter selects the transactions of a TransactionSummary.
type SummaryFilter struct {
	// Period is week, month, quarter or year. Anything else, including
	// "all" and the empty string, removes the start bound.
	Period         string
	OrganizationID *uint
	ProjectID      *uint
}

// TransactionSummary is the activity visible to a user, optionally narrowed
// to one organization or project.
type TransactionSummary struct {
	Income               models.Money      `json:"income" yaml:"income"`
	Expenses             models.Money      `json:"expenses" yaml:"expenses"`
	Balance              models.Money      `json:"balance" yaml:"balance"`
	TopExpenseCategories []CategoryTotal   `json:"top_expense_categories" yaml:"top_expense_categories"`
	RecentTransactions   []TransactionView `json:"recent_transactions" yaml:"recent_transactions"`
	Period               string            `json:"period" yaml:"period"`
	StartDate            *string           `json:"start_date" yaml:"start_date"`
	EndDate              string            `json:"end_date" yaml:"end_date"`
}

// ResolvePeriod parses a period keyword, falling back to month.
func ResolvePeriod(keyword string) dateutils.Period {
	if p, ok := dateutils.ParsePeriod(keyword); ok {
		return p
	}
	return dateutils.PeriodMonth
}

// DailyBreakdown reports income, expenses and net for every day in
// [start, end], including days without activity.
func DailyBreakdown(txs []models.Transaction, start, end time.Time) []DailyTotals {
	type totals struct{ income, expenses int64 }
	byDay := map[string]totals{}
	for _, t := range txs {
		if t.Status != models.StatusCompleted {
			continue
		}
		key := dateutils.ToISODate(t.TransactionDate)
		day := byDay[key]
		switch t.Type {
		case models.TransactionIncoming:
			day.income += t.AmountCents
		case models.TransactionOutgoing:
			day.expenses += t.AmountCents
		}
		byDay[key] = day
	}

	days := dateutils.EachDay(start, end)
	out := make([]DailyTotals, 0, len(days))
	for _, d := range days {
		key := dateutils.ToISODate(d)
		day := byDay[key]
		out = append(out, DailyTotals{
			Date:     key,
			Income:   models.Money(day.income),
			Expenses: models.Money(day.expenses),
			Net:      models.Money(day.income - day.expenses),
		})
	}
	return out
}

// FinancialSummary summarises the user's own completed transactions dated
// in [period start, today]. An unknown period keyword means month.
func (e *Engine) FinancialSummary(ctx context.Context, userID uint, period string, today time.Time) (*FinancialSummary, error) {
	const op = "aggregate.FinancialSummary"

	p := ResolvePeriod(period)
	today = dateutils.Day(today)
	start := dateutils.PeriodStart(p, today)

	var txs []models.Transaction
	err := e.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.StatusCompleted).
		Where("transaction_date >= ? AND transaction_date <= ?", start, today).
		Order("transaction_date, id").
		Find(&txs).Error
	if err != nil {
		return nil, ledgererror.Store(op, "transaction", err)
	}
	lookup, err := e.Lookup(ctx, txs)
	if err != nil {
		return nil, err
	}

	income, expenses := SplitTotals(txs)
	e.log.Debug("Financial summary computed",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldPeriod, p),
		logging.F(logging.FieldCount, len(txs)))
	return &FinancialSummary{
		Period:            p,
		StartDate:         dateutils.ToISODate(start),
		EndDate:           dateutils.ToISODate(today),
		TotalIncome:       models.Money(income),
		TotalExpenses:     models.Money(expenses),
		NetIncome:         models.Money(income - expenses),
		DailyData:         DailyBreakdown(txs, start, today),
		CategoryBreakdown: ExpensesByCategory(txs, lookup, 0),
	}, nil
}

// TransactionSummary summarises the transactions visible to userID dated on
// or after the start of the requested period. There is no upper bound, so
// future-dated entries are included.
func (e *Engine) TransactionSummary(ctx context.Context, userID uint, f SummaryFilter, today time.Time) (*TransactionSummary, error) {
	const op = "aggregate.TransactionSummary"

	today = dateutils.Day(today)
	keyword := strings.ToLower(strings.TrimSpace(f.Period))
	if keyword == "" {
		keyword = string(dateutils.PeriodMonth)
	}

	q := e.db.WithContext(ctx).Model(&models.Transaction{}).Scopes(scope.Transactions(userID))
	var startDate *string
	if p, ok := dateutils.ParsePeriod(keyword); ok {
		start := dateutils.PeriodStart(p, today)
		q = q.Where("transaction_date >= ?", start)
		iso := dateutils.ToISODate(start)
		startDate = &iso
	}
	if f.OrganizationID != nil {
		q = q.Where("organization_id = ?", *f.OrganizationID)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}

	var txs []models.Transaction
	if err := q.Order("transaction_date DESC, id DESC").Find(&txs).Error; err != nil {
		return nil, ledgererror.Store(op, "transaction", err)
	}
	lookup, err := e.Lookup(ctx, txs)
	if err != nil {
		return nil, err
	}

	recent := txs
	if len(recent) > DefaultRecentTransactions {
		recent = recent[:DefaultRecentTransactions]
	}
	income, expenses := SplitTotals(txs)
	return &TransactionSummary{
		Income:               models.Money(income),
		Expenses:             models.Money(expenses),
		Balance:              models.Money(income - expenses),
		TopExpenseCategories: ExpensesByCategory(txs, lookup, DefaultTopCategories),
		RecentTransactions:   Views(recent, lookup),
		Period:               keyword,
		StartDate:            startDate,
		EndDate:              dateutils.ToISODate(today),
	}, nil
}
