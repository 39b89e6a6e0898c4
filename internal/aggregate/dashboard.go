package aggregate

import (
	"context"
	"time"

	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/scope"
)

// GoalCounts counts goals by derived status.
type GoalCounts struct {
	Total      int `json:"total" yaml:"total"`
	Completed  int `json:"completed" yaml:"completed"`
	InProgress int `json:"in_progress" yaml:"in_progress"`
	Pending    int `json:"pending" yaml:"pending"`
}

// BudgetTotals sums every budget of a user.
type BudgetTotals struct {
	Total       int          `json:"total" yaml:"total"`
	TotalAmount models.Money `json:"total_amount" yaml:"total_amount"`
	TotalSpent  models.Money `json:"total_spent" yaml:"total_spent"`
	Remaining   models.Money `json:"remaining" yaml:"remaining"`
}

// AccountGroup sums the active accounts of one type.
type AccountGroup struct {
	Type         models.AccountType `json:"type" yaml:"type"`
	DisplayName  string             `json:"display_name" yaml:"display_name"`
	Count        int                `json:"count" yaml:"count"`
	TotalBalance models.Money       `json:"total_balance" yaml:"total_balance"`
}

// Dashboard is the overview of a user's finances for the current month.
type Dashboard struct {
	TotalBalance         models.Money      `json:"total_balance" yaml:"total_balance"`
	AccountsCount        int               `json:"accounts_count" yaml:"accounts_count"`
	MonthlyIncome        models.Money      `json:"monthly_income" yaml:"monthly_income"`
	MonthlyExpenses      models.Money      `json:"monthly_expenses" yaml:"monthly_expenses"`
	MonthlyNet           models.Money      `json:"monthly_net" yaml:"monthly_net"`
	RecentTransactions   []TransactionView `json:"recent_transactions" yaml:"recent_transactions"`
	GoalsSummary         GoalCounts        `json:"goals_summary" yaml:"goals_summary"`
	BudgetsSummary       BudgetTotals      `json:"budgets_summary" yaml:"budgets_summary"`
	TopExpenseCategories []CategoryTotal   `json:"top_expense_categories" yaml:"top_expense_categories"`
	AccountBreakdown     []AccountGroup    `json:"account_breakdown" yaml:"account_breakdown"`
	OrganizationsCount   int64             `json:"organizations_count" yaml:"organizations_count"`
	Period               Window            `json:"period" yaml:"period"`
}

// GoalSummary totals a user's goals.
type GoalSummary struct {
	PendingCount    int          `json:"pending_count" yaml:"pending_count"`
	InProgressCount int          `json:"in_progress_count" yaml:"in_progress_count"`
	CompletedCount  int          `json:"completed_count" yaml:"completed_count"`
	SavingsTotal    models.Money `json:"savings_total" yaml:"savings_total"`
	InvestmentTotal models.Money `json:"investment_total" yaml:"investment_total"`
	DebtTotal       models.Money `json:"debt_total" yaml:"debt_total"`
	TargetTotal     models.Money `json:"target_total" yaml:"target_total"`
	CurrentTotal    models.Money `json:"current_total" yaml:"current_total"`
	OverallProgress int          `json:"overall_progress" yaml:"overall_progress"`
}

// Dashboard builds the overview for userID. Monthly figures cover the
// user's own completed transactions dated on or after the first of the
// current month.
func (e *Engine) Dashboard(ctx context.Context, userID uint, today time.Time) (*Dashboard, error) {
	const op = "aggregate.Dashboard"

	today = dateutils.Day(today)
	monthStart := dateutils.StartOfMonth(today)
	db := e.db.WithContext(ctx)

	var accounts []models.Account
	if err := db.Scopes(scope.Accounts(userID)).Where("is_active = ?", true).Order("id").Find(&accounts).Error; err != nil {
		return nil, ledgererror.Store(op, "account", err)
	}

	var monthly []models.Transaction
	if err := db.Where("user_id = ? AND status = ? AND transaction_date >= ?", userID, models.StatusCompleted, monthStart).
		Find(&monthly).Error; err != nil {
		return nil, ledgererror.Store(op, "transaction", err)
	}

	var recent []models.Transaction
	if err := db.Where("user_id = ?", userID).
		Order("transaction_date DESC, id DESC").Limit(DefaultRecentTransactions).
		Find(&recent).Error; err != nil {
		return nil, ledgererror.Store(op, "transaction", err)
	}

	lookup, err := e.Lookup(ctx, append(append([]models.Transaction{}, monthly...), recent...))
	if err != nil {
		return nil, err
	}

	goals, err := e.goalCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	budgets, err := e.budgetTotals(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	orgs, err := scope.CountOrganizations(db, userID)
	if err != nil {
		return nil, ledgererror.Store(op, "organization", err)
	}

	income, expenses := SplitTotals(monthly)
	d := &Dashboard{
		AccountsCount:        len(accounts),
		MonthlyIncome:        models.Money(income),
		MonthlyExpenses:      models.Money(expenses),
		MonthlyNet:           models.Money(income - expenses),
		RecentTransactions:   Views(recent, lookup),
		GoalsSummary:         goals,
		BudgetsSummary:       budgets,
		TopExpenseCategories: ExpensesByCategory(monthly, lookup, DefaultTopCategories),
		AccountBreakdown:     GroupAccounts(accounts),
		OrganizationsCount:   orgs,
		Period:               NewWindow(monthStart, today),
	}
	for _, a := range accounts {
		d.TotalBalance += models.Money(a.BalanceCents)
	}

	e.log.Debug("Dashboard computed",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldCount, len(monthly)))
	return d, nil
}

// GroupAccounts sums accounts per type in the order savings, checking,
// investment, debt. Types without accounts are omitted.
func GroupAccounts(accounts []models.Account) []AccountGroup {
	groups := make([]AccountGroup, 0, len(models.AccountTypes))
	for _, accountType := range models.AccountTypes {
		g := AccountGroup{Type: accountType, DisplayName: accountType.DisplayName()}
		for _, a := range accounts {
			if a.Type == accountType {
				g.Count++
				g.TotalBalance += models.Money(a.BalanceCents)
			}
		}
		if g.Count > 0 {
			groups = append(groups, g)
		}
	}
	return groups
}

func (e *Engine) goalCounts(ctx context.Context, userID uint) (GoalCounts, error) {
	var goals []models.Goal
	if err := e.db.WithContext(ctx).Scopes(scope.Goals(userID)).Find(&goals).Error; err != nil {
		return GoalCounts{}, ledgererror.Store("aggregate.Dashboard", "goal", err)
	}
	counts := GoalCounts{Total: len(goals)}
	for _, g := range goals {
		switch g.Status() {
		case models.GoalCompleted:
			counts.Completed++
		case models.GoalInProgress:
			counts.InProgress++
		default:
			counts.Pending++
		}
	}
	return counts, nil
}

// budgetTotals covers the budgets userID owns, not organization budgets.
func (e *Engine) budgetTotals(ctx context.Context, userID uint, today time.Time) (BudgetTotals, error) {
	var budgets []models.Budget
	if err := e.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&budgets).Error; err != nil {
		return BudgetTotals{}, ledgererror.Store("aggregate.Dashboard", "budget", err)
	}
	totals := BudgetTotals{Total: len(budgets)}
	db := e.db.WithContext(ctx)
	for i := range budgets {
		m, err := budgetMetrics(db, &budgets[i], today)
		if err != nil {
			return BudgetTotals{}, err
		}
		totals.TotalAmount += models.Money(budgets[i].AmountCents)
		totals.TotalSpent += m.Spent
	}
	totals.Remaining = totals.TotalAmount - totals.TotalSpent
	return totals, nil
}

// GoalSummary totals the goals of userID by status and type.
func (e *Engine) GoalSummary(ctx context.Context, userID uint) (*GoalSummary, error) {
	var goals []models.Goal
	if err := e.db.WithContext(ctx).Scopes(scope.Goals(userID)).Find(&goals).Error; err != nil {
		return nil, ledgererror.Store("aggregate.GoalSummary", "goal", err)
	}

	s := &GoalSummary{}
	for _, g := range goals {
		switch g.Status() {
		case models.GoalCompleted:
			s.CompletedCount++
		case models.GoalInProgress:
			s.InProgressCount++
		default:
			s.PendingCount++
		}
		target := models.Money(g.TargetAmountCents)
		switch g.GoalType {
		case models.GoalSavings:
			s.SavingsTotal += target
		case models.GoalInvestment:
			s.InvestmentTotal += target
		case models.GoalDebt:
			s.DebtTotal += target
		}
		s.TargetTotal += target
		s.CurrentTotal += models.Money(g.CurrentAmountCents)
	}
	s.OverallProgress = models.Percentage(int64(s.CurrentTotal), int64(s.TargetTotal))
	return s, nil
}

// TotalBalance sums the balances of every account userID owns, active or not.
func (e *Engine) TotalBalance(ctx context.Context, userID uint) (models.Money, error) {
	q := e.db.WithContext(ctx).Model(&models.Account{}).Scopes(scope.Accounts(userID))
	var out struct{ Total int64 }
	if err := q.Select("CAST(COALESCE(SUM(balance_cents), 0) AS BIGINT) AS total").Scan(&out).Error; err != nil {
		return 0, ledgererror.Store("aggregate.TotalBalance", "account", err)
	}
	return models.Money(out.Total), nil
}
