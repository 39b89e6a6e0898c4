package aggregate

import (
	"context"
	"time"

	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/scope"

	"gorm.io/gorm"
)

// BudgetMetrics is the consumption of a budget in its current period.
type BudgetMetrics struct {
	PeriodStart    string       `json:"period_start" yaml:"period_start"`
	Spent          models.Money `json:"spent" yaml:"spent"`
	Remaining      models.Money `json:"remaining" yaml:"remaining"`
	PercentageUsed int          `json:"percentage_used" yaml:"percentage_used"`
}

// BudgetView is a budget together with its current metrics.
type BudgetView struct {
	ID            uint         `json:"id" yaml:"id"`
	Title         string       `json:"title" yaml:"title"`
	Amount        models.Money `json:"amount" yaml:"amount"`
	Period        string       `json:"period" yaml:"period"`
	Category      string       `json:"category,omitempty" yaml:"category,omitempty"`
	BudgetMetrics `yaml:",inline"`
}

// BudgetSummary totals the budgets visible to a user.
type BudgetSummary struct {
	TotalBudget    models.Money `json:"total_budget" yaml:"total_budget"`
	TotalSpent     models.Money `json:"total_spent" yaml:"total_spent"`
	TotalRemaining models.Money `json:"total_remaining" yaml:"total_remaining"`
	PercentageUsed int          `json:"percentage_used" yaml:"percentage_used"`
	Budgets        []BudgetView `json:"budgets" yaml:"budgets"`
}

// ProjectMetrics is the consumption of a project budget over its lifetime.
type ProjectMetrics struct {
	ID               uint         `json:"id" yaml:"id"`
	Name             string       `json:"name" yaml:"name"`
	Budget           models.Money `json:"budget" yaml:"budget"`
	BudgetSpent      models.Money `json:"budget_spent" yaml:"budget_spent"`
	BudgetRemaining  models.Money `json:"budget_remaining" yaml:"budget_remaining"`
	BudgetPercentage int          `json:"budget_percentage" yaml:"budget_percentage"`
}

// BudgetFilter narrows a budget summary. Nil fields do not filter.
type BudgetFilter struct {
	OrganizationID *uint
	ProjectID      *uint
}

// BudgetPeriodStart returns the first day of the current instance of p:
// the most recent Monday, the first of the month, the first day of the
// quarter, or January 1st. Unknown periods are treated as yearly.
func BudgetPeriodStart(p models.BudgetPeriod, today time.Time) time.Time {
	switch p {
	case models.BudgetWeekly:
		return dateutils.StartOfWeek(today)
	case models.BudgetMonthly:
		return dateutils.StartOfMonth(today)
	case models.BudgetQuarterly:
		return dateutils.StartOfQuarter(today)
	default:
		return dateutils.StartOfYear(today)
	}
}

// BudgetMetrics computes spent, remaining and percentage used for b. Spent
// is the sum of the budget owner's completed outgoing transactions dated in
// [period start, today], narrowed by the budget's category, project and
// organization when set.
func (e *Engine) BudgetMetrics(ctx context.Context, b *models.Budget, today time.Time) (BudgetMetrics, error) {
	return budgetMetrics(e.db.WithContext(ctx), b, today)
}

func budgetMetrics(db *gorm.DB, b *models.Budget, today time.Time) (BudgetMetrics, error) {
	today = dateutils.Day(today)
	start := BudgetPeriodStart(b.Period, today)

	q := db.Model(&models.Transaction{}).
		Where("user_id = ? AND type = ? AND status = ?", b.UserID, models.TransactionOutgoing, models.StatusCompleted).
		Where("transaction_date >= ? AND transaction_date <= ?", start, today)
	if b.CategoryID != nil {
		q = q.Where("category_id = ?", *b.CategoryID)
	}
	if b.ProjectID != nil {
		q = q.Where("project_id = ?", *b.ProjectID)
	}
	if b.OrganizationID != nil {
		q = q.Where("organization_id = ?", *b.OrganizationID)
	}

	spent, err := sumCents(q)
	if err != nil {
		return BudgetMetrics{}, ledgererror.Store("aggregate.BudgetMetrics", "budget", err)
	}
	return BudgetMetrics{
		PeriodStart:    dateutils.ToISODate(start),
		Spent:          models.Money(spent),
		Remaining:      models.Money(b.AmountCents - spent),
		PercentageUsed: models.Percentage(spent, b.AmountCents),
	}, nil
}

// BudgetViews computes metrics for every budget in budgets.
func (e *Engine) BudgetViews(ctx context.Context, budgets []models.Budget, today time.Time) ([]BudgetView, error) {
	db := e.db.WithContext(ctx)

	var categoryIDs []uint
	for _, b := range budgets {
		if b.CategoryID != nil {
			categoryIDs = append(categoryIDs, *b.CategoryID)
		}
	}
	var categories []models.Category
	if err := findByIDs(db, categoryIDs, &categories); err != nil {
		return nil, ledgererror.Store("aggregate.BudgetViews", "category", err)
	}
	lookup := NewLookup(categories, nil, nil, nil)

	views := make([]BudgetView, 0, len(budgets))
	for i := range budgets {
		b := &budgets[i]
		metrics, err := budgetMetrics(db, b, today)
		if err != nil {
			return nil, err
		}
		views = append(views, BudgetView{
			ID:            b.ID,
			Title:         b.Title,
			Amount:        models.Money(b.AmountCents),
			Period:        b.Period.DisplayName(),
			Category:      lookup.CategoryName(b.CategoryID),
			BudgetMetrics: metrics,
		})
	}
	return views, nil
}

// VisibleBudgets lists the budgets userID can see, narrowed by f, ordered by id.
func (e *Engine) VisibleBudgets(ctx context.Context, userID uint, f BudgetFilter) ([]models.Budget, error) {
	q := e.db.WithContext(ctx).Scopes(scope.Budgets(userID))
	if f.OrganizationID != nil {
		q = q.Where("organization_id = ?", *f.OrganizationID)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	var budgets []models.Budget
	if err := q.Order("id").Find(&budgets).Error; err != nil {
		return nil, ledgererror.Store("aggregate.VisibleBudgets", "budget", err)
	}
	return budgets, nil
}

// BudgetSummary totals the budgets visible to userID.
func (e *Engine) BudgetSummary(ctx context.Context, userID uint, f BudgetFilter, today time.Time) (*BudgetSummary, error) {
	budgets, err := e.VisibleBudgets(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	views, err := e.BudgetViews(ctx, budgets, today)
	if err != nil {
		return nil, err
	}

	summary := &BudgetSummary{Budgets: views}
	for _, v := range views {
		summary.TotalBudget += v.Amount
		summary.TotalSpent += v.Spent
		summary.TotalRemaining += v.Remaining
	}
	summary.PercentageUsed = models.Percentage(int64(summary.TotalSpent), int64(summary.TotalBudget))

	e.log.Debug("Budget summary computed",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldCount, len(views)))
	return summary, nil
}

// ProjectMetrics computes the budget consumption of a project: the sum of
// every completed outgoing transaction tagged to it, whoever recorded it.
func (e *Engine) ProjectMetrics(ctx context.Context, p *models.Project) (ProjectMetrics, error) {
	q := e.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("project_id = ? AND type = ? AND status = ?", p.ID, models.TransactionOutgoing, models.StatusCompleted)
	spent, err := sumCents(q)
	if err != nil {
		return ProjectMetrics{}, ledgererror.Store("aggregate.ProjectMetrics", "project", err)
	}
	return ProjectMetrics{
		ID:               p.ID,
		Name:             p.Name,
		Budget:           models.Money(p.BudgetCents),
		BudgetSpent:      models.Money(spent),
		BudgetRemaining:  models.Money(p.BudgetCents - spent),
		BudgetPercentage: models.Percentage(spent, p.BudgetCents),
	}, nil
}
