package aggregate

import (
	"context"
	"testing"
	"time"

	"fjacquet/fintrack/internal/database"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/scope"
	"fjacquet/fintrack/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Wednesday
var today = time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db     *gorm.DB
	store  *store.Store
	orgs   *scope.Service
	engine *Engine
	user   uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.OpenInMemory(t.Name(), logging.NewMockLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	log := logging.NewMockLogger()
	f := &fixture{
		db:     db,
		store:  store.New(db, log),
		orgs:   scope.NewService(db, log),
		engine: NewEngine(db, log),
	}
	f.user = f.newUser(t, "alice")
	return f
}

func (f *fixture) newUser(t *testing.T, name string) uint {
	t.Helper()
	u, err := f.store.CreateUser(context.Background(), name, "")
	require.NoError(t, err)
	return u.ID
}

func (f *fixture) account(t *testing.T, userID uint, title string, accountType models.AccountType, balance string) uint {
	t.Helper()
	acc, err := f.store.CreateAccount(context.Background(), userID, store.NewAccount{
		Title: title, Type: accountType, OpeningBalance: decimal.RequireFromString(balance),
	})
	require.NoError(t, err)
	return acc.ID
}

func (f *fixture) category(t *testing.T, userID uint, name string, taxDeductible bool) uint {
	t.Helper()
	c, err := f.store.CreateCategory(context.Background(), userID, store.NewCategory{Name: name, IsTaxDeductible: taxDeductible})
	require.NoError(t, err)
	return c.ID
}

// entry inserts a transaction row directly; balances are not touched.
type entry struct {
	user     uint
	account  uint
	title    string
	cents    int64
	txType   models.TransactionType
	status   models.TransactionStatus
	date     time.Time
	category *uint
	org      *uint
	project  *uint
}

func (f *fixture) record(t *testing.T, e entry) models.Transaction {
	t.Helper()
	if e.status == "" {
		e.status = models.StatusCompleted
	}
	if e.title == "" {
		e.title = "entry"
	}
	tx := models.Transaction{
		UserID: e.user, AccountID: e.account, Title: e.title, AmountCents: e.cents,
		Type: e.txType, Status: e.status, TransactionDate: e.date, CategoryID: e.category,
		OrganizationID: e.org, ProjectID: e.project, RecurrenceType: models.RecurrenceNone,
	}
	require.NoError(t, f.db.Create(&tx).Error)
	return tx
}

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

func TestBudgetPeriodStart(t *testing.T) {
	tests := []struct {
		name   string
		period models.BudgetPeriod
		today  time.Time
		want   time.Time
	}{
		{"weekly on wednesday", models.BudgetWeekly, today, day(time.May, 13)},
		{"weekly on monday", models.BudgetWeekly, day(time.May, 13), day(time.May, 13)},
		{"weekly on sunday", models.BudgetWeekly, day(time.May, 19), day(time.May, 13)},
		{"monthly", models.BudgetMonthly, today, day(time.May, 1)},
		{"quarterly second quarter", models.BudgetQuarterly, today, day(time.April, 1)},
		{"quarterly last day of year", models.BudgetQuarterly, day(time.December, 31), day(time.October, 1)},
		{"yearly", models.BudgetYearly, today, day(time.January, 1)},
		{"unknown behaves as yearly", models.BudgetPeriod("daily"), today, day(time.January, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BudgetPeriodStart(tt.period, tt.today))
		})
	}
}

func TestBudgetMetrics_Scenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.newUser(t, "bob")
	acc := f.account(t, f.user, "Main", models.AccountChecking, "0")
	bobAcc := f.account(t, bob, "Bob", models.AccountChecking, "0")
	food := f.category(t, f.user, "Food", false)
	rent := f.category(t, f.user, "Rent", false)

	f.record(t, entry{user: f.user, account: acc, cents: 12050, txType: models.TransactionOutgoing, date: day(time.May, 3), category: &food})
	f.record(t, entry{user: f.user, account: acc, cents: 8500, txType: models.TransactionOutgoing, date: today, category: &food})
	// excluded: pending, incoming, other category, previous month, future, other user
	f.record(t, entry{user: f.user, account: acc, cents: 1000, txType: models.TransactionOutgoing, status: models.StatusPending, date: day(time.May, 4), category: &food})
	f.record(t, entry{user: f.user, account: acc, cents: 1000, txType: models.TransactionIncoming, date: day(time.May, 4), category: &food})
	f.record(t, entry{user: f.user, account: acc, cents: 1000, txType: models.TransactionOutgoing, date: day(time.May, 4), category: &rent})
	f.record(t, entry{user: f.user, account: acc, cents: 1000, txType: models.TransactionOutgoing, date: day(time.April, 30), category: &food})
	f.record(t, entry{user: f.user, account: acc, cents: 1000, txType: models.TransactionOutgoing, date: day(time.May, 16), category: &food})
	f.record(t, entry{user: bob, account: bobAcc, cents: 1000, txType: models.TransactionOutgoing, date: day(time.May, 4), category: &food})

	budget, err := f.store.CreateBudget(ctx, f.user, store.NewBudget{
		Title: "Groceries", Amount: decimal.RequireFromString("500.00"), Period: models.BudgetMonthly,
		StartDate: day(time.January, 1), CategoryID: &food,
	})
	require.NoError(t, err)

	m, err := f.engine.BudgetMetrics(ctx, budget, today)
	require.NoError(t, err)
	assert.Equal(t, "205.50", m.Spent.String())
	assert.Equal(t, "294.50", m.Remaining.String())
	assert.Equal(t, 41, m.PercentageUsed)
	assert.Equal(t, "2024-05-01", m.PeriodStart)
}

func TestBudgetMetrics_PercentageBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.account(t, f.user, "Main", models.AccountChecking, "0")
	f.record(t, entry{user: f.user, account: acc, cents: 90000, txType: models.TransactionOutgoing, date: today})

	overspent := &models.Budget{UserID: f.user, AmountCents: 50000, Period: models.BudgetWeekly}
	m, err := f.engine.BudgetMetrics(ctx, overspent, today)
	require.NoError(t, err)
	assert.Equal(t, 100, m.PercentageUsed)
	assert.Equal(t, "-400.00", m.Remaining.String())

	empty := &models.Budget{UserID: f.user, AmountCents: 0, Period: models.BudgetYearly}
	m, err = f.engine.BudgetMetrics(ctx, empty, today)
	require.NoError(t, err)
	assert.Equal(t, 0, m.PercentageUsed)
	assert.Equal(t, "900.00", m.Spent.String())
}

func TestBudgetSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.newUser(t, "member")
	org, err := f.orgs.CreateOrganization(ctx, f.user, scope.NewOrganization{Name: "Acme"})
	require.NoError(t, err)
	_, err = f.orgs.AddMember(ctx, f.user, org.ID, member, models.RoleViewer)
	require.NoError(t, err)
	acc := f.account(t, f.user, "Main", models.AccountChecking, "0")
	f.record(t, entry{user: f.user, account: acc, cents: 30000, txType: models.TransactionOutgoing, date: today, org: &org.ID})

	_, err = f.store.CreateBudget(ctx, f.user, store.NewBudget{Title: "Org", Amount: decimal.NewFromInt(1000), OrganizationID: &org.ID})
	require.NoError(t, err)
	_, err = f.store.CreateBudget(ctx, f.user, store.NewBudget{Title: "Personal", Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)

	own, err := f.engine.BudgetSummary(ctx, f.user, BudgetFilter{}, today)
	require.NoError(t, err)
	require.Len(t, own.Budgets, 2)
	assert.Equal(t, "1500.00", own.TotalBudget.String())
	assert.Equal(t, "600.00", own.TotalSpent.String())
	assert.Equal(t, "900.00", own.TotalRemaining.String())
	assert.Equal(t, 40, own.PercentageUsed)
	assert.Equal(t, "Monthly", own.Budgets[0].Period)

	shared, err := f.engine.BudgetSummary(ctx, member, BudgetFilter{}, today)
	require.NoError(t, err)
	require.Len(t, shared.Budgets, 1)
	assert.Equal(t, "Org", shared.Budgets[0].Title)
	assert.Equal(t, 30, shared.Budgets[0].PercentageUsed)

	filtered, err := f.engine.BudgetSummary(ctx, f.user, BudgetFilter{OrganizationID: &org.ID}, today)
	require.NoError(t, err)
	assert.Len(t, filtered.Budgets, 1)

	stranger := f.newUser(t, "stranger")
	none, err := f.engine.BudgetSummary(ctx, stranger, BudgetFilter{}, today)
	require.NoError(t, err)
	assert.Empty(t, none.Budgets)
	assert.Equal(t, 0, none.PercentageUsed)
}

func TestProjectMetrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	org, err := f.orgs.CreateOrganization(ctx, f.user, scope.NewOrganization{Name: "Acme"})
	require.NoError(t, err)
	project, err := f.orgs.CreateProject(ctx, f.user, scope.NewProject{OrganizationID: org.ID, Name: "Launch", BudgetCents: 200000})
	require.NoError(t, err)
	acc := f.account(t, f.user, "Main", models.AccountChecking, "0")

	f.record(t, entry{user: f.user, account: acc, cents: 50000, txType: models.TransactionOutgoing, date: day(time.January, 2), project: &project.ID})
	f.record(t, entry{user: f.user, account: acc, cents: 25050, txType: models.TransactionOutgoing, date: today, project: &project.ID})
	f.record(t, entry{user: f.user, account: acc, cents: 99900, txType: models.TransactionIncoming, date: today, project: &project.ID})
	f.record(t, entry{user: f.user, account: acc, cents: 99900, txType: models.TransactionOutgoing, status: models.StatusFailed, date: today, project: &project.ID})

	m, err := f.engine.ProjectMetrics(ctx, project)
	require.NoError(t, err)
	assert.Equal(t, "Launch", m.Name)
	assert.Equal(t, "2000.00", m.Budget.String())
	assert.Equal(t, "750.50", m.BudgetSpent.String())
	assert.Equal(t, "1249.50", m.BudgetRemaining.String())
	assert.Equal(t, 38, m.BudgetPercentage)
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	checking := f.account(t, f.user, "Checking", models.AccountChecking, "1000.00")
	savings := f.account(t, f.user, "Savings", models.AccountSavings, "5000.00")
	f.account(t, f.user, "Second checking", models.AccountChecking, "250.00")
	closed := f.account(t, f.user, "Closed", models.AccountDebt, "-300.00")
	_, err := f.store.DeactivateAccount(ctx, f.user, closed)
	require.NoError(t, err)
	food := f.category(t, f.user, "Food", false)
	travel := f.category(t, f.user, "Travel", false)

	f.record(t, entry{user: f.user, account: checking, title: "Salary", cents: 300000, txType: models.TransactionIncoming, date: day(time.May, 1)})
	f.record(t, entry{user: f.user, account: checking, title: "Lunch", cents: 2500, txType: models.TransactionOutgoing, date: day(time.May, 2), category: &food})
	f.record(t, entry{user: f.user, account: checking, title: "Flight", cents: 40000, txType: models.TransactionOutgoing, date: day(time.May, 10), category: &travel})
	f.record(t, entry{user: f.user, account: checking, title: "Cash", cents: 1000, txType: models.TransactionOutgoing, date: day(time.May, 11)})
	f.record(t, entry{user: f.user, account: checking, title: "Pending", cents: 7000, txType: models.TransactionOutgoing, status: models.StatusPending, date: day(time.May, 14)})
	f.record(t, entry{user: f.user, account: checking, title: "April", cents: 9900, txType: models.TransactionOutgoing, date: day(time.April, 20)})
	f.record(t, entry{user: f.user, account: savings, title: "Interest", cents: 500, txType: models.TransactionIncoming, date: day(time.May, 20)})

	_, err = f.store.CreateGoal(ctx, f.user, store.NewGoal{Title: "Done", TargetAmount: decimal.NewFromInt(10), CurrentAmount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = f.store.CreateGoal(ctx, f.user, store.NewGoal{Title: "Half", TargetAmount: decimal.NewFromInt(10), CurrentAmount: decimal.NewFromInt(5)})
	require.NoError(t, err)
	_, err = f.store.CreateGoal(ctx, f.user, store.NewGoal{Title: "New", TargetAmount: decimal.NewFromInt(10)})
	require.NoError(t, err)
	_, err = f.store.CreateBudget(ctx, f.user, store.NewBudget{Title: "Food", Amount: decimal.NewFromInt(100), CategoryID: &food})
	require.NoError(t, err)
	_, err = f.orgs.CreateOrganization(ctx, f.user, scope.NewOrganization{Name: "Acme"})
	require.NoError(t, err)

	d, err := f.engine.Dashboard(ctx, f.user, today)
	require.NoError(t, err)

	assert.Equal(t, "6250.00", d.TotalBalance.String())
	assert.Equal(t, 3, d.AccountsCount)
	assert.Equal(t, "3005.00", d.MonthlyIncome.String())
	assert.Equal(t, "435.00", d.MonthlyExpenses.String())
	assert.Equal(t, "2570.00", d.MonthlyNet.String())

	require.Len(t, d.RecentTransactions, 5)
	assert.Equal(t, "Interest", d.RecentTransactions[0].Title)
	assert.Equal(t, "Pending", d.RecentTransactions[1].Title)
	assert.Equal(t, "Checking", d.RecentTransactions[1].Account)
	assert.Equal(t, "Lunch", d.RecentTransactions[4].Title)
	assert.Equal(t, "Food", d.RecentTransactions[4].Category)

	assert.Equal(t, GoalCounts{Total: 3, Completed: 1, InProgress: 1, Pending: 1}, d.GoalsSummary)
	assert.Equal(t, 1, d.BudgetsSummary.Total)
	assert.Equal(t, "25.00", d.BudgetsSummary.TotalSpent.String())
	assert.Equal(t, "75.00", d.BudgetsSummary.Remaining.String())

	assert.Equal(t, []CategoryTotal{
		{Category: "Travel", Amount: 40000},
		{Category: "Food", Amount: 2500},
		{Category: models.CategoryUncategorized, Amount: 1000},
	}, d.TopExpenseCategories)

	require.Len(t, d.AccountBreakdown, 2)
	assert.Equal(t, AccountGroup{Type: models.AccountSavings, DisplayName: "Savings", Count: 1, TotalBalance: 500000}, d.AccountBreakdown[0])
	assert.Equal(t, models.AccountChecking, d.AccountBreakdown[1].Type)
	assert.Equal(t, 2, d.AccountBreakdown[1].Count)
	assert.Equal(t, "1250.00", d.AccountBreakdown[1].TotalBalance.String())

	assert.Equal(t, int64(1), d.OrganizationsCount)
	assert.Equal(t, Window{StartDate: "2024-05-01", EndDate: "2024-05-15"}, d.Period)
}

func TestDashboard_EmptyUser(t *testing.T) {
	f := newFixture(t)
	d, err := f.engine.Dashboard(context.Background(), f.user, today)
	require.NoError(t, err)
	assert.Equal(t, models.Money(0), d.TotalBalance)
	assert.Empty(t, d.RecentTransactions)
	assert.Empty(t, d.TopExpenseCategories)
	assert.Empty(t, d.AccountBreakdown)
	assert.Equal(t, GoalCounts{}, d.GoalsSummary)
}

func TestFinancialSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.account(t, f.user, "Main", models.AccountChecking, "0")
	food := f.category(t, f.user, "Food", false)
	rent := f.category(t, f.user, "Rent", false)

	f.record(t, entry{user: f.user, account: acc, cents: 100000, txType: models.TransactionIncoming, date: day(time.May, 13)})
	f.record(t, entry{user: f.user, account: acc, cents: 2000, txType: models.TransactionOutgoing, date: day(time.May, 13), category: &food})
	f.record(t, entry{user: f.user, account: acc, cents: 3000, txType: models.TransactionOutgoing, date: day(time.May, 15), category: &food})
	f.record(t, entry{user: f.user, account: acc, cents: 80000, txType: models.TransactionOutgoing, date: day(time.May, 2), category: &rent})
	f.record(t, entry{user: f.user, account: acc, cents: 700, txType: models.TransactionOutgoing, status: models.StatusPending, date: day(time.May, 14)})
	f.record(t, entry{user: f.user, account: acc, cents: 700, txType: models.TransactionOutgoing, date: day(time.May, 16)})

	week, err := f.engine.FinancialSummary(ctx, f.user, "week", today)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-13", week.StartDate)
	assert.Equal(t, "2024-05-15", week.EndDate)
	assert.Equal(t, "1000.00", week.TotalIncome.String())
	assert.Equal(t, "50.00", week.TotalExpenses.String())
	assert.Equal(t, "950.00", week.NetIncome.String())
	assert.Equal(t, []DailyTotals{
		{Date: "2024-05-13", Income: 100000, Expenses: 2000, Net: 98000},
		{Date: "2024-05-14"},
		{Date: "2024-05-15", Expenses: 3000, Net: -3000},
	}, week.DailyData)
	assert.Equal(t, []CategoryTotal{{Category: "Food", Amount: 5000}}, week.CategoryBreakdown)

	month, err := f.engine.FinancialSummary(ctx, f.user, "bogus", today)
	require.NoError(t, err)
	assert.Equal(t, "month", string(month.Period))
	assert.Len(t, month.DailyData, 15)
	assert.Equal(t, "850.00", month.TotalExpenses.String())
	require.Len(t, month.CategoryBreakdown, 2)
	assert.Equal(t, "Rent", month.CategoryBreakdown[0].Category)
	assert.Equal(t, "Food", month.CategoryBreakdown[1].Category)
}

func TestTransactionSummary_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.newUser(t, "member")
	outsider := f.newUser(t, "outsider")
	org, err := f.orgs.CreateOrganization(ctx, f.user, scope.NewOrganization{Name: "Acme"})
	require.NoError(t, err)
	_, err = f.orgs.AddMember(ctx, f.user, org.ID, member, models.RoleAccountant)
	require.NoError(t, err)

	acc := f.account(t, f.user, "Ops", models.AccountChecking, "0")
	memberAcc := f.account(t, member, "Own", models.AccountChecking, "0")
	f.record(t, entry{user: f.user, account: acc, title: "Invoice", cents: 50000, txType: models.TransactionIncoming, date: day(time.May, 3), org: &org.ID})
	f.record(t, entry{user: f.user, account: acc, title: "Private", cents: 9999, txType: models.TransactionOutgoing, date: day(time.May, 4)})
	f.record(t, entry{user: member, account: memberAcc, title: "Coffee", cents: 400, txType: models.TransactionOutgoing, date: day(time.May, 5)})
	f.record(t, entry{user: f.user, account: acc, title: "Old", cents: 100, txType: models.TransactionIncoming, date: day(time.January, 5), org: &org.ID})
	f.record(t, entry{user: f.user, account: acc, title: "Future", cents: 100, txType: models.TransactionIncoming, date: day(time.June, 5), org: &org.ID})

	s, err := f.engine.TransactionSummary(ctx, member, SummaryFilter{Period: "month"}, today)
	require.NoError(t, err)
	assert.Equal(t, "501.00", s.Income.String())
	assert.Equal(t, "4.00", s.Expenses.String())
	assert.Equal(t, "497.00", s.Balance.String())
	require.NotNil(t, s.StartDate)
	assert.Equal(t, "2024-05-01", *s.StartDate)
	titles := make([]string, 0, len(s.RecentTransactions))
	for _, v := range s.RecentTransactions {
		titles = append(titles, v.Title)
	}
	assert.Equal(t, []string{"Future", "Coffee", "Invoice"}, titles)
	assert.Equal(t, "Ops", s.RecentTransactions[2].Account)
	assert.Equal(t, "Acme", s.RecentTransactions[2].Organization)

	all, err := f.engine.TransactionSummary(ctx, member, SummaryFilter{Period: "all", OrganizationID: &org.ID}, today)
	require.NoError(t, err)
	assert.Nil(t, all.StartDate)
	assert.Equal(t, "all", all.Period)
	assert.Equal(t, "502.00", all.Income.String())
	assert.Len(t, all.RecentTransactions, 3)

	none, err := f.engine.TransactionSummary(ctx, outsider, SummaryFilter{Period: "year"}, today)
	require.NoError(t, err)
	assert.Empty(t, none.RecentTransactions)
	assert.Equal(t, "0.00", none.Income.String())
}

func TestGoalSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	goals := []store.NewGoal{
		{Title: "Fund", GoalType: models.GoalSavings, TargetAmount: decimal.NewFromInt(1000), CurrentAmount: decimal.NewFromInt(250)},
		{Title: "Stocks", GoalType: models.GoalInvestment, TargetAmount: decimal.NewFromInt(2000)},
		{Title: "Loan", GoalType: models.GoalDebt, TargetAmount: decimal.NewFromInt(500), CurrentAmount: decimal.NewFromInt(900)},
	}
	for _, g := range goals {
		_, err := f.store.CreateGoal(ctx, f.user, g)
		require.NoError(t, err)
	}

	s, err := f.engine.GoalSummary(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, 1, s.PendingCount)
	assert.Equal(t, 1, s.InProgressCount)
	assert.Equal(t, 1, s.CompletedCount)
	assert.Equal(t, "1000.00", s.SavingsTotal.String())
	assert.Equal(t, "2000.00", s.InvestmentTotal.String())
	assert.Equal(t, "500.00", s.DebtTotal.String())
	assert.Equal(t, "3500.00", s.TargetTotal.String())
	assert.Equal(t, "1150.00", s.CurrentTotal.String())
	assert.Equal(t, 33, s.OverallProgress)
}

func TestTotalBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.account(t, f.user, "A", models.AccountChecking, "100.10")
	inactive := f.account(t, f.user, "B", models.AccountDebt, "-40.05")
	_, err := f.store.DeactivateAccount(ctx, f.user, inactive)
	require.NoError(t, err)
	bob := f.newUser(t, "bob")
	f.account(t, bob, "C", models.AccountSavings, "999")

	total, err := f.engine.TotalBalance(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, "60.05", total.String())

	total, err = f.engine.TotalBalance(ctx, f.newUser(t, "nobody"))
	require.NoError(t, err)
	assert.Equal(t, "0.00", total.String())
}

func TestExpensesByCategory(t *testing.T) {
	food, rent := uint(1), uint(2)
	lookup := NewLookup([]models.Category{{ID: food, Name: "Food"}, {ID: rent, Name: "Rent"}}, nil, nil, nil)
	txs := []models.Transaction{
		{AmountCents: 500, Type: models.TransactionOutgoing, Status: models.StatusCompleted, CategoryID: &food},
		{AmountCents: 700, Type: models.TransactionOutgoing, Status: models.StatusCompleted, CategoryID: &food},
		{AmountCents: 1200, Type: models.TransactionOutgoing, Status: models.StatusCompleted, CategoryID: &rent},
		{AmountCents: 300, Type: models.TransactionOutgoing, Status: models.StatusCompleted},
		{AmountCents: 9000, Type: models.TransactionIncoming, Status: models.StatusCompleted, CategoryID: &food},
		{AmountCents: 9000, Type: models.TransactionTransfer, Status: models.StatusCompleted, CategoryID: &food},
		{AmountCents: 9000, Type: models.TransactionOutgoing, Status: models.StatusPending, CategoryID: &food},
	}

	all := ExpensesByCategory(txs, lookup, 0)
	assert.Equal(t, []CategoryTotal{
		{Category: "Food", Amount: 1200},
		{Category: "Rent", Amount: 1200},
		{Category: models.CategoryUncategorized, Amount: 300},
	}, all)
	assert.Len(t, ExpensesByCategory(txs, lookup, 2), 2)
	assert.Empty(t, ExpensesByCategory(nil, lookup, 5))
}

func TestSplitTotals(t *testing.T) {
	txs := []models.Transaction{
		{AmountCents: 1000, Type: models.TransactionIncoming, Status: models.StatusCompleted},
		{AmountCents: 250, Type: models.TransactionOutgoing, Status: models.StatusCompleted},
		{AmountCents: 400, Type: models.TransactionTransfer, Status: models.StatusCompleted},
		{AmountCents: 999, Type: models.TransactionIncoming, Status: models.StatusFailed},
	}
	income, expenses := SplitTotals(txs)
	assert.Equal(t, int64(1000), income)
	assert.Equal(t, int64(250), expenses)
}

func TestExpensesByDate(t *testing.T) {
	txs := []models.Transaction{
		{AmountCents: 100, Type: models.TransactionOutgoing, Status: models.StatusCompleted, TransactionDate: day(time.May, 3)},
		{AmountCents: 200, Type: models.TransactionOutgoing, Status: models.StatusCompleted, TransactionDate: day(time.May, 1)},
		{AmountCents: 300, Type: models.TransactionOutgoing, Status: models.StatusCompleted, TransactionDate: day(time.May, 3)},
	}
	assert.Equal(t, []DateTotal{
		{Date: "2024-05-01", Amount: 200},
		{Date: "2024-05-03", Amount: 400},
	}, ExpensesByDate(txs))
}

func TestDailyBreakdown_EmptyRange(t *testing.T) {
	assert.Empty(t, DailyBreakdown(nil, today, today.AddDate(0, 0, -1)))
	assert.Len(t, DailyBreakdown(nil, day(time.May, 1), today), 15)
}
