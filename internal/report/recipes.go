// Package report builds the six financial report kinds. Each kind is a pure
// recipe from an Input to a typed payload; the Generator gathers the input
// from the store and persists the payload back onto the report.
package report

import (
	"sort"

	"fjacquet/fintrack/internal/aggregate"
	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/models"
)

// Input is everything a recipe reads.
type Input struct {
	Report models.FinancialReport
	// Transactions are visible to the requesting user, dated inside the
	// report window, narrowed to the report organization, ordered by date.
	Transactions []models.Transaction
	Lookup       aggregate.Lookup
	// Budgets is filled for budget_analysis only.
	Budgets []aggregate.BudgetView
	// Project is filled for project_finance only.
	Project *aggregate.ProjectMetrics
}

// Recipe turns an input into a report payload.
type Recipe func(Input) (interface{}, error)

// IncomeStatement compares completed income against completed expenses.
type IncomeStatement struct {
	Income             models.Money              `json:"income" yaml:"income"`
	Expenses           models.Money              `json:"expenses" yaml:"expenses"`
	NetIncome          models.Money              `json:"net_income" yaml:"net_income"`
	ExpensesByCategory []aggregate.CategoryTotal `json:"expenses_by_category" yaml:"expenses_by_category"`
}

// ExpenseReport details completed expenses.
type ExpenseReport struct {
	TotalExpenses      models.Money                `json:"total_expenses" yaml:"total_expenses"`
	ExpensesByCategory []aggregate.CategoryTotal   `json:"expenses_by_category" yaml:"expenses_by_category"`
	ExpensesByDate     []aggregate.DateTotal       `json:"expenses_by_date" yaml:"expenses_by_date"`
	Transactions       []aggregate.TransactionView `json:"transactions" yaml:"transactions"`
}

// CashFlowEntry is the total of one transaction type on one day and the
// running balance after it.
type CashFlowEntry struct {
	Date    string                 `json:"date" yaml:"date"`
	Type    models.TransactionType `json:"type" yaml:"type"`
	Amount  models.Money           `json:"amount" yaml:"amount"`
	Balance models.Money           `json:"balance" yaml:"balance"`
}

// CashFlow walks completed transactions in date order.
type CashFlow struct {
	CashFlow        []CashFlowEntry `json:"cash_flow" yaml:"cash_flow"`
	StartingBalance models.Money    `json:"starting_balance" yaml:"starting_balance"`
	EndingBalance   models.Money    `json:"ending_balance" yaml:"ending_balance"`
}

// BudgetAnalysis lists the visible budgets with their current consumption.
type BudgetAnalysis struct {
	Budgets        []aggregate.BudgetView `json:"budgets" yaml:"budgets"`
	TotalBudget    models.Money           `json:"total_budget" yaml:"total_budget"`
	TotalSpent     models.Money           `json:"total_spent" yaml:"total_spent"`
	TotalRemaining models.Money           `json:"total_remaining" yaml:"total_remaining"`
}

// ProjectFinance reports one project's budget and activity.
type ProjectFinance struct {
	Project      aggregate.ProjectMetrics    `json:"project" yaml:"project"`
	Income       models.Money                `json:"income" yaml:"income"`
	Expenses     models.Money                `json:"expenses" yaml:"expenses"`
	Net          models.Money                `json:"net" yaml:"net"`
	Transactions []aggregate.TransactionView `json:"transactions" yaml:"transactions"`
}

// TaxReport lists completed expenses in tax deductible categories.
type TaxReport struct {
	TotalTaxDeductible models.Money                `json:"total_tax_deductible" yaml:"total_tax_deductible"`
	ExpensesByCategory []aggregate.CategoryTotal   `json:"expenses_by_category" yaml:"expenses_by_category"`
	Transactions       []aggregate.TransactionView `json:"transactions" yaml:"transactions"`
}

var recipes = map[models.ReportType]Recipe{
	models.ReportIncomeStatement: incomeStatement,
	models.ReportExpense:         expenseReport,
	models.ReportCashFlow:        cashFlow,
	models.ReportBudgetAnalysis:  budgetAnalysis,
	models.ReportProjectFinance:  projectFinance,
	models.ReportTax:             taxReport,
}

// Supported reports whether kind has a recipe.
func Supported(kind models.ReportType) bool {
	_, ok := recipes[kind]
	return ok
}

// Build runs the recipe for kind.
func Build(kind models.ReportType, in Input) (interface{}, error) {
	recipe, ok := recipes[kind]
	if !ok {
		return nil, ledgererror.Newf(ledgererror.KindValidation, "report.Build", "unsupported report type: %s", kind)
	}
	return recipe(in)
}

func incomeStatement(in Input) (interface{}, error) {
	income, expenses := aggregate.SplitTotals(in.Transactions)
	return IncomeStatement{
		Income:             models.Money(income),
		Expenses:           models.Money(expenses),
		NetIncome:          models.Money(income - expenses),
		ExpensesByCategory: aggregate.ExpensesByCategory(in.Transactions, in.Lookup, 0),
	}, nil
}

func expenseReport(in Input) (interface{}, error) {
	expenses := aggregate.Expenses(in.Transactions)
	_, total := aggregate.SplitTotals(expenses)
	return ExpenseReport{
		TotalExpenses:      models.Money(total),
		ExpensesByCategory: aggregate.ExpensesByCategory(expenses, in.Lookup, 0),
		ExpensesByDate:     aggregate.ExpensesByDate(expenses),
		Transactions:       aggregate.Views(expenses, in.Lookup),
	}, nil
}

// cashFlow seeds the running balance at zero. Incoming totals add to it and
// every other type, transfers included, subtracts.
func cashFlow(in Input) (interface{}, error) {
	type key struct {
		date   string
		txType models.TransactionType
	}
	totals := map[key]int64{}
	for _, t := range in.Transactions {
		if t.Status != models.StatusCompleted {
			continue
		}
		totals[key{dateutils.ToISODate(t.TransactionDate), t.Type}] += t.AmountCents
	}
	keys := make([]key, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].txType < keys[j].txType
	})

	report := CashFlow{CashFlow: make([]CashFlowEntry, 0, len(keys))}
	var balance int64
	for _, k := range keys {
		amount := totals[k]
		if k.txType == models.TransactionIncoming {
			balance += amount
		} else {
			balance -= amount
		}
		report.CashFlow = append(report.CashFlow, CashFlowEntry{
			Date:    k.date,
			Type:    k.txType,
			Amount:  models.Money(amount),
			Balance: models.Money(balance),
		})
	}
	report.EndingBalance = models.Money(balance)
	return report, nil
}

func budgetAnalysis(in Input) (interface{}, error) {
	report := BudgetAnalysis{Budgets: in.Budgets}
	if report.Budgets == nil {
		report.Budgets = []aggregate.BudgetView{}
	}
	for _, b := range in.Budgets {
		report.TotalBudget += b.Amount
		report.TotalSpent += b.Spent
		report.TotalRemaining += b.Remaining
	}
	return report, nil
}

func projectFinance(in Input) (interface{}, error) {
	if in.Project == nil {
		return nil, ledgererror.New(ledgererror.KindMissingParameter, "report.projectFinance",
			"project_id is required for a project finance report")
	}
	var txs []models.Transaction
	for _, t := range in.Transactions {
		if t.ProjectID != nil && *t.ProjectID == in.Project.ID {
			txs = append(txs, t)
		}
	}
	income, expenses := aggregate.SplitTotals(txs)
	return ProjectFinance{
		Project:      *in.Project,
		Income:       models.Money(income),
		Expenses:     models.Money(expenses),
		Net:          models.Money(income - expenses),
		Transactions: aggregate.Views(txs, in.Lookup),
	}, nil
}

func taxReport(in Input) (interface{}, error) {
	var deductible []models.Transaction
	for _, t := range aggregate.Expenses(in.Transactions) {
		if in.Lookup.TaxDeductible(t.CategoryID) {
			deductible = append(deductible, t)
		}
	}
	_, total := aggregate.SplitTotals(deductible)
	return TaxReport{
		TotalTaxDeductible: models.Money(total),
		ExpensesByCategory: aggregate.ExpensesByCategory(deductible, in.Lookup, 0),
		Transactions:       aggregate.Views(deductible, in.Lookup),
	}, nil
}
