package models

// AccountType classifies an account.
type AccountType string

// Account types
const (
	AccountSavings    AccountType = "savings"
	AccountChecking   AccountType = "checking"
	AccountInvestment AccountType = "investment"
	AccountDebt       AccountType = "debt"
)

// AccountTypes lists account types in dashboard display order.
var AccountTypes = []AccountType{AccountSavings, AccountChecking, AccountInvestment, AccountDebt}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	switch t {
	case AccountSavings, AccountChecking, AccountInvestment, AccountDebt:
		return true
	}
	return false
}

// DisplayName returns the human-readable label.
func (t AccountType) DisplayName() string {
	return displayName(string(t), map[string]string{
		"savings": "Savings", "checking": "Checking", "investment": "Investment", "debt": "Debt",
	})
}

// TransactionType is the direction of a ledger entry.
type TransactionType string

// Transaction types
const (
	TransactionIncoming TransactionType = "incoming"
	TransactionOutgoing TransactionType = "outgoing"
	TransactionTransfer TransactionType = "transfer"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIncoming, TransactionOutgoing, TransactionTransfer:
		return true
	}
	return false
}

// DisplayName returns the human-readable label.
func (t TransactionType) DisplayName() string {
	return displayName(string(t), map[string]string{
		"incoming": "Incoming", "outgoing": "Outgoing", "transfer": "Transfer",
	})
}

// TransactionStatus tracks whether a ledger entry has taken effect.
type TransactionStatus string

// Transaction statuses
const (
	StatusCompleted TransactionStatus = "completed"
	StatusPending   TransactionStatus = "pending"
	StatusFailed    TransactionStatus = "failed"
)

// Valid reports whether s is a known transaction status.
func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusCompleted, StatusPending, StatusFailed:
		return true
	}
	return false
}

// DisplayName returns the human-readable label.
func (s TransactionStatus) DisplayName() string {
	return displayName(string(s), map[string]string{
		"completed": "Completed", "pending": "Pending", "failed": "Failed",
	})
}

// RecurrenceType is informational recurrence metadata on a transaction.
type RecurrenceType string

// Recurrence types
const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
)

// Valid reports whether r is a known recurrence type.
func (r RecurrenceType) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// BudgetPeriod is the recurring window a budget applies to.
type BudgetPeriod string

// Budget periods
const (
	BudgetWeekly    BudgetPeriod = "weekly"
	BudgetMonthly   BudgetPeriod = "monthly"
	BudgetQuarterly BudgetPeriod = "quarterly"
	BudgetYearly    BudgetPeriod = "yearly"
)

// Valid reports whether p is a known budget period.
func (p BudgetPeriod) Valid() bool {
	switch p {
	case BudgetWeekly, BudgetMonthly, BudgetQuarterly, BudgetYearly:
		return true
	}
	return false
}

// DisplayName returns the human-readable label.
func (p BudgetPeriod) DisplayName() string {
	return displayName(string(p), map[string]string{
		"weekly": "Weekly", "monthly": "Monthly", "quarterly": "Quarterly", "yearly": "Yearly",
	})
}

// GoalType classifies a goal.
type GoalType string

// Goal types
const (
	GoalSavings    GoalType = "savings"
	GoalInvestment GoalType = "investment"
	GoalDebt       GoalType = "debt"
)

// GoalTypes lists goal types in display order.
var GoalTypes = []GoalType{GoalSavings, GoalInvestment, GoalDebt}

// Valid reports whether t is a known goal type.
func (t GoalType) Valid() bool {
	switch t {
	case GoalSavings, GoalInvestment, GoalDebt:
		return true
	}
	return false
}

// DisplayName returns the human-readable label.
func (t GoalType) DisplayName() string {
	return displayName(string(t), map[string]string{
		"savings": "Savings", "investment": "Investment", "debt": "Debt Repayment",
	})
}

// GoalStatus is derived from goal progress and never stored.
type GoalStatus string

// Goal statuses
const (
	GoalPending    GoalStatus = "pending"
	GoalInProgress GoalStatus = "in-progress"
	GoalCompleted  GoalStatus = "completed"
)

// OrgType classifies an organization.
type OrgType string

// Organization types
const (
	OrgBusiness  OrgType = "business"
	OrgNonprofit OrgType = "nonprofit"
	OrgPersonal  OrgType = "personal"
)

// Valid reports whether t is a known organization type.
func (t OrgType) Valid() bool {
	switch t {
	case OrgBusiness, OrgNonprofit, OrgPersonal:
		return true
	}
	return false
}

// MemberRole is a user's role inside an organization.
type MemberRole string

// Member roles
const (
	RoleAdmin      MemberRole = "admin"
	RoleManager    MemberRole = "manager"
	RoleAccountant MemberRole = "accountant"
	RoleViewer     MemberRole = "viewer"
)

// Valid reports whether r is one of the four defined roles.
func (r MemberRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAccountant, RoleViewer:
		return true
	}
	return false
}

// CanManage reports whether the role may change memberships and project teams.
func (r MemberRole) CanManage() bool {
	return r == RoleAdmin || r == RoleManager
}

// DisplayName returns the human-readable label.
func (r MemberRole) DisplayName() string {
	return displayName(string(r), map[string]string{
		"admin": "Administrator", "manager": "Financial Manager", "accountant": "Accountant", "viewer": "Viewer",
	})
}

// ProjectStatus tracks a project's lifecycle.
type ProjectStatus string

// Project statuses
const (
	ProjectPlanning  ProjectStatus = "planning"
	ProjectActive    ProjectStatus = "active"
	ProjectOnHold    ProjectStatus = "on_hold"
	ProjectCompleted ProjectStatus = "completed"
	ProjectCancelled ProjectStatus = "cancelled"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectActive, ProjectOnHold, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// ReportType names one of the report recipes.
type ReportType string

// Report types
const (
	ReportIncomeStatement ReportType = "income_statement"
	ReportExpense         ReportType = "expense_report"
	ReportCashFlow        ReportType = "cash_flow"
	ReportBudgetAnalysis  ReportType = "budget_analysis"
	ReportProjectFinance  ReportType = "project_finance"
	ReportTax             ReportType = "tax_report"
)

// ReportTypes lists every report type.
var ReportTypes = []ReportType{
	ReportIncomeStatement, ReportExpense, ReportCashFlow,
	ReportBudgetAnalysis, ReportProjectFinance, ReportTax,
}

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	for _, known := range ReportTypes {
		if t == known {
			return true
		}
	}
	return false
}

// CategoryUncategorized labels expenses without a category.
const CategoryUncategorized = "Uncategorized"

// File permissions
const (
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)

func displayName(value string, labels map[string]string) string {
	if label, ok := labels[value]; ok {
		return label
	}
	return value
}
