package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the identity that owns ledger entities. Credentials live elsewhere.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:254" json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Account holds a running balance mutated only by the ledger.
type Account struct {
	ID           uint        `gorm:"primaryKey"`
	UserID       uint        `gorm:"index;not null"`
	Title        string      `gorm:"size:100;not null"`
	Description  string      `gorm:"type:text"`
	BalanceCents int64       `gorm:"not null;default:0"`
	Type         AccountType `gorm:"size:20;not null"`
	IsActive     bool        `gorm:"not null"`
	Slug         string      `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Balance returns the account balance as a decimal amount.
func (a Account) Balance() decimal.Decimal {
	return FromCents(a.BalanceCents)
}

// Category groups transactions. Personal categories have no organization.
type Category struct {
	ID                uint   `gorm:"primaryKey"`
	UserID            uint   `gorm:"index;not null"`
	OrganizationID    *uint  `gorm:"index"`
	ParentID          *uint  `gorm:"index"`
	Name              string `gorm:"size:100;not null"`
	Icon              string `gorm:"size:50;not null"`
	Color             string `gorm:"size:20;not null"`
	IsBusinessExpense bool   `gorm:"not null"`
	IsTaxDeductible   bool   `gorm:"not null"`
	CreatedAt         time.Time
}

// Transaction is a ledger entry. AmountCents is always positive; Type gives
// the direction.
type Transaction struct {
	ID                   uint              `gorm:"primaryKey"`
	UserID               uint              `gorm:"index;not null"`
	AccountID            uint              `gorm:"index;not null"`
	DestinationAccountID *uint             `gorm:"index"`
	Title                string            `gorm:"size:100;not null"`
	AmountCents          int64             `gorm:"not null"`
	Type                 TransactionType   `gorm:"size:20;not null"`
	Status               TransactionStatus `gorm:"size:20;index;not null"`
	TransactionDate      time.Time         `gorm:"index;not null"`
	Description          string            `gorm:"type:text"`
	CategoryID           *uint             `gorm:"index"`
	OrganizationID       *uint             `gorm:"index"`
	ProjectID            *uint             `gorm:"index"`
	IsRecurring          bool              `gorm:"not null"`
	RecurrenceType       RecurrenceType    `gorm:"size:20;not null"`
	RecurrenceEndDate    *time.Time
	ReferenceNumber      string `gorm:"size:100"`
	Tags                 string `gorm:"size:255"`
	CreatedAt            time.Time
}

// Amount returns the transaction amount as a decimal.
func (t Transaction) Amount() decimal.Decimal {
	return FromCents(t.AmountCents)
}

// Budget caps spending over a recurring period. Spent, remaining and
// percentage used are derived on read.
type Budget struct {
	ID             uint         `gorm:"primaryKey"`
	UserID         uint         `gorm:"index;not null"`
	OrganizationID *uint        `gorm:"index"`
	ProjectID      *uint        `gorm:"index"`
	CategoryID     *uint        `gorm:"index"`
	Title          string       `gorm:"size:100;not null"`
	AmountCents    int64        `gorm:"not null"`
	Period         BudgetPeriod `gorm:"size:20;not null"`
	StartDate      time.Time    `gorm:"not null"`
	EndDate        *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Amount returns the budget amount as a decimal.
func (b Budget) Amount() decimal.Decimal {
	return FromCents(b.AmountCents)
}

// Goal tracks progress toward a target amount. Progress and status are never
// stored; see Progress and Status.
type Goal struct {
	ID                 uint      `gorm:"primaryKey"`
	UserID             uint      `gorm:"index;not null"`
	Title              string    `gorm:"size:100;not null"`
	Subtitle           string    `gorm:"size:255"`
	GoalType           GoalType  `gorm:"size:20;not null"`
	TargetAmountCents  int64     `gorm:"not null"`
	CurrentAmountCents int64     `gorm:"not null;default:0"`
	TargetDate         time.Time `gorm:"not null"`
	Icon               string    `gorm:"size:50"`
	LinkedAccountID    *uint     `gorm:"index"`
	Description        string    `gorm:"type:text"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Progress is current/target as a clamped whole percentage.
func (g Goal) Progress() int {
	return Percentage(g.CurrentAmountCents, g.TargetAmountCents)
}

// Status derives the goal status from its progress.
func (g Goal) Status() GoalStatus {
	switch p := g.Progress(); {
	case p >= 100:
		return GoalCompleted
	case p > 0:
		return GoalInProgress
	default:
		return GoalPending
	}
}

// Organization groups users who share a ledger.
type Organization struct {
	ID              uint    `gorm:"primaryKey"`
	Name            string  `gorm:"size:100;not null"`
	Slug            string  `gorm:"size:255;uniqueIndex;not null"`
	Description     string  `gorm:"type:text"`
	OrgType         OrgType `gorm:"size:20;not null"`
	OwnerID         uint    `gorm:"index;not null"`
	TaxID           string  `gorm:"size:50"`
	FiscalYearStart *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// OrganizationMember is the membership join row, unique per organization and user.
type OrganizationMember struct {
	ID             uint       `gorm:"primaryKey"`
	OrganizationID uint       `gorm:"uniqueIndex:idx_org_member;not null"`
	UserID         uint       `gorm:"uniqueIndex:idx_org_member;index;not null"`
	Role           MemberRole `gorm:"size:20;not null"`
	JoinedAt       time.Time  `gorm:"autoCreateTime"`
}

// Project belongs to one organization and carries its own budget.
type Project struct {
	ID             uint          `gorm:"primaryKey"`
	OrganizationID uint          `gorm:"index;not null"`
	Name           string        `gorm:"size:100;not null"`
	Slug           string        `gorm:"size:255;uniqueIndex;not null"`
	Description    string        `gorm:"type:text"`
	ManagerID      *uint         `gorm:"index"`
	StartDate      *time.Time
	EndDate        *time.Time
	BudgetCents    int64         `gorm:"not null;default:0"`
	Status         ProjectStatus `gorm:"size:20;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProjectTeamMember links a project to a team member.
type ProjectTeamMember struct {
	ProjectID uint `gorm:"primaryKey"`
	UserID    uint `gorm:"primaryKey;index"`
}

// FinancialReport is a saved report definition. Parameters holds the input
// keys and, after generation, the generated payload as JSON text.
type FinancialReport struct {
	ID             uint       `gorm:"primaryKey"`
	UserID         uint       `gorm:"index;not null"`
	OrganizationID *uint      `gorm:"index"`
	Title          string     `gorm:"size:100;not null"`
	ReportType     ReportType `gorm:"size:30;not null"`
	StartDate      time.Time  `gorm:"not null"`
	EndDate        time.Time  `gorm:"not null"`
	Parameters     string     `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// All returns every persisted entity, in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Organization{},
		&OrganizationMember{},
		&Project{},
		&ProjectTeamMember{},
		&Account{},
		&Category{},
		&Transaction{},
		&Budget{},
		&Goal{},
		&FinancialReport{},
	}
}
