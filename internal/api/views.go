package api

import (
	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/models"
)

type accountView struct {
	ID          uint               `json:"id"`
	Title       string             `json:"title"`
	Type        models.AccountType `json:"account_type"`
	Balance     models.Money       `json:"balance"`
	IsActive    bool               `json:"is_active"`
	Slug        string             `json:"slug"`
	Description string             `json:"description,omitempty"`
}

func newAccountView(a *models.Account) accountView {
	return accountView{
		ID:          a.ID,
		Title:       a.Title,
		Type:        a.Type,
		Balance:     models.Money(a.BalanceCents),
		IsActive:    a.IsActive,
		Slug:        a.Slug,
		Description: a.Description,
	}
}

type transactionView struct {
	ID                 uint                     `json:"id"`
	Account            uint                     `json:"account"`
	DestinationAccount *uint                    `json:"destination_account"`
	Title              string                   `json:"title"`
	Amount             models.Money             `json:"amount"`
	Type               models.TransactionType   `json:"transaction_type"`
	Status             models.TransactionStatus `json:"status"`
	TransactionDate    string                   `json:"transaction_date"`
	Description        string                   `json:"description"`
	Category           *uint                    `json:"category"`
	Organization       *uint                    `json:"organization"`
	Project            *uint                    `json:"project"`
	IsRecurring        bool                     `json:"is_recurring"`
	RecurrenceType     models.RecurrenceType    `json:"recurrence_type"`
	ReferenceNumber    string                   `json:"reference_number"`
	Tags               string                   `json:"tags"`
}

func newTransactionView(t *models.Transaction) transactionView {
	return transactionView{
		ID:                 t.ID,
		Account:            t.AccountID,
		DestinationAccount: t.DestinationAccountID,
		Title:              t.Title,
		Amount:             models.Money(t.AmountCents),
		Type:               t.Type,
		Status:             t.Status,
		TransactionDate:    dateutils.ToISODate(t.TransactionDate),
		Description:        t.Description,
		Category:           t.CategoryID,
		Organization:       t.OrganizationID,
		Project:            t.ProjectID,
		IsRecurring:        t.IsRecurring,
		RecurrenceType:     t.RecurrenceType,
		ReferenceNumber:    t.ReferenceNumber,
		Tags:               t.Tags,
	}
}

type goalView struct {
	ID            uint              `json:"id"`
	Title         string            `json:"title"`
	GoalType      models.GoalType   `json:"goal_type"`
	TargetAmount  models.Money      `json:"target_amount"`
	CurrentAmount models.Money      `json:"current_amount"`
	TargetDate    string            `json:"target_date"`
	Progress      int               `json:"progress"`
	Status        models.GoalStatus `json:"status"`
	LinkedAccount *uint             `json:"linked_account"`
}

func newGoalView(g *models.Goal) goalView {
	return goalView{
		ID:            g.ID,
		Title:         g.Title,
		GoalType:      g.GoalType,
		TargetAmount:  models.Money(g.TargetAmountCents),
		CurrentAmount: models.Money(g.CurrentAmountCents),
		TargetDate:    dateutils.ToISODate(g.TargetDate),
		Progress:      g.Progress(),
		Status:        g.Status(),
		LinkedAccount: g.LinkedAccountID,
	}
}

type memberView struct {
	Organization uint              `json:"organization"`
	User         uint              `json:"user"`
	Role         models.MemberRole `json:"role"`
	RoleDisplay  string            `json:"role_display"`
}

func newMemberView(m *models.OrganizationMember) memberView {
	return memberView{
		Organization: m.OrganizationID,
		User:         m.UserID,
		Role:         m.Role,
		RoleDisplay:  m.Role.DisplayName(),
	}
}
