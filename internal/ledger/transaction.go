package ledger

import (
	"context"
	"strings"
	"time"

	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/scope"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NewTransaction holds the fields accepted when recording a transaction.
// An empty Status means completed; a zero TransactionDate means today.
type NewTransaction struct {
	AccountID            uint
	DestinationAccountID *uint
	Title                string
	Amount               decimal.Decimal
	Type                 models.TransactionType
	Status               models.TransactionStatus
	TransactionDate      time.Time
	Description          string
	CategoryID           *uint
	OrganizationID       *uint
	ProjectID            *uint
	IsRecurring          bool
	RecurrenceType       models.RecurrenceType
	RecurrenceEndDate    *time.Time
	ReferenceNumber      string
	Tags                 string
}

// TransactionPatch edits the fields of a transaction that carry no balance
// effect. Nil fields are left unchanged.
type TransactionPatch struct {
	Title             *string
	Description       *string
	CategoryID        *uint
	TransactionDate   *time.Time
	IsRecurring       *bool
	RecurrenceType    *models.RecurrenceType
	RecurrenceEndDate *time.Time
	ReferenceNumber   *string
	Tags              *string
}

// RecordTransaction stores a new transaction for userID. When it is created
// completed, its balance effect is applied in the same store transaction.
func (e *Engine) RecordTransaction(ctx context.Context, userID uint, in NewTransaction) (*models.Transaction, error) {
	const op = "ledger.RecordTransaction"

	t, err := e.validateNew(op, userID, in)
	if err != nil {
		return nil, err
	}

	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkReferences(tx, op, userID, in); err != nil {
			return err
		}
		if err := tx.Create(t).Error; err != nil {
			return err
		}
		if t.Status == models.StatusCompleted {
			return applyEffect(tx, op, t)
		}
		return nil
	})
	if err != nil {
		return nil, ledgererror.Store(op, "transaction", err)
	}

	e.log.Info("Transaction recorded",
		logging.F(logging.FieldTransactionID, t.ID),
		logging.F(logging.FieldAccountID, t.AccountID),
		logging.F(logging.FieldAmount, models.FormatCents(t.AmountCents)),
		logging.F(logging.FieldOperation, t.Type),
		logging.F(logging.FieldStatus, t.Status))
	return t, nil
}

func (e *Engine) validateNew(op string, userID uint, in NewTransaction) (*models.Transaction, error) {
	if !in.Amount.IsPositive() {
		return nil, ledgererror.New(ledgererror.KindInvalidAmount, op, "amount must be positive")
	}
	cents := models.ToCents(in.Amount)
	if cents <= 0 {
		return nil, ledgererror.New(ledgererror.KindInvalidAmount, op, "amount must be at least 0.01")
	}
	if !in.Type.Valid() {
		return nil, ledgererror.Newf(ledgererror.KindValidation, op, "invalid transaction type: %s", in.Type)
	}
	if in.Status == "" {
		in.Status = models.StatusCompleted
	}
	if !in.Status.Valid() {
		return nil, ledgererror.Newf(ledgererror.KindValidation, op, "invalid transaction status: %s", in.Status)
	}
	if in.RecurrenceType == "" {
		in.RecurrenceType = models.RecurrenceNone
	}
	if !in.RecurrenceType.Valid() {
		return nil, ledgererror.Newf(ledgererror.KindValidation, op, "invalid recurrence type: %s", in.RecurrenceType)
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "title is required")
	}

	switch {
	case in.Type == models.TransactionTransfer && in.DestinationAccountID == nil:
		return nil, ledgererror.New(ledgererror.KindMissingDestination, op, "transfer requires a destination account")
	case in.Type == models.TransactionTransfer && *in.DestinationAccountID == in.AccountID:
		return nil, ledgererror.New(ledgererror.KindValidation, op, "destination account must differ from the source account")
	case in.Type != models.TransactionTransfer && in.DestinationAccountID != nil:
		return nil, ledgererror.New(ledgererror.KindValidation, op, "only transfers take a destination account")
	}

	date := in.TransactionDate
	if date.IsZero() {
		date = e.clock()
	}
	var recurrenceEnd *time.Time
	if in.RecurrenceEndDate != nil {
		d := dateutils.Day(*in.RecurrenceEndDate)
		recurrenceEnd = &d
	}

	return &models.Transaction{
		UserID:               userID,
		AccountID:            in.AccountID,
		DestinationAccountID: in.DestinationAccountID,
		Title:                title,
		AmountCents:          cents,
		Type:                 in.Type,
		Status:               in.Status,
		TransactionDate:      dateutils.Day(date),
		Description:          in.Description,
		CategoryID:           in.CategoryID,
		OrganizationID:       in.OrganizationID,
		ProjectID:            in.ProjectID,
		IsRecurring:          in.IsRecurring,
		RecurrenceType:       in.RecurrenceType,
		RecurrenceEndDate:    recurrenceEnd,
		ReferenceNumber:      strings.TrimSpace(in.ReferenceNumber),
		Tags:                 strings.TrimSpace(in.Tags),
	}, nil
}

// checkReferences requires every entity the new transaction points at to be
// visible to userID.
func checkReferences(tx *gorm.DB, op string, userID uint, in NewTransaction) error {
	account, err := scope.Account(tx, userID, in.AccountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return ledgererror.New(ledgererror.KindValidation, op, "account is inactive")
	}
	if in.DestinationAccountID != nil {
		dest, err := scope.Account(tx, userID, *in.DestinationAccountID)
		if err != nil {
			return err
		}
		if !dest.IsActive {
			return ledgererror.New(ledgererror.KindValidation, op, "destination account is inactive")
		}
	}
	if in.CategoryID != nil {
		if _, err := scope.Category(tx, userID, *in.CategoryID); err != nil {
			return err
		}
	}
	if in.OrganizationID != nil {
		if _, err := scope.Organization(tx, userID, *in.OrganizationID); err != nil {
			return err
		}
	}
	if in.ProjectID != nil {
		project, err := scope.Project(tx, userID, *in.ProjectID)
		if err != nil {
			return err
		}
		if in.OrganizationID != nil && project.OrganizationID != *in.OrganizationID {
			return ledgererror.New(ledgererror.KindValidation, op, "project belongs to a different organization")
		}
	}
	return nil
}

// UpdateTransactionStatus moves a transaction to status. The move into
// completed is a compare-and-swap on the status column and the balance
// effect is applied only by the request whose swap succeeded, so repeating
// the update never applies it twice. Completed transactions cannot leave
// the completed state.
func (e *Engine) UpdateTransactionStatus(ctx context.Context, userID, txID uint, status models.TransactionStatus) (*models.Transaction, error) {
	const op = "ledger.UpdateTransactionStatus"

	if !status.Valid() {
		return nil, ledgererror.Newf(ledgererror.KindValidation, op, "invalid transaction status: %s", status)
	}

	var (
		t       *models.Transaction
		applied bool
	)
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		t, err = scope.Transaction(tx, userID, txID)
		if err != nil {
			return err
		}
		if t.Status == status {
			return nil
		}
		if t.Status == models.StatusCompleted {
			return ledgererror.Newf(ledgererror.KindValidation, op,
				"completed transactions cannot move to %s", status)
		}

		res := tx.Model(&models.Transaction{}).
			Where("id = ? AND status <> ?", t.ID, models.StatusCompleted).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// lost the race to a concurrent completion
			if status == models.StatusCompleted {
				t.Status = models.StatusCompleted
				return nil
			}
			return ledgererror.Newf(ledgererror.KindValidation, op,
				"completed transactions cannot move to %s", status)
		}
		t.Status = status
		if status == models.StatusCompleted {
			applied = true
			return applyEffect(tx, op, t)
		}
		return nil
	})
	if err != nil {
		return nil, ledgererror.Store(op, "transaction", err)
	}

	e.log.Info("Transaction status updated",
		logging.F(logging.FieldTransactionID, txID),
		logging.F(logging.FieldStatus, status),
		logging.F("balance_applied", applied))
	return t, nil
}

// UpdateTransaction edits descriptive fields of a transaction. Amount, type,
// accounts and status are not editable here, so the balance never changes.
func (e *Engine) UpdateTransaction(ctx context.Context, userID, txID uint, patch TransactionPatch) (*models.Transaction, error) {
	const op = "ledger.UpdateTransaction"

	updates := map[string]interface{}{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return nil, ledgererror.New(ledgererror.KindValidation, op, "title is required")
		}
		updates["title"] = title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.TransactionDate != nil {
		updates["transaction_date"] = dateutils.Day(*patch.TransactionDate)
	}
	if patch.IsRecurring != nil {
		updates["is_recurring"] = *patch.IsRecurring
	}
	if patch.RecurrenceType != nil {
		if !patch.RecurrenceType.Valid() {
			return nil, ledgererror.Newf(ledgererror.KindValidation, op, "invalid recurrence type: %s", *patch.RecurrenceType)
		}
		updates["recurrence_type"] = *patch.RecurrenceType
	}
	if patch.RecurrenceEndDate != nil {
		updates["recurrence_end_date"] = dateutils.Day(*patch.RecurrenceEndDate)
	}
	if patch.ReferenceNumber != nil {
		updates["reference_number"] = strings.TrimSpace(*patch.ReferenceNumber)
	}
	if patch.Tags != nil {
		updates["tags"] = strings.TrimSpace(*patch.Tags)
	}

	var t *models.Transaction
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if t, err = scope.Transaction(tx, userID, txID); err != nil {
			return err
		}
		if patch.CategoryID != nil {
			if _, err := scope.Category(tx, userID, *patch.CategoryID); err != nil {
				return err
			}
			updates["category_id"] = *patch.CategoryID
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&models.Transaction{}).Where("id = ?", t.ID).Updates(updates).Error; err != nil {
			return err
		}
		t, err = scope.Transaction(tx, userID, txID)
		return err
	})
	if err != nil {
		return nil, ledgererror.Store(op, "transaction", err)
	}

	e.log.Debug("Transaction updated",
		logging.F(logging.FieldTransactionID, txID),
		logging.F(logging.FieldCount, len(updates)))
	return t, nil
}
