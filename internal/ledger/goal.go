package ledger

import (
	"context"

	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/scope"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Contribute adds amount to a goal owned by userID. With updateLinkedAccount
// set and a linked account present, the same amount leaves that account in
// the same store transaction, whatever the goal type. The returned goal
// carries the new current amount; progress and status derive from it.
func (e *Engine) Contribute(ctx context.Context, userID, goalID uint, amount decimal.Decimal, updateLinkedAccount bool) (*models.Goal, error) {
	const op = "ledger.Contribute"

	cents, err := positiveCents(op, amount)
	if err != nil {
		return nil, err
	}

	var (
		goal   *models.Goal
		debits bool
	)
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := scope.Goal(tx, userID, goalID); err != nil {
			return err
		}
		res := tx.Model(&models.Goal{}).
			Where("id = ? AND user_id = ?", goalID, userID).
			Update("current_amount_cents", gorm.Expr("current_amount_cents + ?", cents))
		if res.Error != nil {
			return res.Error
		}
		if goal, err = scope.Goal(tx, userID, goalID); err != nil {
			return err
		}
		if updateLinkedAccount && goal.LinkedAccountID != nil {
			debits = true
			return adjustBalance(tx, op, userID, *goal.LinkedAccountID, -cents)
		}
		return nil
	})
	if err != nil {
		return nil, ledgererror.Store(op, "goal", err)
	}

	e.log.Info("Goal contribution applied",
		logging.F(logging.FieldGoalID, goalID),
		logging.F(logging.FieldAmount, models.FormatCents(cents)),
		logging.F("linked_account_debited", debits),
		logging.F(logging.FieldStatus, goal.Status()))
	return goal, nil
}
