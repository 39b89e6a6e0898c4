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

// Deposit adds amount to an account owned by userID and returns the updated
// account.
func (e *Engine) Deposit(ctx context.Context, userID, accountID uint, amount decimal.Decimal) (*models.Account, error) {
	const op = "ledger.Deposit"

	cents, err := positiveCents(op, amount)
	if err != nil {
		return nil, err
	}

	var account *models.Account
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := scope.Account(tx, userID, accountID); err != nil {
			return err
		}
		if err := adjustBalance(tx, op, userID, accountID, cents); err != nil {
			return err
		}
		account, err = scope.Account(tx, userID, accountID)
		return err
	})
	if err != nil {
		return nil, ledgererror.Store(op, "account", err)
	}

	e.log.Info("Deposit applied",
		logging.F(logging.FieldAccountID, accountID),
		logging.F(logging.FieldAmount, models.FormatCents(cents)))
	return account, nil
}

// Withdraw subtracts amount from an account owned by userID. The balance
// check and the update are a single conditional statement, so two racing
// withdrawals cannot both pass the check.
func (e *Engine) Withdraw(ctx context.Context, userID, accountID uint, amount decimal.Decimal) (*models.Account, error) {
	const op = "ledger.Withdraw"

	cents, err := positiveCents(op, amount)
	if err != nil {
		return nil, err
	}

	var account *models.Account
	err = e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := scope.Account(tx, userID, accountID); err != nil {
			return err
		}
		res := tx.Model(&models.Account{}).
			Where("id = ? AND user_id = ? AND balance_cents >= ?", accountID, userID, cents).
			Update("balance_cents", gorm.Expr("balance_cents - ?", cents))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledgererror.New(ledgererror.KindInsufficientFunds, op, "insufficient funds")
		}
		account, err = scope.Account(tx, userID, accountID)
		return err
	})
	if err != nil {
		return nil, ledgererror.Store(op, "account", err)
	}

	e.log.Info("Withdrawal applied",
		logging.F(logging.FieldAccountID, accountID),
		logging.F(logging.FieldAmount, models.FormatCents(cents)))
	return account, nil
}

func positiveCents(op string, amount decimal.Decimal) (int64, error) {
	cents := models.ToCents(amount)
	if !amount.IsPositive() || cents <= 0 {
		return 0, ledgererror.New(ledgererror.KindInvalidAmount, op, "amount must be positive")
	}
	return cents, nil
}
