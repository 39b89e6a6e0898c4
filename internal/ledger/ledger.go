// Package ledger applies balance-affecting changes: recording transactions,
// completing them, deposit and withdraw shortcuts, and goal contributions.
//
// Every change runs inside one store transaction and moves balances with
// column expressions evaluated by the database, so concurrent requests
// against the same account cannot lose updates.
package ledger

import (
	"time"

	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"

	"gorm.io/gorm"
)

// Engine is the ledger mutation engine.
type Engine struct {
	db    *gorm.DB
	log   logging.Logger
	clock func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the clock used for default transaction dates.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// NewEngine creates a ledger engine.
func NewEngine(db *gorm.DB, log logging.Logger, opts ...Option) *Engine {
	e := &Engine{db: db, log: log, clock: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// adjustBalance adds delta cents to an account owned by userID.
func adjustBalance(tx *gorm.DB, op string, userID, accountID uint, delta int64) error {
	res := tx.Model(&models.Account{}).
		Where("id = ? AND user_id = ?", accountID, userID).
		Update("balance_cents", gorm.Expr("balance_cents + ?", delta))
	if res.Error != nil {
		return ledgererror.Store(op, "account", res.Error)
	}
	if res.RowsAffected == 0 {
		return ledgererror.NotFound(op, "account")
	}
	return nil
}

// applyEffect moves the balances a completed transaction stands for. Both
// legs of a transfer share the caller's store transaction.
func applyEffect(tx *gorm.DB, op string, t *models.Transaction) error {
	switch t.Type {
	case models.TransactionIncoming:
		return adjustBalance(tx, op, t.UserID, t.AccountID, t.AmountCents)
	case models.TransactionOutgoing:
		return adjustBalance(tx, op, t.UserID, t.AccountID, -t.AmountCents)
	case models.TransactionTransfer:
		if t.DestinationAccountID == nil {
			return ledgererror.New(ledgererror.KindMissingDestination, op, "transfer requires a destination account")
		}
		if err := adjustBalance(tx, op, t.UserID, t.AccountID, -t.AmountCents); err != nil {
			return err
		}
		return adjustBalance(tx, op, t.UserID, *t.DestinationAccountID, t.AmountCents)
	}
	return ledgererror.Newf(ledgererror.KindValidation, op, "invalid transaction type: %s", t.Type)
}
