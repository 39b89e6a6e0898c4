package ledger

import (
	"context"
	"testing"
	"time"

	"fjacquet/fintrack/internal/database"
	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/scope"
	"fjacquet/fintrack/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var today = time.Date(2024, time.May, 15, 0, 0, 0, 0, time.UTC)

type fixture struct {
	db     *gorm.DB
	store  *store.Store
	engine *Engine
	log    *logging.MockLogger
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
		engine: NewEngine(db, log, WithClock(func() time.Time { return today })),
		log:    log,
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

func (f *fixture) account(t *testing.T, userID uint, title, balance string) uint {
	t.Helper()
	acc, err := f.store.CreateAccount(context.Background(), userID, store.NewAccount{
		Title:          title,
		Type:           models.AccountChecking,
		OpeningBalance: dec(balance),
	})
	require.NoError(t, err)
	return acc.ID
}

func (f *fixture) balance(t *testing.T, accountID uint) string {
	t.Helper()
	var acc models.Account
	require.NoError(t, f.db.Take(&acc, accountID).Error)
	return acc.Balance().StringFixed(2)
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func uintPtr(v uint) *uint { return &v }

func TestDepositWithdrawScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.account(t, f.user, "Main", "100.00")

	updated, err := f.engine.Deposit(ctx, f.user, acc, dec("50.00"))
	require.NoError(t, err)
	assert.Equal(t, "150.00", updated.Balance().StringFixed(2))

	_, err = f.engine.Withdraw(ctx, f.user, acc, dec("200.00"))
	assert.ErrorIs(t, err, ledgererror.ErrInsufficientFunds)
	assert.Equal(t, "150.00", f.balance(t, acc))

	updated, err = f.engine.Withdraw(ctx, f.user, acc, dec("150.00"))
	require.NoError(t, err)
	assert.Equal(t, "0.00", updated.Balance().StringFixed(2))
}

func TestDepositWithdraw_InvalidAmounts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.account(t, f.user, "Main", "100.00")

	for _, amount := range []string{"0", "-5", "0.001"} {
		_, err := f.engine.Deposit(ctx, f.user, acc, dec(amount))
		assert.ErrorIs(t, err, ledgererror.ErrInvalidAmount, "deposit %s", amount)
		_, err = f.engine.Withdraw(ctx, f.user, acc, dec(amount))
		assert.ErrorIs(t, err, ledgererror.ErrInvalidAmount, "withdraw %s", amount)
	}
	assert.Equal(t, "100.00", f.balance(t, acc))
}

func TestDepositWithdraw_ForeignAccountNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.newUser(t, "bob")
	bobs := f.account(t, bob, "Bob", "10.00")

	_, err := f.engine.Deposit(ctx, f.user, bobs, dec("1"))
	assert.ErrorIs(t, err, ledgererror.ErrNotFound)
	_, err = f.engine.Withdraw(ctx, f.user, bobs, dec("1"))
	assert.ErrorIs(t, err, ledgererror.ErrNotFound)
	_, err = f.engine.Withdraw(ctx, f.user, 9999, dec("1"))
	assert.ErrorIs(t, err, ledgererror.ErrNotFound)
	assert.Equal(t, "10.00", f.balance(t, bobs))
}

func TestDepositWithdraw_ReplayMatchesSum(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.account(t, f.user, "Main", "25.00")

	ops := []struct {
		deposit bool
		amount  string
	}{
		{true, "10.10"}, {false, "5.05"}, {true, "0.99"}, {false, "30.00"},
		{true, "100.00"}, {false, "0.01"}, {true, "3.33"}, {false, "47.47"},
	}
	expected := dec("25.00")
	for _, o := range ops {
		if o.deposit {
			_, err := f.engine.Deposit(ctx, f.user, acc, dec(o.amount))
			require.NoError(t, err)
			expected = expected.Add(dec(o.amount))
		} else {
			_, err := f.engine.Withdraw(ctx, f.user, acc, dec(o.amount))
			require.NoError(t, err)
			expected = expected.Sub(dec(o.amount))
		}
	}
	assert.Equal(t, expected.StringFixed(2), f.balance(t, acc))
}

func TestRecordTransaction_Effects(t *testing.T) {
	tests := []struct {
		name     string
		txType   models.TransactionType
		status   models.TransactionStatus
		expected string
	}{
		{"incoming completed", models.TransactionIncoming, models.StatusCompleted, "145.00"},
		{"outgoing completed", models.TransactionOutgoing, models.StatusCompleted, "55.00"},
		{"default status is completed", models.TransactionOutgoing, "", "55.00"},
		{"pending leaves balance", models.TransactionOutgoing, models.StatusPending, "100.00"},
		{"failed leaves balance", models.TransactionIncoming, models.StatusFailed, "100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			acc := f.account(t, f.user, "Main", "100.00")

			tx, err := f.engine.RecordTransaction(context.Background(), f.user, NewTransaction{
				AccountID: acc, Title: "Entry", Amount: dec("45.00"), Type: tt.txType, Status: tt.status,
			})
			require.NoError(t, err)
			assert.True(t, today.Equal(tx.TransactionDate))
			assert.Equal(t, models.RecurrenceNone, tx.RecurrenceType)
			assert.Equal(t, tt.expected, f.balance(t, acc))
		})
	}
}

func TestRecordTransaction_TransferScenario(t *testing.T) {
	f := newFixture(t)
	src := f.account(t, f.user, "Source", "1000.00")
	dst := f.account(t, f.user, "Destination", "200.00")

	tx, err := f.engine.RecordTransaction(context.Background(), f.user, NewTransaction{
		AccountID: src, DestinationAccountID: &dst, Title: "Move", Amount: dec("300.00"),
		Type: models.TransactionTransfer,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, tx.Status)
	assert.Equal(t, "700.00", f.balance(t, src))
	assert.Equal(t, "500.00", f.balance(t, dst))
	assert.True(t, f.log.HasEntry("INFO", "Transaction recorded"))
}

func TestRecordTransaction_TransferIsAtomic(t *testing.T) {
	f := newFixture(t)
	src := f.account(t, f.user, "Source", "1000.00")
	dst := f.account(t, f.user, "Destination", "200.00")

	require.NoError(t, f.db.Exec("UPDATE accounts SET user_id = ? WHERE id = ?", f.user+100, dst).Error)
	in := NewTransaction{
		AccountID: src, Title: "Move", Amount: dec("300.00"), Type: models.TransactionTransfer,
		DestinationAccountID: &dst, Status: models.StatusPending,
	}
	tx, err := f.engine.RecordTransaction(context.Background(), f.user, in)
	assert.ErrorIs(t, err, ledgererror.ErrNotFound)
	assert.Nil(t, tx)

	require.NoError(t, f.db.Exec("UPDATE accounts SET user_id = ? WHERE id = ?", f.user, dst).Error)
	pending, err := f.engine.RecordTransaction(context.Background(), f.user, in)
	require.NoError(t, err)
	// the destination leg fails after the source leg was written
	require.NoError(t, f.db.Exec("UPDATE accounts SET user_id = ? WHERE id = ?", f.user+100, dst).Error)

	_, err = f.engine.UpdateTransactionStatus(context.Background(), f.user, pending.ID, models.StatusCompleted)
	require.Error(t, err)

	assert.Equal(t, "1000.00", f.balance(t, src))
	assert.Equal(t, "200.00", f.balance(t, dst))
	var reloaded models.Transaction
	require.NoError(t, f.db.Take(&reloaded, pending.ID).Error)
	assert.Equal(t, models.StatusPending, reloaded.Status)
}

func TestRecordTransaction_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.account(t, f.user, "Main", "100.00")
	other := f.account(t, f.user, "Other", "0")
	bob := f.newUser(t, "bob")
	bobs := f.account(t, bob, "Bob", "0")
	bobCategory, err := f.store.CreateCategory(ctx, bob, store.NewCategory{Name: "Bob's"})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   NewTransaction
		want error
	}{
		{"zero amount", NewTransaction{AccountID: acc, Title: "x", Amount: dec("0"), Type: models.TransactionIncoming}, ledgererror.ErrInvalidAmount},
		{"negative amount", NewTransaction{AccountID: acc, Title: "x", Amount: dec("-1"), Type: models.TransactionIncoming}, ledgererror.ErrInvalidAmount},
		{"unknown type", NewTransaction{AccountID: acc, Title: "x", Amount: dec("1"), Type: "refund"}, ledgererror.ErrValidation},
		{"unknown status", NewTransaction{AccountID: acc, Title: "x", Amount: dec("1"), Type: models.TransactionIncoming, Status: "void"}, ledgererror.ErrValidation},
		{"missing title", NewTransaction{AccountID: acc, Amount: dec("1"), Type: models.TransactionIncoming}, ledgererror.ErrValidation},
		{"transfer without destination", NewTransaction{AccountID: acc, Title: "x", Amount: dec("1"), Type: models.TransactionTransfer}, ledgererror.ErrMissingDestination},
		{"transfer to itself", NewTransaction{AccountID: acc, DestinationAccountID: &acc, Title: "x", Amount: dec("1"), Type: models.TransactionTransfer}, ledgererror.ErrValidation},
		{"destination on outgoing", NewTransaction{AccountID: acc, DestinationAccountID: &other, Title: "x", Amount: dec("1"), Type: models.TransactionOutgoing}, ledgererror.ErrValidation},
		{"foreign account", NewTransaction{AccountID: bobs, Title: "x", Amount: dec("1"), Type: models.TransactionIncoming}, ledgererror.ErrNotFound},
		{"foreign destination", NewTransaction{AccountID: acc, DestinationAccountID: &bobs, Title: "x", Amount: dec("1"), Type: models.TransactionTransfer}, ledgererror.ErrNotFound},
		{"foreign category", NewTransaction{AccountID: acc, CategoryID: &bobCategory.ID, Title: "x", Amount: dec("1"), Type: models.TransactionOutgoing}, ledgererror.ErrNotFound},
		{"unknown organization", NewTransaction{AccountID: acc, OrganizationID: uintPtr(42), Title: "x", Amount: dec("1"), Type: models.TransactionOutgoing}, ledgererror.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.RecordTransaction(ctx, f.user, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, "100.00", f.balance(t, acc))
	assert.Equal(t, "0.00", f.balance(t, bobs))
	var count int64
	require.NoError(t, f.db.Model(&models.Transaction{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestRecordTransaction_InactiveAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.account(t, f.user, "Closed", "10.00")
	_, err := f.store.DeactivateAccount(ctx, f.user, acc)
	require.NoError(t, err)

	_, err = f.engine.RecordTransaction(ctx, f.user, NewTransaction{
		AccountID: acc, Title: "x", Amount: dec("1"), Type: models.TransactionIncoming,
	})
	assert.ErrorIs(t, err, ledgererror.ErrValidation)
}

func TestUpdateTransactionStatus_AppliesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.account(t, f.user, "Main", "100.00")

	tx, err := f.engine.RecordTransaction(ctx, f.user, NewTransaction{
		AccountID: acc, Title: "Salary", Amount: dec("40.00"), Type: models.TransactionIncoming,
		Status: models.StatusPending,
	})
	require.NoError(t, err)
	assert.Equal(t, "100.00", f.balance(t, acc))

	for i := 0; i < 3; i++ {
		updated, err := f.engine.UpdateTransactionStatus(ctx, f.user, tx.ID, models.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, models.StatusCompleted, updated.Status)
		assert.Equal(t, "140.00", f.balance(t, acc))
	}
}

func TestUpdateTransactionStatus_CompletedIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.account(t, f.user, "Main", "100.00")

	tx, err := f.engine.RecordTransaction(ctx, f.user, NewTransaction{
		AccountID: acc, Title: "Rent", Amount: dec("60.00"), Type: models.TransactionOutgoing,
	})
	require.NoError(t, err)
	once := f.balance(t, acc)

	_, err = f.engine.UpdateTransactionStatus(ctx, f.user, tx.ID, models.StatusCompleted)
	require.NoError(t, err)
	title := "Rent May"
	_, err = f.engine.UpdateTransaction(ctx, f.user, tx.ID, TransactionPatch{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, once, f.balance(t, acc))
	assert.Equal(t, "40.00", once)
}

func TestUpdateTransactionStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.account(t, f.user, "Main", "100.00")
	record := func(status models.TransactionStatus) *models.Transaction {
		tx, err := f.engine.RecordTransaction(ctx, f.user, NewTransaction{
			AccountID: acc, Title: "x", Amount: dec("10.00"), Type: models.TransactionOutgoing, Status: status,
		})
		require.NoError(t, err)
		return tx
	}

	pending := record(models.StatusPending)
	failed, err := f.engine.UpdateTransactionStatus(ctx, f.user, pending.ID, models.StatusFailed)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, failed.Status)
	assert.Equal(t, "100.00", f.balance(t, acc))

	_, err = f.engine.UpdateTransactionStatus(ctx, f.user, failed.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, "90.00", f.balance(t, acc))

	completed := record(models.StatusCompleted)
	_, err = f.engine.UpdateTransactionStatus(ctx, f.user, completed.ID, models.StatusPending)
	assert.ErrorIs(t, err, ledgererror.ErrValidation)
	_, err = f.engine.UpdateTransactionStatus(ctx, f.user, completed.ID, models.StatusFailed)
	assert.ErrorIs(t, err, ledgererror.ErrValidation)
	assert.Equal(t, "80.00", f.balance(t, acc))

	_, err = f.engine.UpdateTransactionStatus(ctx, f.user, completed.ID, "void")
	assert.ErrorIs(t, err, ledgererror.ErrValidation)

	_, err = f.engine.UpdateTransactionStatus(ctx, f.user, 9999, models.StatusCompleted)
	assert.ErrorIs(t, err, ledgererror.ErrNotFound)
}

func TestUpdateTransactionStatus_ByOrganizationMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	member := f.newUser(t, "member")
	orgs := scope.NewService(f.db, f.log)
	org, err := orgs.CreateOrganization(ctx, f.user, scope.NewOrganization{Name: "Acme"})
	require.NoError(t, err)
	_, err = orgs.AddMember(ctx, f.user, org.ID, member, models.RoleAccountant)
	require.NoError(t, err)
	acc := f.account(t, f.user, "Ops", "500.00")

	tx, err := f.engine.RecordTransaction(ctx, f.user, NewTransaction{
		AccountID: acc, Title: "Invoice", Amount: dec("120.00"), Type: models.TransactionIncoming,
		Status: models.StatusPending, OrganizationID: &org.ID,
	})
	require.NoError(t, err)

	_, err = f.engine.UpdateTransactionStatus(ctx, member, tx.ID, models.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, "620.00", f.balance(t, acc))
}

func TestUpdateTransaction_EditsDescriptiveFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.account(t, f.user, "Main", "100.00")
	category, err := f.store.CreateCategory(ctx, f.user, store.NewCategory{Name: "Food"})
	require.NoError(t, err)

	tx, err := f.engine.RecordTransaction(ctx, f.user, NewTransaction{
		AccountID: acc, Title: "Lunch", Amount: dec("12.00"), Type: models.TransactionOutgoing,
	})
	require.NoError(t, err)

	newDate := time.Date(2024, time.May, 10, 18, 30, 0, 0, time.UTC)
	tags := " work, client "
	updated, err := f.engine.UpdateTransaction(ctx, f.user, tx.ID, TransactionPatch{
		CategoryID:      &category.ID,
		TransactionDate: &newDate,
		Tags:            &tags,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.CategoryID)
	assert.Equal(t, category.ID, *updated.CategoryID)
	assert.True(t, time.Date(2024, time.May, 10, 0, 0, 0, 0, time.UTC).Equal(updated.TransactionDate))
	assert.Equal(t, "work, client", updated.Tags)
	assert.Equal(t, "88.00", f.balance(t, acc))

	empty := " "
	_, err = f.engine.UpdateTransaction(ctx, f.user, tx.ID, TransactionPatch{Title: &empty})
	assert.ErrorIs(t, err, ledgererror.ErrValidation)

	bad := models.RecurrenceType("hourly")
	_, err = f.engine.UpdateTransaction(ctx, f.user, tx.ID, TransactionPatch{RecurrenceType: &bad})
	assert.ErrorIs(t, err, ledgererror.ErrValidation)
}

func TestContributeScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	goal, err := f.store.CreateGoal(ctx, f.user, store.NewGoal{
		Title:        "Emergency fund",
		TargetAmount: dec("1000.00"),
		TargetDate:   today.AddDate(1, 0, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, models.GoalPending, goal.Status())
	assert.Equal(t, 0, goal.Progress())

	goal, err = f.engine.Contribute(ctx, f.user, goal.ID, dec("250.00"), false)
	require.NoError(t, err)
	assert.Equal(t, "250.00", models.FormatCents(goal.CurrentAmountCents))
	assert.Equal(t, 25, goal.Progress())
	assert.Equal(t, models.GoalInProgress, goal.Status())

	goal, err = f.engine.Contribute(ctx, f.user, goal.ID, dec("750.00"), false)
	require.NoError(t, err)
	assert.Equal(t, 100, goal.Progress())
	assert.Equal(t, models.GoalCompleted, goal.Status())

	goal, err = f.engine.Contribute(ctx, f.user, goal.ID, dec("500.00"), false)
	require.NoError(t, err)
	assert.Equal(t, 100, goal.Progress())
}

func TestContribute_LinkedAccount(t *testing.T) {
	for _, goalType := range models.GoalTypes {
		t.Run(string(goalType), func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			acc := f.account(t, f.user, "Linked", "500.00")
			goal, err := f.store.CreateGoal(ctx, f.user, store.NewGoal{
				Title: "Goal", GoalType: goalType, TargetAmount: dec("1000.00"), LinkedAccountID: &acc,
			})
			require.NoError(t, err)

			_, err = f.engine.Contribute(ctx, f.user, goal.ID, dec("100.00"), false)
			require.NoError(t, err)
			assert.Equal(t, "500.00", f.balance(t, acc))

			_, err = f.engine.Contribute(ctx, f.user, goal.ID, dec("100.00"), true)
			require.NoError(t, err)
			assert.Equal(t, "400.00", f.balance(t, acc))
		})
	}
}

func TestContribute_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	bob := f.newUser(t, "bob")
	goal, err := f.store.CreateGoal(ctx, bob, store.NewGoal{Title: "Bob's", TargetAmount: dec("10")})
	require.NoError(t, err)

	_, err = f.engine.Contribute(ctx, bob, goal.ID, dec("0"), false)
	assert.ErrorIs(t, err, ledgererror.ErrInvalidAmount)

	_, err = f.engine.Contribute(ctx, f.user, goal.ID, dec("5"), false)
	assert.ErrorIs(t, err, ledgererror.ErrNotFound)

	reloaded, err := f.store.GetGoal(ctx, bob, goal.ID)
	require.NoError(t, err)
	assert.Zero(t, reloaded.CurrentAmountCents)
}
