// Package store provides the entity repository: creation and listing of the
// ledger's entities with ownership and scope checks applied on the way in.
// Balance-affecting writes live in the ledger package, never here.
package store

import (
	"context"
	"strconv"
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

// Default presentation values for new categories and goals.
const (
	DefaultCategoryIcon  = "shopping-cart"
	DefaultCategoryColor = "zinc"
	DefaultGoalIcon      = "piggy-bank"
)

// Store reads and writes ledger entities.
type Store struct {
	db  *gorm.DB
	log logging.Logger
}

// New creates a Store.
func New(db *gorm.DB, log logging.Logger) *Store {
	return &Store{db: db, log: log}
}

// NewAccount holds the fields accepted when opening an account.
type NewAccount struct {
	Title          string
	Description    string
	Type           models.AccountType
	OpeningBalance decimal.Decimal
}

// NewCategory holds the fields accepted when creating a category.
type NewCategory struct {
	Name              string
	Icon              string
	Color             string
	IsBusinessExpense bool
	IsTaxDeductible   bool
	ParentID          *uint
	OrganizationID    *uint
}

// NewBudget holds the fields accepted when creating a budget.
type NewBudget struct {
	Title          string
	Amount         decimal.Decimal
	Period         models.BudgetPeriod
	StartDate      time.Time
	EndDate        *time.Time
	CategoryID     *uint
	OrganizationID *uint
	ProjectID      *uint
}

// NewGoal holds the fields accepted when creating a goal.
type NewGoal struct {
	Title           string
	Subtitle        string
	GoalType        models.GoalType
	TargetAmount    decimal.Decimal
	CurrentAmount   decimal.Decimal
	TargetDate      time.Time
	Icon            string
	LinkedAccountID *uint
	Description     string
}

// NewReport holds the fields accepted when defining a financial report.
type NewReport struct {
	Title          string
	ReportType     models.ReportType
	StartDate      time.Time
	EndDate        time.Time
	OrganizationID *uint
	Parameters     string
}

// TransactionFilter narrows ListTransactions. Zero values leave a dimension
// unrestricted; Start and End are inclusive calendar days.
type TransactionFilter struct {
	Start          time.Time
	End            time.Time
	OrganizationID *uint
	ProjectID      *uint
	Status         models.TransactionStatus
	Type           models.TransactionType
}

// CreateUser registers a user identity.
func (s *Store) CreateUser(ctx context.Context, username, email string) (*models.User, error) {
	const op = "store.CreateUser"

	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "username is required")
	}

	user := models.User{Username: username, Email: strings.TrimSpace(email)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ledgererror.Newf(ledgererror.KindValidation, op, "username %q is already taken", username)
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		return nil, ledgererror.Store(op, "user", err)
	}

	s.log.Info("User created", logging.F(logging.FieldUserID, user.ID))
	return &user, nil
}

// ResolveUser finds a user by numeric id or by username.
func (s *Store) ResolveUser(ctx context.Context, ref string) (*models.User, error) {
	const op = "store.ResolveUser"

	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "user reference is required")
	}

	var user models.User
	q := s.db.WithContext(ctx)
	if id, err := strconv.ParseUint(ref, 10, 64); err == nil {
		q = q.Where("id = ?", id)
	} else {
		q = q.Where("username = ?", ref)
	}
	if err := q.Take(&user).Error; err != nil {
		return nil, ledgererror.Store(op, "user", err)
	}
	return &user, nil
}

// CreateAccount opens an account for userID. The opening balance is the
// account's initial value; later changes go through the ledger.
func (s *Store) CreateAccount(ctx context.Context, userID uint, in NewAccount) (*models.Account, error) {
	const op = "store.CreateAccount"

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "account title is required")
	}
	if !in.Type.Valid() {
		return nil, ledgererror.Newf(ledgererror.KindValidation, op, "invalid account type: %s", in.Type)
	}

	account := models.Account{
		UserID:       userID,
		Title:        title,
		Description:  in.Description,
		BalanceCents: models.ToCents(in.OpeningBalance),
		Type:         in.Type,
		IsActive:     true,
		Slug:         models.ScopedSlug(title, userID),
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taken int64
		if err := tx.Model(&models.Account{}).Where("slug = ?", account.Slug).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ledgererror.Newf(ledgererror.KindValidation, op, "an account named %q already exists", title)
		}
		return tx.Create(&account).Error
	})
	if err != nil {
		return nil, ledgererror.Store(op, "account", err)
	}

	s.log.Info("Account created",
		logging.F(logging.FieldAccountID, account.ID),
		logging.F(logging.FieldUserID, userID))
	return &account, nil
}

// GetAccount returns an account owned by userID.
func (s *Store) GetAccount(ctx context.Context, userID, accountID uint) (*models.Account, error) {
	return scope.Account(s.db.WithContext(ctx), userID, accountID)
}

// ListAccounts returns userID's accounts ordered by title.
func (s *Store) ListAccounts(ctx context.Context, userID uint, activeOnly bool) ([]models.Account, error) {
	q := s.db.WithContext(ctx).Scopes(scope.Accounts(userID))
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var accounts []models.Account
	if err := q.Order("title, id").Find(&accounts).Error; err != nil {
		return nil, ledgererror.Store("store.ListAccounts", "account", err)
	}
	return accounts, nil
}

// DeactivateAccount marks an account inactive. Accounts are never deleted.
func (s *Store) DeactivateAccount(ctx context.Context, userID, accountID uint) (*models.Account, error) {
	const op = "store.DeactivateAccount"

	db := s.db.WithContext(ctx)
	account, err := scope.Account(db, userID, accountID)
	if err != nil {
		return nil, err
	}
	if err := db.Model(account).Update("is_active", false).Error; err != nil {
		return nil, ledgererror.Store(op, "account", err)
	}
	account.IsActive = false

	s.log.Info("Account deactivated", logging.F(logging.FieldAccountID, accountID))
	return account, nil
}

// CreateCategory creates a category. A parent must be visible to userID and
// an organization must be one userID belongs to.
func (s *Store) CreateCategory(ctx context.Context, userID uint, in NewCategory) (*models.Category, error) {
	const op = "store.CreateCategory"

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "category name is required")
	}

	category := models.Category{
		UserID:            userID,
		OrganizationID:    in.OrganizationID,
		ParentID:          in.ParentID,
		Name:              name,
		Icon:              valueOr(in.Icon, DefaultCategoryIcon),
		Color:             valueOr(in.Color, DefaultCategoryColor),
		IsBusinessExpense: in.IsBusinessExpense,
		IsTaxDeductible:   in.IsTaxDeductible,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireOrganization(tx, userID, in.OrganizationID); err != nil {
			return err
		}
		if in.ParentID != nil {
			if _, err := scope.Category(tx, userID, *in.ParentID); err != nil {
				return err
			}
		}
		return tx.Create(&category).Error
	})
	if err != nil {
		return nil, ledgererror.Store(op, "category", err)
	}

	s.log.Debug("Category created", logging.F("category_id", category.ID))
	return &category, nil
}

// SetCategoryParent re-parents a category, or detaches it when parentID is
// nil. A parent chain that leads back to the category is rejected.
func (s *Store) SetCategoryParent(ctx context.Context, userID, categoryID uint, parentID *uint) (*models.Category, error) {
	const op = "store.SetCategoryParent"

	var category *models.Category
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		category, err = scope.Category(tx, userID, categoryID)
		if err != nil {
			return err
		}
		if parentID != nil {
			if _, err := scope.Category(tx, userID, *parentID); err != nil {
				return err
			}
			if err := checkParentChain(tx, op, categoryID, *parentID); err != nil {
				return err
			}
		}
		category.ParentID = parentID
		return tx.Model(category).Update("parent_id", parentID).Error
	})
	if err != nil {
		return nil, ledgererror.Store(op, "category", err)
	}
	return category, nil
}

// ListCategories returns the categories visible to userID ordered by name.
func (s *Store) ListCategories(ctx context.Context, userID uint) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.WithContext(ctx).Scopes(scope.Categories(userID)).Order("name, id").Find(&categories).Error
	if err != nil {
		return nil, ledgererror.Store("store.ListCategories", "category", err)
	}
	return categories, nil
}

// CreateBudget creates a budget. Referenced category, organization and
// project must be visible to userID.
func (s *Store) CreateBudget(ctx context.Context, userID uint, in NewBudget) (*models.Budget, error) {
	const op = "store.CreateBudget"

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "budget title is required")
	}
	if in.Amount.IsNegative() {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "budget amount cannot be negative")
	}
	if in.Period == "" {
		in.Period = models.BudgetMonthly
	}
	if !in.Period.Valid() {
		return nil, ledgererror.Newf(ledgererror.KindValidation, op, "invalid budget period: %s", in.Period)
	}
	start := dateutils.Day(in.StartDate)
	if in.StartDate.IsZero() {
		start = dateutils.Day(time.Now())
	}
	if in.EndDate != nil {
		end := dateutils.Day(*in.EndDate)
		if end.Before(start) {
			return nil, ledgererror.New(ledgererror.KindValidation, op, "budget end date is before its start date")
		}
		in.EndDate = &end
	}

	budget := models.Budget{
		UserID:         userID,
		OrganizationID: in.OrganizationID,
		ProjectID:      in.ProjectID,
		CategoryID:     in.CategoryID,
		Title:          title,
		AmountCents:    models.ToCents(in.Amount),
		Period:         in.Period,
		StartDate:      start,
		EndDate:        in.EndDate,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireOrganization(tx, userID, in.OrganizationID); err != nil {
			return err
		}
		if in.CategoryID != nil {
			if _, err := scope.Category(tx, userID, *in.CategoryID); err != nil {
				return err
			}
		}
		if in.ProjectID != nil {
			if _, err := scope.Project(tx, userID, *in.ProjectID); err != nil {
				return err
			}
		}
		return tx.Create(&budget).Error
	})
	if err != nil {
		return nil, ledgererror.Store(op, "budget", err)
	}

	s.log.Info("Budget created",
		logging.F(logging.FieldBudgetID, budget.ID),
		logging.F(logging.FieldUserID, userID))
	return &budget, nil
}

// CreateGoal creates a goal. A linked account must belong to userID.
func (s *Store) CreateGoal(ctx context.Context, userID uint, in NewGoal) (*models.Goal, error) {
	const op = "store.CreateGoal"

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "goal title is required")
	}
	if in.GoalType == "" {
		in.GoalType = models.GoalSavings
	}
	if !in.GoalType.Valid() {
		return nil, ledgererror.Newf(ledgererror.KindValidation, op, "invalid goal type: %s", in.GoalType)
	}
	if !in.TargetAmount.IsPositive() {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "goal target amount must be positive")
	}
	if in.CurrentAmount.IsNegative() {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "goal current amount cannot be negative")
	}

	goal := models.Goal{
		UserID:             userID,
		Title:              title,
		Subtitle:           in.Subtitle,
		GoalType:           in.GoalType,
		TargetAmountCents:  models.ToCents(in.TargetAmount),
		CurrentAmountCents: models.ToCents(in.CurrentAmount),
		TargetDate:         dateutils.Day(in.TargetDate),
		Icon:               valueOr(in.Icon, DefaultGoalIcon),
		LinkedAccountID:    in.LinkedAccountID,
		Description:        in.Description,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.LinkedAccountID != nil {
			if _, err := scope.Account(tx, userID, *in.LinkedAccountID); err != nil {
				return err
			}
		}
		return tx.Create(&goal).Error
	})
	if err != nil {
		return nil, ledgererror.Store(op, "goal", err)
	}

	s.log.Info("Goal created",
		logging.F(logging.FieldGoalID, goal.ID),
		logging.F(logging.FieldUserID, userID))
	return &goal, nil
}

// GetGoal returns a goal owned by userID.
func (s *Store) GetGoal(ctx context.Context, userID, goalID uint) (*models.Goal, error) {
	return scope.Goal(s.db.WithContext(ctx), userID, goalID)
}

// CreateReport defines a financial report over [StartDate, EndDate].
func (s *Store) CreateReport(ctx context.Context, userID uint, in NewReport) (*models.FinancialReport, error) {
	const op = "store.CreateReport"

	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "report title is required")
	}
	if !in.ReportType.Valid() {
		return nil, ledgererror.Newf(ledgererror.KindValidation, op, "invalid report type: %s", in.ReportType)
	}
	start, end := dateutils.Day(in.StartDate), dateutils.Day(in.EndDate)
	if end.Before(start) {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "report end date is before its start date")
	}

	report := models.FinancialReport{
		UserID:         userID,
		OrganizationID: in.OrganizationID,
		Title:          title,
		ReportType:     in.ReportType,
		StartDate:      start,
		EndDate:        end,
		Parameters:     in.Parameters,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireOrganization(tx, userID, in.OrganizationID); err != nil {
			return err
		}
		return tx.Create(&report).Error
	})
	if err != nil {
		return nil, ledgererror.Store(op, "report", err)
	}

	s.log.Info("Report defined",
		logging.F(logging.FieldReportID, report.ID),
		logging.F(logging.FieldReportType, report.ReportType))
	return &report, nil
}

// ListTransactions returns the transactions visible to userID that match f,
// ordered by transaction date then id.
func (s *Store) ListTransactions(ctx context.Context, userID uint, f TransactionFilter) ([]models.Transaction, error) {
	q := s.db.WithContext(ctx).Scopes(scope.Transactions(userID), f.scope())
	var txs []models.Transaction
	if err := q.Order("transaction_date, id").Find(&txs).Error; err != nil {
		return nil, ledgererror.Store("store.ListTransactions", "transaction", err)
	}
	return txs, nil
}

func (f TransactionFilter) scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !f.Start.IsZero() {
			db = db.Where("transaction_date >= ?", dateutils.Day(f.Start))
		}
		if !f.End.IsZero() {
			db = db.Where("transaction_date <= ?", dateutils.Day(f.End))
		}
		if f.OrganizationID != nil {
			db = db.Where("organization_id = ?", *f.OrganizationID)
		}
		if f.ProjectID != nil {
			db = db.Where("project_id = ?", *f.ProjectID)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.Type != "" {
			db = db.Where("type = ?", f.Type)
		}
		return db
	}
}

// requireOrganization checks that a referenced organization is visible to userID.
func requireOrganization(tx *gorm.DB, userID uint, orgID *uint) error {
	if orgID == nil {
		return nil
	}
	_, err := scope.Organization(tx, userID, *orgID)
	return err
}

func valueOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
