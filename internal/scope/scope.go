// Package scope decides which entities a user may see or act on.
//
// Visibility is expressed as gorm scopes so the same predicate filters every
// list, read and aggregate query. Lookups through a scope that miss return a
// NotFound error whether the row is absent or merely out of reach.
package scope

import (
	"errors"

	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/models"

	"gorm.io/gorm"
)

// Scope narrows a query to the rows visible to one user.
type Scope func(*gorm.DB) *gorm.DB

const memberOrgs = "SELECT organization_id FROM organization_members WHERE user_id = ?"

// Owned limits rows to those whose user_id is userID. Accounts and goals are
// only ever visible to their owner.
func Owned(userID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

// Accounts returns the account visibility scope.
func Accounts(userID uint) Scope { return Owned(userID) }

// Goals returns the goal visibility scope.
func Goals(userID uint) Scope { return Owned(userID) }

// Shared limits rows to those the user owns or that belong to an organization
// the user is a member of. Ownership of referenced rows (such as the account
// of a transaction) plays no part.
func Shared(userID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(user_id = ? OR organization_id IN ("+memberOrgs+"))", userID, userID)
	}
}

// Transactions returns the transaction visibility scope.
func Transactions(userID uint) Scope { return Shared(userID) }

// Categories returns the category visibility scope.
func Categories(userID uint) Scope { return Shared(userID) }

// Budgets returns the budget visibility scope.
func Budgets(userID uint) Scope { return Shared(userID) }

// Reports returns the financial report visibility scope.
func Reports(userID uint) Scope { return Shared(userID) }

// Organizations limits organizations to those the user owns or belongs to.
func Organizations(userID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(owner_id = ? OR id IN ("+memberOrgs+"))", userID, userID)
	}
}

// Projects limits projects to those the user manages, is on the team of, or
// whose organization the user belongs to.
func Projects(userID uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(manager_id = ? OR id IN (SELECT project_id FROM project_team_members WHERE user_id = ?) OR organization_id IN ("+memberOrgs+"))",
			userID, userID, userID)
	}
}

// find loads the row with id through s, translating a miss into NotFound.
func find[T any](db *gorm.DB, s Scope, id uint, op, entity string) (*T, error) {
	var row T
	err := db.Scopes(s).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledgererror.NotFound(op, entity)
		}
		return nil, ledgererror.Store(op, entity, err)
	}
	return &row, nil
}

// Account loads an account visible to userID.
func Account(db *gorm.DB, userID, id uint) (*models.Account, error) {
	return find[models.Account](db, Accounts(userID), id, "scope.Account", "account")
}

// Goal loads a goal visible to userID.
func Goal(db *gorm.DB, userID, id uint) (*models.Goal, error) {
	return find[models.Goal](db, Goals(userID), id, "scope.Goal", "goal")
}

// Transaction loads a transaction visible to userID.
func Transaction(db *gorm.DB, userID, id uint) (*models.Transaction, error) {
	return find[models.Transaction](db, Transactions(userID), id, "scope.Transaction", "transaction")
}

// Category loads a category visible to userID.
func Category(db *gorm.DB, userID, id uint) (*models.Category, error) {
	return find[models.Category](db, Categories(userID), id, "scope.Category", "category")
}

// Budget loads a budget visible to userID.
func Budget(db *gorm.DB, userID, id uint) (*models.Budget, error) {
	return find[models.Budget](db, Budgets(userID), id, "scope.Budget", "budget")
}

// Report loads a financial report visible to userID.
func Report(db *gorm.DB, userID, id uint) (*models.FinancialReport, error) {
	return find[models.FinancialReport](db, Reports(userID), id, "scope.Report", "report")
}

// Organization loads an organization visible to userID.
func Organization(db *gorm.DB, userID, id uint) (*models.Organization, error) {
	return find[models.Organization](db, Organizations(userID), id, "scope.Organization", "organization")
}

// Project loads a project visible to userID.
func Project(db *gorm.DB, userID, id uint) (*models.Project, error) {
	return find[models.Project](db, Projects(userID), id, "scope.Project", "project")
}

// IsMember reports whether userID holds a membership row in orgID.
func IsMember(db *gorm.DB, orgID, userID uint) (bool, error) {
	var count int64
	err := db.Model(&models.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		Count(&count).Error
	if err != nil {
		return false, ledgererror.Store("scope.IsMember", "membership", err)
	}
	return count > 0, nil
}

// CountOrganizations counts the organizations userID owns or belongs to.
func CountOrganizations(db *gorm.DB, userID uint) (int64, error) {
	var count int64
	err := db.Model(&models.Organization{}).Scopes(Organizations(userID)).Count(&count).Error
	if err != nil {
		return 0, ledgererror.Store("scope.CountOrganizations", "organization", err)
	}
	return count, nil
}
