package aggregate

import (
	"context"

	"fjacquet/fintrack/internal/dateutils"
	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/models"

	"gorm.io/gorm"
)

// Lookup resolves the ids a transaction references into display names.
// Missing ids resolve to the empty string.
type Lookup struct {
	categories    map[uint]models.Category
	accounts      map[uint]string
	organizations map[uint]string
	projects      map[uint]string
}

// NewLookup builds a Lookup from already loaded entities.
func NewLookup(categories []models.Category, accounts []models.Account, orgs []models.Organization, projects []models.Project) Lookup {
	l := Lookup{
		categories:    make(map[uint]models.Category, len(categories)),
		accounts:      make(map[uint]string, len(accounts)),
		organizations: make(map[uint]string, len(orgs)),
		projects:      make(map[uint]string, len(projects)),
	}
	for _, c := range categories {
		l.categories[c.ID] = c
	}
	for _, a := range accounts {
		l.accounts[a.ID] = a.Title
	}
	for _, o := range orgs {
		l.organizations[o.ID] = o.Name
	}
	for _, p := range projects {
		l.projects[p.ID] = p.Name
	}
	return l
}

// CategoryName returns the name of a category, or "" when id is nil.
func (l Lookup) CategoryName(id *uint) string {
	if id == nil {
		return ""
	}
	return l.categories[*id].Name
}

// TaxDeductible reports whether the category is flagged tax deductible.
func (l Lookup) TaxDeductible(id *uint) bool {
	return id != nil && l.categories[*id].IsTaxDeductible
}

// View resolves one transaction.
func (l Lookup) View(t models.Transaction) TransactionView {
	v := TransactionView{
		ID:          t.ID,
		Date:        dateutils.ToISODate(t.TransactionDate),
		Title:       t.Title,
		Amount:      models.Money(t.AmountCents),
		Type:        t.Type,
		Status:      t.Status,
		Category:    l.CategoryName(t.CategoryID),
		Account:     l.accounts[t.AccountID],
		Reference:   t.ReferenceNumber,
		Description: t.Description,
	}
	if t.DestinationAccountID != nil {
		v.Destination = l.accounts[*t.DestinationAccountID]
	}
	if t.OrganizationID != nil {
		v.Organization = l.organizations[*t.OrganizationID]
	}
	if t.ProjectID != nil {
		v.Project = l.projects[*t.ProjectID]
	}
	return v
}

// Lookup loads the names referenced by txs. Names are resolved regardless of
// who owns the referenced row: a transaction visible to the caller shows its
// account and category even when another member owns them.
func (e *Engine) Lookup(ctx context.Context, txs []models.Transaction) (Lookup, error) {
	const op = "aggregate.Lookup"

	var categoryIDs, accountIDs, orgIDs, projectIDs []uint
	for _, t := range txs {
		accountIDs = append(accountIDs, t.AccountID)
		if t.DestinationAccountID != nil {
			accountIDs = append(accountIDs, *t.DestinationAccountID)
		}
		if t.CategoryID != nil {
			categoryIDs = append(categoryIDs, *t.CategoryID)
		}
		if t.OrganizationID != nil {
			orgIDs = append(orgIDs, *t.OrganizationID)
		}
		if t.ProjectID != nil {
			projectIDs = append(projectIDs, *t.ProjectID)
		}
	}

	db := e.db.WithContext(ctx)
	var (
		categories []models.Category
		accounts   []models.Account
		orgs       []models.Organization
		projects   []models.Project
	)
	for _, load := range []struct {
		ids  []uint
		dest interface{}
	}{
		{categoryIDs, &categories},
		{accountIDs, &accounts},
		{orgIDs, &orgs},
		{projectIDs, &projects},
	} {
		if err := findByIDs(db, load.ids, load.dest); err != nil {
			return Lookup{}, ledgererror.Store(op, "lookup", err)
		}
	}
	return NewLookup(categories, accounts, orgs, projects), nil
}

func findByIDs(db *gorm.DB, ids []uint, dest interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Where("id IN ?", unique(ids)).Find(dest).Error
}

func unique(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
