package store

import (
	"context"
	"fmt"
	"os"
	"strings"

	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"
	"fjacquet/fintrack/internal/scope"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// maxCategoryDepth bounds parent-chain walks over rows written before the
// cycle check existed.
const maxCategoryDepth = 64

// CategorySpec is one category entry in an import file.
type CategorySpec struct {
	Name           string `yaml:"name"`
	Icon           string `yaml:"icon,omitempty"`
	Color          string `yaml:"color,omitempty"`
	Business       bool   `yaml:"business,omitempty"`
	TaxDeductible  bool   `yaml:"tax_deductible,omitempty"`
	Parent         string `yaml:"parent,omitempty"`
	OrganizationID *uint  `yaml:"organization_id,omitempty"`
}

// CategoryFile is the top-level layout of a category import file.
type CategoryFile struct {
	Categories []CategorySpec `yaml:"categories"`
}

// ImportResult summarises a category import.
type ImportResult struct {
	Created int `json:"created" yaml:"created"`
	Skipped int `json:"skipped" yaml:"skipped"`
}

// LoadCategoryFile reads category specs from a YAML file. Both a
// "categories:" document and a bare list are accepted.
func LoadCategoryFile(path string) ([]CategorySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}
	return ParseCategories(data)
}

// ParseCategories decodes category specs from YAML bytes.
func ParseCategories(data []byte) ([]CategorySpec, error) {
	var file CategoryFile
	if err := yaml.Unmarshal(data, &file); err == nil && len(file.Categories) > 0 {
		return file.Categories, nil
	}

	var specs []CategorySpec
	if err := yaml.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("error parsing categories file: %w", err)
	}
	return specs, nil
}

// ImportCategories creates the categories in specs for userID in one store
// transaction. Parents are resolved by name, first among the specs and then
// among categories already visible to userID. Names that already exist are
// skipped. A parent cycle among the specs or an unknown parent aborts the
// whole import.
func (s *Store) ImportCategories(ctx context.Context, userID uint, specs []CategorySpec) (*ImportResult, error) {
	const op = "store.ImportCategories"

	bySpec := make(map[string]CategorySpec, len(specs))
	for i, spec := range specs {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, ledgererror.Newf(ledgererror.KindValidation, op, "category #%d has no name", i+1)
		}
		if _, dup := bySpec[strings.ToLower(name)]; dup {
			return nil, ledgererror.Newf(ledgererror.KindValidation, op, "category %q is listed twice", name)
		}
		spec.Name = name
		spec.Parent = strings.TrimSpace(spec.Parent)
		bySpec[strings.ToLower(name)] = spec
	}
	order, err := importOrder(op, specs, bySpec)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []models.Category
		if err := tx.Scopes(scope.Categories(userID)).Find(&existing).Error; err != nil {
			return err
		}
		ids := make(map[string]uint, len(existing)+len(order))
		for _, c := range existing {
			key := strings.ToLower(c.Name)
			if _, seen := ids[key]; !seen {
				ids[key] = c.ID
			}
		}

		for _, spec := range order {
			key := strings.ToLower(spec.Name)
			if _, exists := ids[key]; exists {
				result.Skipped++
				continue
			}
			if err := requireOrganization(tx, userID, spec.OrganizationID); err != nil {
				return err
			}
			category := models.Category{
				UserID:            userID,
				OrganizationID:    spec.OrganizationID,
				Name:              spec.Name,
				Icon:              valueOr(spec.Icon, DefaultCategoryIcon),
				Color:             valueOr(spec.Color, DefaultCategoryColor),
				IsBusinessExpense: spec.Business,
				IsTaxDeductible:   spec.TaxDeductible,
			}
			if spec.Parent != "" {
				parentID, ok := ids[strings.ToLower(spec.Parent)]
				if !ok {
					return ledgererror.Newf(ledgererror.KindValidation, op,
						"category %q refers to unknown parent %q", spec.Name, spec.Parent)
				}
				category.ParentID = &parentID
			}
			if err := tx.Create(&category).Error; err != nil {
				return err
			}
			ids[key] = category.ID
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, ledgererror.Store(op, "category", err)
	}

	s.log.Info("Categories imported",
		logging.F(logging.FieldUserID, userID),
		logging.F(logging.FieldCount, result.Created),
		logging.F("skipped", result.Skipped))
	return result, nil
}

// importOrder sorts specs so every parent defined in the file precedes its
// children, and rejects parent cycles within the file.
func importOrder(op string, specs []CategorySpec, bySpec map[string]CategorySpec) ([]CategorySpec, error) {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(specs))
	order := make([]CategorySpec, 0, len(specs))

	var visit func(key string, path []string) error
	visit = func(key string, path []string) error {
		switch state[key] {
		case done:
			return nil
		case visiting:
			return ledgererror.Newf(ledgererror.KindValidation, op,
				"category parent cycle: %s", strings.Join(append(path, bySpec[key].Name), " -> "))
		}
		state[key] = visiting
		spec := bySpec[key]
		if parent := strings.ToLower(spec.Parent); parent != "" {
			if _, inFile := bySpec[parent]; inFile {
				if err := visit(parent, append(path, spec.Name)); err != nil {
					return err
				}
			}
		}
		state[key] = done
		order = append(order, spec)
		return nil
	}

	for _, spec := range specs {
		if err := visit(strings.ToLower(strings.TrimSpace(spec.Name)), nil); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// checkParentChain walks up from parentID and fails if the chain reaches
// categoryID.
func checkParentChain(tx *gorm.DB, op string, categoryID, parentID uint) error {
	current := &parentID
	for depth := 0; current != nil && depth < maxCategoryDepth; depth++ {
		if *current == categoryID {
			return ledgererror.New(ledgererror.KindValidation, op, "category cannot be its own ancestor")
		}
		var parent models.Category
		if err := tx.Select("id", "parent_id").Where("id = ?", *current).Take(&parent).Error; err != nil {
			return ledgererror.Store(op, "category", err)
		}
		current = parent.ParentID
	}
	return nil
}
