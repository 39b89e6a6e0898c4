package scope

import (
	"context"
	"errors"
	"strings"
	"time"

	"fjacquet/fintrack/internal/ledgererror"
	"fjacquet/fintrack/internal/logging"
	"fjacquet/fintrack/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service performs organization membership and project team changes.
type Service struct {
	db  *gorm.DB
	log logging.Logger
}

// NewService creates a membership service.
func NewService(db *gorm.DB, log logging.Logger) *Service {
	return &Service{db: db, log: log}
}

// NewOrganization holds the fields accepted when creating an organization.
type NewOrganization struct {
	Name            string
	Description     string
	OrgType         models.OrgType
	TaxID           string
	FiscalYearStart *time.Time
}

// NewProject holds the fields accepted when creating a project.
type NewProject struct {
	OrganizationID uint
	Name           string
	Description    string
	ManagerID      *uint
	StartDate      *time.Time
	EndDate        *time.Time
	BudgetCents    int64
	Status         models.ProjectStatus
}

// CreateOrganization creates an organization owned by ownerID and records
// the owner as an admin member in the same store transaction.
func (s *Service) CreateOrganization(ctx context.Context, ownerID uint, in NewOrganization) (*models.Organization, error) {
	const op = "scope.CreateOrganization"

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "organization name is required")
	}
	if in.OrgType == "" {
		in.OrgType = models.OrgBusiness
	}
	if !in.OrgType.Valid() {
		return nil, ledgererror.Newf(ledgererror.KindValidation, op, "invalid organization type: %s", in.OrgType)
	}
	slug := models.Slugify(name)
	if slug == "" {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "organization name must contain letters or digits")
	}

	org := models.Organization{
		Name:            name,
		Slug:            slug,
		Description:     in.Description,
		OrgType:         in.OrgType,
		OwnerID:         ownerID,
		TaxID:           in.TaxID,
		FiscalYearStart: in.FiscalYearStart,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireUser(tx, op, ownerID); err != nil {
			return err
		}
		var taken int64
		if err := tx.Model(&models.Organization{}).Where("slug = ?", slug).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return ledgererror.Newf(ledgererror.KindValidation, op, "organization slug %q is already taken", slug)
		}
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		return tx.Create(&models.OrganizationMember{
			OrganizationID: org.ID,
			UserID:         ownerID,
			Role:           models.RoleAdmin,
		}).Error
	})
	if err != nil {
		return nil, ledgererror.Store(op, "organization", err)
	}

	s.log.Info("Organization created",
		logging.F(logging.FieldOrgID, org.ID),
		logging.F(logging.FieldUserID, ownerID))
	return &org, nil
}

// CreateProject creates a project inside an organization the actor manages.
// A manager, when given, must be a member of that organization.
func (s *Service) CreateProject(ctx context.Context, actorID uint, in NewProject) (*models.Project, error) {
	const op = "scope.CreateProject"

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "project name is required")
	}
	if in.Status == "" {
		in.Status = models.ProjectPlanning
	}
	if !in.Status.Valid() {
		return nil, ledgererror.Newf(ledgererror.KindValidation, op, "invalid project status: %s", in.Status)
	}
	if in.BudgetCents < 0 {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "project budget cannot be negative")
	}
	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, ledgererror.New(ledgererror.KindValidation, op, "project end date is before its start date")
	}

	project := models.Project{
		OrganizationID: in.OrganizationID,
		Name:           name,
		Slug:           models.ScopedSlug(name, in.OrganizationID),
		Description:    in.Description,
		ManagerID:      in.ManagerID,
		StartDate:      in.StartDate,
		EndDate:        in.EndDate,
		BudgetCents:    in.BudgetCents,
		Status:         in.Status,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := Organization(tx, actorID, in.OrganizationID)
		if err != nil {
			return err
		}
		if err := authorize(tx, op, org, actorID); err != nil {
			return err
		}
		if in.ManagerID != nil {
			member, err := IsMember(tx, org.ID, *in.ManagerID)
			if err != nil {
				return err
			}
			if !member {
				return ledgererror.New(ledgererror.KindValidation, op, "project manager must be a member of the organization")
			}
		}
		return tx.Create(&project).Error
	})
	if err != nil {
		return nil, ledgererror.Store(op, "project", err)
	}

	s.log.Info("Project created",
		logging.F(logging.FieldProjectID, project.ID),
		logging.F(logging.FieldOrgID, project.OrganizationID))
	return &project, nil
}

// AddMember adds userID to the organization with role. An empty role
// defaults to viewer.
func (s *Service) AddMember(ctx context.Context, actorID, orgID, userID uint, role models.MemberRole) (*models.OrganizationMember, error) {
	const op = "scope.AddMember"

	if role == "" {
		role = models.RoleViewer
	}
	if !role.Valid() {
		return nil, invalidRole(op, role)
	}

	member := models.OrganizationMember{OrganizationID: orgID, UserID: userID, Role: role}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := Organization(tx, actorID, orgID)
		if err != nil {
			return err
		}
		if err := authorize(tx, op, org, actorID); err != nil {
			return err
		}
		if err := requireUser(tx, op, userID); err != nil {
			return err
		}
		exists, err := IsMember(tx, orgID, userID)
		if err != nil {
			return err
		}
		if exists {
			return ledgererror.New(ledgererror.KindAlreadyMember, op, "user is already a member of this organization")
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, ledgererror.Store(op, "membership", err)
	}

	s.log.Info("Member added",
		logging.F(logging.FieldOrgID, orgID),
		logging.F(logging.FieldUserID, userID),
		logging.F("role", role))
	return &member, nil
}

// RemoveMember removes userID from the organization and from every team of
// the organization's projects. The owner cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, actorID, orgID, userID uint) error {
	const op = "scope.RemoveMember"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := Organization(tx, actorID, orgID)
		if err != nil {
			return err
		}
		if err := authorize(tx, op, org, actorID); err != nil {
			return err
		}
		if org.OwnerID == userID {
			return ledgererror.New(ledgererror.KindCannotRemoveOwner, op, "cannot remove the organization owner")
		}
		res := tx.Where("organization_id = ? AND user_id = ?", orgID, userID).Delete(&models.OrganizationMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ledgererror.NotFound(op, "member")
		}
		return tx.Where("user_id = ? AND project_id IN (SELECT id FROM projects WHERE organization_id = ?)", userID, orgID).
			Delete(&models.ProjectTeamMember{}).Error
	})
	if err != nil {
		return ledgererror.Store(op, "membership", err)
	}

	s.log.Info("Member removed",
		logging.F(logging.FieldOrgID, orgID),
		logging.F(logging.FieldUserID, userID))
	return nil
}

// UpdateMemberRole changes the role of an existing member.
func (s *Service) UpdateMemberRole(ctx context.Context, actorID, orgID, userID uint, role models.MemberRole) (*models.OrganizationMember, error) {
	const op = "scope.UpdateMemberRole"

	if !role.Valid() {
		return nil, invalidRole(op, role)
	}

	var member models.OrganizationMember
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		org, err := Organization(tx, actorID, orgID)
		if err != nil {
			return err
		}
		if err := authorize(tx, op, org, actorID); err != nil {
			return err
		}
		if err := tx.Where("organization_id = ? AND user_id = ?", orgID, userID).Take(&member).Error; err != nil {
			return ledgererror.Store(op, "member", err)
		}
		member.Role = role
		return tx.Model(&member).Update("role", role).Error
	})
	if err != nil {
		return nil, ledgererror.Store(op, "membership", err)
	}

	s.log.Info("Member role updated",
		logging.F(logging.FieldOrgID, orgID),
		logging.F(logging.FieldUserID, userID),
		logging.F("role", role))
	return &member, nil
}

// AddTeamMember puts userID on the project team. The user must already be a
// member of the project's organization. Adding an existing team member is a
// no-op.
func (s *Service) AddTeamMember(ctx context.Context, actorID, projectID, userID uint) error {
	const op = "scope.AddTeamMember"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, org, err := s.manageableProject(tx, op, actorID, projectID)
		if err != nil {
			return err
		}
		if err := requireUser(tx, op, userID); err != nil {
			return err
		}
		member, err := IsMember(tx, org.ID, userID)
		if err != nil {
			return err
		}
		if !member {
			return ledgererror.New(ledgererror.KindValidation, op, "user must be a member of the organization")
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.ProjectTeamMember{ProjectID: project.ID, UserID: userID}).Error
	})
	if err != nil {
		return ledgererror.Store(op, "project", err)
	}

	s.log.Info("Team member added",
		logging.F(logging.FieldProjectID, projectID),
		logging.F(logging.FieldUserID, userID))
	return nil
}

// RemoveTeamMember takes userID off the project team. Removing a user who is
// not on the team is a no-op.
func (s *Service) RemoveTeamMember(ctx context.Context, actorID, projectID, userID uint) error {
	const op = "scope.RemoveTeamMember"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project, _, err := s.manageableProject(tx, op, actorID, projectID)
		if err != nil {
			return err
		}
		if err := requireUser(tx, op, userID); err != nil {
			return err
		}
		return tx.Where("project_id = ? AND user_id = ?", project.ID, userID).
			Delete(&models.ProjectTeamMember{}).Error
	})
	if err != nil {
		return ledgererror.Store(op, "project", err)
	}

	s.log.Info("Team member removed",
		logging.F(logging.FieldProjectID, projectID),
		logging.F(logging.FieldUserID, userID))
	return nil
}

// TeamMembers returns the user ids on a project team visible to userID.
func (s *Service) TeamMembers(ctx context.Context, userID, projectID uint) ([]uint, error) {
	const op = "scope.TeamMembers"

	db := s.db.WithContext(ctx)
	if _, err := Project(db, userID, projectID); err != nil {
		return nil, err
	}
	var ids []uint
	if err := db.Model(&models.ProjectTeamMember{}).Where("project_id = ?", projectID).
		Order("user_id").Pluck("user_id", &ids).Error; err != nil {
		return nil, ledgererror.Store(op, "project", err)
	}
	return ids, nil
}

// Members lists the memberships of an organization visible to userID.
func (s *Service) Members(ctx context.Context, userID, orgID uint) ([]models.OrganizationMember, error) {
	const op = "scope.Members"

	db := s.db.WithContext(ctx)
	if _, err := Organization(db, userID, orgID); err != nil {
		return nil, err
	}
	var members []models.OrganizationMember
	if err := db.Where("organization_id = ?", orgID).Order("user_id").Find(&members).Error; err != nil {
		return nil, ledgererror.Store(op, "membership", err)
	}
	return members, nil
}

func (s *Service) manageableProject(tx *gorm.DB, op string, actorID, projectID uint) (*models.Project, *models.Organization, error) {
	project, err := Project(tx, actorID, projectID)
	if err != nil {
		return nil, nil, err
	}
	var org models.Organization
	if err := tx.Where("id = ?", project.OrganizationID).Take(&org).Error; err != nil {
		return nil, nil, ledgererror.Store(op, "organization", err)
	}
	if err := authorize(tx, op, &org, actorID); err != nil {
		return nil, nil, err
	}
	return project, &org, nil
}

// authorize requires actorID to own org or hold an admin or manager role in it.
func authorize(tx *gorm.DB, op string, org *models.Organization, actorID uint) error {
	if org.OwnerID == actorID {
		return nil
	}
	var member models.OrganizationMember
	err := tx.Where("organization_id = ? AND user_id = ?", org.ID, actorID).Take(&member).Error
	switch {
	case err == nil && member.Role.CanManage():
		return nil
	case err == nil, errors.Is(err, gorm.ErrRecordNotFound):
		return ledgererror.New(ledgererror.KindForbidden, op, "organization admin or manager role required")
	default:
		return ledgererror.Store(op, "membership", err)
	}
}

func requireUser(tx *gorm.DB, op string, userID uint) error {
	var count int64
	if err := tx.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error; err != nil {
		return ledgererror.Store(op, "user", err)
	}
	if count == 0 {
		return ledgererror.NotFound(op, "user")
	}
	return nil
}

func invalidRole(op string, role models.MemberRole) error {
	return ledgererror.Newf(ledgererror.KindInvalidRole, op,
		"invalid role %q: choose from admin, manager, accountant, viewer", role)
}
