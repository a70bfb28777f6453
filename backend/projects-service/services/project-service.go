package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"projecthub/backend/auth"
	"projecthub/backend/logging"
	"projecthub/backend/metrics"
	"projecthub/backend/projects-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectService struct {
	projects      ProjectRepository
	members       MemberRepository
	organizations OrganizationMembership
	now           func() time.Time
}

func NewProjectService(projects ProjectRepository, members MemberRepository, organizations OrganizationMembership) *ProjectService {
	return &ProjectService{projects: projects, members: members, organizations: organizations, now: time.Now}
}

func (s *ProjectService) loadActive(ctx context.Context, id string) (*models.Project, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	p, err := s.projects.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrProjectNotFound
	}
	return p, nil
}

func (s *ProjectService) activeMember(ctx context.Context, projectID string, userID int64) (*models.ProjectMember, error) {
	m, err := s.members.Find(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, ErrMemberNotFound
	}
	return m, nil
}

// authorize checks the caller's project role. System administrators pass.
func (s *ProjectService) authorize(ctx context.Context, actor auth.Principal, projectID string, managerOnly bool) error {
	if actor.IsSystemAdmin() {
		return nil
	}
	m, err := s.activeMember(ctx, projectID, actor.UserID)
	if errors.Is(err, ErrMemberNotFound) {
		return ErrNotMember
	}
	if err != nil {
		return err
	}
	if managerOnly && m.Role != models.RoleManager {
		return ErrForbidden
	}
	return nil
}

// CreateProject creates a project inside an organization the caller belongs
// to. The creator becomes its first manager.
func (s *ProjectService) CreateProject(ctx context.Context, actor auth.Principal, req models.CreateProjectRequest) (*models.Project, error) {
	if req.StartDate != nil && req.ExpectedEndDate != nil && req.ExpectedEndDate.Before(*req.StartDate) {
		return nil, ErrInvalidDates
	}
	if !actor.IsSystemAdmin() {
		ok, err := s.organizations.IsMember(ctx, actor.Token, req.OrganizationID, actor.UserID)
		if err != nil {
			return nil, fmt.Errorf("check organization membership: %w", err)
		}
		if !ok {
			return nil, ErrNotOrgMember
		}
	}

	now := s.now().UTC()
	project := &models.Project{
		ID:              primitive.NewObjectID(),
		OrganizationID:  req.OrganizationID,
		Name:            req.Name,
		Description:     req.Description,
		StartDate:       req.StartDate,
		ExpectedEndDate: req.ExpectedEndDate,
		MaxMembers:      req.MaxMembers,
		CreatedByUserID: actor.UserID,
		IsActive:        true,
		CreatedAt:       now,
	}
	if err := s.projects.Insert(ctx, project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	manager := &models.ProjectMember{
		ID:        primitive.NewObjectID(),
		ProjectID: project.ID.Hex(),
		UserID:    actor.UserID,
		Role:      models.RoleManager,
		IsActive:  true,
		JoinedAt:  now,
	}
	if err := s.members.Insert(ctx, manager); err != nil {
		return nil, fmt.Errorf("failed to add project manager: %w", err)
	}
	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s (%s) created in organization %s by user %d", project.Name, project.ID.Hex(), req.OrganizationID, actor.UserID)
	return project, nil
}

func (s *ProjectService) GetProject(ctx context.Context, actor auth.Principal, id string) (*models.Project, error) {
	p, err := s.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, id, false); err != nil {
		return nil, err
	}
	return p, nil
}

// ListByOrganization returns the organization's active projects the caller
// can see.
func (s *ProjectService) ListByOrganization(ctx context.Context, actor auth.Principal, orgID string) ([]models.Project, error) {
	all, err := s.projects.FindByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	visible := []models.Project{}
	for _, p := range all {
		if !p.IsActive {
			continue
		}
		if err := s.authorize(ctx, actor, p.ID.Hex(), false); err != nil {
			if errors.Is(err, ErrNotMember) {
				continue
			}
			return nil, err
		}
		visible = append(visible, p)
	}
	return visible, nil
}

func (s *ProjectService) GetMembers(ctx context.Context, actor auth.Principal, projectID string) ([]models.ProjectMember, error) {
	if _, err := s.loadActive(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, projectID, false); err != nil {
		return nil, err
	}
	return s.members.ListActive(ctx, projectID)
}

// GetMember is the internal lookup the task service uses for authorization.
func (s *ProjectService) GetMember(ctx context.Context, projectID string, userID int64) (*models.ProjectMember, error) {
	if _, err := s.loadActive(ctx, projectID); err != nil {
		return nil, err
	}
	return s.activeMember(ctx, projectID, userID)
}

func (s *ProjectService) AddMember(ctx context.Context, actor auth.Principal, projectID string, req models.AddMemberRequest) (*models.ProjectMember, error) {
	project, err := s.loadActive(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, projectID, true); err != nil {
		return nil, err
	}
	ok, err := s.organizations.IsMember(ctx, actor.Token, project.OrganizationID, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("check organization membership: %w", err)
	}
	if !ok {
		return nil, ErrNotOrgMember
	}

	existing, err := s.members.Find(ctx, projectID, req.UserID)
	if err == nil && existing.IsActive {
		return nil, ErrAlreadyMember
	}
	if err != nil && !errors.Is(err, ErrMemberNotFound) {
		return nil, err
	}
	if project.MaxMembers > 0 {
		active, err := s.members.ListActive(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if len(active) >= project.MaxMembers {
			return nil, ErrProjectFull
		}
	}

	role := req.Role
	if role == "" {
		role = models.RoleMember
	}
	now := s.now().UTC()
	if existing != nil {
		if err := s.members.Reactivate(ctx, existing.ID, role, now); err != nil {
			return nil, err
		}
		existing.Role, existing.IsActive, existing.JoinedAt, existing.RemovedAt = role, true, now, nil
		logging.Logger.Infof("Event ID: PROJECT_MEMBER_REACTIVATED, Description: User %d rejoined project %s as %s", req.UserID, projectID, role)
		return existing, nil
	}

	m := &models.ProjectMember{
		ID:        primitive.NewObjectID(),
		ProjectID: projectID,
		UserID:    req.UserID,
		Role:      role,
		IsActive:  true,
		JoinedAt:  now,
	}
	if err := s.members.Insert(ctx, m); err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: PROJECT_MEMBER_ADDED, Description: User %d added to project %s as %s by %d", req.UserID, projectID, role, actor.UserID)
	return m, nil
}

func (s *ProjectService) ChangeMemberRole(ctx context.Context, actor auth.Principal, projectID string, userID int64, role models.ProjectRole) (*models.ProjectMember, error) {
	if _, err := s.loadActive(ctx, projectID); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, actor, projectID, true); err != nil {
		return nil, err
	}
	target, err := s.activeMember(ctx, projectID, userID)
	if err != nil {
		return nil, err
	}
	if target.Role == models.RoleManager && role != models.RoleManager {
		if err := s.requireAnotherManager(ctx, projectID, userID); err != nil {
			return nil, err
		}
	}
	if err := s.members.UpdateRole(ctx, target.ID, role); err != nil {
		return nil, err
	}
	target.Role = role
	logging.Logger.Infof("Event ID: PROJECT_ROLE_CHANGED, Description: User %d in project %s is now %s", userID, projectID, role)
	return target, nil
}

func (s *ProjectService) RemoveMember(ctx context.Context, actor auth.Principal, projectID string, userID int64) error {
	if _, err := s.loadActive(ctx, projectID); err != nil {
		return err
	}
	if err := s.authorize(ctx, actor, projectID, actor.UserID != userID); err != nil {
		return err
	}
	target, err := s.activeMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleManager {
		if err := s.requireAnotherManager(ctx, projectID, userID); err != nil {
			return err
		}
	}
	if err := s.members.Deactivate(ctx, target.ID, s.now().UTC()); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: PROJECT_MEMBER_REMOVED, Description: User %d removed from project %s by %d", userID, projectID, actor.UserID)
	return nil
}

func (s *ProjectService) requireAnotherManager(ctx context.Context, projectID string, userID int64) error {
	active, err := s.members.ListActive(ctx, projectID)
	if err != nil {
		return err
	}
	for _, m := range active {
		if m.UserID != userID && m.Role == models.RoleManager {
			return nil
		}
	}
	return ErrLastManager
}

// BlockingRoles lists the projects where userID is the only active manager.
func (s *ProjectService) BlockingRoles(ctx context.Context, userID int64) (*models.BlockingRoles, error) {
	report := &models.BlockingRoles{UserID: userID, Reasons: []string{}}

	memberships, err := s.members.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load memberships of user %d: %w", userID, err)
	}
	for _, m := range memberships {
		if m.Role != models.RoleManager {
			continue
		}
		project, err := s.loadActive(ctx, m.ProjectID)
		if errors.Is(err, ErrProjectNotFound) || errors.Is(err, ErrInvalidID) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := s.requireAnotherManager(ctx, m.ProjectID, userID); errors.Is(err, ErrLastManager) {
			report.Reasons = append(report.Reasons, fmt.Sprintf("cannot delete: sole manager of project %s", project.Name))
		} else if err != nil {
			return nil, err
		}
	}
	report.Blocking = len(report.Reasons) > 0
	if report.Blocking {
		logging.Logger.Infof("Event ID: USER_BLOCKING_ROLES, Description: User %d blocks deletion: %v", userID, report.Reasons)
	}
	return report, nil
}

// CleanupUser deactivates every active project membership of userID.
func (s *ProjectService) CleanupUser(ctx context.Context, userID int64) (*models.CleanupReport, error) {
	n, err := s.members.DeactivateAllForUser(ctx, userID, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("deactivate project memberships of user %d: %w", userID, err)
	}
	metrics.CleanupRows.WithLabelValues("projects").Add(float64(n))
	logging.Logger.Infof("Event ID: USER_MEMBERSHIPS_DEACTIVATED, Description: Deactivated %d project memberships of user %d", n, userID)
	return &models.CleanupReport{UserID: userID, Deactivated: n}, nil
}
