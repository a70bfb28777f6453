package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"projecthub/backend/auth"
	"projecthub/backend/logging"
	"projecthub/backend/organizations-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrganizationService struct {
	organizations OrganizationRepository
	members       MembershipRepository
	users         UserDirectory
	now           func() time.Time
}

func NewOrganizationService(organizations OrganizationRepository, members MembershipRepository, users UserDirectory) *OrganizationService {
	return &OrganizationService{organizations: organizations, members: members, users: users, now: time.Now}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

func (s *OrganizationService) loadActive(ctx context.Context, id string) (*models.Organization, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	org, err := s.organizations.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !org.IsActive {
		return nil, ErrOrganizationNotFound
	}
	return org, nil
}

func (s *OrganizationService) activeMember(ctx context.Context, orgID string, userID int64) (*models.OrganizationUser, error) {
	m, err := s.members.Find(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, ErrMemberNotFound
	}
	return m, nil
}

// authorize returns the caller's active membership. System administrators
// pass every check and get a nil membership.
func (s *OrganizationService) authorize(ctx context.Context, actor auth.Principal, orgID string, adminTier bool) (*models.OrganizationUser, error) {
	if actor.IsSystemAdmin() {
		return nil, nil
	}
	m, err := s.activeMember(ctx, orgID, actor.UserID)
	if errors.Is(err, ErrMemberNotFound) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	if adminTier && !m.Role.AdminTier() {
		return nil, ErrForbidden
	}
	return m, nil
}

func (s *OrganizationService) CreateOrganization(ctx context.Context, actor auth.Principal, req models.CreateOrganizationRequest) (*models.Organization, error) {
	now := s.now().UTC()
	org := &models.Organization{
		ID:              primitive.NewObjectID(),
		Name:            req.Name,
		Description:     req.Description,
		CreatedByUserID: actor.UserID,
		IsActive:        true,
		CreatedAt:       now,
	}
	if err := s.organizations.Insert(ctx, org); err != nil {
		return nil, err
	}
	owner := &models.OrganizationUser{
		ID:             primitive.NewObjectID(),
		OrganizationID: org.ID.Hex(),
		UserID:         actor.UserID,
		Role:           models.RoleOwner,
		IsActive:       true,
		JoinedAt:       now,
	}
	if err := s.members.Insert(ctx, owner); err != nil {
		return nil, fmt.Errorf("failed to add owner membership: %w", err)
	}
	logging.Logger.Infof("Event ID: ORGANIZATION_CREATED, Description: Organization %s (%s) created by user %d", org.Name, org.ID.Hex(), actor.UserID)
	return org, nil
}

func (s *OrganizationService) GetOrganization(ctx context.Context, actor auth.Principal, id string) (*models.Organization, error) {
	org, err := s.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, id, false); err != nil {
		return nil, err
	}
	return org, nil
}

// ListMyOrganizations returns the active organizations the caller belongs to.
func (s *OrganizationService) ListMyOrganizations(ctx context.Context, actor auth.Principal) ([]models.Organization, error) {
	memberships, err := s.members.ListActiveByUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		if oid, err := primitive.ObjectIDFromHex(m.OrganizationID); err == nil {
			ids = append(ids, oid)
		}
	}
	orgs, err := s.organizations.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	active := orgs[:0]
	for _, o := range orgs {
		if o.IsActive {
			active = append(active, o)
		}
	}
	return active, nil
}

func (s *OrganizationService) GetMembers(ctx context.Context, actor auth.Principal, orgID string) ([]models.OrganizationUser, error) {
	if _, err := s.loadActive(ctx, orgID); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, orgID, false); err != nil {
		return nil, err
	}
	return s.members.ListActive(ctx, orgID)
}

// GetMember is the internal membership lookup used by other services.
func (s *OrganizationService) GetMember(ctx context.Context, orgID string, userID int64) (*models.OrganizationUser, error) {
	if _, err := s.loadActive(ctx, orgID); err != nil {
		return nil, err
	}
	return s.activeMember(ctx, orgID, userID)
}

func (s *OrganizationService) AddMember(ctx context.Context, actor auth.Principal, orgID string, req models.AddMemberRequest) (*models.OrganizationUser, error) {
	if _, err := s.loadActive(ctx, orgID); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, orgID, true); err != nil {
		return nil, err
	}
	if err := s.users.Exists(ctx, actor.Token, req.UserID); err != nil {
		return nil, err
	}
	role := req.Role
	if role == "" {
		role = models.RoleMember
	}

	now := s.now().UTC()
	existing, err := s.members.Find(ctx, orgID, req.UserID)
	switch {
	case err == nil && existing.IsActive:
		return nil, ErrAlreadyMember
	case err == nil:
		if err := s.members.Reactivate(ctx, existing.ID, role, now); err != nil {
			return nil, err
		}
		existing.Role, existing.IsActive, existing.JoinedAt, existing.RemovedAt = role, true, now, nil
		logging.Logger.Infof("Event ID: ORGANIZATION_MEMBER_REACTIVATED, Description: User %d rejoined organization %s as %s", req.UserID, orgID, role)
		return existing, nil
	case !errors.Is(err, ErrMemberNotFound):
		return nil, err
	}

	m := &models.OrganizationUser{
		ID:             primitive.NewObjectID(),
		OrganizationID: orgID,
		UserID:         req.UserID,
		Role:           role,
		IsActive:       true,
		JoinedAt:       now,
	}
	if err := s.members.Insert(ctx, m); err != nil {
		return nil, err
	}
	logging.Logger.Infof("Event ID: ORGANIZATION_MEMBER_ADDED, Description: User %d added to organization %s as %s by %d", req.UserID, orgID, role, actor.UserID)
	return m, nil
}

func (s *OrganizationService) ChangeMemberRole(ctx context.Context, actor auth.Principal, orgID string, userID int64, role models.OrganizationRole) (*models.OrganizationUser, error) {
	if _, err := s.loadActive(ctx, orgID); err != nil {
		return nil, err
	}
	if _, err := s.authorize(ctx, actor, orgID, true); err != nil {
		return nil, err
	}
	if role == models.RoleOwner {
		return nil, ErrOwnerRoleChange
	}
	target, err := s.activeMember(ctx, orgID, userID)
	if err != nil {
		return nil, err
	}
	if target.Role == models.RoleOwner {
		return nil, ErrOwnerRoleChange
	}
	if err := s.members.UpdateRole(ctx, target.ID, role); err != nil {
		return nil, err
	}
	target.Role = role
	logging.Logger.Infof("Event ID: ORGANIZATION_ROLE_CHANGED, Description: User %d in organization %s is now %s", userID, orgID, role)
	return target, nil
}

// RemoveMember soft-removes a membership. Members may remove themselves,
// anyone else needs an admin-tier role, and only an owner removes an owner.
func (s *OrganizationService) RemoveMember(ctx context.Context, actor auth.Principal, orgID string, userID int64) error {
	if _, err := s.loadActive(ctx, orgID); err != nil {
		return err
	}
	caller, err := s.authorize(ctx, actor, orgID, actor.UserID != userID)
	if err != nil {
		return err
	}
	target, err := s.activeMember(ctx, orgID, userID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleOwner {
		if caller != nil && caller.Role != models.RoleOwner {
			return ErrForbidden
		}
		owners, err := s.countActive(ctx, orgID, func(r models.OrganizationRole) bool { return r == models.RoleOwner })
		if err != nil {
			return err
		}
		if owners <= 1 {
			return ErrLastOwner
		}
	}
	if err := s.members.Deactivate(ctx, target.ID, s.now().UTC()); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: ORGANIZATION_MEMBER_REMOVED, Description: User %d removed from organization %s by %d", userID, orgID, actor.UserID)
	return nil
}

// TransferOwnership makes another active member the owner. The previous
// owner stays on as an admin.
func (s *OrganizationService) TransferOwnership(ctx context.Context, actor auth.Principal, orgID string, req models.TransferOwnershipRequest) (*models.OrganizationUser, error) {
	if _, err := s.loadActive(ctx, orgID); err != nil {
		return nil, err
	}
	caller, err := s.authorize(ctx, actor, orgID, true)
	if err != nil {
		return nil, err
	}
	if caller == nil {
		// system administrator acting for the current owner
		owners, err := s.activeWithRole(ctx, orgID, models.RoleOwner)
		if err != nil {
			return nil, err
		}
		if len(owners) == 0 {
			return nil, ErrMemberNotFound
		}
		caller = &owners[0]
	}
	if caller.Role != models.RoleOwner {
		return nil, ErrForbidden
	}
	if caller.UserID == req.UserID {
		return nil, ErrTransferToSelf
	}
	target, err := s.activeMember(ctx, orgID, req.UserID)
	if err != nil {
		return nil, err
	}

	if err := s.members.UpdateRole(ctx, target.ID, models.RoleOwner); err != nil {
		return nil, err
	}
	if err := s.members.UpdateRole(ctx, caller.ID, models.RoleAdmin); err != nil {
		return nil, fmt.Errorf("new owner set but previous owner not demoted: %w", err)
	}
	target.Role = models.RoleOwner
	logging.Logger.Infof("Event ID: ORGANIZATION_OWNERSHIP_TRANSFERRED, Description: Organization %s ownership moved from %d to %d", orgID, caller.UserID, req.UserID)
	return target, nil
}

func (s *OrganizationService) activeWithRole(ctx context.Context, orgID string, role models.OrganizationRole) ([]models.OrganizationUser, error) {
	all, err := s.members.ListActive(ctx, orgID)
	if err != nil {
		return nil, err
	}
	out := []models.OrganizationUser{}
	for _, m := range all {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *OrganizationService) countActive(ctx context.Context, orgID string, match func(models.OrganizationRole) bool) (int, error) {
	all, err := s.members.ListActive(ctx, orgID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range all {
		if match(m.Role) {
			n++
		}
	}
	return n, nil
}
