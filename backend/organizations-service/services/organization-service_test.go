package services

import (
	"context"
	"testing"

	"projecthub/backend/auth"
	"projecthub/backend/organizations-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	owner   = auth.Principal{UserID: 1, Role: auth.RoleUser}
	admin   = auth.Principal{UserID: 2, Role: auth.RoleUser}
	member  = auth.Principal{UserID: 3, Role: auth.RoleUser}
	visitor = auth.Principal{UserID: 8, Role: auth.RoleUser}
	sysop   = auth.Principal{UserID: 100, Role: auth.RoleSystemAdmin}
)

type orgFixture struct {
	svc     *OrganizationService
	members *memMembers
	org     *models.Organization
}

// newOrgFixture creates organization Acme owned by user 1.
func newOrgFixture(t *testing.T) *orgFixture {
	t.Helper()
	members := &memMembers{}
	svc := NewOrganizationService(&memOrgs{}, members, knownUsers{1: true, 2: true, 3: true, 4: true, 8: true})
	org, err := svc.CreateOrganization(context.Background(), owner, models.CreateOrganizationRequest{Name: "Acme"})
	require.NoError(t, err)
	return &orgFixture{svc: svc, members: members, org: org}
}

func (f *orgFixture) id() string { return f.org.ID.Hex() }

func (f *orgFixture) add(t *testing.T, userID int64, role models.OrganizationRole) {
	t.Helper()
	_, err := f.svc.AddMember(context.Background(), owner, f.id(), models.AddMemberRequest{UserID: userID, Role: role})
	require.NoError(t, err)
}

func TestCreateOrganization_CreatorIsOwner(t *testing.T) {
	f := newOrgFixture(t)

	m, err := f.svc.GetMember(context.Background(), f.id(), owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, m.Role)

	_, err = f.svc.CreateOrganization(context.Background(), admin, models.CreateOrganizationRequest{Name: "Acme"})
	assert.ErrorIs(t, err, ErrNameTaken)

	mine, err := f.svc.ListMyOrganizations(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Acme", mine[0].Name)
}

func TestAddMember(t *testing.T) {
	f := newOrgFixture(t)
	ctx := context.Background()
	f.add(t, member.UserID, "")

	m, err := f.svc.GetMember(ctx, f.id(), member.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, m.Role)

	_, err = f.svc.AddMember(ctx, owner, f.id(), models.AddMemberRequest{UserID: member.UserID})
	assert.ErrorIs(t, err, ErrAlreadyMember)

	_, err = f.svc.AddMember(ctx, owner, f.id(), models.AddMemberRequest{UserID: 404})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.svc.AddMember(ctx, member, f.id(), models.AddMemberRequest{UserID: 4})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.AddMember(ctx, visitor, f.id(), models.AddMemberRequest{UserID: 4})
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = f.svc.GetMembers(ctx, visitor, f.id())
	assert.ErrorIs(t, err, ErrNotMember)
	all, err := f.svc.GetMembers(ctx, sysop, f.id())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRemoveMember_ReaddReactivatesRow(t *testing.T) {
	f := newOrgFixture(t)
	ctx := context.Background()
	f.add(t, member.UserID, models.RoleAdmin)

	require.NoError(t, f.svc.RemoveMember(ctx, owner, f.id(), member.UserID))
	_, err := f.svc.GetMember(ctx, f.id(), member.UserID)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	f.add(t, member.UserID, models.RoleMember)
	m, err := f.svc.GetMember(ctx, f.id(), member.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, m.Role)
	assert.Nil(t, m.RemovedAt)
	assert.Len(t, f.members.rows, 2, "one row per (organization, user)")
}

func TestRemoveMember_OwnerRules(t *testing.T) {
	f := newOrgFixture(t)
	ctx := context.Background()
	f.add(t, admin.UserID, models.RoleAdmin)
	f.add(t, member.UserID, models.RoleMember)

	assert.ErrorIs(t, f.svc.RemoveMember(ctx, admin, f.id(), owner.UserID), ErrForbidden)
	assert.ErrorIs(t, f.svc.RemoveMember(ctx, owner, f.id(), owner.UserID), ErrLastOwner)
	assert.ErrorIs(t, f.svc.RemoveMember(ctx, member, f.id(), admin.UserID), ErrForbidden)

	// leaving is always allowed for non-owners
	assert.NoError(t, f.svc.RemoveMember(ctx, member, f.id(), member.UserID))
}

func TestChangeMemberRole(t *testing.T) {
	f := newOrgFixture(t)
	ctx := context.Background()
	f.add(t, member.UserID, models.RoleMember)

	m, err := f.svc.ChangeMemberRole(ctx, owner, f.id(), member.UserID, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, m.Role)

	_, err = f.svc.ChangeMemberRole(ctx, owner, f.id(), member.UserID, models.RoleOwner)
	assert.ErrorIs(t, err, ErrOwnerRoleChange)
	_, err = f.svc.ChangeMemberRole(ctx, member, f.id(), owner.UserID, models.RoleMember)
	assert.ErrorIs(t, err, ErrOwnerRoleChange)
}

func TestTransferOwnership(t *testing.T) {
	f := newOrgFixture(t)
	ctx := context.Background()
	f.add(t, admin.UserID, models.RoleAdmin)
	f.add(t, member.UserID, models.RoleMember)

	_, err := f.svc.TransferOwnership(ctx, admin, f.id(), models.TransferOwnershipRequest{UserID: member.UserID})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.TransferOwnership(ctx, owner, f.id(), models.TransferOwnershipRequest{UserID: owner.UserID})
	assert.ErrorIs(t, err, ErrTransferToSelf)
	_, err = f.svc.TransferOwnership(ctx, owner, f.id(), models.TransferOwnershipRequest{UserID: visitor.UserID})
	assert.ErrorIs(t, err, ErrMemberNotFound)

	m, err := f.svc.TransferOwnership(ctx, owner, f.id(), models.TransferOwnershipRequest{UserID: member.UserID})
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, m.Role)

	previous, err := f.svc.GetMember(ctx, f.id(), owner.UserID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, previous.Role)
}

func TestBlockingRoles_SoleOwnerUntilTransfer(t *testing.T) {
	f := newOrgFixture(t)
	ctx := context.Background()
	f.add(t, member.UserID, models.RoleMember)

	report, err := f.svc.BlockingRoles(ctx, owner.UserID)
	require.NoError(t, err)
	assert.True(t, report.Blocking)
	assert.Equal(t, []string{"cannot delete: sole owner of organization Acme"}, report.Reasons)

	_, err = f.svc.TransferOwnership(ctx, owner, f.id(), models.TransferOwnershipRequest{UserID: member.UserID})
	require.NoError(t, err)

	report, err = f.svc.BlockingRoles(ctx, owner.UserID)
	require.NoError(t, err)
	assert.False(t, report.Blocking)
	assert.Empty(t, report.Reasons)
}

func TestBlockingRoles_SoleAdministrator(t *testing.T) {
	f := newOrgFixture(t)
	ctx := context.Background()
	f.add(t, admin.UserID, models.RoleAdmin)

	// the owner still counts as another admin-tier member
	report, err := f.svc.BlockingRoles(ctx, admin.UserID)
	require.NoError(t, err)
	assert.False(t, report.Blocking)

	// owner gone from the active set without a transfer
	row, err := f.members.Find(ctx, f.id(), owner.UserID)
	require.NoError(t, err)
	require.NoError(t, f.members.Deactivate(ctx, row.ID, row.JoinedAt))

	report, err = f.svc.BlockingRoles(ctx, admin.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"cannot delete: sole administrator of organization Acme"}, report.Reasons)

	plain, err := f.svc.BlockingRoles(ctx, member.UserID)
	require.NoError(t, err)
	assert.False(t, plain.Blocking)
}

func TestCleanupUser_Idempotent(t *testing.T) {
	f := newOrgFixture(t)
	ctx := context.Background()
	f.add(t, member.UserID, models.RoleMember)

	other, err := f.svc.CreateOrganization(ctx, admin, models.CreateOrganizationRequest{Name: "Globex"})
	require.NoError(t, err)
	_, err = f.svc.AddMember(ctx, admin, other.ID.Hex(), models.AddMemberRequest{UserID: member.UserID})
	require.NoError(t, err)

	report, err := f.svc.CleanupUser(ctx, member.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Deactivated)

	report, err = f.svc.CleanupUser(ctx, member.UserID)
	require.NoError(t, err)
	assert.Zero(t, report.Deactivated)

	mine, err := f.svc.ListMyOrganizations(ctx, member)
	require.NoError(t, err)
	assert.Empty(t, mine)
}
