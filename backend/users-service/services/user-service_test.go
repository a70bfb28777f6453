package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"projecthub/backend/auth"
	"projecthub/backend/users-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(repo *memUsers) (*UserService, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	common, _ := ReadCommonPasswords(strings.NewReader("Password1!\n"))
	return NewUserService(repo, tokens, common), tokens
}

func registration(username string) models.RegisterRequest {
	return models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Name:     "Ana",
		LastName: "Ivić",
		Password: "Str0ng!pass",
	}
}

func TestValidatePassword(t *testing.T) {
	svc, _ := newUserService(newMemUsers())

	for _, weak := range []string{"short1!", "nouppercase1!", "NoDigits!!", "NoSpecial12", "Password1!"} {
		assert.ErrorIs(t, svc.ValidatePassword(weak), ErrWeakPassword, weak)
	}
	assert.NoError(t, svc.ValidatePassword("Str0ng!pass"))
}

func TestCommonPasswords(t *testing.T) {
	common, err := ReadCommonPasswords(strings.NewReader("# leaked lists\n\nQwerty123!\n  Welcome1!  \n"))
	require.NoError(t, err)

	assert.Equal(t, 2, common.Len())
	assert.True(t, common.Contains("qwerty123!"))
	assert.True(t, common.Contains("WELCOME1!"))
	assert.False(t, common.Contains("# leaked lists"))

	var none *CommonPasswords
	assert.False(t, none.Contains("Qwerty123!"))

	_, err = LoadCommonPasswords("does-not-exist.txt")
	assert.Error(t, err)
}

func TestRegisterAndLogin(t *testing.T) {
	repo := newMemUsers()
	svc, tokens := newUserService(repo)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, registration("ana"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "Str0ng!pass", user.Password)

	_, err = svc.RegisterUser(ctx, registration("ana"))
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Login(ctx, models.LoginRequest{Username: "ana", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, models.LoginRequest{Username: "nobody", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	resp, err := svc.Login(ctx, models.LoginRequest{Username: "ana", Password: "Str0ng!pass"})
	require.NoError(t, err)
	claims, err := tokens.ValidateToken(resp.Token)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
	assert.Equal(t, models.RoleUser, claims.Role)
}

func TestLogin_DeletedUserRejected(t *testing.T) {
	repo := newMemUsers()
	svc, _ := newUserService(repo)
	ctx := context.Background()

	user, err := svc.RegisterUser(ctx, registration("ana"))
	require.NoError(t, err)
	require.NoError(t, repo.SoftDelete(ctx, user.ID, 99, time.Now()))

	_, err = svc.Login(ctx, models.LoginRequest{Username: "ana", Password: "Str0ng!pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.GetUser(ctx, user.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestChangeRole_LastAdminProtected(t *testing.T) {
	repo := newMemUsers(
		models.User{ID: 1, Username: "root", Role: models.RoleSystemAdmin, IsActive: true},
		models.User{ID: 2, Username: "ana", Role: models.RoleUser, IsActive: true},
	)
	svc, _ := newUserService(repo)
	ctx := context.Background()
	admin := auth.Principal{UserID: 1, Role: auth.RoleSystemAdmin}

	_, err := svc.ChangeRole(ctx, admin, 1, models.RoleUser)
	assert.ErrorIs(t, err, ErrLastAdminDemotion)

	promoted, err := svc.ChangeRole(ctx, admin, 2, models.RoleSystemAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleSystemAdmin, promoted.Role)

	_, err = svc.ChangeRole(ctx, admin, 1, models.RoleUser)
	assert.NoError(t, err)
}

func TestEnsureAdmin(t *testing.T) {
	repo := newMemUsers()
	svc, _ := newUserService(repo)
	ctx := context.Background()

	require.NoError(t, svc.EnsureAdmin(ctx, "root", "R00t!pass", "root@example.com"))
	require.NoError(t, svc.EnsureAdmin(ctx, "root", "R00t!pass", "root@example.com"))

	n, err := repo.CountActiveByRole(ctx, models.RoleSystemAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}
