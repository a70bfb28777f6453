package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"projecthub/backend/auth"
	"projecthub/backend/users-service/models"
	"projecthub/backend/users-service/services"
	"projecthub/backend/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// userTable is a read-mostly UserRepository for routing tests.
type userTable struct {
	services.UserRepository
	users   map[int64]models.User
	deleted []int64
}

func (u *userTable) FindByID(_ context.Context, id int64) (*models.User, error) {
	user, ok := u.users[id]
	if !ok {
		return nil, services.ErrUserNotFound
	}
	return &user, nil
}

func (u *userTable) CountActiveByRole(_ context.Context, role string) (int64, error) {
	var n int64
	for _, user := range u.users {
		if user.Role == role && user.IsActive {
			n++
		}
	}
	return n, nil
}

func (u *userTable) SoftDelete(_ context.Context, id, _ int64, _ time.Time) error {
	u.deleted = append(u.deleted, id)
	return nil
}

type vetoer struct{ reasons []string }

func (v vetoer) Name() string { return "organizations-service" }

func (v vetoer) BlockingRoles(_ context.Context, _ string, userID int64) (*models.BlockingRoles, error) {
	return &models.BlockingRoles{UserID: userID, Blocking: len(v.reasons) > 0, Reasons: v.reasons}, nil
}

type cleanupStep struct {
	name string
	err  error
}

func (c cleanupStep) Name() string { return c.name }

func (c cleanupStep) Cleanup(context.Context, string, int64) error { return c.err }

type deleteFixture struct {
	router *mux.Router
	users  *userTable
	tokens *auth.TokenManager
}

func newDeleteFixture(reasons []string, steps ...services.CleanupStep) *deleteFixture {
	users := &userTable{users: map[int64]models.User{
		1: {ID: 1, Username: "root", Role: models.RoleSystemAdmin, IsActive: true},
		7: {ID: 7, Username: "dana", Role: models.RoleUser, IsActive: true},
	}}
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	h := &UserHandler{
		UserService: services.NewUserService(users, tokens, nil),
		Deletion:    services.NewDeletionCoordinator(users, []services.BlockingChecker{vetoer{reasons: reasons}}, steps),
	}
	r := mux.NewRouter()
	h.Routes(r, &LoginHandler{UserService: h.UserService}, tokens)
	return &deleteFixture{router: r, users: users, tokens: tokens}
}

func (f *deleteFixture) delete(t *testing.T, actorID int64, role, path string) (*httptest.ResponseRecorder, utils.Response[models.SagaResult]) {
	t.Helper()
	tok, err := f.tokens.GenerateToken(actorID, "caller", role)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var body utils.Response[models.SagaResult]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestDeleteUser_StatusMapping(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		f := newDeleteFixture(nil, cleanupStep{name: "tasks-service"})
		rec, body := f.delete(t, 1, auth.RoleSystemAdmin, "/api/users/7")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, body.Data.Deleted)
		assert.Equal(t, []int64{7}, f.users.deleted)
	})

	t.Run("non admin", func(t *testing.T) {
		f := newDeleteFixture(nil)
		rec, _ := f.delete(t, 7, auth.RoleUser, "/api/users/1")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("self", func(t *testing.T) {
		f := newDeleteFixture(nil)
		rec, body := f.delete(t, 1, auth.RoleSystemAdmin, "/api/users/1")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Contains(t, body.Errors, "cannot delete self")
	})

	t.Run("missing", func(t *testing.T) {
		f := newDeleteFixture(nil)
		rec, _ := f.delete(t, 1, auth.RoleSystemAdmin, "/api/users/99")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("blocked", func(t *testing.T) {
		f := newDeleteFixture([]string{"cannot delete: sole owner of organization Acme"})
		rec, body := f.delete(t, 1, auth.RoleSystemAdmin, "/api/users/7")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.False(t, body.Success)
		assert.Equal(t, []string{"cannot delete: sole owner of organization Acme"}, body.Errors)
		assert.Empty(t, f.users.deleted)
	})

	t.Run("cleanup failure", func(t *testing.T) {
		f := newDeleteFixture(nil,
			cleanupStep{name: "organizations-service"},
			cleanupStep{name: "projects-service", err: errors.New("mongo down")},
			cleanupStep{name: "tasks-service"},
		)
		rec, body := f.delete(t, 1, auth.RoleSystemAdmin, "/api/users/7")
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "cleanup failed in projects-service: retry", body.Message)
		require.NotNil(t, body.Data)
		statuses := map[string]string{}
		for _, s := range body.Data.Steps {
			statuses[s.Step+"/"+s.Service] = s.Status
		}
		assert.Equal(t, models.StepOK, statuses["cleanup/organizations-service"])
		assert.Equal(t, models.StepFailed, statuses["cleanup/projects-service"])
		assert.Equal(t, models.StepSkipped, statuses["cleanup/tasks-service"])
		assert.Equal(t, models.StepSkipped, statuses["delete-identity/users-service"])
		assert.Empty(t, f.users.deleted)
	})
}
