package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"projecthub/backend/auth"
	"projecthub/backend/tasks-service/models"
	"projecthub/backend/tasks-service/services"
	"projecthub/backend/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubTasks answers only what the routes under test reach.
type stubTasks struct {
	services.TaskRepository
	assigned []models.Task
}

func (s *stubTasks) FindAssigned(_ context.Context, _ int64, _ int) ([]models.Task, error) {
	out := s.assigned
	s.assigned = nil
	return out, nil
}

func (s *stubTasks) Unassign(_ context.Context, ids []primitive.ObjectID, _ int64) (int64, error) {
	return int64(len(ids)), nil
}

func (s *stubTasks) FindByID(_ context.Context, _ primitive.ObjectID) (*models.Task, error) {
	return nil, services.ErrTaskNotFound
}

type noMembers struct{}

func (noMembers) MemberRole(context.Context, string, string, int64) (string, error) { return "", nil }

func newRouter(t *testing.T, repo *stubTasks) (*mux.Router, *auth.TokenManager) {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	svc := services.NewTaskService(repo, nil, nil, noMembers{}, nil, nil)
	r := mux.NewRouter()
	NewTaskHandler(svc).Routes(r, tokens)
	return r, tokens
}

func bearer(t *testing.T, tokens *auth.TokenManager, id int64, role string) string {
	t.Helper()
	tok, err := tokens.GenerateToken(id, "someone", role)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestRoutes_RequireToken(t *testing.T) {
	r, _ := newRouter(t, &stubTasks{})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks/"+primitive.NewObjectID().Hex(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	var body utils.Response[struct{}]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
}

func TestGetTask_StatusMapping(t *testing.T) {
	r, tokens := newRouter(t, &stubTasks{})
	header := bearer(t, tokens, 4, auth.RoleUser)

	cases := map[string]int{
		"/api/tasks/not-an-id":                        http.StatusBadRequest,
		"/api/tasks/" + primitive.NewObjectID().Hex(): http.StatusNotFound,
	}
	for path, want := range cases {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, path)
	}
}

func TestCreateTask_RejectsInvalidBody(t *testing.T) {
	r, tokens := newRouter(t, &stubTasks{})

	req := httptest.NewRequest(http.MethodPost, "/api/projects/p1/tasks", strings.NewReader(`{"title":""}`))
	req.Header.Set("Authorization", bearer(t, tokens, 4, "User"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCleanupUser_AdminOnly(t *testing.T) {
	repo := &stubTasks{assigned: []models.Task{
		{ID: primitive.NewObjectID(), CreatedByUserID: 7},
		{ID: primitive.NewObjectID(), CreatedByUserID: 7},
	}}
	r, tokens := newRouter(t, repo)

	req := httptest.NewRequest(http.MethodPost, "/internal/cleanup/7", nil)
	req.Header.Set("Authorization", bearer(t, tokens, 4, auth.RoleUser))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/internal/cleanup/7", nil)
	req.Header.Set("Authorization", bearer(t, tokens, 1, auth.RoleSystemAdmin))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body utils.Response[models.CleanupReport]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	require.NotNil(t, body.Data)
	assert.Equal(t, int64(2), body.Data.Unassigned)
	assert.Equal(t, 1, body.Data.Batches)
}
