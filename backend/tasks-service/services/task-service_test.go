package services

import (
	"context"
	"testing"
	"time"

	"projecthub/backend/auth"
	"projecthub/backend/tasks-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProject = "64b7f0c2a1b2c3d4e5f60718"

var (
	manager = auth.Principal{UserID: 1, Username: "manager", Role: auth.RoleUser, Token: "t1"}
	member  = auth.Principal{UserID: 2, Username: "member", Role: auth.RoleUser, Token: "t2"}
	viewer  = auth.Principal{UserID: 3, Username: "viewer", Role: auth.RoleUser, Token: "t3"}
	outside = auth.Principal{UserID: 9, Username: "outsider", Role: auth.RoleUser, Token: "t9"}
)

type fixture struct {
	svc      *TaskService
	tasks    *memTasks
	deps     *memDeps
	comments *memComments
	notes    *recordingNotifier
}

func newFixture(opts ...Option) *fixture {
	members := fakeMembers{}
	members.set(testProject, manager.UserID, "ProjectManager")
	members.set(testProject, member.UserID, "ProjectMember")
	members.set(testProject, viewer.UserID, "ProjectViewer")

	f := &fixture{
		tasks:    newMemTasks(),
		deps:     newMemDeps(),
		comments: &memComments{},
		notes:    &recordingNotifier{},
	}
	opts = append([]Option{WithClock(func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) })}, opts...)
	f.svc = NewTaskService(f.tasks, f.deps, f.comments, members, nil, f.notes, opts...)
	return f
}

func (f *fixture) create(t *testing.T, title string) *models.Task {
	t.Helper()
	task, err := f.svc.CreateTask(context.Background(), manager, testProject, models.CreateTaskRequest{Title: title})
	require.NoError(t, err)
	return task
}

func TestCreateTask_AssignsSequentialNumbers(t *testing.T) {
	f := newFixture()

	a := f.create(t, "first")
	b := f.create(t, "second")

	assert.Equal(t, int64(1), a.Number)
	assert.Equal(t, int64(2), b.Number)
	assert.Equal(t, models.StatusToDo, a.Status)
	assert.Equal(t, models.PriorityMedium, a.Priority)
	assert.True(t, a.IsActive)
	assert.Equal(t, manager.UserID, a.CreatedByUserID)
}

func TestCreateTask_Authorization(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CreateTask(ctx, outside, testProject, models.CreateTaskRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrNotProjectMember)

	_, err = f.svc.CreateTask(ctx, viewer, testProject, models.CreateTaskRequest{Title: "x"})
	assert.ErrorIs(t, err, ErrReadOnlyMember)

	admin := auth.Principal{UserID: 50, Role: auth.RoleSystemAdmin}
	_, err = f.svc.CreateTask(ctx, admin, testProject, models.CreateTaskRequest{Title: "x"})
	assert.NoError(t, err)
}

func TestCreateTask_AssigneeMustBeMember(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.CreateTask(ctx, manager, testProject, models.CreateTaskRequest{Title: "x", AssignedToUserID: &outside.UserID})
	assert.ErrorIs(t, err, ErrAssigneeNotMember)

	task, err := f.svc.CreateTask(ctx, manager, testProject, models.CreateTaskRequest{Title: "x", AssignedToUserID: &member.UserID})
	require.NoError(t, err)
	assert.Equal(t, member.UserID, *task.AssignedToUserID)
	assert.Len(t, f.notes.sent[member.UserID], 1)
}

func TestChangeTaskStatus_RequiresClosedDependencies(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.create(t, "a")
	b := f.create(t, "b")

	_, err := f.svc.AddDependency(ctx, manager, a.ID.Hex(), b.ID.Hex())
	require.NoError(t, err)

	_, err = f.svc.ChangeTaskStatus(ctx, member, a.ID.Hex(), models.StatusInProgress)
	assert.ErrorIs(t, err, ErrUnfinishedDeps)

	done, err := f.svc.ChangeTaskStatus(ctx, member, b.ID.Hex(), models.StatusDone)
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	started, err := f.svc.ChangeTaskStatus(ctx, member, a.ID.Hex(), models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, started.Status)
	assert.Nil(t, started.CompletedAt)
}

func TestAssignTask_NotifiesOldAndNewAssignee(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	task := f.create(t, "a")

	_, err := f.svc.AssignTask(ctx, manager, task.ID.Hex(), &member.UserID)
	require.NoError(t, err)
	_, err = f.svc.AssignTask(ctx, manager, task.ID.Hex(), &viewer.UserID)
	require.NoError(t, err)

	assert.Len(t, f.notes.sent[member.UserID], 2, "assigned then removed")
	assert.Len(t, f.notes.sent[viewer.UserID], 1)

	cleared, err := f.svc.AssignTask(ctx, manager, task.ID.Hex(), nil)
	require.NoError(t, err)
	assert.Nil(t, cleared.AssignedToUserID)
}

func TestDeleteTask_SoftDeletesAndRefusesParents(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	parent := f.create(t, "parent")
	child := f.create(t, "child")
	_, err := f.svc.SetParent(ctx, manager, child.ID.Hex(), parent.ID.Hex())
	require.NoError(t, err)

	err = f.svc.DeleteTask(ctx, manager, parent.ID.Hex())
	assert.ErrorIs(t, err, ErrHasSubtasks)

	require.NoError(t, f.svc.DeleteTask(ctx, manager, child.ID.Hex()))
	require.NoError(t, f.svc.DeleteTask(ctx, manager, parent.ID.Hex()))

	stored, err := f.tasks.FindByID(ctx, parent.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsActive, "row kept, only deactivated")

	_, err = f.svc.GetTask(ctx, manager, parent.ID.Hex())
	assert.ErrorIs(t, err, ErrTaskNotFound)

	list, err := f.svc.GetTasksByProject(ctx, manager, testProject)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestComments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	task := f.create(t, "a")

	_, err := f.svc.AddComment(ctx, viewer, task.ID.Hex(), "looks good")
	require.NoError(t, err)
	_, err = f.svc.AddComment(ctx, outside, task.ID.Hex(), "spam")
	assert.ErrorIs(t, err, ErrNotProjectMember)

	comments, err := f.svc.GetComments(ctx, member, task.ID.Hex())
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, viewer.UserID, comments[0].AuthorUserID)
}

func TestGetTask_InvalidID(t *testing.T) {
	f := newFixture()
	_, err := f.svc.GetTask(context.Background(), manager, "nope")
	assert.ErrorIs(t, err, ErrInvalidID)
}
