package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"projecthub/backend/tasks-service/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedAssigned(t *testing.T, f *fixture, n int, assignee int64) []*models.Task {
	t.Helper()
	out := make([]*models.Task, 0, n)
	for i := 0; i < n; i++ {
		task, err := f.svc.CreateTask(context.Background(), manager, testProject, models.CreateTaskRequest{
			Title:            "work",
			AssignedToUserID: &assignee,
		})
		require.NoError(t, err)
		out = append(out, task)
	}
	return out
}

func assignedCount(f *fixture, userID int64) int {
	all, _ := f.tasks.FindAssigned(context.Background(), userID, 1<<20)
	return len(all)
}

func TestCleanupUser_UnassignsInBatches(t *testing.T) {
	f := newFixture(WithBatchSize(2))
	seedAssigned(t, f, 5, member.UserID)
	other := seedAssigned(t, f, 1, viewer.UserID)

	report, err := f.svc.CleanupUser(context.Background(), "tok", member.UserID)
	require.NoError(t, err)
	f.svc.Wait()

	assert.Equal(t, int64(5), report.Unassigned)
	assert.Equal(t, 3, report.Batches)
	assert.Zero(t, assignedCount(f, member.UserID))

	kept, err := f.tasks.FindByID(context.Background(), other[0].ID)
	require.NoError(t, err)
	require.NotNil(t, kept.AssignedToUserID)
	assert.Equal(t, viewer.UserID, *kept.AssignedToUserID)

	// creators are told their task lost its assignee
	assert.Len(t, f.notes.sent[manager.UserID], 5)
}

func TestCleanupUser_Idempotent(t *testing.T) {
	f := newFixture()
	seedAssigned(t, f, 3, member.UserID)

	first, err := f.svc.CleanupUser(context.Background(), "tok", member.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), first.Unassigned)

	second, err := f.svc.CleanupUser(context.Background(), "tok", member.UserID)
	require.NoError(t, err)
	assert.Zero(t, second.Unassigned)
	assert.Zero(t, second.Batches)
	assert.Zero(t, assignedCount(f, member.UserID))
}

func TestCleanupUser_KeepsComments(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	tasks := seedAssigned(t, f, 1, member.UserID)

	_, err := f.svc.AddComment(ctx, member, tasks[0].ID.Hex(), "on it")
	require.NoError(t, err)

	_, err = f.svc.CleanupUser(ctx, "tok", member.UserID)
	require.NoError(t, err)

	comments, err := f.svc.GetComments(ctx, manager, tasks[0].ID.Hex())
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, member.UserID, comments[0].AuthorUserID)
}

func TestCleanupUser_FailureMidRunThenRetry(t *testing.T) {
	f := newFixture(WithBatchSize(2))
	seedAssigned(t, f, 5, member.UserID)
	f.tasks.failOn = 2

	report, err := f.svc.CleanupUser(context.Background(), "tok", member.UserID)
	require.Error(t, err)
	require.NotNil(t, report)
	assert.Equal(t, int64(2), report.Unassigned)
	assert.Equal(t, 3, assignedCount(f, member.UserID))

	report, err = f.svc.CleanupUser(context.Background(), "tok", member.UserID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), report.Unassigned)
	assert.Zero(t, assignedCount(f, member.UserID))
}

func TestCleanupUser_SkipsSelfCreatedNotifications(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	self := member.UserID
	_, err := f.svc.CreateTask(ctx, member, testProject, models.CreateTaskRequest{Title: "mine", AssignedToUserID: &self})
	require.NoError(t, err)

	_, err = f.svc.CleanupUser(ctx, "tok", member.UserID)
	require.NoError(t, err)
	f.svc.Wait()
	assert.Empty(t, f.notes.sent[member.UserID])
}

// slowNotifier holds every call until its own context expires, then fails.
type slowNotifier struct {
	calls    atomic.Int32
	canceled atomic.Int32
}

func (n *slowNotifier) Notify(ctx context.Context, _ string, _ int64, _ string) error {
	n.calls.Add(1)
	<-ctx.Done()
	if errors.Is(ctx.Err(), context.Canceled) {
		n.canceled.Add(1)
	}
	return ctx.Err()
}

// deadlineTasks fails writes once the request context is done, like the
// Mongo driver does.
type deadlineTasks struct {
	*memTasks
}

func (d deadlineTasks) Unassign(ctx context.Context, ids []primitive.ObjectID, userID int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return d.memTasks.Unassign(ctx, ids, userID)
}

func TestCleanupUser_SlowNotificationsDoNotConsumeBudget(t *testing.T) {
	f := newFixture(WithBatchSize(2))
	seedAssigned(t, f, 6, member.UserID)

	notes := &slowNotifier{}
	svc := NewTaskService(deadlineTasks{f.tasks}, f.deps, f.comments, fakeMembers{}, nil, notes,
		WithBatchSize(2), WithNotifyTimeout(20*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	start := time.Now()
	report, err := svc.CleanupUser(ctx, "tok", member.UserID)
	elapsed := time.Since(start)
	cancel()

	require.NoError(t, err)
	assert.Equal(t, int64(6), report.Unassigned)
	assert.Equal(t, 3, report.Batches)
	assert.Zero(t, assignedCount(f, member.UserID))
	assert.Less(t, elapsed, 250*time.Millisecond)

	svc.Wait()
	assert.Equal(t, int32(6), notes.calls.Load())
	// each call ran out its own deadline, not the canceled request
	assert.Zero(t, notes.canceled.Load())
}

type failingNotifier struct{}

func (failingNotifier) Notify(context.Context, string, int64, string) error {
	return errors.New("notifications-service unavailable")
}

func TestCleanupUser_NotificationFailureIsIgnored(t *testing.T) {
	f := newFixture()
	seedAssigned(t, f, 3, member.UserID)
	svc := NewTaskService(f.tasks, f.deps, f.comments, fakeMembers{}, nil, failingNotifier{})

	report, err := svc.CleanupUser(context.Background(), "tok", member.UserID)
	require.NoError(t, err)
	svc.Wait()
	assert.Equal(t, int64(3), report.Unassigned)
	assert.Zero(t, assignedCount(f, member.UserID))
}
