package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"projecthub/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type memTasks struct {
	mu       sync.Mutex
	tasks    map[primitive.ObjectID]models.Task
	counters map[string]int64
	failFind error
	failOn   int // FindAssigned call that fails, 1-based; 0 = never
	calls    int
}

func newMemTasks() *memTasks {
	return &memTasks{tasks: map[primitive.ObjectID]models.Task{}, counters: map[string]int64{}}
}

func (m *memTasks) NextNumber(_ context.Context, projectID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[projectID]++
	return m.counters[projectID], nil
}

func (m *memTasks) Insert(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = *t
	return nil
}

func (m *memTasks) FindByID(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind != nil {
		return nil, m.failFind
	}
	t, ok := m.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	return &t, nil
}

func (m *memTasks) sorted(keep func(models.Task) bool) []models.Task {
	out := []models.Task{}
	for _, t := range m.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (m *memTasks) FindByProject(_ context.Context, projectID string) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(t models.Task) bool { return t.ProjectID == projectID }), nil
}

func (m *memTasks) FindChildren(_ context.Context, parentID primitive.ObjectID) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sorted(func(t models.Task) bool {
		return t.IsActive && t.ParentTaskID != nil && *t.ParentTaskID == parentID
	}), nil
}

func (m *memTasks) mutate(id primitive.ObjectID, fn func(*models.Task)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return ErrTaskNotFound
	}
	fn(&t)
	m.tasks[id] = t
	return nil
}

func (m *memTasks) UpdateParent(_ context.Context, id primitive.ObjectID, parentID *primitive.ObjectID) error {
	return m.mutate(id, func(t *models.Task) { t.ParentTaskID = parentID })
}

func (m *memTasks) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.TaskStatus, completedAt *time.Time) error {
	return m.mutate(id, func(t *models.Task) { t.Status = status; t.CompletedAt = completedAt })
}

func (m *memTasks) UpdateAssignee(_ context.Context, id primitive.ObjectID, userID *int64) error {
	return m.mutate(id, func(t *models.Task) { t.AssignedToUserID = userID })
}

func (m *memTasks) Deactivate(_ context.Context, id primitive.ObjectID) error {
	return m.mutate(id, func(t *models.Task) { t.IsActive = false })
}

func (m *memTasks) FindAssigned(_ context.Context, userID int64, limit int) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failOn != 0 && m.calls == m.failOn {
		return nil, errors.New("connection reset")
	}
	out := m.sorted(func(t models.Task) bool {
		return t.IsActive && t.AssignedToUserID != nil && *t.AssignedToUserID == userID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memTasks) Unassign(_ context.Context, ids []primitive.ObjectID, userID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		t, ok := m.tasks[id]
		if ok && t.AssignedToUserID != nil && *t.AssignedToUserID == userID {
			t.AssignedToUserID = nil
			m.tasks[id] = t
			n++
		}
	}
	return n, nil
}

type memDeps struct {
	mu   sync.Mutex
	deps map[primitive.ObjectID]models.TaskDependency
}

func newMemDeps() *memDeps {
	return &memDeps{deps: map[primitive.ObjectID]models.TaskDependency{}}
}

func (m *memDeps) Insert(_ context.Context, d *models.TaskDependency) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.deps {
		if e.TaskID == d.TaskID && e.DependsOnTaskID == d.DependsOnTaskID {
			return ErrDuplicateDependency
		}
	}
	m.deps[d.ID] = *d
	return nil
}

func (m *memDeps) FindByID(_ context.Context, id primitive.ObjectID) (*models.TaskDependency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.deps[id]
	if !ok {
		return nil, ErrDependencyNotFound
	}
	return &d, nil
}

func (m *memDeps) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.deps[id]; !ok {
		return ErrDependencyNotFound
	}
	delete(m.deps, id)
	return nil
}

func (m *memDeps) filter(keep func(models.TaskDependency) bool) []models.TaskDependency {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.TaskDependency{}
	for _, d := range m.deps {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out
}

func (m *memDeps) FindByTask(_ context.Context, id primitive.ObjectID) ([]models.TaskDependency, error) {
	return m.filter(func(d models.TaskDependency) bool { return d.TaskID == id }), nil
}

func (m *memDeps) FindByDependsOn(_ context.Context, id primitive.ObjectID) ([]models.TaskDependency, error) {
	return m.filter(func(d models.TaskDependency) bool { return d.DependsOnTaskID == id }), nil
}

func (m *memDeps) FindByProject(_ context.Context, projectID string) ([]models.TaskDependency, error) {
	return m.filter(func(d models.TaskDependency) bool { return d.ProjectID == projectID }), nil
}

type memComments struct {
	mu       sync.Mutex
	comments []models.TaskComment
}

func (m *memComments) Insert(_ context.Context, c *models.TaskComment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments = append(m.comments, *c)
	return nil
}

func (m *memComments) FindByTask(_ context.Context, id primitive.ObjectID) ([]models.TaskComment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.TaskComment{}
	for _, c := range m.comments {
		if c.TaskID == id && c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

// fakeMembers maps "projectID/userID" to a role.
type fakeMembers map[string]string

func (f fakeMembers) key(projectID string, userID int64) string {
	return fmt.Sprintf("%s/%d", projectID, userID)
}

func (f fakeMembers) set(projectID string, userID int64, role string) {
	f[f.key(projectID, userID)] = role
}

func (f fakeMembers) MemberRole(_ context.Context, _ string, projectID string, userID int64) (string, error) {
	return f[f.key(projectID, userID)], nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent map[int64][]string
}

func (n *recordingNotifier) Notify(_ context.Context, _ string, userID int64, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sent == nil {
		n.sent = map[int64][]string{}
	}
	n.sent[userID] = append(n.sent[userID], message)
	return nil
}
