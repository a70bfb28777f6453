package services

import (
	"context"
	"time"

	"projecthub/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskRepository interface {
	NextNumber(ctx context.Context, projectID string) (int64, error)
	Insert(ctx context.Context, task *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	FindByProject(ctx context.Context, projectID string) ([]models.Task, error)
	FindChildren(ctx context.Context, parentID primitive.ObjectID) ([]models.Task, error)
	UpdateParent(ctx context.Context, id primitive.ObjectID, parentID *primitive.ObjectID) error
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.TaskStatus, completedAt *time.Time) error
	UpdateAssignee(ctx context.Context, id primitive.ObjectID, userID *int64) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	// FindAssigned returns up to limit active tasks assigned to userID.
	FindAssigned(ctx context.Context, userID int64, limit int) ([]models.Task, error)
	// Unassign clears the assignee of the given tasks that are still assigned to userID.
	Unassign(ctx context.Context, ids []primitive.ObjectID, userID int64) (int64, error)
}

type DependencyRepository interface {
	// Insert returns ErrDuplicateDependency when the ordered pair exists.
	Insert(ctx context.Context, dep *models.TaskDependency) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.TaskDependency, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.TaskDependency, error)
	FindByDependsOn(ctx context.Context, taskID primitive.ObjectID) ([]models.TaskDependency, error)
	FindByProject(ctx context.Context, projectID string) ([]models.TaskDependency, error)
}

type CommentRepository interface {
	Insert(ctx context.Context, c *models.TaskComment) error
	FindByTask(ctx context.Context, taskID primitive.ObjectID) ([]models.TaskComment, error)
}

// ProjectMembership resolves a user's role on a project through the
// projects service. An empty role means no active membership.
type ProjectMembership interface {
	MemberRole(ctx context.Context, token, projectID string, userID int64) (string, error)
}

// GraphMirror pushes task graph changes to the workflow read model.
type GraphMirror interface {
	UpsertNode(ctx context.Context, token string, task models.Task) error
	AddEdge(ctx context.Context, token string, dep models.TaskDependency) error
	RemoveEdge(ctx context.Context, token string, dep models.TaskDependency) error
}

// Notifier delivers a user notification through the notifications service.
type Notifier interface {
	Notify(ctx context.Context, token string, userID int64, message string) error
}
