package services

import (
	"context"

	"projecthub/backend/workflow-service/models"
)

// GraphStore persists the task graph. DEPENDS_ON points from a task to the
// task it waits for.
type GraphStore interface {
	// UpsertNode writes every field of node except Blocked.
	UpsertNode(ctx context.Context, node models.TaskNode) error
	FindNode(ctx context.Context, id string) (*models.TaskNode, error)
	EdgeExists(ctx context.Context, edge models.DependencyEdge) (bool, error)
	// PathExists reports whether from reaches to by following DEPENDS_ON.
	PathExists(ctx context.Context, from, to string) (bool, error)
	CreateEdge(ctx context.Context, edge models.DependencyEdge) error
	DeleteEdge(ctx context.Context, edge models.DependencyEdge) (bool, error)
	Dependencies(ctx context.Context, taskID string) ([]models.TaskNode, error)
	Dependents(ctx context.Context, taskID string) ([]string, error)
	SetBlocked(ctx context.Context, taskID string, blocked bool) error
	ProjectGraph(ctx context.Context, projectID string) ([]models.TaskNode, []models.DependencyEdge, error)
}
