package interfaces

import (
	"context"

	"projecthub/backend/workflow-service/models"
)

// WorkflowCommandContext is the write side of the workflow graph.
type WorkflowCommandContext interface {
	UpsertTaskNode(ctx context.Context, node models.TaskNode) error
	AddDependency(ctx context.Context, edge models.DependencyEdge) error
	RemoveDependency(ctx context.Context, edge models.DependencyEdge) error
	UpdateBlockedStatus(ctx context.Context, taskID string) (bool, error)
	RefreshDependents(ctx context.Context, taskID string) error
}

// WorkflowQueryContext is the read side.
type WorkflowQueryContext interface {
	GetDependencies(ctx context.Context, taskID string) ([]models.TaskNode, error)
	GetProjectGraph(ctx context.Context, projectID string) (*models.ProjectGraph, error)
}
