package queries

import (
	"context"

	"projecthub/backend/workflow-service/interfaces"
	"projecthub/backend/workflow-service/models"
)

type GetDependenciesQuery struct {
	TaskID string
	Svc    interfaces.WorkflowQueryContext
}

func (q *GetDependenciesQuery) Execute(ctx context.Context) ([]models.TaskNode, error) {
	return q.Svc.GetDependencies(ctx, q.TaskID)
}

type GetProjectGraphQuery struct {
	ProjectID string
	Svc       interfaces.WorkflowQueryContext
}

func (q *GetProjectGraphQuery) Execute(ctx context.Context) (*models.ProjectGraph, error) {
	return q.Svc.GetProjectGraph(ctx, q.ProjectID)
}
