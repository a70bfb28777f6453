package commands

import (
	"context"
	"fmt"

	"projecthub/backend/workflow-service/interfaces"
	"projecthub/backend/workflow-service/models"
)

type RemoveDependencyCommand struct {
	Dependency models.DependencyEdge
}

type RemoveDependencyHandler struct {
	GraphService interfaces.WorkflowCommandContext
}

func NewRemoveDependencyHandler(svc interfaces.WorkflowCommandContext) *RemoveDependencyHandler {
	return &RemoveDependencyHandler{GraphService: svc}
}

func (h *RemoveDependencyHandler) Handle(ctx context.Context, cmd RemoveDependencyCommand) error {
	if err := h.GraphService.RemoveDependency(ctx, cmd.Dependency); err != nil {
		return fmt.Errorf("failed to remove dependency: %w", err)
	}
	update := UpdateBlockedStatusCommand{TaskID: cmd.Dependency.TaskID, Svc: h.GraphService}
	return update.Execute(ctx)
}
