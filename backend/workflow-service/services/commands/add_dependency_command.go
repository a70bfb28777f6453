package commands

import (
	"context"
	"fmt"

	"projecthub/backend/logging"
	"projecthub/backend/workflow-service/interfaces"
	"projecthub/backend/workflow-service/models"
)

type AddDependencyCommand struct {
	Dependency models.DependencyEdge
}

type AddDependencyHandler struct {
	GraphService interfaces.WorkflowCommandContext
}

func NewAddDependencyHandler(svc interfaces.WorkflowCommandContext) *AddDependencyHandler {
	return &AddDependencyHandler{GraphService: svc}
}

func (h *AddDependencyHandler) Handle(ctx context.Context, cmd AddDependencyCommand) error {
	if err := h.GraphService.AddDependency(ctx, cmd.Dependency); err != nil {
		return fmt.Errorf("failed to add dependency: %w", err)
	}

	update := UpdateBlockedStatusCommand{TaskID: cmd.Dependency.TaskID, Svc: h.GraphService}
	if err := update.Execute(ctx); err != nil {
		logging.Logger.Warnf("Event ID: WORKFLOW_BLOCKED_UPDATE_FAILED, Description: Dependency added, but failed to update blocked status of %s: %v", cmd.Dependency.TaskID, err)
	}
	return nil
}
