package commands

import (
	"context"

	"projecthub/backend/workflow-service/interfaces"
	"projecthub/backend/workflow-service/models"
)

type UpsertTaskNodeCommand struct {
	Node models.TaskNode
}

type UpsertTaskNodeHandler struct {
	GraphService interfaces.WorkflowCommandContext
}

func NewUpsertTaskNodeHandler(svc interfaces.WorkflowCommandContext) *UpsertTaskNodeHandler {
	return &UpsertTaskNodeHandler{GraphService: svc}
}

// Handle stores the node, then refreshes its own blocked flag and the flags
// of the tasks waiting on it, since a status change can flip both.
func (h *UpsertTaskNodeHandler) Handle(ctx context.Context, cmd UpsertTaskNodeCommand) error {
	if err := h.GraphService.UpsertTaskNode(ctx, cmd.Node); err != nil {
		return err
	}
	update := UpdateBlockedStatusCommand{TaskID: cmd.Node.ID, Svc: h.GraphService}
	if err := update.Execute(ctx); err != nil {
		return err
	}
	return h.GraphService.RefreshDependents(ctx, cmd.Node.ID)
}

type UpdateBlockedStatusCommand struct {
	TaskID string
	Svc    interfaces.WorkflowCommandContext
}

func (cmd *UpdateBlockedStatusCommand) Execute(ctx context.Context) error {
	_, err := cmd.Svc.UpdateBlockedStatus(ctx, cmd.TaskID)
	return err
}
