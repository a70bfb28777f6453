package services

import (
	"context"
	"fmt"

	"projecthub/backend/logging"
	"projecthub/backend/metrics"
	"projecthub/backend/workflow-service/models"
)

type WorkflowService struct {
	store GraphStore
}

func NewWorkflowService(store GraphStore) *WorkflowService {
	return &WorkflowService{store: store}
}

// UpsertTaskNode mirrors a task and re-evaluates everything its status can
// block or unblock.
func (s *WorkflowService) UpsertTaskNode(ctx context.Context, node models.TaskNode) error {
	if err := s.store.UpsertNode(ctx, node); err != nil {
		return fmt.Errorf("failed to upsert task node %s: %w", node.ID, err)
	}
	logging.Logger.Debugf("Event ID: TASK_NODE_UPSERTED, Description: Task node %s (%s) stored", node.ID, node.Status)
	return nil
}

func (s *WorkflowService) AddDependency(ctx context.Context, edge models.DependencyEdge) error {
	if edge.TaskID == edge.DependsOnTaskID {
		metrics.GraphRejections.WithLabelValues("workflow", "self").Inc()
		return ErrSelfDependency
	}
	for _, id := range []string{edge.TaskID, edge.DependsOnTaskID} {
		if _, err := s.store.FindNode(ctx, id); err != nil {
			return err
		}
	}

	exists, err := s.store.EdgeExists(ctx, edge)
	if err != nil {
		return fmt.Errorf("failed to check if dependency exists: %w", err)
	}
	if exists {
		metrics.GraphRejections.WithLabelValues("workflow", "duplicate").Inc()
		return ErrDependencyExists
	}

	// the new edge closes a cycle when the prerequisite already waits on the task
	cycle, err := s.store.PathExists(ctx, edge.DependsOnTaskID, edge.TaskID)
	if err != nil {
		return fmt.Errorf("cycle detection failed: %w", err)
	}
	if cycle {
		metrics.GraphRejections.WithLabelValues("workflow", "cycle").Inc()
		return ErrCycle
	}

	if err := s.store.CreateEdge(ctx, edge); err != nil {
		return fmt.Errorf("failed to create dependency relation: %w", err)
	}
	logging.Logger.Infof("Event ID: WORKFLOW_DEPENDENCY_ADDED, Description: Task %s now depends on %s", edge.TaskID, edge.DependsOnTaskID)
	return nil
}

func (s *WorkflowService) RemoveDependency(ctx context.Context, edge models.DependencyEdge) error {
	removed, err := s.store.DeleteEdge(ctx, edge)
	if err != nil {
		return fmt.Errorf("failed to remove dependency relation: %w", err)
	}
	if !removed {
		return ErrDependencyNotFound
	}
	logging.Logger.Infof("Event ID: WORKFLOW_DEPENDENCY_REMOVED, Description: Task %s no longer depends on %s", edge.TaskID, edge.DependsOnTaskID)
	return nil
}

// UpdateBlockedStatus recomputes the blocked flag of taskID: it is blocked
// while any dependency is neither Done nor Cancelled.
func (s *WorkflowService) UpdateBlockedStatus(ctx context.Context, taskID string) (bool, error) {
	deps, err := s.store.Dependencies(ctx, taskID)
	if err != nil {
		return false, fmt.Errorf("failed to fetch dependencies: %w", err)
	}
	blocked := false
	for _, dep := range deps {
		if !dep.Closed() {
			blocked = true
			break
		}
	}
	if err := s.store.SetBlocked(ctx, taskID, blocked); err != nil {
		return false, fmt.Errorf("failed to update blocked status: %w", err)
	}
	logging.Logger.Debugf("Event ID: WORKFLOW_BLOCKED_UPDATED, Description: Blocked status for task %s updated to %v", taskID, blocked)
	return blocked, nil
}

// RefreshDependents recomputes the blocked flag of every task that waits on taskID.
func (s *WorkflowService) RefreshDependents(ctx context.Context, taskID string) error {
	dependents, err := s.store.Dependents(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to fetch dependents of %s: %w", taskID, err)
	}
	for _, id := range dependents {
		if _, err := s.UpdateBlockedStatus(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *WorkflowService) GetDependencies(ctx context.Context, taskID string) ([]models.TaskNode, error) {
	if _, err := s.store.FindNode(ctx, taskID); err != nil {
		return nil, err
	}
	deps, err := s.store.Dependencies(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if deps == nil {
		deps = []models.TaskNode{}
	}
	return deps, nil
}

func (s *WorkflowService) GetProjectGraph(ctx context.Context, projectID string) (*models.ProjectGraph, error) {
	nodes, edges, err := s.store.ProjectGraph(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow graph for project %s: %w", projectID, err)
	}
	if nodes == nil {
		nodes = []models.TaskNode{}
	}
	if edges == nil {
		edges = []models.DependencyEdge{}
	}
	return &models.ProjectGraph{ProjectID: projectID, Nodes: nodes, Edges: edges}, nil
}
