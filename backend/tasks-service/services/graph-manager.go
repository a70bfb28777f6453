package services

import (
	"context"
	"errors"
	"fmt"

	"projecthub/backend/auth"
	"projecthub/backend/logging"
	"projecthub/backend/metrics"
	"projecthub/backend/tasks-service/graph"
	"projecthub/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The check-then-write windows below take no lock. Two writers racing on the
// same project can both pass their check; project task volumes are small
// enough that this is accepted.

// SetParent sets the parent of taskID, or clears it when parentID is empty.
func (s *TaskService) SetParent(ctx context.Context, actor auth.Principal, taskID, parentID string) (*models.Task, error) {
	task, err := s.loadActive(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, actor, task.ProjectID, true); err != nil {
		return nil, err
	}

	if parentID == "" {
		if err := s.tasks.UpdateParent(ctx, task.ID, nil); err != nil {
			return nil, fmt.Errorf("failed to clear parent: %w", err)
		}
		task.ParentTaskID = nil
		return task, nil
	}

	if parentID == taskID {
		metrics.GraphRejections.WithLabelValues("hierarchy", "self").Inc()
		return nil, ErrSelfReference
	}
	parent, err := s.loadActive(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("parent task: %w", err)
	}
	if parent.ProjectID != task.ProjectID {
		return nil, ErrCrossProject
	}

	view, err := s.parentView(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if graph.HierarchyCycle(view, task.ID.Hex(), parent.ID.Hex()) {
		metrics.GraphRejections.WithLabelValues("hierarchy", "cycle").Inc()
		logging.Logger.Warnf("Event ID: HIERARCHY_CYCLE_REJECTED, Description: Parent %s for task %s would create a cycle", parentID, taskID)
		return nil, ErrCircularHierarchy
	}

	if err := s.tasks.UpdateParent(ctx, task.ID, &parent.ID); err != nil {
		return nil, fmt.Errorf("failed to set parent: %w", err)
	}
	task.ParentTaskID = &parent.ID
	logging.Logger.Infof("Event ID: TASK_PARENT_SET, Description: Task %s now under %s", taskID, parentID)
	return task, nil
}

// AddDependency records that taskID depends on dependsOnID.
func (s *TaskService) AddDependency(ctx context.Context, actor auth.Principal, taskID, dependsOnID string) (*models.TaskDependency, error) {
	task, err := s.loadActive(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, actor, task.ProjectID, true); err != nil {
		return nil, err
	}
	if taskID == dependsOnID {
		metrics.GraphRejections.WithLabelValues("dependency", "self").Inc()
		return nil, ErrSelfReference
	}
	other, err := s.loadActive(ctx, dependsOnID)
	if err != nil {
		return nil, fmt.Errorf("dependency target: %w", err)
	}
	if other.ProjectID != task.ProjectID {
		return nil, ErrCrossProject
	}

	view, err := s.dependencyView(ctx, task.ProjectID)
	if err != nil {
		return nil, err
	}
	if graph.DependencyCycle(view, task.ID.Hex(), other.ID.Hex()) {
		metrics.GraphRejections.WithLabelValues("dependency", "cycle").Inc()
		logging.Logger.Warnf("Event ID: DEPENDENCY_CYCLE_REJECTED, Description: %s -> %s would create a cycle", taskID, dependsOnID)
		return nil, ErrCircularDependency
	}

	dep := &models.TaskDependency{
		ID:              primitive.NewObjectID(),
		ProjectID:       task.ProjectID,
		TaskID:          task.ID,
		DependsOnTaskID: other.ID,
		CreatedByUserID: actor.UserID,
		CreatedAt:       s.now().UTC(),
	}
	if err := s.dependencies.Insert(ctx, dep); err != nil {
		if errors.Is(err, ErrDuplicateDependency) {
			metrics.GraphRejections.WithLabelValues("dependency", "duplicate").Inc()
			return nil, err
		}
		return nil, fmt.Errorf("failed to create dependency: %w", err)
	}
	logging.Logger.Infof("Event ID: DEPENDENCY_ADDED, Description: %s depends on %s", taskID, dependsOnID)

	if s.mirror != nil {
		if err := s.mirror.AddEdge(ctx, actor.Token, *dep); err != nil {
			logging.Logger.Warnf("Event ID: WORKFLOW_SYNC_FAILED, Description: Failed to mirror dependency %s: %v", dep.ID.Hex(), err)
		}
	}
	return dep, nil
}

// RemoveDependency deletes an edge. Removal never creates a cycle so no check runs.
func (s *TaskService) RemoveDependency(ctx context.Context, actor auth.Principal, dependencyID string) error {
	oid, err := parseID(dependencyID)
	if err != nil {
		return err
	}
	dep, err := s.dependencies.FindByID(ctx, oid)
	if err != nil {
		return err
	}
	if err := s.requireMember(ctx, actor, dep.ProjectID, true); err != nil {
		return err
	}
	if err := s.dependencies.Delete(ctx, oid); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: DEPENDENCY_REMOVED, Description: Dependency %s removed", dependencyID)

	if s.mirror != nil {
		if err := s.mirror.RemoveEdge(ctx, actor.Token, *dep); err != nil {
			logging.Logger.Warnf("Event ID: WORKFLOW_SYNC_FAILED, Description: Failed to remove mirrored dependency %s: %v", dependencyID, err)
		}
	}
	return nil
}

// GetDependencies lists the tasks taskID depends on.
func (s *TaskService) GetDependencies(ctx context.Context, actor auth.Principal, taskID string) ([]models.DependencyEntry, error) {
	task, err := s.GetTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	edges, err := s.dependencies.FindByTask(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, edges, func(d models.TaskDependency) primitive.ObjectID { return d.DependsOnTaskID }), nil
}

// GetDependents lists the tasks that depend on taskID.
func (s *TaskService) GetDependents(ctx context.Context, actor auth.Principal, taskID string) ([]models.DependencyEntry, error) {
	task, err := s.GetTask(ctx, actor, taskID)
	if err != nil {
		return nil, err
	}
	edges, err := s.dependencies.FindByDependsOn(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	return s.expand(ctx, edges, func(d models.TaskDependency) primitive.ObjectID { return d.TaskID }), nil
}

// expand attaches the other end of each edge. A lookup that fails, or hits a
// soft-deleted task, drops that entry only.
func (s *TaskService) expand(ctx context.Context, edges []models.TaskDependency, other func(models.TaskDependency) primitive.ObjectID) []models.DependencyEntry {
	out := make([]models.DependencyEntry, 0, len(edges))
	for _, e := range edges {
		t, err := s.tasks.FindByID(ctx, other(e))
		if err != nil {
			logging.Logger.Warnf("Event ID: DEPENDENCY_LOOKUP_SKIPPED, Description: Skipping dependency %s: %v", e.ID.Hex(), err)
			continue
		}
		if !t.IsActive {
			continue
		}
		out = append(out, models.DependencyEntry{DependencyID: e.ID.Hex(), Task: t.Summary()})
	}
	return out
}

func (s *TaskService) parentView(ctx context.Context, projectID string) (graph.ParentView, error) {
	tasks, err := s.tasks.FindByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project hierarchy: %w", err)
	}
	view := make(graph.ParentView, len(tasks))
	for i := range tasks {
		if p := tasks[i].ParentID(); p != "" {
			view[tasks[i].ID.Hex()] = p
		}
	}
	return view, nil
}

func (s *TaskService) dependencyView(ctx context.Context, projectID string) (graph.DependencyView, error) {
	edges, err := s.dependencies.FindByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project dependencies: %w", err)
	}
	view := make(graph.DependencyView, len(edges))
	for _, e := range edges {
		from := e.TaskID.Hex()
		view[from] = append(view[from], e.DependsOnTaskID.Hex())
	}
	return view, nil
}
