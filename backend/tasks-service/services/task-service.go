package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"projecthub/backend/auth"
	"projecthub/backend/logging"
	"projecthub/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	roleProjectManager = "ProjectManager"
	roleProjectViewer  = "ProjectViewer"
)

type TaskService struct {
	tasks        TaskRepository
	dependencies DependencyRepository
	comments     CommentRepository
	members      ProjectMembership
	mirror       GraphMirror
	notifier     Notifier
	batchSize    int
	now          func() time.Time

	notifyTimeout time.Duration
	background    sync.WaitGroup
}

type Option func(*TaskService)

func WithBatchSize(n int) Option {
	return func(s *TaskService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

func NewTaskService(
	tasks TaskRepository,
	dependencies DependencyRepository,
	comments CommentRepository,
	members ProjectMembership,
	mirror GraphMirror,
	notifier Notifier,
	opts ...Option,
) *TaskService {
	s := &TaskService{
		tasks:        tasks,
		dependencies: dependencies,
		comments:     comments,
		members:      members,
		mirror:       mirror,
		notifier:     notifier,
		batchSize:    100,
		now:          time.Now,

		notifyTimeout: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}

// requireMember checks the caller's project role. Write access excludes viewers.
func (s *TaskService) requireMember(ctx context.Context, actor auth.Principal, projectID string, write bool) error {
	if actor.IsSystemAdmin() {
		return nil
	}
	role, err := s.members.MemberRole(ctx, actor.Token, projectID, actor.UserID)
	if err != nil {
		return fmt.Errorf("check project membership: %w", err)
	}
	if role == "" {
		return ErrNotProjectMember
	}
	if write && role == roleProjectViewer {
		return ErrReadOnlyMember
	}
	return nil
}

func (s *TaskService) requireAssignable(ctx context.Context, actor auth.Principal, projectID string, userID int64) error {
	role, err := s.members.MemberRole(ctx, actor.Token, projectID, userID)
	if err != nil {
		return fmt.Errorf("check assignee membership: %w", err)
	}
	if role == "" {
		return ErrAssigneeNotMember
	}
	return nil
}

// loadActive fetches a task and refuses soft-deleted ones.
func (s *TaskService) loadActive(ctx context.Context, id string) (*models.Task, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if !task.IsActive {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

func (s *TaskService) CreateTask(ctx context.Context, actor auth.Principal, projectID string, req models.CreateTaskRequest) (*models.Task, error) {
	if err := s.requireMember(ctx, actor, projectID, true); err != nil {
		return nil, err
	}
	if req.StartDate != nil && req.DueDate != nil && req.DueDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("due date must not be before start date")
	}

	var parentID *primitive.ObjectID
	if req.ParentTaskID != "" {
		parent, err := s.loadActive(ctx, req.ParentTaskID)
		if err != nil {
			return nil, fmt.Errorf("parent task: %w", err)
		}
		if parent.ProjectID != projectID {
			return nil, ErrCrossProject
		}
		parentID = &parent.ID
	}
	if req.AssignedToUserID != nil {
		if err := s.requireAssignable(ctx, actor, projectID, *req.AssignedToUserID); err != nil {
			return nil, err
		}
	}

	number, err := s.tasks.NextNumber(ctx, projectID)
	if err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	now := s.now().UTC()
	task := &models.Task{
		ID:               primitive.NewObjectID(),
		ProjectID:        projectID,
		Number:           number,
		Title:            req.Title,
		Description:      req.Description,
		Status:           models.StatusToDo,
		Priority:         priority,
		StartDate:        req.StartDate,
		DueDate:          req.DueDate,
		ParentTaskID:     parentID,
		AssignedToUserID: req.AssignedToUserID,
		CreatedByUserID:  actor.UserID,
		IsActive:         true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s (#%d) created in project %s by user %d", task.ID.Hex(), task.Number, projectID, actor.UserID)

	s.mirrorNode(ctx, actor.Token, *task)
	if task.AssignedToUserID != nil && *task.AssignedToUserID != actor.UserID {
		s.notify(ctx, actor.Token, *task.AssignedToUserID, fmt.Sprintf("You were assigned task #%d '%s'", task.Number, task.Title))
	}
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, actor auth.Principal, id string) (*models.Task, error) {
	task, err := s.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, actor, task.ProjectID, false); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) GetTasksByProject(ctx context.Context, actor auth.Principal, projectID string) ([]models.Task, error) {
	if err := s.requireMember(ctx, actor, projectID, false); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.FindByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve tasks: %w", err)
	}
	active := tasks[:0]
	for _, t := range tasks {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active, nil
}

func (s *TaskService) GetSubtasks(ctx context.Context, actor auth.Principal, id string) ([]models.Task, error) {
	task, err := s.GetTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.tasks.FindChildren(ctx, task.ID)
}

// ChangeTaskStatus moves a task to a new status. Starting work requires every
// active dependency to be closed.
func (s *TaskService) ChangeTaskStatus(ctx context.Context, actor auth.Principal, id string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	task, err := s.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, actor, task.ProjectID, true); err != nil {
		return nil, err
	}

	if status == models.StatusInProgress {
		deps, err := s.dependencies.FindByTask(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("load dependencies: %w", err)
		}
		for _, d := range deps {
			other, err := s.tasks.FindByID(ctx, d.DependsOnTaskID)
			if err != nil {
				if errors.Is(err, ErrTaskNotFound) {
					continue
				}
				return nil, err
			}
			if other.IsActive && !other.Status.Closed() {
				return nil, fmt.Errorf("%w: #%d '%s' is %s", ErrUnfinishedDeps, other.Number, other.Title, other.Status)
			}
		}
	}

	var completedAt *time.Time
	if status == models.StatusDone {
		now := s.now().UTC()
		completedAt = &now
	}
	if err := s.tasks.UpdateStatus(ctx, task.ID, status, completedAt); err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}
	task.Status = status
	task.CompletedAt = completedAt

	logging.Logger.Infof("Event ID: TASK_STATUS_CHANGED, Description: Task %s status set to %s by user %d", task.ID.Hex(), status, actor.UserID)
	s.mirrorNode(ctx, actor.Token, *task)
	return task, nil
}

// AssignTask sets or clears the assignee.
func (s *TaskService) AssignTask(ctx context.Context, actor auth.Principal, id string, userID *int64) (*models.Task, error) {
	task, err := s.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, actor, task.ProjectID, true); err != nil {
		return nil, err
	}
	if userID != nil {
		if err := s.requireAssignable(ctx, actor, task.ProjectID, *userID); err != nil {
			return nil, err
		}
	}
	if err := s.tasks.UpdateAssignee(ctx, task.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to update assignee: %w", err)
	}
	previous := task.AssignedToUserID
	task.AssignedToUserID = userID

	if previous != nil && (userID == nil || *previous != *userID) && *previous != actor.UserID {
		s.notify(ctx, actor.Token, *previous, fmt.Sprintf("You were removed from task #%d '%s'", task.Number, task.Title))
	}
	if userID != nil && (previous == nil || *previous != *userID) && *userID != actor.UserID {
		s.notify(ctx, actor.Token, *userID, fmt.Sprintf("You were assigned task #%d '%s'", task.Number, task.Title))
	}
	return task, nil
}

// DeleteTask soft-deletes a task. Tasks with active subtasks are kept.
func (s *TaskService) DeleteTask(ctx context.Context, actor auth.Principal, id string) error {
	task, err := s.loadActive(ctx, id)
	if err != nil {
		return err
	}
	if err := s.requireMember(ctx, actor, task.ProjectID, true); err != nil {
		return err
	}
	children, err := s.tasks.FindChildren(ctx, task.ID)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return fmt.Errorf("%w: %d remaining", ErrHasSubtasks, len(children))
	}
	if err := s.tasks.Deactivate(ctx, task.ID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	logging.Logger.Infof("Event ID: TASK_DEACTIVATED, Description: Task %s soft-deleted by user %d", task.ID.Hex(), actor.UserID)
	return nil
}

func (s *TaskService) AddComment(ctx context.Context, actor auth.Principal, id, body string) (*models.TaskComment, error) {
	task, err := s.loadActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireMember(ctx, actor, task.ProjectID, false); err != nil {
		return nil, err
	}
	comment := &models.TaskComment{
		ID:           primitive.NewObjectID(),
		TaskID:       task.ID,
		AuthorUserID: actor.UserID,
		Body:         body,
		IsActive:     true,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.comments.Insert(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return comment, nil
}

func (s *TaskService) GetComments(ctx context.Context, actor auth.Principal, id string) ([]models.TaskComment, error) {
	task, err := s.GetTask(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.comments.FindByTask(ctx, task.ID)
}

func (s *TaskService) mirrorNode(ctx context.Context, token string, task models.Task) {
	if s.mirror == nil {
		return
	}
	if err := s.mirror.UpsertNode(ctx, token, task); err != nil {
		logging.Logger.Warnf("Event ID: WORKFLOW_SYNC_FAILED, Description: Failed to mirror task %s to workflow service: %v", task.ID.Hex(), err)
	}
}

func (s *TaskService) notify(ctx context.Context, token string, userID int64, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, token, userID, message); err != nil {
		logging.Logger.Warnf("Event ID: NOTIFICATION_FAILED, Description: Failed to notify user %d: %v", userID, err)
	}
}
