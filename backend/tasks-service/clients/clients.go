package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"projecthub/backend/tasks-service/models"
	"projecthub/backend/utils"
)

// ProjectsClient implements services.ProjectMembership.
type ProjectsClient struct {
	api *utils.ServiceClient
}

func NewProjectsClient(api *utils.ServiceClient) *ProjectsClient {
	return &ProjectsClient{api: api}
}

type memberView struct {
	UserID   int64  `json:"userId"`
	Role     string `json:"role"`
	IsActive bool   `json:"isActive"`
}

func (c *ProjectsClient) MemberRole(ctx context.Context, token, projectID string, userID int64) (string, error) {
	var m memberView
	err := c.api.Do(ctx, http.MethodGet, fmt.Sprintf("/internal/projects/%s/members/%d", projectID, userID), token, nil, &m)
	if err != nil {
		var remote *utils.RemoteError
		if errors.As(err, &remote) && remote.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", err
	}
	if !m.IsActive {
		return "", nil
	}
	return m.Role, nil
}

// WorkflowClient implements services.GraphMirror.
type WorkflowClient struct {
	api *utils.ServiceClient
}

func NewWorkflowClient(api *utils.ServiceClient) *WorkflowClient {
	return &WorkflowClient{api: api}
}

type taskNode struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Title     string `json:"title"`
	Status    string `json:"status"`
}

type edge struct {
	TaskID          string `json:"taskId"`
	DependsOnTaskID string `json:"dependsOnTaskId"`
}

func (c *WorkflowClient) UpsertNode(ctx context.Context, token string, task models.Task) error {
	node := taskNode{ID: task.ID.Hex(), ProjectID: task.ProjectID, Title: task.Title, Status: string(task.Status)}
	return c.api.Do(ctx, http.MethodPost, "/api/workflow/task-node", token, node, nil)
}

func (c *WorkflowClient) AddEdge(ctx context.Context, token string, dep models.TaskDependency) error {
	return c.api.Do(ctx, http.MethodPost, "/api/workflow/dependency", token, edge{TaskID: dep.TaskID.Hex(), DependsOnTaskID: dep.DependsOnTaskID.Hex()}, nil)
}

func (c *WorkflowClient) RemoveEdge(ctx context.Context, token string, dep models.TaskDependency) error {
	return c.api.Do(ctx, http.MethodDelete, "/api/workflow/dependency", token, edge{TaskID: dep.TaskID.Hex(), DependsOnTaskID: dep.DependsOnTaskID.Hex()}, nil)
}

// NotificationsClient implements services.Notifier.
type NotificationsClient struct {
	api *utils.ServiceClient
}

func NewNotificationsClient(api *utils.ServiceClient) *NotificationsClient {
	return &NotificationsClient{api: api}
}

func (c *NotificationsClient) Notify(ctx context.Context, token string, userID int64, message string) error {
	body := struct {
		UserID  int64  `json:"userId"`
		Message string `json:"message"`
	}{UserID: userID, Message: message}
	return c.api.Do(ctx, http.MethodPost, "/internal/notifications", token, body, nil)
}
