package models

import "time"

type CreateTaskRequest struct {
	Title            string       `json:"title" validate:"required,min=1,max=200"`
	Description      string       `json:"description" validate:"max=4000"`
	Priority         TaskPriority `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	StartDate        *time.Time   `json:"startDate"`
	DueDate          *time.Time   `json:"dueDate"`
	ParentTaskID     string       `json:"parentTaskId" validate:"omitempty,len=24,hexadecimal"`
	AssignedToUserID *int64       `json:"assignedToUserId" validate:"omitempty,gt=0"`
}

type ChangeStatusRequest struct {
	Status TaskStatus `json:"status" validate:"required,oneof=ToDo InProgress InReview Done Cancelled"`
}

type AssignRequest struct {
	// nil clears the assignee
	UserID *int64 `json:"userId" validate:"omitempty,gt=0"`
}

type SetParentRequest struct {
	// empty clears the parent
	ParentTaskID string `json:"parentTaskId" validate:"omitempty,len=24,hexadecimal"`
}

type AddDependencyRequest struct {
	DependsOnTaskID string `json:"dependsOnTaskId" validate:"required,len=24,hexadecimal"`
}

type AddCommentRequest struct {
	Body string `json:"body" validate:"required,min=1,max=4000"`
}

// CleanupReport is returned by the internal user cleanup endpoint.
type CleanupReport struct {
	UserID     int64 `json:"userId"`
	Unassigned int64 `json:"unassigned"`
	Batches    int   `json:"batches"`
}
