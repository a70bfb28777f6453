package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskStatus string

const (
	StatusToDo       TaskStatus = "ToDo"
	StatusInProgress TaskStatus = "InProgress"
	StatusInReview   TaskStatus = "InReview"
	StatusDone       TaskStatus = "Done"
	StatusCancelled  TaskStatus = "Cancelled"
)

// Closed reports whether the status no longer blocks dependent tasks.
func (s TaskStatus) Closed() bool {
	return s == StatusDone || s == StatusCancelled
}

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusInReview, StatusDone, StatusCancelled:
		return true
	}
	return false
}

type TaskPriority string

const (
	PriorityLow      TaskPriority = "Low"
	PriorityMedium   TaskPriority = "Medium"
	PriorityHigh     TaskPriority = "High"
	PriorityCritical TaskPriority = "Critical"
)

type Task struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	ProjectID        string              `json:"projectId" bson:"projectId"`
	Number           int64               `json:"number" bson:"number"`
	Title            string              `json:"title" bson:"title"`
	Description      string              `json:"description" bson:"description"`
	Status           TaskStatus          `json:"status" bson:"status"`
	Priority         TaskPriority        `json:"priority" bson:"priority"`
	StartDate        *time.Time          `json:"startDate,omitempty" bson:"startDate,omitempty"`
	DueDate          *time.Time          `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	CompletedAt      *time.Time          `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	ParentTaskID     *primitive.ObjectID `json:"parentTaskId,omitempty" bson:"parentTaskId,omitempty"`
	AssignedToUserID *int64              `json:"assignedToUserId" bson:"assignedToUserId"`
	CreatedByUserID  int64               `json:"createdByUserId" bson:"createdByUserId"`
	IsActive         bool                `json:"isActive" bson:"isActive"`
	CreatedAt        time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// ParentID returns the parent id as a hex string, or "" for a root task.
func (t *Task) ParentID() string {
	if t.ParentTaskID == nil {
		return ""
	}
	return t.ParentTaskID.Hex()
}

// TaskSummary is the projected view attached to dependency listings.
type TaskSummary struct {
	ID               string       `json:"id"`
	Number           int64        `json:"number"`
	Title            string       `json:"title"`
	Status           TaskStatus   `json:"status"`
	Priority         TaskPriority `json:"priority"`
	AssignedToUserID *int64       `json:"assignedToUserId"`
}

func (t *Task) Summary() TaskSummary {
	return TaskSummary{
		ID:               t.ID.Hex(),
		Number:           t.Number,
		Title:            t.Title,
		Status:           t.Status,
		Priority:         t.Priority,
		AssignedToUserID: t.AssignedToUserID,
	}
}
