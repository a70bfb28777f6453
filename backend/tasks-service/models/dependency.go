package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskDependency records that TaskID cannot complete before DependsOnTaskID.
type TaskDependency struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID       string             `json:"projectId" bson:"projectId"`
	TaskID          primitive.ObjectID `json:"taskId" bson:"taskId"`
	DependsOnTaskID primitive.ObjectID `json:"dependsOnTaskId" bson:"dependsOnTaskId"`
	CreatedByUserID int64              `json:"createdByUserId" bson:"createdByUserId"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
}

// DependencyEntry is one edge of a dependency listing together with the
// task on the other end.
type DependencyEntry struct {
	DependencyID string      `json:"dependencyId"`
	Task         TaskSummary `json:"task"`
}
