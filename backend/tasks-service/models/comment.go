package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskComment struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	TaskID       primitive.ObjectID `json:"taskId" bson:"taskId"`
	AuthorUserID int64              `json:"authorUserId" bson:"authorUserId"`
	Body         string             `json:"body" bson:"body"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
}
