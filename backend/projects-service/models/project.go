package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectRole string

const (
	RoleManager ProjectRole = "ProjectManager"
	RoleMember  ProjectRole = "ProjectMember"
	RoleViewer  ProjectRole = "ProjectViewer"
)

type Project struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OrganizationID  string             `json:"organizationId" bson:"organizationId"`
	Name            string             `json:"name" bson:"name"`
	Description     string             `json:"description" bson:"description"`
	StartDate       *time.Time         `json:"startDate,omitempty" bson:"startDate,omitempty"`
	ExpectedEndDate *time.Time         `json:"expectedEndDate,omitempty" bson:"expectedEndDate,omitempty"`
	// MaxMembers caps active memberships. Zero means unlimited.
	MaxMembers      int       `json:"maxMembers" bson:"maxMembers"`
	CreatedByUserID int64     `json:"createdByUserId" bson:"createdByUserId"`
	IsActive        bool      `json:"isActive" bson:"isActive"`
	CreatedAt       time.Time `json:"createdAt" bson:"createdAt"`
}

type ProjectMember struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ProjectID string             `json:"projectId" bson:"projectId"`
	UserID    int64              `json:"userId" bson:"userId"`
	Role      ProjectRole        `json:"role" bson:"role"`
	IsActive  bool               `json:"isActive" bson:"isActive"`
	JoinedAt  time.Time          `json:"joinedAt" bson:"joinedAt"`
	RemovedAt *time.Time         `json:"removedAt,omitempty" bson:"removedAt,omitempty"`
}
