package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrganizationRole string

const (
	RoleOwner  OrganizationRole = "OrganizationOwner"
	RoleAdmin  OrganizationRole = "OrganizationAdmin"
	RoleMember OrganizationRole = "OrganizationMember"
)

// AdminTier reports whether the role can manage members.
func (r OrganizationRole) AdminTier() bool {
	return r == RoleOwner || r == RoleAdmin
}

type Organization struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Description     string             `bson:"description" json:"description"`
	CreatedByUserID int64              `bson:"createdByUserId" json:"createdByUserId"`
	IsActive        bool               `bson:"isActive" json:"isActive"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
}

// OrganizationUser is one membership row. Removal deactivates the row, and a
// later re-add reactivates it.
type OrganizationUser struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OrganizationID string             `bson:"organizationId" json:"organizationId"`
	UserID         int64              `bson:"userId" json:"userId"`
	Role           OrganizationRole   `bson:"role" json:"role"`
	IsActive       bool               `bson:"isActive" json:"isActive"`
	JoinedAt       time.Time          `bson:"joinedAt" json:"joinedAt"`
	RemovedAt      *time.Time         `bson:"removedAt,omitempty" json:"removedAt,omitempty"`
}
