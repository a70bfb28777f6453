package services

import (
	"context"
	"time"

	"projecthub/backend/organizations-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrganizationRepository interface {
	Insert(ctx context.Context, org *models.Organization) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Organization, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Organization, error)
}

type MembershipRepository interface {
	Insert(ctx context.Context, m *models.OrganizationUser) error
	// Find returns the membership row of userID in orgID, active or not.
	Find(ctx context.Context, orgID string, userID int64) (*models.OrganizationUser, error)
	ListActive(ctx context.Context, orgID string) ([]models.OrganizationUser, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]models.OrganizationUser, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, role models.OrganizationRole) error
	Deactivate(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Reactivate(ctx context.Context, id primitive.ObjectID, role models.OrganizationRole, at time.Time) error
	// DeactivateAllForUser deactivates every active row of userID and reports how many changed.
	DeactivateAllForUser(ctx context.Context, userID int64, at time.Time) (int64, error)
}

// UserDirectory resolves user ids against the identity service.
type UserDirectory interface {
	Exists(ctx context.Context, token string, userID int64) error
}
