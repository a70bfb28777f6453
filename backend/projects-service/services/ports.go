package services

import (
	"context"
	"time"

	"projecthub/backend/projects-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectRepository interface {
	Insert(ctx context.Context, p *models.Project) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	FindByOrganization(ctx context.Context, orgID string) ([]models.Project, error)
}

type MemberRepository interface {
	Insert(ctx context.Context, m *models.ProjectMember) error
	// Find returns the row of userID in projectID, active or not.
	Find(ctx context.Context, projectID string, userID int64) (*models.ProjectMember, error)
	ListActive(ctx context.Context, projectID string) ([]models.ProjectMember, error)
	ListActiveByUser(ctx context.Context, userID int64) ([]models.ProjectMember, error)
	UpdateRole(ctx context.Context, id primitive.ObjectID, role models.ProjectRole) error
	Deactivate(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Reactivate(ctx context.Context, id primitive.ObjectID, role models.ProjectRole, at time.Time) error
	DeactivateAllForUser(ctx context.Context, userID int64, at time.Time) (int64, error)
}

// OrganizationMembership asks the organization service whether a user
// belongs to an organization.
type OrganizationMembership interface {
	IsMember(ctx context.Context, token, orgID string, userID int64) (bool, error)
}
