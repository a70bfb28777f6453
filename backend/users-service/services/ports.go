package services

import (
	"context"
	"time"

	"projecthub/backend/users-service/models"
)

type UserRepository interface {
	// Create assigns the next user id and stores u.
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id int64, role string) error
	CountActiveByRole(ctx context.Context, role string) (int64, error)
	SoftDelete(ctx context.Context, id, deletedBy int64, at time.Time) error
}

// BlockingChecker is a service that can veto a user deletion.
type BlockingChecker interface {
	Name() string
	BlockingRoles(ctx context.Context, token string, userID int64) (*models.BlockingRoles, error)
}

// CleanupStep is one idempotent step of the deletion saga.
type CleanupStep interface {
	Name() string
	Cleanup(ctx context.Context, token string, userID int64) error
}
