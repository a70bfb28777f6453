package services

import (
	"context"
	"errors"
	"time"

	"projecthub/backend/auth"
	"projecthub/backend/logging"
	"projecthub/backend/metrics"
	"projecthub/backend/users-service/models"
)

// DeletionCoordinator removes a user across every service that holds data
// about them. There is no distributed transaction: blocking checks run first,
// then cleanup steps run in order and the first failure stops the saga. Every
// step is idempotent, so a failed deletion is finished by calling it again.
type DeletionCoordinator struct {
	users    UserRepository
	checkers []BlockingChecker
	steps    []CleanupStep
	now      func() time.Time
}

func NewDeletionCoordinator(users UserRepository, checkers []BlockingChecker, steps []CleanupStep) *DeletionCoordinator {
	return &DeletionCoordinator{users: users, checkers: checkers, steps: steps, now: time.Now}
}

// DeleteUser runs the saga for userID on behalf of actor. The returned result
// is never nil and records every step that ran.
func (c *DeletionCoordinator) DeleteUser(ctx context.Context, actor auth.Principal, userID int64) (*models.SagaResult, error) {
	result := &models.SagaResult{UserID: userID}

	if err := c.checkIdentity(ctx, actor, userID); err != nil {
		if !IsUserFacing(err) {
			result.Record("identity", "users-service", models.StepFailed, err.Error())
			metrics.UserDeletions.WithLabelValues("error").Inc()
			return result, err
		}
		result.Record("identity", "users-service", models.StepBlocked, err.Error())
		metrics.UserDeletions.WithLabelValues("rejected").Inc()
		logging.Logger.Warnf("Event ID: USER_DELETE_REJECTED, Description: Deletion of user %d by %d rejected: %v", userID, actor.UserID, err)
		return result, err
	}
	result.Record("identity", "users-service", models.StepOK, "")

	var reasons []string
	for _, checker := range c.checkers {
		roles, err := checker.BlockingRoles(ctx, actor.Token, userID)
		if err != nil {
			result.Record("blocking-roles", checker.Name(), models.StepFailed, err.Error())
			metrics.UserDeletions.WithLabelValues("error").Inc()
			logging.Logger.Errorf("Event ID: USER_DELETE_CHECK_FAILED, Description: Blocking-role check in %s for user %d failed: %v", checker.Name(), userID, err)
			return result, &CheckError{Service: checker.Name(), Err: err}
		}
		if roles.Blocking {
			result.Record("blocking-roles", checker.Name(), models.StepBlocked, joinReasons(roles.Reasons))
			reasons = append(reasons, roles.Reasons...)
			continue
		}
		result.Record("blocking-roles", checker.Name(), models.StepOK, "")
	}
	if len(reasons) > 0 {
		metrics.UserDeletions.WithLabelValues("blocked").Inc()
		logging.Logger.Warnf("Event ID: USER_DELETE_BLOCKED, Description: User %d holds sole-authority roles: %v", userID, reasons)
		return result, &BlockingRolesError{Reasons: reasons}
	}

	for i, step := range c.steps {
		if err := step.Cleanup(ctx, actor.Token, userID); err != nil {
			result.Record("cleanup", step.Name(), models.StepFailed, err.Error())
			for _, rest := range c.steps[i+1:] {
				result.Record("cleanup", rest.Name(), models.StepSkipped, "")
			}
			result.Record("delete-identity", "users-service", models.StepSkipped, "")
			metrics.UserDeletions.WithLabelValues("cleanup_failed").Inc()
			logging.Logger.Errorf("Event ID: USER_DELETE_CLEANUP_FAILED, Description: Cleanup of user %d failed in %s: %v", userID, step.Name(), err)
			return result, &CleanupError{Service: step.Name(), Err: err}
		}
		result.Record("cleanup", step.Name(), models.StepOK, "")
		logging.Logger.Infof("Event ID: USER_CLEANUP_STEP_DONE, Description: Cleanup of user %d done in %s", userID, step.Name())
	}

	if err := c.users.SoftDelete(ctx, userID, actor.UserID, c.now().UTC()); err != nil {
		result.Record("delete-identity", "users-service", models.StepFailed, err.Error())
		metrics.UserDeletions.WithLabelValues("error").Inc()
		logging.Logger.Errorf("Event ID: USER_DELETE_FAILED, Description: Soft delete of user %d failed: %v", userID, err)
		return result, err
	}
	result.Record("delete-identity", "users-service", models.StepOK, "")
	result.Deleted = true

	metrics.UserDeletions.WithLabelValues("deleted").Inc()
	logging.Logger.Infof("Event ID: USER_DELETED, Description: User %d deleted by %d", userID, actor.UserID)
	return result, nil
}

func (c *DeletionCoordinator) checkIdentity(ctx context.Context, actor auth.Principal, userID int64) error {
	if actor.UserID == userID {
		return ErrSelfDeletion
	}
	user, err := c.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Deleted() {
		return ErrUserNotFound
	}
	if user.Role == models.RoleSystemAdmin && user.IsActive {
		admins, err := c.users.CountActiveByRole(ctx, models.RoleSystemAdmin)
		if err != nil {
			return err
		}
		if admins <= 1 {
			return ErrLastSystemAdmin
		}
	}
	return nil
}

func joinReasons(reasons []string) string {
	return (&BlockingRolesError{Reasons: reasons}).Error()
}

// IsUserFacing reports whether err is a deletion refusal rather than an
// infrastructure failure.
func IsUserFacing(err error) bool {
	var blocking *BlockingRolesError
	var cleanup *CleanupError
	return errors.Is(err, ErrSelfDeletion) ||
		errors.Is(err, ErrLastSystemAdmin) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.As(err, &blocking) ||
		errors.As(err, &cleanup)
}
