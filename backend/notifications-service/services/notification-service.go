package services

import (
	"context"
	"fmt"
	"time"

	"projecthub/backend/logging"
	"projecthub/backend/notifications-service/models"

	"github.com/gocql/gocql"
)

// NotificationRepository stores notifications partitioned by recipient.
type NotificationRepository interface {
	Insert(ctx context.Context, n *models.Notification) error
	// ListByUser returns newest first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]models.Notification, error)
	Find(ctx context.Context, userID int64, id gocql.UUID) (*models.Notification, error)
	MarkRead(ctx context.Context, userID int64, id gocql.UUID) error
	Delete(ctx context.Context, userID int64, id gocql.UUID) error
}

const DefaultListLimit = 100

type NotificationService struct {
	repo NotificationRepository
	now  func() time.Time
}

func NewNotificationService(repo NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo, now: time.Now}
}

func (ns *NotificationService) CreateNotification(ctx context.Context, req models.CreateNotificationRequest) (*models.Notification, error) {
	now := ns.now().UTC()
	n := &models.Notification{
		ID:        gocql.UUIDFromTime(now),
		UserID:    req.UserID,
		Message:   req.Message,
		CreatedAt: now,
	}
	if err := ns.repo.Insert(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to store notification for user %d: %w", req.UserID, err)
	}
	logging.Logger.Infof("Event ID: NOTIFICATION_CREATED, Description: Notification %s created for user %d", n.ID, req.UserID)
	return n, nil
}

// GetNotifications lists the caller's notifications, optionally only unread ones.
func (ns *NotificationService) GetNotifications(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > DefaultListLimit {
		limit = DefaultListLimit
	}
	all, err := ns.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if !unreadOnly {
		return all, nil
	}
	unread := []models.Notification{}
	for _, n := range all {
		if !n.IsRead {
			unread = append(unread, n)
		}
	}
	return unread, nil
}

func (ns *NotificationService) lookup(ctx context.Context, userID int64, rawID string) (*models.Notification, error) {
	id, err := gocql.ParseUUID(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidID, rawID)
	}
	return ns.repo.Find(ctx, userID, id)
}

func (ns *NotificationService) MarkAsRead(ctx context.Context, userID int64, rawID string) (*models.Notification, error) {
	n, err := ns.lookup(ctx, userID, rawID)
	if err != nil {
		return nil, err
	}
	if n.IsRead {
		return n, nil
	}
	if err := ns.repo.MarkRead(ctx, userID, n.ID); err != nil {
		return nil, fmt.Errorf("failed to mark notification %s as read: %w", n.ID, err)
	}
	n.IsRead = true
	return n, nil
}

func (ns *NotificationService) DeleteNotification(ctx context.Context, userID int64, rawID string) error {
	n, err := ns.lookup(ctx, userID, rawID)
	if err != nil {
		return err
	}
	if err := ns.repo.Delete(ctx, userID, n.ID); err != nil {
		return fmt.Errorf("failed to delete notification %s: %w", n.ID, err)
	}
	logging.Logger.Infof("Event ID: NOTIFICATION_DELETED, Description: Notification %s of user %d deleted", n.ID, userID)
	return nil
}
