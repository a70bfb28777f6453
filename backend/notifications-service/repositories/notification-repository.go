package repositories

import (
	"context"
	"errors"
	"fmt"

	"projecthub/backend/logging"
	"projecthub/backend/notifications-service/models"
	"projecthub/backend/notifications-service/services"

	"github.com/gocql/gocql"
)

type NotificationRepo struct {
	session *gocql.Session
}

// NewNotificationRepo creates the keyspace when missing and opens a session on it.
func NewNotificationRepo(hosts []string, keyspace string) (*NotificationRepo, error) {
	cluster := gocql.NewCluster(hosts...)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to cassandra: %w", err)
	}

	err = session.Query(fmt.Sprintf(
		`CREATE KEYSPACE IF NOT EXISTS %s
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`, keyspace)).Exec()
	session.Close()
	if err != nil {
		return nil, fmt.Errorf("create keyspace %s: %w", keyspace, err)
	}

	cluster.Keyspace = keyspace
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("connect to keyspace %s: %w", keyspace, err)
	}

	logging.Logger.Infof("Event ID: DB_CONNECTED, Description: Connected to Cassandra keyspace %s", keyspace)
	return &NotificationRepo{session: session}, nil
}

func (nr *NotificationRepo) CloseSession() {
	nr.session.Close()
	logging.Logger.Info("Event ID: DB_SESSION_CLOSED, Description: Cassandra session closed")
}

// CreateTable partitions by user; the timeuuid id keeps newest first.
func (nr *NotificationRepo) CreateTable() error {
	return nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications_by_user (
			user_id BIGINT,
			id TIMEUUID,
			message TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((user_id), id)
		) WITH CLUSTERING ORDER BY (id DESC)`).Exec()
}

func (nr *NotificationRepo) Insert(ctx context.Context, n *models.Notification) error {
	return nr.session.Query(
		`INSERT INTO notifications_by_user (user_id, id, message, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?)`,
		n.UserID, n.ID, n.Message, n.CreatedAt, n.IsRead,
	).WithContext(ctx).Exec()
}

func (nr *NotificationRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]models.Notification, error) {
	iter := nr.session.Query(
		`SELECT user_id, id, message, created_at, is_read
		 FROM notifications_by_user WHERE user_id = ? LIMIT ?`, userID, limit,
	).WithContext(ctx).Iter()

	notifications := []models.Notification{}
	var n models.Notification
	for iter.Scan(&n.UserID, &n.ID, &n.Message, &n.CreatedAt, &n.IsRead) {
		notifications = append(notifications, n)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list notifications of user %d: %w", userID, err)
	}
	return notifications, nil
}

func (nr *NotificationRepo) Find(ctx context.Context, userID int64, id gocql.UUID) (*models.Notification, error) {
	var n models.Notification
	err := nr.session.Query(
		`SELECT user_id, id, message, created_at, is_read
		 FROM notifications_by_user WHERE user_id = ? AND id = ?`, userID, id,
	).WithContext(ctx).Scan(&n.UserID, &n.ID, &n.Message, &n.CreatedAt, &n.IsRead)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, services.ErrNotificationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (nr *NotificationRepo) MarkRead(ctx context.Context, userID int64, id gocql.UUID) error {
	return nr.session.Query(
		`UPDATE notifications_by_user SET is_read = true WHERE user_id = ? AND id = ?`, userID, id,
	).WithContext(ctx).Exec()
}

func (nr *NotificationRepo) Delete(ctx context.Context, userID int64, id gocql.UUID) error {
	return nr.session.Query(
		`DELETE FROM notifications_by_user WHERE user_id = ? AND id = ?`, userID, id,
	).WithContext(ctx).Exec()
}
