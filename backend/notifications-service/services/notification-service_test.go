package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"projecthub/backend/notifications-service/models"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memNotifications struct {
	mu   sync.Mutex
	rows map[int64][]models.Notification
}

func (m *memNotifications) Insert(_ context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.rows == nil {
		m.rows = map[int64][]models.Notification{}
	}
	m.rows[n.UserID] = append(m.rows[n.UserID], *n)
	return nil
}

func (m *memNotifications) ListByUser(_ context.Context, userID int64, limit int) ([]models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]models.Notification{}, m.rows[userID]...)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memNotifications) index(userID int64, id gocql.UUID) int {
	for i, n := range m.rows[userID] {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (m *memNotifications) Find(_ context.Context, userID int64, id gocql.UUID) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(userID, id)
	if i < 0 {
		return nil, ErrNotificationNotFound
	}
	n := m.rows[userID][i]
	return &n, nil
}

func (m *memNotifications) MarkRead(_ context.Context, userID int64, id gocql.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(userID, id); i >= 0 {
		m.rows[userID][i].IsRead = true
	}
	return nil
}

func (m *memNotifications) Delete(_ context.Context, userID int64, id gocql.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.index(userID, id); i >= 0 {
		m.rows[userID] = append(m.rows[userID][:i], m.rows[userID][i+1:]...)
	}
	return nil
}

func newTestService() *NotificationService {
	svc := NewNotificationService(&memNotifications{})
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return svc
}

func TestNotifications_NewestFirstPerUser(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	for _, msg := range []string{"first", "second", "third"} {
		_, err := svc.CreateNotification(ctx, models.CreateNotificationRequest{UserID: 1, Message: msg})
		require.NoError(t, err)
	}
	_, err := svc.CreateNotification(ctx, models.CreateNotificationRequest{UserID: 2, Message: "other"})
	require.NoError(t, err)

	list, err := svc.GetNotifications(ctx, 1, false, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Message)
	assert.Equal(t, "first", list[2].Message)

	limited, err := svc.GetNotifications(ctx, 1, false, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestNotifications_MarkReadAndUnreadFilter(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	a, err := svc.CreateNotification(ctx, models.CreateNotificationRequest{UserID: 1, Message: "a"})
	require.NoError(t, err)
	_, err = svc.CreateNotification(ctx, models.CreateNotificationRequest{UserID: 1, Message: "b"})
	require.NoError(t, err)

	read, err := svc.MarkAsRead(ctx, 1, a.ID.String())
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	unread, err := svc.GetNotifications(ctx, 1, true, 0)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "b", unread[0].Message)

	// another user cannot touch it
	_, err = svc.MarkAsRead(ctx, 2, a.ID.String())
	assert.ErrorIs(t, err, ErrNotificationNotFound)

	_, err = svc.MarkAsRead(ctx, 1, "not-a-uuid")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestNotifications_Delete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	n, err := svc.CreateNotification(ctx, models.CreateNotificationRequest{UserID: 1, Message: "bye"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteNotification(ctx, 2, n.ID.String()), ErrNotificationNotFound)
	require.NoError(t, svc.DeleteNotification(ctx, 1, n.ID.String()))
	assert.ErrorIs(t, svc.DeleteNotification(ctx, 1, n.ID.String()), ErrNotificationNotFound)

	list, err := svc.GetNotifications(ctx, 1, false, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}
