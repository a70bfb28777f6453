package services

import (
	"context"
	"fmt"
	"time"

	"projecthub/backend/logging"
	"projecthub/backend/metrics"
	"projecthub/backend/tasks-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CleanupUser unassigns every active task assigned to userID. Work happens in
// batches, each committed before the next is read, so an interrupted run
// leaves a partially unassigned state that a retry finishes. Comments are
// never touched. Creators are notified in the background once the batches
// are done; the outcome depends only on the unassign writes.
func (s *TaskService) CleanupUser(ctx context.Context, token string, userID int64) (*models.CleanupReport, error) {
	report := &models.CleanupReport{UserID: userID}
	var notes []pendingNote
	defer func() { s.notifyDetached(ctx, token, notes) }()

	for {
		batch, err := s.tasks.FindAssigned(ctx, userID, s.batchSize)
		if err != nil {
			return report, fmt.Errorf("load assigned tasks (batch %d): %w", report.Batches+1, err)
		}
		if len(batch) == 0 {
			break
		}

		ids := make([]primitive.ObjectID, len(batch))
		for i := range batch {
			ids[i] = batch[i].ID
		}
		n, err := s.tasks.Unassign(ctx, ids, userID)
		if err != nil {
			return report, fmt.Errorf("unassign tasks (batch %d): %w", report.Batches+1, err)
		}
		report.Batches++
		report.Unassigned += n
		metrics.CleanupRows.WithLabelValues("tasks").Add(float64(n))

		for _, t := range batch {
			if t.CreatedByUserID != userID {
				notes = append(notes, pendingNote{
					userID:  t.CreatedByUserID,
					message: fmt.Sprintf("Task #%d '%s' was unassigned because its assignee's account was removed", t.Number, t.Title),
				})
			}
		}

		if n == 0 {
			// everything in this batch was unassigned concurrently
			break
		}
	}

	logging.Logger.Infof("Event ID: USER_TASKS_CLEANED, Description: Unassigned %d tasks of user %d in %d batches", report.Unassigned, userID, report.Batches)
	return report, nil
}

type pendingNote struct {
	userID  int64
	message string
}

// notifyDetached sends notes after the request that produced them has
// returned. Each call gets its own deadline and ignores the caller's
// cancellation.
func (s *TaskService) notifyDetached(ctx context.Context, token string, notes []pendingNote) {
	if s.notifier == nil || len(notes) == 0 {
		return
	}
	base := context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		for _, n := range notes {
			callCtx, cancel := context.WithTimeout(base, s.notifyTimeout)
			s.notify(callCtx, token, n.userID, n.message)
			cancel()
		}
	}()
}

// Wait blocks until background notifications have been handed off.
func (s *TaskService) Wait() {
	s.background.Wait()
}

// WithNotifyTimeout bounds each background notification call.
func WithNotifyTimeout(d time.Duration) Option {
	return func(s *TaskService) {
		if d > 0 {
			s.notifyTimeout = d
		}
	}
}
