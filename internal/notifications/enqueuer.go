package notifications

import (
	"context"

	"go.uber.org/zap"

	"github.com/eventboard/backend/internal/models"
	"github.com/eventboard/backend/pkg/queue"
)

// Enqueuer publishes event status changes to the notification queue.
// Enqueue failures are logged and dropped so a queue outage never fails
// the originating request.
type Enqueuer struct {
	queue  *queue.Queue
	logger *zap.Logger
}

// NewEnqueuer creates an enqueuer backed by the given queue.
func NewEnqueuer(q *queue.Queue, logger *zap.Logger) *Enqueuer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enqueuer{queue: q, logger: logger}
}

// EventStatusChanged enqueues a notification job for a status change.
func (e *Enqueuer) EventStatusChanged(ctx context.Context, ev *models.Event) {
	payload := queue.EventStatusPayload{
		EventID:   ev.ID,
		CreatorID: ev.CreatorID,
		OrgID:     ev.OrgID,
		Title:     ev.Title,
		Status:    string(ev.Status),
		ChangedAt: ev.UpdatedAt,
	}
	if err := e.queue.EnqueueEventStatus(ctx, payload); err != nil {
		e.logger.Warn("enqueue notification failed",
			zap.Int64("event_id", ev.ID), zap.Error(err))
	}
}
