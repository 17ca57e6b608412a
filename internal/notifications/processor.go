package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/eventboard/backend/internal/models"
	"github.com/eventboard/backend/pkg/queue"
)

// Processor consumes event status jobs and turns them into stored
// notifications for the event's creator.
type Processor struct {
	store  Store
	queue  *queue.Queue
	logger *zap.Logger
}

// NewProcessor creates a notification processor.
func NewProcessor(store Store, q *queue.Queue, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{store: store, queue: q, logger: logger}
}

// Process executes one event status job.
func (p *Processor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEventStatus {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EventStatusPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	n := &models.Notification{
		UserID:  payload.CreatorID,
		EventID: payload.EventID,
		Message: fmt.Sprintf("Your event %q was %s", payload.Title, strings.ToLower(payload.Status)),
	}
	if err := p.store.Create(ctx, n); err != nil {
		return fmt.Errorf("store notification: %w", err)
	}
	p.logger.Info("notification stored",
		zap.Int64("user_id", n.UserID),
		zap.Int64("event_id", n.EventID))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *Processor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("notification worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
