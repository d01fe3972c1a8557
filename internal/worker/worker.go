package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/huddle-app/backend/internal/engagement"
	"github.com/huddle-app/backend/pkg/queue"
)

// Publisher relays an event to a room's live audience across instances.
// Satisfied by *realtime.Hub; nil disables publishing.
type Publisher interface {
	PublishToRoomOnly(roomID uuid.UUID, event string, payload interface{})
}

// EngagementProcessor drains the engagement queue: each job becomes one
// append-only click event, then a live notification for the room.
type EngagementProcessor struct {
	repo      *engagement.Repository
	queue     *queue.Queue
	publisher Publisher
	logger    *zap.Logger
}

func NewEngagementProcessor(repo *engagement.Repository, q *queue.Queue, publisher Publisher, logger *zap.Logger) *EngagementProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EngagementProcessor{repo: repo, queue: q, publisher: publisher, logger: logger}
}

// Process executes one engagement job.
func (p *EngagementProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeEngagement {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.EngagementPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := p.repo.Insert(ctx, payload.RoomID, payload.SourceUserID, payload.TargetUserID, payload.ClickedAt); err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if p.publisher != nil {
		p.publisher.PublishToRoomOnly(payload.RoomID, "engagement_recorded", map[string]interface{}{
			"target_user_id": payload.TargetUserID,
		})
	}
	p.logger.Debug("engagement recorded",
		zap.String("room_id", payload.RoomID.String()),
		zap.String("target_user_id", payload.TargetUserID.String()))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *EngagementProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("engagement worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("engagement worker stopping")
				return
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

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
