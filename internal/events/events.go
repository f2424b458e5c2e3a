package events

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Topics are suffixed to the configured prefix, e.g. "habits.activity_logs".
const (
	TopicActivityLogs = "activity_logs"
	TopicMonthlyPlans = "monthly_plans"
	TopicActivities   = "activities"
)

// Event types.
const (
	TypeStatusUpdated    = "activity_log.status_updated"
	TypePlanSeeded       = "monthly_plan.seeded"
	TypePlanReplaced     = "monthly_plan.replaced"
	TypeActivityCreated  = "activity.created"
	TypeActivityUpdated  = "activity.updated"
	TypeActivityArchived = "activity.archived"
	TypeActivityRestored = "activity.restored"
)

// Event is the JSON envelope written to the broker, keyed by user id.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Publisher delivers domain events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic string, event Event) error
	Close() error
}

type nopPublisher struct{}

// NewNop returns a Publisher that drops every event.
func NewNop() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, Event) error { return nil }

func (nopPublisher) Close() error { return nil }

// PublishTimeout bounds a single Emit.
const PublishTimeout = 2 * time.Second

// Emit publishes the event and logs failures instead of returning them.
// A nil publisher is a no-op.
func Emit(ctx context.Context, publisher Publisher, logger *zap.Logger, topic string, event Event) {
	if publisher == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()

	if err := publisher.Publish(pubCtx, topic, event); err != nil && logger != nil {
		logger.Warn("event publish failed",
			zap.String("topic", topic),
			zap.String("event_type", event.Type),
			zap.Error(err))
	}
}
