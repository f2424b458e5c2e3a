package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recordingPublisher struct {
	topic    string
	event    Event
	deadline time.Time
	ctxErr   error
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, event Event) error {
	p.topic = topic
	p.event = event
	p.deadline, _ = ctx.Deadline()
	p.ctxErr = ctx.Err()
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func TestEmitPublishesWithBoundedContext(t *testing.T) {
	pub := &recordingPublisher{}

	// A finished request must not cancel the publish.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	started := time.Now()
	Emit(ctx, pub, nil, TopicActivityLogs, Event{Type: TypeStatusUpdated, UserID: "user-1"})

	assert.Equal(t, TopicActivityLogs, pub.topic)
	assert.Equal(t, "user-1", pub.event.UserID)
	assert.False(t, pub.event.OccurredAt.IsZero())
	assert.NoError(t, pub.ctxErr)
	require.False(t, pub.deadline.IsZero())
	assert.WithinDuration(t, started.Add(PublishTimeout), pub.deadline, time.Second)
}

func TestEmitKeepsOccurredAt(t *testing.T) {
	pub := &recordingPublisher{}
	at := time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

	Emit(context.Background(), pub, nil, TopicActivities, Event{Type: TypeActivityCreated, OccurredAt: at})
	assert.Equal(t, at, pub.event.OccurredAt)
}

func TestEmitLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	pub := &recordingPublisher{err: errors.New("broker unavailable")}

	assert.NotPanics(t, func() {
		Emit(context.Background(), pub, zap.New(core), TopicMonthlyPlans, Event{Type: TypePlanSeeded})
	})

	entries := logs.FilterMessage("event publish failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, TopicMonthlyPlans, entries[0].ContextMap()["topic"])
	assert.Equal(t, TypePlanSeeded, entries[0].ContextMap()["event_type"])
}

func TestEmitToleratesNilPublisher(t *testing.T) {
	assert.NotPanics(t, func() {
		Emit(context.Background(), nil, nil, TopicActivities, Event{})
		Emit(context.Background(), NewNop(), nil, TopicActivities, Event{})
	})
	assert.NoError(t, NewNop().Close())
}

func TestKafkaTopicNames(t *testing.T) {
	assert.Equal(t, "habits.activity_logs", NewKafkaPublisher([]string{"localhost:9092"}, "habits").TopicName(TopicActivityLogs))
	assert.Equal(t, "activities", NewKafkaPublisher([]string{"localhost:9092"}, "").TopicName(TopicActivities))
}

func TestKafkaWriterPerTopic(t *testing.T) {
	pub := NewKafkaPublisher([]string{"localhost:9092"}, "habits")

	first := pub.writerForTopic("habits.activities")
	assert.Same(t, first, pub.writerForTopic("habits.activities"))
	assert.NotSame(t, first, pub.writerForTopic("habits.monthly_plans"))
	assert.Equal(t, "habits.activities", first.Topic)

	require.NoError(t, pub.Close())
	assert.Empty(t, pub.writers)
}
