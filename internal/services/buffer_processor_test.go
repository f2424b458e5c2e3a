package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/internal/infrastructure/buffer"
	"github.com/fastygo/habits/repository/memory"
	dashboardUC "github.com/fastygo/habits/usecase/dashboard"
)

// flakyLogs fails the first failures upserts, then delegates.
type flakyLogs struct {
	*memory.ActivityLogRepository
	failures int
}

func (f *flakyLogs) Upsert(ctx context.Context, log *domain.ActivityLog) (*domain.ActivityLog, error) {
	if f.failures > 0 {
		f.failures--
		return nil, errors.New("connection refused")
	}
	return f.ActivityLogRepository.Upsert(ctx, log)
}

type switchable struct{ online bool }

func (s *switchable) IsOnline() bool { return s.online }

type fixture struct {
	store     *buffer.Store
	processor *BufferProcessor
	bridge    *BufferBridge
	logs      *flakyLogs
	users     *memory.UserRepository
	cache     *memory.DashboardCache
	monitor   *switchable
}

func newFixture(t *testing.T, failures int) *fixture {
	t.Helper()
	store, err := buffer.Open(filepath.Join(t.TempDir(), "buffer.db"), "buffer")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	f := &fixture{
		store:   store,
		logs:    &flakyLogs{ActivityLogRepository: memory.NewActivityLogRepository(), failures: failures},
		users:   memory.NewUserRepository(),
		cache:   memory.NewDashboardCache(),
		monitor: &switchable{},
	}
	f.processor = NewBufferProcessor(store, f.monitor, f.users, f.logs, f.cache, nil, ProcessorConfig{
		Interval:   time.Second,
		BatchSize:  10,
		MaxRetries: 3,
		Retention:  time.Hour,
	})
	f.bridge = NewBufferBridge(f.processor)
	return f
}

func statusLog(day int, completed bool) *domain.ActivityLog {
	return &domain.ActivityLog{
		ID:          "log-1",
		UserID:      "user-1",
		ActivityID:  "activity-1",
		Date:        domain.NewDate(2026, time.March, day),
		IsCompleted: completed,
	}
}

func TestOfflineWritesAreBufferedAndReplayedInOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)

	require.NoError(t, f.bridge.BufferActivityLog(ctx, buffer.OperationUpsert, statusLog(3, true)))
	require.NoError(t, f.bridge.BufferActivityLog(ctx, buffer.OperationUpsert, statusLog(3, false)))
	assert.Equal(t, 2, f.processor.Size())

	// Still offline: nothing replays.
	require.NoError(t, f.processor.Drain(ctx))
	assert.Equal(t, 2, f.processor.Size())

	today := domain.NewDate(2026, time.March, 3)
	require.NoError(t, f.cache.Set(ctx, "user-1", &domain.Dashboard{Year: 2026, Month: 3, ComputedFor: today}))

	f.monitor.online = true
	require.NoError(t, f.processor.Drain(ctx))
	assert.Zero(t, f.processor.Size())

	stored, err := f.logs.GetByActivityAndDate(ctx, "activity-1", today)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsCompleted, "later write wins")
	assert.Equal(t, 1, f.logs.Count())

	cached, err := f.cache.Get(ctx, "user-1", 2026, 3, today)
	require.NoError(t, err)
	assert.Nil(t, cached)
}

func TestDrainStopsAtFirstFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)

	require.NoError(t, f.bridge.BufferActivityLog(ctx, buffer.OperationUpsert, statusLog(4, true)))
	require.NoError(t, f.bridge.BufferActivityLog(ctx, buffer.OperationUpsert, statusLog(5, true)))

	f.monitor.online = true
	f.logs.failures = 1
	require.NoError(t, f.processor.Drain(ctx))
	assert.Equal(t, 2, f.processor.Size())

	items, err := f.store.GetBatch(10)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Retries)
	assert.Zero(t, items[1].Retries)

	require.NoError(t, f.processor.Drain(ctx))
	assert.Zero(t, f.processor.Size())
	assert.Equal(t, 2, f.logs.Count())
}

func TestDrainDropsItemAfterMaxRetries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	require.NoError(t, f.bridge.BufferActivityLog(ctx, buffer.OperationUpsert, statusLog(6, true)))

	f.monitor.online = true
	f.logs.failures = 10
	for i := 0; i < 3; i++ {
		require.NoError(t, f.processor.Drain(ctx))
	}
	assert.Zero(t, f.processor.Size())
	assert.Zero(t, f.logs.Count())
}

func TestOnlineWritesApplyImmediately(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	f.monitor.online = true

	require.NoError(t, f.bridge.BufferProfile(ctx, buffer.OperationUpsert, &domain.User{ID: "user-1", Nickname: "ann"}))
	assert.Zero(t, f.processor.Size())

	user, err := f.users.GetByID(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "ann", user.Nickname)
}

func TestCleanupUsesRetention(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0)
	require.NoError(t, f.bridge.BufferActivityLog(ctx, buffer.OperationUpsert, statusLog(7, true)))

	require.NoError(t, f.processor.Cleanup(time.Now()))
	assert.Equal(t, 1, f.processor.Size())

	require.NoError(t, f.processor.Cleanup(time.Now().Add(2*time.Hour)))
	assert.Zero(t, f.processor.Size())
}

func TestBridgeRejectsNil(t *testing.T) {
	bridge := NewBufferBridge(nil)
	assert.ErrorIs(t, bridge.BufferActivityLog(context.Background(), buffer.OperationUpsert, statusLog(1, true)), domain.ErrInvalidPayload)
	assert.ErrorIs(t, NewBufferBridge(newFixture(t, 0).processor).BufferProfile(context.Background(), buffer.OperationUpsert, nil), domain.ErrInvalidPayload)
}

func TestReplayDoesNotOverrideNewerDirectWrite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)

	activities := memory.NewActivityRepository()
	activity, err := activities.Create(ctx, &domain.Activity{UserID: "user-1", Name: "Run", Icon: "🏃", IsActive: true})
	require.NoError(t, err)

	clock := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	uc := dashboardUC.New(activities, f.logs, f.bridge, nil,
		dashboardUC.WithCache(f.cache),
		dashboardUC.WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}))

	// Store down: the first write lands in the buffer.
	_, err = uc.UpdateActivityStatus(ctx, "user-1", activity.ID, domain.StatusUpdate{Date: "2026-03-10", IsCompleted: true})
	require.NoError(t, err)
	require.Equal(t, 1, f.processor.Size())

	// Store back before the next drain: the newer write goes straight through.
	f.monitor.online = true
	_, err = uc.UpdateActivityStatus(ctx, "user-1", activity.ID, domain.StatusUpdate{Date: "2026-03-10", IsCompleted: false})
	require.NoError(t, err)

	require.NoError(t, f.processor.Drain(ctx))
	assert.Zero(t, f.processor.Size())

	stored, err := f.logs.GetByActivityAndDate(ctx, activity.ID, domain.NewDate(2026, time.March, 10))
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.False(t, stored.IsCompleted, "the later write wins")
	assert.Equal(t, 1, f.logs.Count())
}
