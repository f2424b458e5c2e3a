package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/repository"
)

const cacheTTL = time.Minute

func newCache(t *testing.T) (repository.DashboardCache, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redislib.NewClient(&redislib.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewDashboardCache(client, cacheTTL), server
}

func dashboardFor(today domain.Date, completed int) *domain.Dashboard {
	return &domain.Dashboard{
		Year:        today.Year,
		Month:       int(today.Month),
		ComputedFor: today,
		Activities: []domain.ActivityAnalytics{
			{ActivityID: "activity-1", TotalCompleted: completed},
		},
	}
}

func TestDashboardCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)
	today := domain.NewDate(2026, time.March, 15)

	got, err := cache.Get(ctx, "user-1", 2026, 3, today)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, cache.Set(ctx, "user-1", dashboardFor(today, 2)))

	got, err = cache.Get(ctx, "user-1", 2026, 3, today)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Activities[0].TotalCompleted)
	assert.Equal(t, today, got.ComputedFor)

	// Entries are scoped to the day they were computed for and to the user.
	got, err = cache.Get(ctx, "user-1", 2026, 3, domain.NewDate(2026, time.March, 16))
	require.NoError(t, err)
	assert.Nil(t, got)
	got, err = cache.Get(ctx, "user-2", 2026, 3, today)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDashboardCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	cache, _ := newCache(t)
	today := domain.NewDate(2026, time.March, 15)

	require.NoError(t, cache.Set(ctx, "user-1", dashboardFor(today, 1)))
	require.NoError(t, cache.Set(ctx, "user-2", dashboardFor(today, 1)))
	require.NoError(t, cache.Invalidate(ctx, "user-1"))

	got, err := cache.Get(ctx, "user-1", 2026, 3, today)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = cache.Get(ctx, "user-2", 2026, 3, today)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestDashboardCacheEntriesExpire(t *testing.T) {
	ctx := context.Background()
	cache, server := newCache(t)
	today := domain.NewDate(2026, time.March, 15)

	require.NoError(t, cache.Set(ctx, "user-1", dashboardFor(today, 1)))
	server.FastForward(cacheTTL + time.Second)

	got, err := cache.Get(ctx, "user-1", 2026, 3, today)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDashboardCacheVersionSurvivesIdlePeriods(t *testing.T) {
	ctx := context.Background()
	cache, server := newCache(t)
	today := domain.NewDate(2026, time.March, 15)

	require.NoError(t, cache.Invalidate(ctx, "user-1"))
	server.FastForward(2*cacheTTL - 10*time.Second)
	require.NoError(t, cache.Set(ctx, "user-1", dashboardFor(today, 1)))
	server.FastForward(20 * time.Second)

	// A status update lands: the dashboard stored before it must not come back.
	require.NoError(t, cache.Invalidate(ctx, "user-1"))

	got, err := cache.Get(ctx, "user-1", 2026, 3, today)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDashboardCacheRejectsNil(t *testing.T) {
	cache, _ := newCache(t)
	assert.ErrorIs(t, cache.Set(context.Background(), "user-1", nil), domain.ErrInvalidPayload)
}
