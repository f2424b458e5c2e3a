package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/habits/domain"
)

func TestActivityLogUpsertKeepsLatestWrite(t *testing.T) {
	ctx := context.Background()
	repo := NewActivityLogRepository()
	day := domain.NewDate(2026, time.March, 10)
	at := time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

	first, err := repo.Upsert(ctx, &domain.ActivityLog{ActivityID: "a", Date: day, IsCompleted: false, UpdatedAt: at})
	require.NoError(t, err)

	stale, err := repo.Upsert(ctx, &domain.ActivityLog{ActivityID: "a", Date: day, IsCompleted: true, UpdatedAt: at.Add(-time.Minute)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, stale.ID)
	assert.False(t, stale.IsCompleted)

	newer, err := repo.Upsert(ctx, &domain.ActivityLog{ActivityID: "a", Date: day, IsCompleted: true, UpdatedAt: at.Add(time.Minute)})
	require.NoError(t, err)
	assert.True(t, newer.IsCompleted)
	assert.Equal(t, first.ID, newer.ID)
	assert.Equal(t, 1, repo.Count())
}
