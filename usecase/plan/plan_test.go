package plan

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/repository/memory"
)

type fixture struct {
	activities *memory.ActivityRepository
	selections *memory.MonthlySelectionRepository
	created    time.Time
}

func newFixture() *fixture {
	return &fixture{
		activities: memory.NewActivityRepository(),
		selections: memory.NewMonthlySelectionRepository(),
		created:    time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) useCase(maxActive int) *UseCase {
	return New(f.activities, f.selections, maxActive, nil)
}

// addActivities creates n activities with strictly increasing creation times.
func (f *fixture) addActivities(t *testing.T, userID string, n int) []string {
	t.Helper()
	ids := make([]string, 0, n)
	for i := 0; i < n; i++ {
		f.created = f.created.Add(time.Minute)
		activity, err := f.activities.Create(context.Background(), &domain.Activity{
			UserID:    userID,
			Name:      fmt.Sprintf("activity %d", i),
			Icon:      domain.DefaultActivityIcon,
			IsActive:  true,
			CreatedAt: f.created,
		})
		require.NoError(t, err)
		ids = append(ids, activity.ID)
	}
	return ids
}

func selected(plan *domain.MonthlyPlan) []string {
	var ids []string
	for _, item := range plan.Activities {
		if item.IsSelected {
			ids = append(ids, item.ActivityID)
		}
	}
	return ids
}

func TestGetPlanSeedsFromPreviousMonth(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.useCase(10)
	ids := f.addActivities(t, "user-1", 6)

	_, err := uc.UpdatePlan(ctx, "user-1", domain.PlanUpdate{Year: 2026, Month: 2, ActivityIDs: ids[:4]})
	require.NoError(t, err)

	plan, err := uc.GetPlan(ctx, "user-1", 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 2026, plan.Year)
	assert.Equal(t, 3, plan.Month)
	assert.Equal(t, 10, plan.MaxActivities)
	assert.Equal(t, 4, plan.SelectedCount)
	assert.ElementsMatch(t, ids[:4], selected(plan))
	assert.Len(t, plan.Activities, 6)
	assert.Equal(t, 4, f.selections.Rows("user-1", 2026, 3))

	again, err := uc.GetPlan(ctx, "user-1", 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, plan, again)
	assert.Equal(t, 4, f.selections.Rows("user-1", 2026, 3))
}

func TestGetPlanSeedsAcrossYearBoundary(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.useCase(10)
	ids := f.addActivities(t, "user-1", 3)

	_, err := uc.UpdatePlan(ctx, "user-1", domain.PlanUpdate{Year: 2025, Month: 12, ActivityIDs: ids[1:]})
	require.NoError(t, err)

	plan, err := uc.GetPlan(ctx, "user-1", 2026, 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, ids[1:], selected(plan))
}

func TestGetPlanFallsBackToActiveActivities(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.useCase(3)
	ids := f.addActivities(t, "user-1", 5)

	// Archive the oldest one; it must not be part of the fallback seed.
	oldest, err := f.activities.GetByID(ctx, ids[0])
	require.NoError(t, err)
	require.NoError(t, oldest.Archive(f.created))
	require.NoError(t, f.activities.Update(ctx, oldest))

	plan, err := uc.GetPlan(ctx, "user-1", 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, plan.MaxActivities)
	assert.Equal(t, 3, plan.SelectedCount)
	assert.Equal(t, ids[1:4], selected(plan))

	require.Len(t, plan.Activities, 5)
	assert.True(t, plan.Activities[0].IsArchived)
	assert.False(t, plan.Activities[0].IsSelected)
}

func TestGetPlanWithoutActivities(t *testing.T) {
	f := newFixture()
	plan, err := f.useCase(10).GetPlan(context.Background(), "user-1", 2026, 3)
	require.NoError(t, err)
	assert.Zero(t, plan.SelectedCount)
	assert.Empty(t, plan.Activities)
	assert.Zero(t, f.selections.Rows("user-1", 2026, 3))
}

func TestGetPlanCapsCarriedSelection(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ids := f.addActivities(t, "user-1", 4)

	_, err := f.useCase(4).UpdatePlan(ctx, "user-1", domain.PlanUpdate{Year: 2026, Month: 2, ActivityIDs: ids})
	require.NoError(t, err)

	plan, err := f.useCase(2).GetPlan(ctx, "user-1", 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, plan.SelectedCount)
}

func TestGetPlanSeedsOnceUnderConcurrency(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.useCase(10)
	f.addActivities(t, "user-1", 4)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.GetPlan(ctx, "user-1", 2026, 5)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 4, f.selections.Rows("user-1", 2026, 5))
}

func TestGetPlanValidatesMonth(t *testing.T) {
	uc := newFixture().useCase(10)
	for _, tc := range []struct{ year, month int }{{1999, 1}, {2101, 1}, {2026, 0}, {2026, 13}} {
		_, err := uc.GetPlan(context.Background(), "user-1", tc.year, tc.month)
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid), "%d-%d", tc.year, tc.month)
	}
}

func TestUpdatePlanCap(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.useCase(10)
	ids := f.addActivities(t, "user-1", 11)

	_, err := uc.UpdatePlan(ctx, "user-1", domain.PlanUpdate{Year: 2026, Month: 3, ActivityIDs: ids})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	plan, err := uc.UpdatePlan(ctx, "user-1", domain.PlanUpdate{Year: 2026, Month: 3, ActivityIDs: ids[:10]})
	require.NoError(t, err)
	assert.Equal(t, 10, plan.SelectedCount)
}

func TestUpdatePlanDeduplicatesBeforeCap(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.useCase(2)
	ids := f.addActivities(t, "user-1", 2)

	plan, err := uc.UpdatePlan(ctx, "user-1", domain.PlanUpdate{
		Year: 2026, Month: 3,
		ActivityIDs: []string{ids[0], ids[1], ids[0], ids[1]},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, plan.SelectedCount)
	assert.Equal(t, 2, f.selections.Rows("user-1", 2026, 3))
}

func TestUpdatePlanRejectsForeignActivities(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.useCase(10)
	own := f.addActivities(t, "user-1", 1)
	foreign := f.addActivities(t, "user-2", 1)

	_, err := uc.UpdatePlan(ctx, "user-1", domain.PlanUpdate{Year: 2026, Month: 3, ActivityIDs: []string{own[0], foreign[0]}})
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	assert.Zero(t, f.selections.Rows("user-1", 2026, 3))
}

func TestUpdatePlanIsFullReplace(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.useCase(10)
	ids := f.addActivities(t, "user-1", 3)

	_, err := uc.GetPlan(ctx, "user-1", 2026, 3)
	require.NoError(t, err)
	require.Equal(t, 3, f.selections.Rows("user-1", 2026, 3))

	plan, err := uc.UpdatePlan(ctx, "user-1", domain.PlanUpdate{Year: 2026, Month: 3, ActivityIDs: []string{ids[2]}})
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2]}, selected(plan))
	assert.Equal(t, 1, f.selections.Rows("user-1", 2026, 3))

	read, err := uc.GetPlan(ctx, "user-1", 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{ids[2]}, selected(read))
}

func TestUpdatePlanAllowsArchivedActivities(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	uc := f.useCase(10)
	ids := f.addActivities(t, "user-1", 2)

	archived, err := f.activities.GetByID(ctx, ids[1])
	require.NoError(t, err)
	require.NoError(t, archived.Archive(f.created))
	require.NoError(t, f.activities.Update(ctx, archived))

	plan, err := uc.UpdatePlan(ctx, "user-1", domain.PlanUpdate{Year: 2026, Month: 3, ActivityIDs: []string{ids[1]}})
	require.NoError(t, err)
	require.Len(t, plan.Activities, 2)
	assert.True(t, plan.Activities[1].IsSelected)
	assert.True(t, plan.Activities[1].IsArchived)
}
