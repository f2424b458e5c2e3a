package activity

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/repository/memory"
)

func newUseCase(maxActive int) (*UseCase, *memory.ActivityRepository, *memory.DashboardCache) {
	repo := memory.NewActivityRepository()
	cache := memory.NewDashboardCache()
	clock := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	uc := New(repo, maxActive, nil,
		WithCache(cache),
		WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	)
	return uc, repo, cache
}

func input(name string) domain.ActivityInput {
	return domain.ActivityInput{Name: name, Icon: "🏃"}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCase(10)

	created, err := uc.Create(ctx, "user-1", domain.ActivityInput{Name: "  Morning run ", Description: " 5km ", Icon: "🏃"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Morning run", created.Name)
	assert.Equal(t, "5km", created.Description)
	assert.True(t, created.IsActive)
	assert.Nil(t, created.ArchivedAt)
}

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCase(10)

	cases := map[string]domain.ActivityInput{
		"blank name":       {Name: "   ", Icon: "🏃"},
		"long name":        {Name: strings.Repeat("a", 101), Icon: "🏃"},
		"long description": {Name: "Run", Description: strings.Repeat("d", 501), Icon: "🏃"},
		"blank icon":       {Name: "Run"},
		"unknown icon":     {Name: "Run", Icon: "🦄"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Create(ctx, "user-1", in)
			assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
		})
	}

	_, err := uc.Create(ctx, "user-1", domain.ActivityInput{Name: strings.Repeat("é", 100), Icon: "📚"})
	assert.NoError(t, err)
}

func TestCreateRejectsDuplicateNameCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCase(10)

	_, err := uc.Create(ctx, "user-1", input("Reading"))
	require.NoError(t, err)

	_, err = uc.Create(ctx, "user-1", input("reading"))
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	// Another user may reuse the name.
	_, err = uc.Create(ctx, "user-2", input("reading"))
	assert.NoError(t, err)
}

func TestCreateRespectsCap(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCase(2)

	first, err := uc.Create(ctx, "user-1", input("one"))
	require.NoError(t, err)
	_, err = uc.Create(ctx, "user-1", input("two"))
	require.NoError(t, err)

	// The cap is checked before anything else, even for invalid input.
	_, err = uc.Create(ctx, "user-1", domain.ActivityInput{})
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))

	_, err = uc.Archive(ctx, "user-1", first.ID)
	require.NoError(t, err)
	_, err = uc.Create(ctx, "user-1", input("three"))
	assert.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCase(10)

	run, err := uc.Create(ctx, "user-1", input("Run"))
	require.NoError(t, err)
	_, err = uc.Create(ctx, "user-1", input("Read"))
	require.NoError(t, err)

	// Keeping its own name is not a duplicate.
	updated, err := uc.Update(ctx, "user-1", run.ID, domain.ActivityInput{Name: "run", Description: "easy pace", Icon: "💪"})
	require.NoError(t, err)
	assert.Equal(t, "run", updated.Name)
	assert.Equal(t, "💪", updated.Icon)
	assert.True(t, updated.UpdatedAt.After(run.UpdatedAt))

	_, err = uc.Update(ctx, "user-1", run.ID, input("READ"))
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))

	_, err = uc.Update(ctx, "user-2", run.ID, input("Walk"))
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))

	_, err = uc.Archive(ctx, "user-1", run.ID)
	require.NoError(t, err)
	_, err = uc.Update(ctx, "user-1", run.ID, input("Walk"))
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
}

func TestArchiveAndRestore(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCase(1)

	run, err := uc.Create(ctx, "user-1", input("Run"))
	require.NoError(t, err)

	archived, err := uc.Archive(ctx, "user-1", run.ID)
	require.NoError(t, err)
	assert.False(t, archived.IsActive)
	require.NotNil(t, archived.ArchivedAt)

	_, err = uc.Archive(ctx, "user-1", run.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))

	// Cap of one is taken by a new activity.
	other, err := uc.Create(ctx, "user-1", input("Swim"))
	require.NoError(t, err)
	_, err = uc.Restore(ctx, "user-1", run.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))

	_, err = uc.Archive(ctx, "user-1", other.ID)
	require.NoError(t, err)

	restored, err := uc.Restore(ctx, "user-1", run.ID)
	require.NoError(t, err)
	assert.True(t, restored.IsActive)
	assert.Nil(t, restored.ArchivedAt)

	_, err = uc.Restore(ctx, "user-1", run.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
}

func TestRestoreRejectsNameTakenMeanwhile(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCase(10)

	run, err := uc.Create(ctx, "user-1", input("Run"))
	require.NoError(t, err)
	_, err = uc.Archive(ctx, "user-1", run.ID)
	require.NoError(t, err)
	_, err = uc.Create(ctx, "user-1", input("RUN"))
	require.NoError(t, err)

	_, err = uc.Restore(ctx, "user-1", run.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeConflict))
}

func TestListAndGet(t *testing.T) {
	ctx := context.Background()
	uc, _, _ := newUseCase(3)

	first, err := uc.Create(ctx, "user-1", input("one"))
	require.NoError(t, err)
	second, err := uc.Create(ctx, "user-1", input("two"))
	require.NoError(t, err)
	_, err = uc.Archive(ctx, "user-1", first.ID)
	require.NoError(t, err)

	all, err := uc.List(ctx, "user-1", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalCount)
	assert.Equal(t, 1, all.ActiveCount)
	assert.Equal(t, 2, all.RemainingSlots)
	require.Len(t, all.Activities, 2)
	assert.Equal(t, first.ID, all.Activities[0].ID)
	assert.Equal(t, second.ID, all.Activities[1].ID)

	archivedOnly := false
	archived, err := uc.List(ctx, "user-1", &archivedOnly)
	require.NoError(t, err)
	assert.Equal(t, 1, archived.TotalCount)
	assert.Equal(t, 1, archived.ActiveCount)

	got, err := uc.Get(ctx, "user-1", second.ID)
	require.NoError(t, err)
	assert.Equal(t, "two", got.Name)

	_, err = uc.Get(ctx, "user-2", second.ID)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestLifecycleInvalidatesDashboards(t *testing.T) {
	ctx := context.Background()
	uc, _, cache := newUseCase(10)
	today := domain.NewDate(2026, time.February, 1)

	require.NoError(t, cache.Set(ctx, "user-1", &domain.Dashboard{Year: 2026, Month: 2, ComputedFor: today}))
	_, err := uc.Create(ctx, "user-1", input("Run"))
	require.NoError(t, err)

	cached, err := cache.Get(ctx, "user-1", 2026, 2, today)
	require.NoError(t, err)
	assert.Nil(t, cached)
}
