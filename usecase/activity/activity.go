package activity

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/internal/events"
	"github.com/fastygo/habits/internal/observability"
	"github.com/fastygo/habits/repository"
)

// UseCase manages the activity lifecycle under the active slot cap.
type UseCase struct {
	activities repository.ActivityRepository
	maxActive  int
	cache      repository.DashboardCache
	publisher  events.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*UseCase)

// WithCache lets lifecycle changes drop cached dashboards.
func WithCache(cache repository.DashboardCache) Option {
	return func(uc *UseCase) { uc.cache = cache }
}

func WithPublisher(publisher events.Publisher) Option {
	return func(uc *UseCase) { uc.publisher = publisher }
}

func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) { uc.now = now }
}

func New(activities repository.ActivityRepository, maxActive int, logger *zap.Logger, opts ...Option) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxActive <= 0 {
		maxActive = domain.DefaultMaxActiveActivities
	}
	uc := &UseCase{
		activities: activities,
		maxActive:  maxActive,
		publisher:  events.NewNop(),
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// List returns the user's activities, optionally filtered by active flag, with slot accounting.
func (uc *UseCase) List(ctx context.Context, userID string, active *bool) (*domain.ActivityList, error) {
	activities, err := uc.activities.ListByUser(ctx, repository.ActivityFilter{UserID: userID, Active: active})
	if err != nil {
		return nil, err
	}
	activeCount, err := uc.activities.CountActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	remaining := uc.maxActive - activeCount
	if remaining < 0 {
		remaining = 0
	}
	return &domain.ActivityList{
		Activities:     activities,
		TotalCount:     len(activities),
		ActiveCount:    activeCount,
		RemainingSlots: remaining,
	}, nil
}

func (uc *UseCase) Get(ctx context.Context, userID, activityID string) (*domain.Activity, error) {
	return uc.owned(ctx, userID, activityID)
}

// Create checks the cap first, then name uniqueness, then field rules.
func (uc *UseCase) Create(ctx context.Context, userID string, input domain.ActivityInput) (*domain.Activity, error) {
	if err := uc.ensureSlot(ctx, userID); err != nil {
		return nil, err
	}

	input = input.Normalize()
	if err := uc.ensureUniqueName(ctx, userID, input.Name, ""); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	created, err := uc.activities.Create(ctx, &domain.Activity{
		UserID:      userID,
		Name:        input.Name,
		Description: input.Description,
		Icon:        input.Icon,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	uc.changed(ctx, events.TypeActivityCreated, "created", created)
	return created, nil
}

// Update edits name, description and icon of an active activity.
func (uc *UseCase) Update(ctx context.Context, userID, activityID string, input domain.ActivityInput) (*domain.Activity, error) {
	activity, err := uc.owned(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}
	if !activity.IsActive {
		return nil, domain.Conflictf("cannot update an archived activity, restore it first")
	}

	input = input.Normalize()
	if err := uc.ensureUniqueName(ctx, userID, input.Name, activity.ID); err != nil {
		return nil, err
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	activity.Name = input.Name
	activity.Description = input.Description
	activity.Icon = input.Icon
	activity.UpdatedAt = uc.now().UTC()
	if err := uc.activities.Update(ctx, activity); err != nil {
		return nil, err
	}

	uc.changed(ctx, events.TypeActivityUpdated, "updated", activity)
	return activity, nil
}

func (uc *UseCase) Archive(ctx context.Context, userID, activityID string) (*domain.Activity, error) {
	activity, err := uc.owned(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	if err := activity.Archive(now); err != nil {
		return nil, err
	}
	activity.UpdatedAt = now
	if err := uc.activities.Update(ctx, activity); err != nil {
		return nil, err
	}

	uc.changed(ctx, events.TypeActivityArchived, "archived", activity)
	return activity, nil
}

// Restore reactivates an archived activity when a slot is free and no active
// activity has taken its name meanwhile.
func (uc *UseCase) Restore(ctx context.Context, userID, activityID string) (*domain.Activity, error) {
	activity, err := uc.owned(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}
	if activity.IsActive {
		return nil, domain.Conflictf("activity is already active")
	}
	if err := uc.ensureSlot(ctx, userID); err != nil {
		return nil, err
	}
	exists, err := uc.activities.ExistsByName(ctx, userID, activity.Name, activity.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.Conflictf("an active activity named %q already exists", activity.Name)
	}

	if err := activity.Restore(); err != nil {
		return nil, err
	}
	activity.UpdatedAt = uc.now().UTC()
	if err := uc.activities.Update(ctx, activity); err != nil {
		return nil, err
	}

	uc.changed(ctx, events.TypeActivityRestored, "restored", activity)
	return activity, nil
}

func (uc *UseCase) owned(ctx context.Context, userID, activityID string) (*domain.Activity, error) {
	activity, err := uc.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if !activity.OwnedBy(userID) {
		return nil, domain.ErrActivityNotFound
	}
	return activity, nil
}

func (uc *UseCase) ensureSlot(ctx context.Context, userID string) error {
	count, err := uc.activities.CountActive(ctx, userID)
	if err != nil {
		return err
	}
	if count >= uc.maxActive {
		return domain.Conflictf("maximum of %d active activities reached, archive one first", uc.maxActive)
	}
	return nil
}

func (uc *UseCase) ensureUniqueName(ctx context.Context, userID, name, excludeID string) error {
	if name == "" {
		return nil
	}
	exists, err := uc.activities.ExistsByName(ctx, userID, name, excludeID)
	if err != nil {
		return err
	}
	if exists {
		return domain.Invalidf("an activity named %q already exists", name)
	}
	return nil
}

func (uc *UseCase) changed(ctx context.Context, eventType, transition string, activity *domain.Activity) {
	observability.RecordActivityTransition(transition)
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, activity.UserID); err != nil {
			uc.logger.Warn("dashboard cache invalidation failed", zap.String("user_id", activity.UserID), zap.Error(err))
		}
	}
	events.Emit(ctx, uc.publisher, uc.logger, events.TopicActivities, events.Event{
		Type:    eventType,
		UserID:  activity.UserID,
		Payload: activity,
	})
}
