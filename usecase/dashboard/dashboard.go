package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/internal/events"
	"github.com/fastygo/habits/internal/observability"
	"github.com/fastygo/habits/repository"
	"github.com/fastygo/habits/usecase"
)

type UseCase struct {
	activities repository.ActivityRepository
	logs       repository.ActivityLogRepository
	cache      repository.DashboardCache
	buffer     usecase.OperationBuffer
	publisher  events.Publisher
	logger     *zap.Logger
	now        func() time.Time
}

type Option func(*UseCase)

// WithCache enables dashboard memoization.
func WithCache(cache repository.DashboardCache) Option {
	return func(uc *UseCase) { uc.cache = cache }
}

func WithPublisher(publisher events.Publisher) Option {
	return func(uc *UseCase) { uc.publisher = publisher }
}

// WithClock overrides the wall clock; the result is always read in UTC.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) { uc.now = now }
}

func New(
	activities repository.ActivityRepository,
	logs repository.ActivityLogRepository,
	buffer usecase.OperationBuffer,
	logger *zap.Logger,
	opts ...Option,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	uc := &UseCase{
		activities: activities,
		logs:       logs,
		buffer:     buffer,
		publisher:  events.NewNop(),
		logger:     logger,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GetDashboard returns analytics for every active activity of the user.
// A zero year or month defaults to the current UTC calendar month.
func (uc *UseCase) GetDashboard(ctx context.Context, userID string, year, month int) (*domain.Dashboard, error) {
	now := uc.now().UTC()
	year, month = resolveMonth(now, year, month)
	if err := domain.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}
	today := domain.DateOf(now)

	if cached := uc.cached(ctx, userID, year, month, today); cached != nil {
		return cached, nil
	}

	window, err := NewMonthWindow(year, month, now)
	if err != nil {
		return nil, err
	}

	active := true
	activities, err := uc.activities.ListByUser(ctx, repository.ActivityFilter{UserID: userID, Active: &active})
	if err != nil {
		return nil, err
	}

	analytics := make([]domain.ActivityAnalytics, 0, len(activities))
	for _, activity := range activities {
		logs, err := uc.logs.ListByActivity(ctx, activity.ID, window.First(), window.Last())
		if err != nil {
			return nil, err
		}
		analytics = append(analytics, Compute(activity, logs, window))
	}

	dashboard := &domain.Dashboard{
		Year:        year,
		Month:       month,
		DaysInMonth: window.DaysInMonth,
		CurrentDay:  window.CurrentDay,
		Activities:  analytics,
		ComputedFor: today,
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, userID, dashboard); err != nil {
			uc.logger.Warn("dashboard cache write failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return dashboard, nil
}

// GetActivityAnalytics computes the analytics of one owned activity, active or archived.
func (uc *UseCase) GetActivityAnalytics(ctx context.Context, userID, activityID string, year, month int) (*domain.ActivityAnalytics, error) {
	now := uc.now().UTC()
	year, month = resolveMonth(now, year, month)
	if err := domain.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}

	activity, err := uc.ownedActivity(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}

	window, err := NewMonthWindow(year, month, now)
	if err != nil {
		return nil, err
	}
	logs, err := uc.logs.ListByActivity(ctx, activity.ID, window.First(), window.Last())
	if err != nil {
		return nil, err
	}

	analytics := Compute(*activity, logs, window)
	return &analytics, nil
}

// UpdateActivityStatus sets completion of an active activity for one calendar day.
// The write is an upsert, so repeating it leaves a single log.
func (uc *UseCase) UpdateActivityStatus(ctx context.Context, userID, activityID string, update domain.StatusUpdate) (*domain.ActivityLog, error) {
	activity, err := uc.ownedActivity(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}
	if !activity.IsActive {
		return nil, domain.Conflictf("cannot update status of an archived activity")
	}

	date, err := domain.ParseDate(update.Date)
	if err != nil {
		return nil, err
	}

	// UpdatedAt orders competing writes, including buffered ones replayed later.
	log := &domain.ActivityLog{
		UserID:      userID,
		ActivityID:  activity.ID,
		Date:        date,
		IsCompleted: update.IsCompleted,
		UpdatedAt:   uc.now().UTC(),
	}

	stored, err := uc.logs.Upsert(ctx, log)
	outcome := "stored"
	if err != nil {
		if domain.IsDomain(err) || !uc.bufferLog(ctx, log) {
			return nil, err
		}
		stored = log
		outcome = "buffered"
	}
	observability.RecordStatusUpdate(outcome)

	uc.invalidate(ctx, userID)
	events.Emit(ctx, uc.publisher, uc.logger, events.TopicActivityLogs, events.Event{
		Type:   events.TypeStatusUpdated,
		UserID: userID,
		Payload: map[string]any{
			"activity_id":  stored.ActivityID,
			"date":         stored.Date.String(),
			"is_completed": stored.IsCompleted,
		},
	})
	return stored, nil
}

func (uc *UseCase) ownedActivity(ctx context.Context, userID, activityID string) (*domain.Activity, error) {
	activity, err := uc.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	// Foreign activities are reported exactly like missing ones.
	if !activity.OwnedBy(userID) {
		return nil, domain.ErrActivityNotFound
	}
	return activity, nil
}

// bufferLog hands a failed upsert to the write buffer. The log keeps the
// write time it was issued with so a replay never overrides a newer write.
func (uc *UseCase) bufferLog(ctx context.Context, log *domain.ActivityLog) bool {
	if uc.buffer == nil {
		return false
	}
	log.ID = uuid.NewString()
	log.CreatedAt = log.UpdatedAt

	if err := uc.buffer.BufferActivityLog(ctx, usecase.OperationUpsert, log); err != nil {
		uc.logger.Error("failed to buffer activity status", zap.String("activity_id", log.ActivityID), zap.Error(err))
		return false
	}
	uc.logger.Warn("activity status buffered due to repository error",
		zap.String("activity_id", log.ActivityID),
		zap.String("date", log.Date.String()))
	return true
}

func (uc *UseCase) cached(ctx context.Context, userID string, year, month int, today domain.Date) *domain.Dashboard {
	if uc.cache == nil {
		return nil
	}
	dashboard, err := uc.cache.Get(ctx, userID, year, month, today)
	if err != nil {
		uc.logger.Warn("dashboard cache read failed", zap.String("user_id", userID), zap.Error(err))
		return nil
	}
	observability.RecordDashboardCache(dashboard != nil)
	return dashboard
}

func (uc *UseCase) invalidate(ctx context.Context, userID string) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, userID); err != nil {
		uc.logger.Warn("dashboard cache invalidation failed", zap.String("user_id", userID), zap.Error(err))
	}
}

func resolveMonth(now time.Time, year, month int) (int, int) {
	currentYear, currentMonth := domain.MonthOf(now)
	if year == 0 {
		year = currentYear
	}
	if month == 0 {
		month = currentMonth
	}
	return year, month
}
