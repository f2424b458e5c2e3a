package plan

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/internal/events"
	"github.com/fastygo/habits/internal/observability"
	"github.com/fastygo/habits/repository"
)

// UseCase reconciles the per-month activity selection of a user.
type UseCase struct {
	activities repository.ActivityRepository
	selections repository.MonthlySelectionRepository
	maxActive  int
	publisher  events.Publisher
	logger     *zap.Logger
}

type Option func(*UseCase)

func WithPublisher(publisher events.Publisher) Option {
	return func(uc *UseCase) { uc.publisher = publisher }
}

// New builds the reconciler. maxActive is the slot cap; non-positive values
// fall back to domain.DefaultMaxActiveActivities.
func New(
	activities repository.ActivityRepository,
	selections repository.MonthlySelectionRepository,
	maxActive int,
	logger *zap.Logger,
	opts ...Option,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxActive <= 0 {
		maxActive = domain.DefaultMaxActiveActivities
	}
	uc := &UseCase{
		activities: activities,
		selections: selections,
		maxActive:  maxActive,
		publisher:  events.NewNop(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// GetPlan returns the month's selection, seeding it on first access.
func (uc *UseCase) GetPlan(ctx context.Context, userID string, year, month int) (*domain.MonthlyPlan, error) {
	if err := domain.ValidateYearMonth(year, month); err != nil {
		return nil, err
	}

	rows, err := uc.selections.ListByUserAndMonth(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		if rows, err = uc.seed(ctx, userID, year, month); err != nil {
			return nil, err
		}
	}

	owned, err := uc.activities.ListByUser(ctx, repository.ActivityFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	return uc.buildPlan(year, month, owned, selectedIDs(rows)), nil
}

// UpdatePlan replaces the month's selection with exactly the submitted ids.
// Archived activities may be selected; only ownership is checked.
func (uc *UseCase) UpdatePlan(ctx context.Context, userID string, update domain.PlanUpdate) (*domain.MonthlyPlan, error) {
	if err := domain.ValidateYearMonth(update.Year, update.Month); err != nil {
		return nil, err
	}

	ids := dedupe(update.ActivityIDs)
	if len(ids) > uc.maxActive {
		return nil, domain.Invalidf("cannot select more than %d activities per month", uc.maxActive)
	}

	owned, err := uc.activities.ListByUser(ctx, repository.ActivityFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	ownedIDs := make(map[string]struct{}, len(owned))
	for _, activity := range owned {
		ownedIDs[activity.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := ownedIDs[id]; !ok {
			return nil, domain.Invalidf("activity %q is not one of the user's activities", id)
		}
	}

	if err := uc.selections.Replace(ctx, userID, update.Year, update.Month, ids); err != nil {
		return nil, err
	}
	observability.RecordPlanReplaced()
	uc.emit(ctx, events.TypePlanReplaced, userID, update.Year, update.Month, ids, "")

	selected := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		selected[id] = struct{}{}
	}
	return uc.buildPlan(update.Year, update.Month, owned, selected), nil
}

// seed persists the initial selection of an empty month and returns the
// month's rows as stored, which may come from a concurrent seeder.
func (uc *UseCase) seed(ctx context.Context, userID string, year, month int) ([]domain.MonthlySelection, error) {
	ids, source, err := uc.seedCandidates(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	created, err := uc.selections.CreateIfMissing(ctx, userID, year, month, ids)
	if err != nil {
		return nil, err
	}
	if created {
		observability.RecordPlanSeeded(source)
		uc.logger.Info("monthly plan seeded",
			zap.String("user_id", userID),
			zap.Int("year", year),
			zap.Int("month", month),
			zap.String("source", source),
			zap.Int("activities", len(ids)))
		uc.emit(ctx, events.TypePlanSeeded, userID, year, month, ids, source)
	}

	return uc.selections.ListByUserAndMonth(ctx, userID, year, month)
}

// seedCandidates carries the previous month's selection forward, falling back
// to the currently active activities in creation order. Both are capped.
func (uc *UseCase) seedCandidates(ctx context.Context, userID string, year, month int) ([]string, string, error) {
	prevYear, prevMonth := domain.PreviousMonth(year, month)
	previous, err := uc.selections.ListByUserAndMonth(ctx, userID, prevYear, prevMonth)
	if err != nil {
		return nil, "", err
	}

	ids := make([]string, 0, uc.maxActive)
	for _, row := range previous {
		if row.IsActive {
			ids = append(ids, row.ActivityID)
		}
	}
	if ids = capped(dedupe(ids), uc.maxActive); len(ids) > 0 {
		return ids, observability.SeedPreviousMonth, nil
	}

	active := true
	activities, err := uc.activities.ListByUser(ctx, repository.ActivityFilter{UserID: userID, Active: &active})
	if err != nil {
		return nil, "", err
	}
	for _, activity := range activities {
		ids = append(ids, activity.ID)
	}
	return capped(ids, uc.maxActive), observability.SeedActive, nil
}

func (uc *UseCase) buildPlan(year, month int, owned []domain.Activity, selected map[string]struct{}) *domain.MonthlyPlan {
	plan := &domain.MonthlyPlan{
		Year:          year,
		Month:         month,
		MaxActivities: uc.maxActive,
		SelectedCount: len(selected),
		Activities:    make([]domain.MonthlyPlanItem, 0, len(owned)),
	}
	for _, activity := range owned {
		_, isSelected := selected[activity.ID]
		plan.Activities = append(plan.Activities, domain.MonthlyPlanItem{
			ActivityID:  activity.ID,
			Name:        activity.Name,
			Description: activity.Description,
			Icon:        activity.Icon,
			IsSelected:  isSelected,
			IsArchived:  !activity.IsActive,
		})
	}
	return plan
}

func (uc *UseCase) emit(ctx context.Context, eventType, userID string, year, month int, ids []string, source string) {
	payload := map[string]any{
		"year":         year,
		"month":        month,
		"activity_ids": ids,
	}
	if source != "" {
		payload["source"] = source
	}
	events.Emit(ctx, uc.publisher, uc.logger, events.TopicMonthlyPlans, events.Event{
		Type:    eventType,
		UserID:  userID,
		Payload: payload,
	})
}

func selectedIDs(rows []domain.MonthlySelection) map[string]struct{} {
	selected := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if row.IsActive {
			selected[row.ActivityID] = struct{}{}
		}
	}
	return selected
}

// dedupe keeps the first occurrence of every id.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func capped(ids []string, limit int) []string {
	if len(ids) > limit {
		return ids[:limit]
	}
	return ids
}
