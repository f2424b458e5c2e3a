package repository

import (
	"context"

	"github.com/fastygo/habits/domain"
)

// ActivityLogRepository stores per-day completion records.
type ActivityLogRepository interface {
	// ListByActivity returns logs with from <= date <= to, ordered by date.
	ListByActivity(ctx context.Context, activityID string, from, to domain.Date) ([]domain.ActivityLog, error)
	GetByActivityAndDate(ctx context.Context, activityID string, date domain.Date) (*domain.ActivityLog, error)
	// Upsert writes the log for (activity, date), updating the existing row in place.
	// log.UpdatedAt is the write time (zero means now); a write older than the stored
	// row is ignored and the stored row is returned.
	Upsert(ctx context.Context, log *domain.ActivityLog) (*domain.ActivityLog, error)
}
