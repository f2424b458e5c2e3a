package repository

import (
	"context"

	"github.com/fastygo/habits/domain"
)

// MonthlySelectionRepository stores per-month activity selections.
type MonthlySelectionRepository interface {
	ListByUserAndMonth(ctx context.Context, userID string, year, month int) ([]domain.MonthlySelection, error)
	// CreateIfMissing inserts the seed rows only when the month has no rows yet.
	// It reports whether rows were written. Concurrent callers seed at most once.
	CreateIfMissing(ctx context.Context, userID string, year, month int, activityIDs []string) (bool, error)
	// Replace atomically deletes the month's rows and inserts one selected row per id.
	Replace(ctx context.Context, userID string, year, month int, activityIDs []string) error
}
