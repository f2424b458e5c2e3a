package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/repository"
)

type monthKey struct {
	userID string
	year   int
	month  int
}

type MonthlySelectionRepository struct {
	mu     sync.RWMutex
	months map[monthKey][]domain.MonthlySelection
}

func NewMonthlySelectionRepository() *MonthlySelectionRepository {
	return &MonthlySelectionRepository{months: make(map[monthKey][]domain.MonthlySelection)}
}

func (r *MonthlySelectionRepository) ListByUserAndMonth(_ context.Context, userID string, year, month int) ([]domain.MonthlySelection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.months[monthKey{userID: userID, year: year, month: month}]
	out := make([]domain.MonthlySelection, len(rows))
	copy(out, rows)
	return out, nil
}

func (r *MonthlySelectionRepository) CreateIfMissing(_ context.Context, userID string, year, month int, activityIDs []string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := monthKey{userID: userID, year: year, month: month}
	if len(r.months[key]) > 0 {
		return false, nil
	}
	r.months[key] = buildSelections(key, activityIDs)
	return len(activityIDs) > 0, nil
}

func (r *MonthlySelectionRepository) Replace(_ context.Context, userID string, year, month int, activityIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := monthKey{userID: userID, year: year, month: month}
	r.months[key] = buildSelections(key, activityIDs)
	return nil
}

// Rows returns the number of stored rows for one month.
func (r *MonthlySelectionRepository) Rows(userID string, year, month int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.months[monthKey{userID: userID, year: year, month: month}])
}

func buildSelections(key monthKey, activityIDs []string) []domain.MonthlySelection {
	now := time.Now().UTC()
	seen := make(map[string]struct{}, len(activityIDs))
	rows := make([]domain.MonthlySelection, 0, len(activityIDs))
	for _, id := range activityIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		rows = append(rows, domain.MonthlySelection{
			ID:         uuid.NewString(),
			UserID:     key.userID,
			ActivityID: id,
			Year:       key.year,
			Month:      key.month,
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	return rows
}

var _ repository.MonthlySelectionRepository = (*MonthlySelectionRepository)(nil)
