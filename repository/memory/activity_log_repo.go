package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/repository"
)

type logKey struct {
	activityID string
	date       domain.Date
}

// ActivityLogRepository keeps one log per (activity, date); Upsert holds the
// write lock across the lookup and the write.
type ActivityLogRepository struct {
	mu   sync.RWMutex
	logs map[logKey]domain.ActivityLog
}

func NewActivityLogRepository() *ActivityLogRepository {
	return &ActivityLogRepository{logs: make(map[logKey]domain.ActivityLog)}
}

func (r *ActivityLogRepository) ListByActivity(_ context.Context, activityID string, from, to domain.Date) ([]domain.ActivityLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lo, hi := from.Time(), to.Time()
	out := make([]domain.ActivityLog, 0)
	for key, log := range r.logs {
		if key.activityID != activityID {
			continue
		}
		day := key.date.Time()
		if day.Before(lo) || day.After(hi) {
			continue
		}
		out = append(out, log)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Time().Before(out[j].Date.Time())
	})
	return out, nil
}

func (r *ActivityLogRepository) GetByActivityAndDate(_ context.Context, activityID string, date domain.Date) (*domain.ActivityLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	log, ok := r.logs[logKey{activityID: activityID, date: date}]
	if !ok {
		return nil, nil
	}
	return &log, nil
}

func (r *ActivityLogRepository) Upsert(_ context.Context, log *domain.ActivityLog) (*domain.ActivityLog, error) {
	if log == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	writtenAt := log.UpdatedAt
	if writtenAt.IsZero() {
		writtenAt = time.Now().UTC()
	}
	key := logKey{activityID: log.ActivityID, date: log.Date}

	stored, ok := r.logs[key]
	if ok {
		// Older writes lose to the stored row.
		if writtenAt.Before(stored.UpdatedAt) {
			return &stored, nil
		}
		stored.IsCompleted = log.IsCompleted
		stored.UpdatedAt = writtenAt
	} else {
		stored = *log
		if stored.ID == "" {
			stored.ID = uuid.NewString()
		}
		if stored.CreatedAt.IsZero() {
			stored.CreatedAt = writtenAt
		}
		stored.UpdatedAt = writtenAt
	}
	r.logs[key] = stored
	return &stored, nil
}

// Count returns the number of stored rows.
func (r *ActivityLogRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.logs)
}

var _ repository.ActivityLogRepository = (*ActivityLogRepository)(nil)
