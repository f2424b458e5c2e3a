// Package memory holds in-process stores used by tests and local tooling.
// Each store serializes access with its own mutex.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/repository"
)

type ActivityRepository struct {
	mu    sync.RWMutex
	items map[string]domain.Activity
}

func NewActivityRepository() *ActivityRepository {
	return &ActivityRepository{items: make(map[string]domain.Activity)}
}

func (r *ActivityRepository) GetByID(_ context.Context, id string) (*domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activity, ok := r.items[id]
	if !ok {
		return nil, domain.ErrActivityNotFound
	}
	return &activity, nil
}

func (r *ActivityRepository) ListByUser(_ context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Activity, 0)
	for _, activity := range r.items {
		if activity.UserID != filter.UserID {
			continue
		}
		if filter.Active != nil && activity.IsActive != *filter.Active {
			continue
		}
		out = append(out, activity)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *ActivityRepository) CountActive(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, activity := range r.items {
		if activity.UserID == userID && activity.IsActive {
			count++
		}
	}
	return count, nil
}

func (r *ActivityRepository) ExistsByName(_ context.Context, userID, name, excludeID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, activity := range r.items {
		if activity.UserID != userID || !activity.IsActive || activity.ID == excludeID {
			continue
		}
		if strings.EqualFold(activity.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *ActivityRepository) Create(_ context.Context, activity *domain.Activity) (*domain.Activity, error) {
	if activity == nil {
		return nil, domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	created := *activity
	if created.ID == "" {
		created.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = now
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}
	r.items[created.ID] = created
	return &created, nil
}

func (r *ActivityRepository) Update(_ context.Context, activity *domain.Activity) error {
	if activity == nil {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[activity.ID]; !ok {
		return domain.ErrActivityNotFound
	}
	r.items[activity.ID] = *activity
	return nil
}

var _ repository.ActivityRepository = (*ActivityRepository)(nil)
