package repository

import (
	"context"

	"github.com/fastygo/habits/domain"
)

// ActivityFilter narrows an owner listing. A nil Active returns every activity.
type ActivityFilter struct {
	UserID string
	Active *bool
}

// ActivityRepository stores activities. Listings are ordered by created_at, id ascending.
type ActivityRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Activity, error)
	ListByUser(ctx context.Context, filter ActivityFilter) ([]domain.Activity, error)
	CountActive(ctx context.Context, userID string) (int, error)
	// ExistsByName matches case-insensitively among active activities, skipping excludeID.
	ExistsByName(ctx context.Context, userID, name, excludeID string) (bool, error)
	Create(ctx context.Context, activity *domain.Activity) (*domain.Activity, error)
	Update(ctx context.Context, activity *domain.Activity) error
}
