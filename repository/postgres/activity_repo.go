package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/repository"
)

type activityRepository struct {
	pool *pgxpool.Pool
}

// NewActivityRepository returns a Postgres-backed implementation of ActivityRepository.
func NewActivityRepository(pool *pgxpool.Pool) repository.ActivityRepository {
	return &activityRepository{pool: pool}
}

const activityColumns = `id, user_id, name, description, icon, is_active, archived_at, created_at, updated_at`

func (r *activityRepository) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	if !validUUID(id) {
		return nil, domain.ErrActivityNotFound
	}
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`
	return scanActivity(r.pool.QueryRow(ctx, query, id))
}

func (r *activityRepository) ListByUser(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	query := `
	SELECT ` + activityColumns + `
	FROM activities
	WHERE user_id = $1
	  AND ($2::boolean IS NULL OR is_active = $2)
	ORDER BY created_at ASC, id ASC
	`
	rows, err := r.pool.Query(ctx, query, filter.UserID, filter.Active)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var activities []domain.Activity
	for rows.Next() {
		activity, err := scanActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, *activity)
	}
	return activities, rows.Err()
}

func (r *activityRepository) CountActive(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM activities WHERE user_id = $1 AND is_active`
	var count int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *activityRepository) ExistsByName(ctx context.Context, userID, name, excludeID string) (bool, error) {
	const query = `
	SELECT EXISTS (
		SELECT 1 FROM activities
		WHERE user_id = $1
		  AND is_active
		  AND lower(name) = lower($2)
		  AND ($3 = '' OR id::text <> $3)
	)
	`
	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, name, excludeID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *activityRepository) Create(ctx context.Context, activity *domain.Activity) (*domain.Activity, error) {
	if activity == nil {
		return nil, domain.ErrInvalidPayload
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO activities (id, user_id, name, description, icon, is_active, archived_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING created_at, updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		activity.ID,
		activity.UserID,
		activity.Name,
		activity.Description,
		activity.Icon,
		activity.IsActive,
		activity.ArchivedAt,
	).Scan(&activity.CreatedAt, &activity.UpdatedAt); err != nil {
		return nil, err
	}

	return activity, nil
}

func (r *activityRepository) Update(ctx context.Context, activity *domain.Activity) error {
	if activity == nil {
		return domain.ErrInvalidPayload
	}
	if !validUUID(activity.ID) {
		return domain.ErrActivityNotFound
	}

	const query = `
	UPDATE activities
	SET name = $2,
		description = $3,
		icon = $4,
		is_active = $5,
		archived_at = $6,
		updated_at = NOW()
	WHERE id = $1
	RETURNING updated_at
	`

	if err := r.pool.QueryRow(ctx, query,
		activity.ID,
		activity.Name,
		activity.Description,
		activity.Icon,
		activity.IsActive,
		activity.ArchivedAt,
	).Scan(&activity.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrActivityNotFound
		}
		return err
	}

	return nil
}

func scanActivity(row rowScanner) (*domain.Activity, error) {
	var (
		activity   domain.Activity
		archivedAt *time.Time
	)

	if err := row.Scan(
		&activity.ID,
		&activity.UserID,
		&activity.Name,
		&activity.Description,
		&activity.Icon,
		&activity.IsActive,
		&archivedAt,
		&activity.CreatedAt,
		&activity.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrActivityNotFound
		}
		return nil, err
	}

	if archivedAt != nil {
		ts := archivedAt.UTC()
		activity.ArchivedAt = &ts
	}
	return &activity, nil
}
