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

type activityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository returns a Postgres-backed implementation of ActivityLogRepository.
func NewActivityLogRepository(pool *pgxpool.Pool) repository.ActivityLogRepository {
	return &activityLogRepository{pool: pool}
}

const activityLogColumns = `id, user_id, activity_id, log_date, is_completed, created_at, updated_at`

func (r *activityLogRepository) ListByActivity(ctx context.Context, activityID string, from, to domain.Date) ([]domain.ActivityLog, error) {
	if !validUUID(activityID) {
		return nil, nil
	}
	query := `
	SELECT ` + activityLogColumns + `
	FROM activity_logs
	WHERE activity_id = $1
	  AND log_date BETWEEN $2 AND $3
	ORDER BY log_date ASC
	`
	rows, err := r.pool.Query(ctx, query, activityID, from.Time(), to.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.ActivityLog
	for rows.Next() {
		log, err := scanActivityLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, *log)
	}
	return logs, rows.Err()
}

func (r *activityLogRepository) GetByActivityAndDate(ctx context.Context, activityID string, date domain.Date) (*domain.ActivityLog, error) {
	if !validUUID(activityID) {
		return nil, nil
	}
	query := `SELECT ` + activityLogColumns + ` FROM activity_logs WHERE activity_id = $1 AND log_date = $2`
	log, err := scanActivityLog(r.pool.QueryRow(ctx, query, activityID, date.Time()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return log, err
}

func (r *activityLogRepository) Upsert(ctx context.Context, log *domain.ActivityLog) (*domain.ActivityLog, error) {
	if log == nil || log.Date.IsZero() {
		return nil, domain.ErrInvalidPayload
	}
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	writtenAt := log.UpdatedAt
	if writtenAt.IsZero() {
		writtenAt = time.Now().UTC()
	}

	// The unique (activity_id, log_date) index makes concurrent writers converge on one row.
	// A write older than the stored row (a late buffer replay) leaves it untouched.
	const query = `
	INSERT INTO activity_logs (id, user_id, activity_id, log_date, is_completed, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $6)
	ON CONFLICT (activity_id, log_date) DO UPDATE
	SET is_completed = EXCLUDED.is_completed,
		updated_at = EXCLUDED.updated_at
	WHERE activity_logs.updated_at <= EXCLUDED.updated_at
	RETURNING id, created_at, updated_at
	`

	stored := *log
	err := r.pool.QueryRow(ctx, query,
		log.ID,
		log.UserID,
		log.ActivityID,
		log.Date.Time(),
		log.IsCompleted,
		writtenAt,
	).Scan(&stored.ID, &stored.CreatedAt, &stored.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		current, getErr := r.GetByActivityAndDate(ctx, log.ActivityID, log.Date)
		if getErr != nil {
			return nil, getErr
		}
		if current == nil {
			return nil, err
		}
		return current, nil
	}
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func scanActivityLog(row rowScanner) (*domain.ActivityLog, error) {
	var (
		log     domain.ActivityLog
		logDate time.Time
	)
	if err := row.Scan(
		&log.ID,
		&log.UserID,
		&log.ActivityID,
		&logDate,
		&log.IsCompleted,
		&log.CreatedAt,
		&log.UpdatedAt,
	); err != nil {
		return nil, err
	}
	log.Date = domain.DateOf(logDate)
	return &log, nil
}
