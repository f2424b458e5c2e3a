package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/habits/domain"
	"github.com/fastygo/habits/repository"
)

type monthlySelectionRepository struct {
	pool *pgxpool.Pool
}

// NewMonthlySelectionRepository returns a Postgres-backed implementation of MonthlySelectionRepository.
func NewMonthlySelectionRepository(pool *pgxpool.Pool) repository.MonthlySelectionRepository {
	return &monthlySelectionRepository{pool: pool}
}

func (r *monthlySelectionRepository) ListByUserAndMonth(ctx context.Context, userID string, year, month int) ([]domain.MonthlySelection, error) {
	const query = `
	SELECT id, user_id, activity_id, year, month, is_active, created_at, updated_at
	FROM user_monthly_activities
	WHERE user_id = $1 AND year = $2 AND month = $3
	ORDER BY created_at ASC, activity_id ASC
	`
	rows, err := r.pool.Query(ctx, query, userID, year, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var selections []domain.MonthlySelection
	for rows.Next() {
		var s domain.MonthlySelection
		if err := rows.Scan(&s.ID, &s.UserID, &s.ActivityID, &s.Year, &s.Month, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		selections = append(selections, s)
	}
	return selections, rows.Err()
}

func (r *monthlySelectionRepository) CreateIfMissing(ctx context.Context, userID string, year, month int, activityIDs []string) (bool, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	if err := lockMonth(ctx, tx, userID, year, month); err != nil {
		return false, err
	}

	const existsQuery = `SELECT EXISTS (SELECT 1 FROM user_monthly_activities WHERE user_id = $1 AND year = $2 AND month = $3)`
	var exists bool
	if err := tx.QueryRow(ctx, existsQuery, userID, year, month).Scan(&exists); err != nil {
		return false, err
	}
	if exists || len(activityIDs) == 0 {
		return false, tx.Commit(ctx)
	}

	if err := insertSelections(ctx, tx, userID, year, month, activityIDs); err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (r *monthlySelectionRepository) Replace(ctx context.Context, userID string, year, month int, activityIDs []string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := lockMonth(ctx, tx, userID, year, month); err != nil {
		return err
	}

	const deleteQuery = `DELETE FROM user_monthly_activities WHERE user_id = $1 AND year = $2 AND month = $3`
	if _, err := tx.Exec(ctx, deleteQuery, userID, year, month); err != nil {
		return err
	}
	if err := insertSelections(ctx, tx, userID, year, month, activityIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// lockMonth serializes seeding and replacement of one (user, year, month) until the transaction ends.
func lockMonth(ctx context.Context, tx pgx.Tx, userID string, year, month int) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, monthLockKey(userID, year, month))
	return err
}

func insertSelections(ctx context.Context, tx pgx.Tx, userID string, year, month int, activityIDs []string) error {
	const insert = `
	INSERT INTO user_monthly_activities (id, user_id, activity_id, year, month, is_active)
	VALUES ($1, $2, $3, $4, $5, TRUE)
	ON CONFLICT (user_id, activity_id, year, month) DO NOTHING
	`
	batch := &pgx.Batch{}
	for _, activityID := range activityIDs {
		batch.Queue(insert, uuid.NewString(), userID, activityID, year, month)
	}
	if batch.Len() == 0 {
		return nil
	}
	return tx.SendBatch(ctx, batch).Close()
}
