package notify

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) CreateRun(ctx context.Context, run *Run) error {
	const query = `
		INSERT INTO notification_runs (trigger, status, started_at, overdue_days)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, query, run.Trigger, run.Status, run.StartedAt, run.OverdueDays).Scan(&run.ID)
}

func (r *PostgresRepo) UpdateRun(ctx context.Context, run *Run) error {
	const query = `
		UPDATE notification_runs SET
			finished_at = $1,
			status = $2,
			loans_found = $3,
			recipients = $4,
			error = NULLIF($5::text, '')
		WHERE id = $6`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	_, err := r.db.Exec(timeoutCtx, query, run.FinishedAt, run.Status, run.LoansFound, run.Recipients, run.Error, run.ID)
	return err
}

// LatestRuns returns the most recent runs, newest first.
func (r *PostgresRepo) LatestRuns(ctx context.Context, limit int) ([]Run, error) {
	const query = `
		SELECT id, trigger, status, started_at, finished_at, overdue_days, loans_found, recipients, COALESCE(error, '')
		FROM notification_runs
		ORDER BY started_at DESC, id DESC
		LIMIT $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Trigger, &run.Status, &run.StartedAt, &run.FinishedAt,
			&run.OverdueDays, &run.LoansFound, &run.Recipients, &run.Error); err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}
