// Package queue is a Postgres-backed job queue of (document, language)
// synchronization requests. Workers claim jobs with SKIP LOCKED so several
// can drain the queue concurrently, and a pending or running job suppresses
// duplicate enqueues of the same pair.
package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	StatusPending = "pending"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusError   = "error"
)

type Queue struct {
	db *sql.DB
}

func Open(ctx context.Context, databaseURL string) (*Queue, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetMaxIdleConns(10)
	db.SetMaxOpenConns(20)

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}

	q := &Queue{db: db}
	if err := q.migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate jobs table: %w", err)
	}
	return q, nil
}

func (q *Queue) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY,
		document TEXT NOT NULL,
		lang TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		retries INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_jobs_active
		ON jobs(document, lang) WHERE status IN ('pending', 'running');
	CREATE INDEX IF NOT EXISTS idx_jobs_claim ON jobs(status, created_at);
	`
	_, err := q.db.ExecContext(ctx, schema)
	return err
}

func (q *Queue) Close() error {
	return q.db.Close()
}

// Job is one synchronization request.
type Job struct {
	ID        uuid.UUID
	Document  string
	Lang      string
	Status    string
	Retries   int
	LastError string
}

// Enqueue adds a job for (document, lang). If the pair already has a
// pending or running job the enqueue is suppressed and created is false.
func (q *Queue) Enqueue(ctx context.Context, document, lang string) (id uuid.UUID, created bool, err error) {
	id = uuid.New()
	err = q.db.QueryRowContext(ctx, `
		INSERT INTO jobs (id, document, lang)
		VALUES ($1, $2, $3)
		ON CONFLICT (document, lang) WHERE status IN ('pending', 'running') DO NOTHING
		RETURNING id`,
		id, document, lang).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("enqueue %s/%s: %w", document, lang, err)
	}
	return id, true, nil
}

// Next claims the oldest pending job and marks it running. Returns nil when
// the queue is empty. SKIP LOCKED keeps concurrent workers from claiming
// the same job.
func (q *Queue) Next(ctx context.Context) (*Job, error) {
	var j Job
	var lastError sql.NullString
	err := q.db.QueryRowContext(ctx, `
		UPDATE jobs SET status = 'running', updated_at = now()
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = 'pending'
			ORDER BY created_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, document, lang, status, retries, last_error`).Scan(
		&j.ID, &j.Document, &j.Lang, &j.Status, &j.Retries, &lastError)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("claim job: %w", err)
	}
	j.LastError = lastError.String
	return &j, nil
}

// MarkDone completes a job.
func (q *Queue) MarkDone(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE jobs SET status = 'done', updated_at = now() WHERE id = $1`, id)
	return err
}

// MarkError records a failure. The job is requeued as pending until it has
// failed maxRetries times, after which it lands in the error state.
func (q *Queue) MarkError(ctx context.Context, id uuid.UUID, cause string, maxRetries int) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE jobs SET
			retries = retries + 1,
			last_error = $2,
			status = CASE WHEN retries + 1 >= $3 THEN 'error' ELSE 'pending' END,
			updated_at = now()
		WHERE id = $1`,
		id, cause, maxRetries)
	return err
}

// Counts returns the number of jobs per status.
func (q *Queue) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// PruneLangs deletes pending jobs whose language is not in keep, for when a
// language is dropped from the sync set.
func (q *Queue) PruneLangs(ctx context.Context, keep []string) (int64, error) {
	if len(keep) == 0 {
		return 0, fmt.Errorf("refusing to prune with an empty keep set")
	}

	placeholders := make([]string, len(keep))
	args := make([]interface{}, len(keep))
	for i, lang := range keep {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = lang
	}

	res, err := q.db.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM jobs WHERE status = 'pending' AND lang NOT IN (%s)`,
			strings.Join(placeholders, ", ")), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
