package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres. The result payload lives in a
// JSONB column.
type PGRepo struct {
	DB *sql.DB
}

// CreateOrReplace inserts a fresh job row. The conditional upsert only
// replaces terminal rows, so a concurrent start loses cleanly.
func (r *PGRepo) CreateOrReplace(ctx context.Context, job Job) error {
	const query = `
INSERT INTO analysis_jobs (tender_id, status, progress, step, created_at, updated_at)
VALUES ($1, $2, $3, $4, now(), now())
ON CONFLICT (tender_id) DO UPDATE SET
    status = EXCLUDED.status,
    progress = EXCLUDED.progress,
    step = EXCLUDED.step,
    result = NULL,
    error_code = NULL,
    error_message = NULL,
    started_at = NULL,
    completed_at = NULL,
    created_at = now(),
    updated_at = now()
WHERE analysis_jobs.status NOT IN ('queued', 'running')`

	res, err := r.DB.ExecContext(ctx, query, job.TenderID, job.Status, job.Progress, job.Step)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrAlreadyRunning
	}
	return nil
}

// GetByID returns the job snapshot for a tender.
func (r *PGRepo) GetByID(ctx context.Context, tenderID string) (Job, error) {
	const query = `
SELECT tender_id, status, progress, step, result, error_code, error_message,
       started_at, completed_at, created_at, updated_at
FROM analysis_jobs
WHERE tender_id = $1`

	var job Job
	var rawResult []byte
	var errorCode, errorMessage sql.NullString
	var startedAt, completedAt sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, tenderID).Scan(
		&job.TenderID,
		&job.Status,
		&job.Progress,
		&job.Step,
		&rawResult,
		&errorCode,
		&errorMessage,
		&startedAt,
		&completedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	if len(rawResult) > 0 {
		var result Result
		if err := json.Unmarshal(rawResult, &result); err != nil {
			return Job{}, fmt.Errorf("decode analysis result tender=%s: %w", tenderID, err)
		}
		job.Result = &result
	}
	if errorCode.Valid {
		job.ErrorCode = errorCode.String
	}
	if errorMessage.Valid {
		job.ErrorMessage = errorMessage.String
	}
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return job, nil
}

// UpdateProgress publishes a new snapshot. GREATEST keeps progress monotone.
func (r *PGRepo) UpdateProgress(ctx context.Context, tenderID, status string, progress int, step string, startedAt *time.Time) error {
	const query = `
UPDATE analysis_jobs
SET status = $1,
    progress = GREATEST(progress, $2),
    step = $3,
    started_at = COALESCE(started_at, $4),
    updated_at = now()
WHERE tender_id = $5`

	var started sql.NullTime
	if startedAt != nil {
		started = sql.NullTime{Time: *startedAt, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query, status, progress, step, started, tenderID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetResult marks the job completed.
func (r *PGRepo) SetResult(ctx context.Context, tenderID string, result *Result, completedAt time.Time) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis result tender=%s: %w", tenderID, err)
	}

	const query = `
UPDATE analysis_jobs
SET status = 'completed',
    progress = 100,
    step = 'completed',
    result = $1,
    error_code = NULL,
    error_message = NULL,
    completed_at = $2,
    updated_at = now()
WHERE tender_id = $3`

	res, err := r.DB.ExecContext(ctx, query, payload, completedAt, tenderID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetError marks the job errored.
func (r *PGRepo) SetError(ctx context.Context, tenderID, code, message string, completedAt time.Time) error {
	const query = `
UPDATE analysis_jobs
SET status = 'error',
    result = NULL,
    error_code = $1,
    error_message = $2,
    completed_at = $3,
    updated_at = now()
WHERE tender_id = $4`

	res, err := r.DB.ExecContext(ctx, query, code, message, completedAt, tenderID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// FailStaleRunning errors out jobs left active by a previous process.
func (r *PGRepo) FailStaleRunning(ctx context.Context, code, message string) (int, error) {
	const query = `
UPDATE analysis_jobs
SET status = 'error',
    error_code = $1,
    error_message = $2,
    completed_at = now(),
    updated_at = now()
WHERE status IN ('queued', 'running')`

	res, err := r.DB.ExecContext(ctx, query, code, message)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return int(affected), nil
}

var _ Repo = (*PGRepo)(nil)
