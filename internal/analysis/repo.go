package analysis

import (
	"context"
	"time"
)

// Repo defines persistence operations for analysis jobs.
type Repo interface {
	// CreateOrReplace stores a fresh job record for the tender. It fails
	// with ErrAlreadyRunning while an existing record is queued or
	// running, making the one-job-per-tender rule atomic at the store.
	CreateOrReplace(ctx context.Context, job Job) error
	GetByID(ctx context.Context, tenderID string) (Job, error)
	// UpdateProgress publishes a new status/progress/step snapshot.
	UpdateProgress(ctx context.Context, tenderID, status string, progress int, step string, startedAt *time.Time) error
	SetResult(ctx context.Context, tenderID string, result *Result, completedAt time.Time) error
	SetError(ctx context.Context, tenderID, code, message string, completedAt time.Time) error
	// FailStaleRunning marks every queued/running job as errored. The
	// orchestrator calls it on startup so a crash never leaves jobs
	// stuck in running.
	FailStaleRunning(ctx context.Context, code, message string) (int, error)
}
