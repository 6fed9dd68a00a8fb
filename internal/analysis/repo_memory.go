package analysis

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo stores jobs in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	jobs map[string]Job
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{jobs: make(map[string]Job)}
}

// CreateOrReplace stores a fresh job unless an active one holds the id.
func (r *MemoryRepo) CreateOrReplace(ctx context.Context, job Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.jobs[job.TenderID]; ok && existing.Active() {
		return ErrAlreadyRunning
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	r.jobs[job.TenderID] = job
	return nil
}

// GetByID returns the job snapshot for a tender.
func (r *MemoryRepo) GetByID(ctx context.Context, tenderID string) (Job, error) {
	if err := ctx.Err(); err != nil {
		return Job{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[tenderID]
	if !ok {
		return Job{}, ErrNotFound
	}
	return job, nil
}

// UpdateProgress publishes a new snapshot. Progress never moves backwards.
func (r *MemoryRepo) UpdateProgress(ctx context.Context, tenderID, status string, progress int, step string, startedAt *time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[tenderID]
	if !ok {
		return ErrNotFound
	}
	job.Status = status
	if progress > job.Progress {
		job.Progress = progress
	}
	job.Step = step
	if startedAt != nil && job.StartedAt == nil {
		job.StartedAt = startedAt
	}
	job.UpdatedAt = time.Now().UTC()
	r.jobs[tenderID] = job
	return nil
}

// SetResult marks the job completed with its terminal payload.
func (r *MemoryRepo) SetResult(ctx context.Context, tenderID string, result *Result, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[tenderID]
	if !ok {
		return ErrNotFound
	}
	job.Status = StatusCompleted
	job.Progress = 100
	job.Step = StepCompleted
	job.Result = result
	job.ErrorCode = ""
	job.ErrorMessage = ""
	job.CompletedAt = &completedAt
	job.UpdatedAt = time.Now().UTC()
	r.jobs[tenderID] = job
	return nil
}

// SetError marks the job errored.
func (r *MemoryRepo) SetError(ctx context.Context, tenderID, code, message string, completedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[tenderID]
	if !ok {
		return ErrNotFound
	}
	job.Status = StatusError
	job.Result = nil
	job.ErrorCode = code
	job.ErrorMessage = message
	job.CompletedAt = &completedAt
	job.UpdatedAt = time.Now().UTC()
	r.jobs[tenderID] = job
	return nil
}

// FailStaleRunning errors out every active job.
func (r *MemoryRepo) FailStaleRunning(ctx context.Context, code, message string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	count := 0
	for id, job := range r.jobs {
		if !job.Active() {
			continue
		}
		job.Status = StatusError
		job.ErrorCode = code
		job.ErrorMessage = message
		job.CompletedAt = &now
		job.UpdatedAt = now
		r.jobs[id] = job
		count++
	}
	return count, nil
}

var _ Repo = (*MemoryRepo)(nil)
