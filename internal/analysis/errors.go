package analysis

import "errors"

var (
	ErrNotFound       = errors.New("analysis not found")
	ErrAlreadyRunning = errors.New("analysis already running")
	ErrNotReady       = errors.New("analysis not completed")
	ErrTooManyTenders = errors.New("too many tenders in batch")
)

// Terminal error codes recorded on failed jobs.
const (
	ErrorCodeBudgetExceeded      = "BUDGET_EXCEEDED"
	ErrorCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrorCodeStepTimeout         = "STEP_TIMEOUT"
	ErrorCodeExtraction          = "EXTRACTION_ERROR"
	ErrorCodeStorage             = "STORAGE_ERROR"
	ErrorCodeInternal            = "INTERNAL_ERROR"
)

// maxBatchSize caps one batch-analyze request.
const maxBatchSize = 10
