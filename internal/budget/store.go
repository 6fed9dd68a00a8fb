package budget

import (
	"context"
	"errors"
)

// ErrPeriodNotFound indicates no spend has been recorded for a period.
var ErrPeriodNotFound = errors.New("period not found")

type store interface {
	// EnsurePeriod returns the period for key, creating it with the given
	// limit when it does not yet exist.
	EnsurePeriod(ctx context.Context, key string, limit float64) (Period, error)
	// GetPeriod returns the period for key or ErrPeriodNotFound.
	GetPeriod(ctx context.Context, key string) (Period, error)
	// AddCosts atomically adds per-service costs to the period, optionally
	// counting a completed analysis, and returns the updated period.
	AddCosts(ctx context.Context, key string, limit float64, costs map[string]float64, countAnalysis bool) (Period, error)
	// SetLimit replaces the limit on an existing period; missing periods are created.
	SetLimit(ctx context.Context, key string, limit float64) (Period, error)
	// RecordEvent appends a charge event to the ledger history.
	RecordEvent(ctx context.Context, event ChargeEvent) error
	// ListRecent returns up to limit charge events, newest first.
	ListRecent(ctx context.Context, limit int) ([]ChargeEvent, error)
}
