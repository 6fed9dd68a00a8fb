package pruner

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"tender-backend/internal/classification"
	"tender-backend/internal/shared/telemetry"
)

// Policy decides whether a resolved tender should be removed.
type Policy func(classification.Result) bool

// RequiresClassification is the default policy: drop every tender whose
// classification is mandatory.
func RequiresClassification(result classification.Result) bool {
	return result.RequiresClassification
}

// Remover performs the delete side effect for one tender.
type Remover interface {
	Remove(ctx context.Context, id string) error
}

// Report summarizes one prune run. Checked counts tenders whose
// classification resolved; Remaining is Checked minus Removed.
type Report struct {
	Checked   int `json:"checked"`
	Removed   int `json:"removed"`
	Errors    int `json:"errors"`
	Remaining int `json:"remaining"`
}

// Pruner walks a tender list and removes the ones matching a policy.
// Resolver calls are paced so the upstream classification source is not
// hammered during large sweeps.
type Pruner struct {
	resolver classification.Resolver
	remover  Remover
	limiter  *rate.Limiter
}

// New constructs a Pruner. pacing is the minimum gap between
// consecutive resolver calls.
func New(resolver classification.Resolver, remover Remover, pacing time.Duration) *Pruner {
	if pacing <= 0 {
		pacing = 500 * time.Millisecond
	}
	return &Pruner{
		resolver: resolver,
		remover:  remover,
		limiter:  rate.NewLimiter(rate.Every(pacing), 1),
	}
}

// Prune processes ids in order. A resolver or remover failure counts as
// an error and the sweep continues; only context cancellation aborts
// the run. The report is cumulative over the whole list.
func (p *Pruner) Prune(ctx context.Context, ids []string, policy Policy) (Report, error) {
	if policy == nil {
		policy = RequiresClassification
	}

	var report Report
	for _, id := range ids {
		if err := p.limiter.Wait(ctx); err != nil {
			return report, err
		}

		result, err := p.resolver.Resolve(ctx, id)
		if err != nil {
			report.Errors++
			telemetry.Warn("pruneResolveFailed", map[string]any{
				"tenderId": id,
				"error":    err.Error(),
			})
			continue
		}
		report.Checked++

		if !policy(result) {
			continue
		}

		if err := p.remover.Remove(ctx, id); err != nil {
			report.Errors++
			telemetry.Warn("pruneRemoveFailed", map[string]any{
				"tenderId": id,
				"error":    err.Error(),
			})
			continue
		}
		report.Removed++
		telemetry.Info("tenderPruned", map[string]any{
			"tenderId":       id,
			"classification": result.Label,
		})
	}

	report.Remaining = report.Checked - report.Removed
	return report, nil
}
