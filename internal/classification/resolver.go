package classification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"tender-backend/internal/shared/telemetry"
)

// Resolver answers classification queries for single tenders.
type Resolver interface {
	Resolve(ctx context.Context, tenderID string) (Result, error)
}

// BreakerResolver wraps a Resolver with a circuit breaker so a flapping
// upstream fails fast instead of tying up every prune loop on timeouts.
type BreakerResolver struct {
	inner   Resolver
	breaker *gobreaker.CircuitBreaker[Result]
}

// NewBreakerResolver builds a resolver guarded by a circuit breaker.
// NotFound answers count as successes; only transport-level failures
// trip the breaker.
func NewBreakerResolver(inner Resolver) *BreakerResolver {
	settings := gobreaker.Settings{
		Name:        "classification-upstream",
		MaxRequests: 2,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			telemetry.Warn("circuitBreakerStateChange", map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	}
	return &BreakerResolver{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[Result](settings),
	}
}

func (r *BreakerResolver) Resolve(ctx context.Context, tenderID string) (Result, error) {
	result, err := r.breaker.Execute(func() (Result, error) {
		return r.inner.Resolve(ctx, tenderID)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return Result{}, fmt.Errorf("%w: circuit open", ErrUpstreamUnavailable)
		}
		return Result{}, err
	}
	return result, nil
}

var _ Resolver = (*BreakerResolver)(nil)
var _ Resolver = (*Client)(nil)
