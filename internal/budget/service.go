package budget

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"tender-backend/internal/shared/metrics"
	"tender-backend/internal/shared/telemetry"
)

const periodKeyLayout = "2006-01"

// Service is the budget ledger shared across all concurrent analyses. It
// answers authorization queries against the current month's spend and records
// completed charges. A fresh period is created lazily on the first charge or
// authorization in a new month, carrying forward the configured limit.
type Service struct {
	mu    sync.RWMutex
	store store
	limit float64
	now   func() time.Time
}

// NewService constructs a Service with an in-memory store.
func NewService(limit float64) *Service {
	return newService(newMemoryStore(), limit)
}

// NewPostgresService constructs a Service backed by Postgres.
func NewPostgresService(pgStore store, limit float64) *Service {
	return newService(pgStore, limit)
}

func newService(s store, limit float64) *Service {
	if limit <= 0 {
		limit = 100.0
	}
	return &Service{store: s, limit: limit, now: time.Now}
}

func (s *Service) currentPeriodKey() string {
	return s.now().UTC().Format(periodKeyLayout)
}

func (s *Service) currentLimit() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.limit
}

// Authorize reports whether spending estimatedCost on the given service is
// allowed within the current period's budget.
func (s *Service) Authorize(ctx context.Context, service string, estimatedCost float64) (bool, error) {
	limit := s.currentLimit()
	p, err := s.store.EnsurePeriod(ctx, s.currentPeriodKey(), limit)
	if err != nil {
		return false, err
	}
	if p.TotalCost+estimatedCost > p.BudgetLimit {
		metrics.IncBudgetDenied()
		telemetry.Warn("budget.denied", map[string]any{
			"service":        service,
			"estimated_cost": estimatedCost,
			"total_cost":     p.TotalCost,
			"budget_limit":   p.BudgetLimit,
		})
		return false, nil
	}
	return true, nil
}

// Charge records actual spend for one service in the current period.
func (s *Service) Charge(ctx context.Context, service string, actualCost float64) error {
	_, err := s.store.AddCosts(ctx, s.currentPeriodKey(), s.currentLimit(), map[string]float64{service: actualCost}, false)
	return err
}

// TrackAnalysis records the full cost breakdown of one completed analysis:
// per-service charges, the analysis counter, and a history event.
func (s *Service) TrackAnalysis(ctx context.Context, tenderID string, costs Costs) error {
	periodKey := s.currentPeriodKey()
	charges := map[string]float64{}
	if costs.Anthropic.Cost > 0 {
		charges[ServiceAnthropic] = costs.Anthropic.Cost
	}
	if costs.Tavily.Cost > 0 {
		charges[ServiceTavily] = costs.Tavily.Cost
	}

	p, err := s.store.AddCosts(ctx, periodKey, s.currentLimit(), charges, true)
	if err != nil {
		return err
	}

	event := ChargeEvent{
		ID:        uuid.NewString(),
		PeriodKey: periodKey,
		TenderID:  tenderID,
		Costs:     costs,
		Timestamp: s.now().UTC(),
	}
	if err := s.store.RecordEvent(ctx, event); err != nil {
		return err
	}

	percentage := percentageUsed(p)
	fields := map[string]any{
		"tender_id":       tenderID,
		"analysis_cost":   costs.Total,
		"monthly_total":   p.TotalCost,
		"budget_limit":    p.BudgetLimit,
		"percentage_used": percentage,
	}
	switch {
	case percentage >= 100:
		telemetry.Error("budget.exceeded", fields)
	case percentage >= 80:
		telemetry.Warn("budget.warning", fields)
	default:
		telemetry.Info("budget.charged", fields)
	}
	return nil
}

// Summary returns the client-facing projection of a period. With an empty
// month it reports the current one. Months never charged report zeros under
// the configured limit.
func (s *Service) Summary(ctx context.Context, month string) (Summary, error) {
	if month == "" {
		month = s.currentPeriodKey()
	}
	p, err := s.store.GetPeriod(ctx, month)
	if err != nil {
		if err == ErrPeriodNotFound {
			p = Period{PeriodKey: month, BudgetLimit: s.currentLimit(), Breakdown: map[string]float64{}}
		} else {
			return Summary{}, err
		}
	}
	return summarize(p), nil
}

// SetLimit replaces the budget limit for the current and future periods.
func (s *Service) SetLimit(ctx context.Context, limit float64) error {
	if limit <= 0 {
		return ErrInvalidLimit
	}
	s.mu.Lock()
	s.limit = limit
	s.mu.Unlock()

	if _, err := s.store.SetLimit(ctx, s.currentPeriodKey(), limit); err != nil {
		return err
	}
	telemetry.Info("budget.limit_updated", map[string]any{"budget_limit": limit})
	return nil
}

// Recent returns the most recent charge events, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]ChargeEvent, error) {
	return s.store.ListRecent(ctx, limit)
}

func summarize(p Period) Summary {
	// Thresholds compare the exact ratio; rounding is display only. A
	// period at 99.96% would otherwise show as EXCEEDED.
	percentage := percentageUsed(p)
	avg := 0.0
	if p.NumAnalyses > 0 {
		avg = round4(p.TotalCost / float64(p.NumAnalyses))
	}
	status := StatusOK
	switch {
	case percentage >= 100:
		status = StatusExceeded
	case percentage >= 80:
		status = StatusWarning
	}
	breakdown := map[string]float64{
		ServiceAnthropic: round2(p.Breakdown[ServiceAnthropic]),
		ServiceTavily:    round2(p.Breakdown[ServiceTavily]),
	}
	return Summary{
		Month:              p.PeriodKey,
		TotalCost:          round2(p.TotalCost),
		BudgetLimit:        p.BudgetLimit,
		NumAnalyses:        p.NumAnalyses,
		AvgCostPerAnalysis: avg,
		BudgetRemaining:    round2(p.BudgetLimit - p.TotalCost),
		PercentageUsed:     math.Round(percentage*10) / 10,
		Status:             status,
		Breakdown:          breakdown,
	}
}

func percentageUsed(p Period) float64 {
	if p.BudgetLimit <= 0 {
		return 0
	}
	return p.TotalCost / p.BudgetLimit * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
