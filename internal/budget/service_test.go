package budget

import (
	"context"
	"math"
	"testing"
	"time"
)

func newTestService(limit float64) *Service {
	svc := NewService(limit)
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestAuthorizeDeniesOverLimit(t *testing.T) {
	svc := newTestService(100)
	ctx := context.Background()

	ok, err := svc.Authorize(ctx, ServiceAnthropic, 50)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !ok {
		t.Fatal("expected authorization within budget")
	}

	if err := svc.Charge(ctx, ServiceAnthropic, 99); err != nil {
		t.Fatalf("charge: %v", err)
	}

	ok, err = svc.Authorize(ctx, ServiceTavily, 2)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if ok {
		t.Fatal("expected denial: 99 + 2 > 100")
	}

	// Exactly at the limit is still allowed.
	ok, err = svc.Authorize(ctx, ServiceTavily, 1)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !ok {
		t.Fatal("expected authorization: 99 + 1 == 100")
	}
}

func TestChargeUpdatesBreakdownAndTotal(t *testing.T) {
	svc := newTestService(100)
	ctx := context.Background()

	if err := svc.Charge(ctx, ServiceAnthropic, 1.5); err != nil {
		t.Fatalf("charge: %v", err)
	}
	if err := svc.Charge(ctx, ServiceTavily, 0.25); err != nil {
		t.Fatalf("charge: %v", err)
	}

	summary, err := svc.Summary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalCost != 1.75 {
		t.Fatalf("total cost = %v, want 1.75", summary.TotalCost)
	}
	if summary.Breakdown[ServiceAnthropic] != 1.5 {
		t.Fatalf("anthropic = %v, want 1.5", summary.Breakdown[ServiceAnthropic])
	}
	if summary.Breakdown[ServiceTavily] != 0.25 {
		t.Fatalf("tavily = %v, want 0.25", summary.Breakdown[ServiceTavily])
	}
}

func TestSummaryStatusThresholds(t *testing.T) {
	cases := []struct {
		name   string
		cost   float64
		status string
	}{
		{"ok below warning", 79, StatusOK},
		{"warning at 80", 80, StatusWarning},
		{"warning below exceeded", 85, StatusWarning},
		{"warning just under limit", 99.96, StatusWarning},
		{"exceeded at 100", 100, StatusExceeded},
		{"exceeded above limit", 120, StatusExceeded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(100)
			ctx := context.Background()
			if err := svc.Charge(ctx, ServiceAnthropic, tc.cost); err != nil {
				t.Fatalf("charge: %v", err)
			}
			summary, err := svc.Summary(ctx, "")
			if err != nil {
				t.Fatalf("summary: %v", err)
			}
			if summary.Status != tc.status {
				t.Fatalf("status = %s, want %s (cost=%v)", summary.Status, tc.status, tc.cost)
			}
		})
	}
}

func TestPercentageRoundsForDisplayOnly(t *testing.T) {
	svc := newTestService(100)
	ctx := context.Background()
	if err := svc.Charge(ctx, ServiceAnthropic, 99.96); err != nil {
		t.Fatalf("charge: %v", err)
	}

	summary, err := svc.Summary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// 99.96% rounds to 100.0 on the wire but the budget is not exceeded.
	if summary.PercentageUsed != 100.0 {
		t.Fatalf("percentage_used = %v, want 100.0", summary.PercentageUsed)
	}
	if summary.Status != StatusWarning {
		t.Fatalf("status = %s, want %s", summary.Status, StatusWarning)
	}
}

func TestAvgCostPerAnalysis(t *testing.T) {
	svc := newTestService(100)
	ctx := context.Background()

	summary, err := svc.Summary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.AvgCostPerAnalysis != 0 {
		t.Fatalf("avg with no analyses = %v, want 0", summary.AvgCostPerAnalysis)
	}

	costs := Costs{
		Anthropic: AnthropicCost{InputTokens: 10000, OutputTokens: 3000, Cost: 0.075},
		Tavily:    TavilyCost{NumSearches: 5, Cost: 0.025},
		Total:     0.1,
	}
	if err := svc.TrackAnalysis(ctx, "tender-1", costs); err != nil {
		t.Fatalf("track analysis: %v", err)
	}
	if err := svc.TrackAnalysis(ctx, "tender-2", costs); err != nil {
		t.Fatalf("track analysis: %v", err)
	}

	summary, err = svc.Summary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.NumAnalyses != 2 {
		t.Fatalf("num analyses = %d, want 2", summary.NumAnalyses)
	}
	if math.Abs(summary.AvgCostPerAnalysis-0.1) > 1e-9 {
		t.Fatalf("avg = %v, want 0.1", summary.AvgCostPerAnalysis)
	}
}

func TestSetLimitValidation(t *testing.T) {
	svc := newTestService(100)
	ctx := context.Background()

	if err := svc.SetLimit(ctx, 0); err != ErrInvalidLimit {
		t.Fatalf("expected ErrInvalidLimit for 0, got %v", err)
	}
	if err := svc.SetLimit(ctx, -5); err != ErrInvalidLimit {
		t.Fatalf("expected ErrInvalidLimit for -5, got %v", err)
	}

	if err := svc.SetLimit(ctx, 250); err != nil {
		t.Fatalf("set limit: %v", err)
	}
	summary, err := svc.Summary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.BudgetLimit != 250 {
		t.Fatalf("budget limit = %v, want 250", summary.BudgetLimit)
	}
}

func TestPeriodRolloverCarriesLimit(t *testing.T) {
	svc := newTestService(100)
	ctx := context.Background()

	if err := svc.SetLimit(ctx, 200); err != nil {
		t.Fatalf("set limit: %v", err)
	}
	if err := svc.Charge(ctx, ServiceAnthropic, 150); err != nil {
		t.Fatalf("charge: %v", err)
	}

	// Next month: fresh period, configured limit carried forward.
	svc.now = func() time.Time {
		return time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	}

	ok, err := svc.Authorize(ctx, ServiceAnthropic, 150)
	if err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if !ok {
		t.Fatal("expected fresh period to allow spend denied last month")
	}

	summary, err := svc.Summary(ctx, "")
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Month != "2026-04" {
		t.Fatalf("month = %s, want 2026-04", summary.Month)
	}
	if summary.TotalCost != 0 {
		t.Fatalf("total cost = %v, want 0 in new period", summary.TotalCost)
	}
	if summary.BudgetLimit != 200 {
		t.Fatalf("budget limit = %v, want carried-forward 200", summary.BudgetLimit)
	}
}

func TestRecentNewestFirst(t *testing.T) {
	svc := NewService(100)
	ctx := context.Background()

	base := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"tender-a", "tender-b", "tender-c"} {
		ts := base.Add(time.Duration(i) * time.Hour)
		svc.now = func() time.Time { return ts }
		if err := svc.TrackAnalysis(ctx, id, Costs{Total: 1, Anthropic: AnthropicCost{Cost: 1}}); err != nil {
			t.Fatalf("track analysis: %v", err)
		}
	}

	events, err := svc.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].TenderID != "tender-c" || events[1].TenderID != "tender-b" {
		t.Fatalf("unexpected order: %s, %s", events[0].TenderID, events[1].TenderID)
	}
}

func TestAnthropicPricing(t *testing.T) {
	cost := AnthropicCostFor(1_000_000, 1_000_000, "claude-sonnet-4")
	if cost != 18.0 {
		t.Fatalf("sonnet cost = %v, want 18.0", cost)
	}
	cost = AnthropicCostFor(1_000_000, 0, "claude-haiku")
	if cost != 0.25 {
		t.Fatalf("haiku cost = %v, want 0.25", cost)
	}
}

func TestTavilyPricing(t *testing.T) {
	if cost := TavilyCostFor(5); cost != 0.025 {
		t.Fatalf("tavily cost = %v, want 0.025", cost)
	}
}
