package budget

import "time"

// Period statuses derived from percentage of budget used.
const (
	StatusOK       = "OK"
	StatusWarning  = "WARNING"
	StatusExceeded = "EXCEEDED"
)

// Paid service names used as breakdown keys.
const (
	ServiceAnthropic = "anthropic"
	ServiceTavily    = "tavily"
)

// Period is one calendar month of accumulated spend.
type Period struct {
	PeriodKey   string             `json:"period_key"`
	TotalCost   float64            `json:"total_cost"`
	BudgetLimit float64            `json:"budget_limit"`
	NumAnalyses int                `json:"num_analyses"`
	Breakdown   map[string]float64 `json:"breakdown"`
}

// AnthropicCost is the token usage and cost of the analysis provider for one tender.
type AnthropicCost struct {
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Cost         float64 `json:"cost"`
}

// TavilyCost is the search usage and cost for one tender.
type TavilyCost struct {
	NumSearches int     `json:"num_searches"`
	Cost        float64 `json:"cost"`
}

// Costs is the full per-analysis cost breakdown.
type Costs struct {
	Anthropic AnthropicCost `json:"anthropic"`
	Tavily    TavilyCost    `json:"tavily"`
	Total     float64       `json:"total"`
}

// ChargeEvent records one completed analysis charge.
type ChargeEvent struct {
	ID        string    `json:"id"`
	PeriodKey string    `json:"period_key"`
	TenderID  string    `json:"tender_id"`
	Costs     Costs     `json:"costs"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary is the client-facing projection of a period.
type Summary struct {
	Month              string             `json:"month"`
	TotalCost          float64            `json:"total_cost"`
	BudgetLimit        float64            `json:"budget_limit"`
	NumAnalyses        int                `json:"num_analyses"`
	AvgCostPerAnalysis float64            `json:"avg_cost_per_analysis"`
	BudgetRemaining    float64            `json:"budget_remaining"`
	PercentageUsed     float64            `json:"percentage_used"`
	Status             string             `json:"status"`
	Breakdown          map[string]float64 `json:"breakdown"`
}
