package analysis

import "time"

const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Step labels in execution order with their progress percentages. The
// client renders these directly, so labels and values are wire contract.
const (
	StepFetchingDocuments     = "fetching documents"
	StepAnalyzingRequirements = "analyzing requirements"
	StepMarketResearch        = "market research"
	StepFinancialModeling     = "financial modeling"
	StepTechnicalEvaluation   = "technical evaluation"
	StepGeneratingReports     = "generating reports"
	StepCompleted             = "completed"
)

var stepProgress = map[string]int{
	StepFetchingDocuments:     10,
	StepAnalyzingRequirements: 30,
	StepMarketResearch:        50,
	StepFinancialModeling:     70,
	StepTechnicalEvaluation:   80,
	StepGeneratingReports:     95,
	StepCompleted:             100,
}

// Job is one analysis run for a tender. A tender has at most one job
// record; a re-run replaces the previous terminal record.
type Job struct {
	TenderID     string     `json:"tender_id"`
	Status       string     `json:"status"`
	Progress     int        `json:"progress"`
	Step         string     `json:"step"`
	Result       *Result    `json:"result,omitempty"`
	ErrorCode    string     `json:"error_code,omitempty"`
	ErrorMessage string     `json:"error,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Active reports whether the job still owns its tender id.
func (j Job) Active() bool {
	return j.Status == StatusQueued || j.Status == StatusRunning
}

// StartContext is optional request context supplied by the client.
type StartContext struct {
	TenderName      string `json:"tenderName"`
	ReferenceNumber string `json:"referenceNumber"`
}

// Result is the terminal payload of a completed analysis.
type Result struct {
	TenderID       string         `json:"tender_id"`
	Reports        Reports        `json:"reports"`
	Recommendation Recommendation `json:"recommendation"`
	Financial      Financial      `json:"financial"`
	Technical      Technical      `json:"technical"`
	Market         Market         `json:"market"`
	GeneratedAt    time.Time      `json:"generated_at"`
}

// Reports holds the generated report text per language plus the object
// store keys the rendered copies were saved under.
type Reports struct {
	Arabic     string `json:"arabic,omitempty"`
	English    string `json:"english,omitempty"`
	ArabicKey  string `json:"arabic_key,omitempty"`
	EnglishKey string `json:"english_key,omitempty"`
}

// Recommendation is the bid/no-bid verdict.
type Recommendation struct {
	ShouldBid    bool     `json:"should_bid"`
	Priority     string   `json:"priority"`
	KeyStrengths []string `json:"key_strengths"`
	KeyConcerns  []string `json:"key_concerns"`
}

// Financial is the cost model outcome, in SAR.
type Financial struct {
	TotalCost      float64 `json:"total_cost"`
	RecommendedBid float64 `json:"recommended_bid"`
	ProfitMargin   float64 `json:"profit_margin"`
	ExpectedProfit float64 `json:"expected_profit"`
}

// Technical is the feasibility assessment.
type Technical struct {
	FeasibilityScore float64 `json:"feasibility_score"`
	FeasibilityLevel string  `json:"feasibility_level"`
	CapabilityMatch  float64 `json:"capability_match"`
}

// Market summarizes the research step.
type Market struct {
	SimilarTenders int `json:"similar_tenders"`
	SuppliersFound int `json:"suppliers_found"`
}
