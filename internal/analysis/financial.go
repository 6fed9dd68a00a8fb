package analysis

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Cost model defaults, in SAR. These mirror the company's standing
// pricing strategy: margins, overhead and contingency applied on top of
// an estimated delivery cost.
const (
	profitMarginMin    = 0.10
	profitMarginTarget = 0.20
	profitMarginMax    = 0.30
	overheadRate       = 0.15
	contingencyRate    = 0.08
	avgMonthlySalary   = 15000.0
	licensingCost      = 50000.0
)

var (
	monthsPattern = regexp.MustCompile(`(\d+)\s*(?:شهر|شهور|[Mm]onths?)`)
	yearsPattern  = regexp.MustCompile(`(\d+)\s*(?:سنة|سنوات|[Yy]ears?)`)
)

// evaluateFinancials builds the cost model for a tender from its
// extracted text and the requirements verdict.
func evaluateFinancials(tenderText string, requirements requirementsAnalysis) Financial {
	duration := estimateDurationMonths(tenderText)
	projectType := identifyProjectType(tenderText)
	teamSize := estimateTeamSize(tenderText, projectType)

	labor := float64(teamSize) * avgMonthlySalary * float64(duration)

	var materials, equipment float64
	switch projectType {
	case "it":
		materials = labor * 0.3
	case "construction":
		materials = labor * 0.5
		equipment = labor * 0.2
	default:
		materials = labor * 0.2
	}

	var subcontractors float64
	if containsAny(tenderText, []string{"متخصص", "specialized", "expert", "استشاري"}) {
		subcontractors = labor * 0.3
	}

	var licensing float64
	if containsAny(tenderText, []string{"رخصة", "ترخيص", "license", "certification", "شهادة"}) {
		licensing = licensingCost
	}

	subtotal := labor + materials + equipment + subcontractors + licensing
	totalCost := subtotal * (1 + overheadRate + contingencyRate)

	recommendedBid := recommendBid(totalCost, requirements.FinancialInsights.EstimatedValueSAR)

	profit := recommendedBid - totalCost
	var margin float64
	if recommendedBid > 0 {
		margin = profit / recommendedBid * 100
	}

	return Financial{
		TotalCost:      round2(totalCost),
		RecommendedBid: round2(recommendedBid),
		ProfitMargin:   round2(margin),
		ExpectedProfit: round2(profit),
	}
}

// recommendBid prices against the tender's published budget when one is
// known: undercut a generous budget, fall back to the minimum margin
// when the budget is tight, and never bid below cost plus minimum margin.
func recommendBid(totalCost, tenderBudget float64) float64 {
	target := totalCost * (1 + profitMarginTarget)
	if tenderBudget <= 0 {
		return target
	}
	if target <= tenderBudget {
		return target
	}
	discounted := tenderBudget * 0.95
	minimum := totalCost * (1 + profitMarginMin)
	if discounted >= minimum {
		return discounted
	}
	return minimum
}

func estimateDurationMonths(text string) int {
	if m := yearsPattern.FindStringSubmatch(text); m != nil {
		if years, err := strconv.Atoi(m[1]); err == nil && years > 0 {
			return years * 12
		}
	}
	if m := monthsPattern.FindStringSubmatch(text); m != nil {
		if months, err := strconv.Atoi(m[1]); err == nil && months > 0 {
			return months
		}
	}
	return 12
}

func identifyProjectType(text string) string {
	lower := strings.ToLower(text)
	keywords := []struct {
		projectType string
		words       []string
	}{
		{"it", []string{"تقنية", "برمجة", "نظام", "software", "it ", "system", "application"}},
		{"construction", []string{"بناء", "تشييد", "إنشاء", "construction", "building"}},
		{"consulting", []string{"استشار", "دراسة", "consulting", "advisory"}},
		{"maintenance", []string{"صيانة", "دعم", "maintenance", "support"}},
	}
	for _, entry := range keywords {
		for _, word := range entry.words {
			if strings.Contains(lower, word) || strings.Contains(text, word) {
				return entry.projectType
			}
		}
	}
	return "general"
}

func estimateTeamSize(text, projectType string) int {
	base := map[string]int{
		"it":           8,
		"construction": 15,
		"consulting":   5,
		"maintenance":  4,
		"general":      6,
	}
	size, ok := base[projectType]
	if !ok {
		size = 6
	}
	if containsAny(text, []string{"كبير", "شامل", "large", "comprehensive"}) {
		size = int(float64(size) * 1.5)
	}
	return size
}

func containsAny(text string, words []string) bool {
	lower := strings.ToLower(text)
	for _, word := range words {
		if strings.Contains(lower, word) || strings.Contains(text, word) {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
