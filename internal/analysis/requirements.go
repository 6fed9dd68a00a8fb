package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

const analysisSystemPrompt = "You are an expert Saudi Arabian government tender analyst specializing in procurement evaluation. You always respond in valid JSON format without markdown code blocks."

// maxTenderTextChars bounds the prompt size, roughly 12-13k tokens.
const maxTenderTextChars = 50000

// requirementsAnalysis is the structured verdict extracted from the
// tender documents by the analysis provider.
type requirementsAnalysis struct {
	Recommendation   string `json:"recommendation"`
	Confidence       string `json:"confidence"`
	Priority         string `json:"priority"`
	ExecutiveSummary struct {
		AR string `json:"ar"`
		EN string `json:"en"`
	} `json:"executive_summary"`
	KeyStrengths          []string `json:"key_strengths"`
	KeyConcerns           []string `json:"key_concerns"`
	TechnicalRequirements []string `json:"technical_requirements"`
	FinancialInsights     struct {
		EstimatedValueSAR float64 `json:"estimated_value_sar"`
		Complexity        string  `json:"complexity"`
		ResourceNeeds     string  `json:"resource_needs"`
	} `json:"financial_insights"`
	AnalysisSummary string `json:"analysis_summary"`
}

func buildAnalysisPrompt(tenderText, companyContext string) string {
	if len(tenderText) > maxTenderTextChars {
		tenderText = tenderText[:maxTenderTextChars] + "\n\n[...text truncated...]"
	}

	return fmt.Sprintf(`You are an expert tender analyst helping a Saudi Arabian company evaluate government tenders.

COMPANY PROFILE:
%s

TENDER DOCUMENTS:
%s

Analyze this tender and provide your response in STRICT JSON format (no markdown, no code blocks, just pure JSON):

{
  "recommendation": "PROCEED|CONSIDER|SKIP",
  "confidence": "High|Medium|Low",
  "priority": "High|Medium|Low",
  "executive_summary": {
    "ar": "ملخص باللغة العربية",
    "en": "Summary in English"
  },
  "key_strengths": ["Strength 1", "Strength 2"],
  "key_concerns": ["Concern 1", "Concern 2"],
  "technical_requirements": ["Requirement 1", "Requirement 2"],
  "financial_insights": {
    "estimated_value_sar": 0,
    "complexity": "Low|Medium|High",
    "resource_needs": "Description"
  },
  "analysis_summary": "Brief summary of the analysis"
}

IMPORTANT: Return ONLY the JSON object, no other text.`, companyContext, tenderText)
}

// parseRequirements decodes the provider output. Malformed JSON falls
// back to keyword extraction over the raw text so a sloppy response
// still yields a usable verdict.
func parseRequirements(raw string) requirementsAnalysis {
	cleaned := stripCodeFences(raw)

	var parsed requirementsAnalysis
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
		if parsed.Recommendation == "" {
			parsed.Recommendation = extractRecommendation(cleaned)
		}
		if parsed.Priority == "" {
			parsed.Priority = extractPriority(cleaned)
		}
		return parsed
	}

	parsed.Recommendation = extractRecommendation(raw)
	parsed.Priority = extractPriority(raw)
	parsed.KeyStrengths = extractLines(raw, []string{"strong", "strength", "advantage", "قوة", "مميز"})
	parsed.KeyConcerns = extractLines(raw, []string{"risk", "concern", "challenge", "مخاطر", "تحدي"})
	parsed.AnalysisSummary = truncate(raw, 500)
	return parsed
}

func stripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	return strings.TrimSpace(trimmed)
}

func extractRecommendation(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "proceed"):
		return "PROCEED"
	case strings.Contains(lower, "skip"):
		return "SKIP"
	default:
		return "CONSIDER"
	}
}

func extractPriority(text string) string {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "high priority") || strings.Contains(lower, "urgent") ||
		strings.Contains(text, "عالية") || strings.Contains(text, "عاجل"):
		return "High"
	case strings.Contains(lower, "medium priority") || strings.Contains(lower, "moderate") ||
		strings.Contains(text, "متوسطة"):
		return "Medium"
	default:
		return "Low"
	}
}

func extractLines(text string, keywords []string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*• "))
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		for _, keyword := range keywords {
			if strings.Contains(lower, keyword) || strings.Contains(line, keyword) {
				out = append(out, truncate(line, 200))
				break
			}
		}
		if len(out) >= 5 {
			break
		}
	}
	return out
}

func truncate(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "..."
}
