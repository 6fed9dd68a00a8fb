package budget

import (
	"math"
	"strings"
)

// Per-call pricing for the paid providers, USD.
const (
	anthropicSonnetInputPer1M  = 3.00
	anthropicSonnetOutputPer1M = 15.00
	anthropicHaikuInputPer1M   = 0.25
	anthropicHaikuOutputPer1M  = 1.25
	tavilyPerSearch            = 0.005
)

// AnthropicCostFor estimates an Anthropic call's cost from token counts.
// Unknown models fall back to Sonnet pricing.
func AnthropicCostFor(inputTokens, outputTokens int, model string) float64 {
	inPer1M, outPer1M := anthropicSonnetInputPer1M, anthropicSonnetOutputPer1M
	if strings.Contains(strings.ToLower(model), "haiku") {
		inPer1M, outPer1M = anthropicHaikuInputPer1M, anthropicHaikuOutputPer1M
	}
	cost := float64(inputTokens)/1_000_000*inPer1M + float64(outputTokens)/1_000_000*outPer1M
	return round4(cost)
}

// TavilyCostFor estimates search cost from the number of billable searches.
func TavilyCostFor(numSearches int) float64 {
	return round4(float64(numSearches) * tavilyPerSearch)
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
