package ai

import (
	"context"
	"errors"
)

// Analyzer abstracts the paid text-analysis provider (Anthropic).
type Analyzer interface {
	Analyze(ctx context.Context, input AnalyzeInput) (AnalyzeOutput, error)
}

// Searcher abstracts the paid web-search provider (Tavily).
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) (SearchOutput, error)
}

// AnalyzeInput carries the prompt for a single analysis call.
type AnalyzeInput struct {
	System    string
	Prompt    string
	MaxTokens int
}

// AnalyzeOutput carries the model response plus token usage for cost tracking.
type AnalyzeOutput struct {
	Text         string
	InputTokens  int
	OutputTokens int
}

// SearchResult is one hit from the search provider.
type SearchResult struct {
	Title   string  `json:"title"`
	URL     string  `json:"url"`
	Content string  `json:"content"`
	Score   float64 `json:"score"`
}

// SearchOutput carries search hits plus the number of billable searches.
type SearchOutput struct {
	Results     []SearchResult
	NumSearches int
}

// ErrNotConfigured is returned when a provider has no API key.
var ErrNotConfigured = errors.New("ai provider not configured")
