package tavily

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"tender-backend/internal/ai"
)

const apiURL = "https://api.tavily.com/search"

// Client implements ai.Searcher using the Tavily Search API.
type Client struct {
	apiKey     string
	httpClient *http.Client
}

// NewClient constructs a new Tavily client.
func NewClient(apiKey string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("TAVILY_API_KEY is required")
	}
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type searchRequest struct {
	APIKey      string `json:"api_key"`
	Query       string `json:"query"`
	MaxResults  int    `json:"max_results"`
	SearchDepth string `json:"search_depth"`
}

type searchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// Search runs one billable search and returns its hits.
func (c *Client) Search(ctx context.Context, query string, maxResults int) (ai.SearchOutput, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	payload, err := json.Marshal(searchRequest{
		APIKey:      c.apiKey,
		Query:       query,
		MaxResults:  maxResults,
		SearchDepth: "basic",
	})
	if err != nil {
		return ai.SearchOutput{}, fmt.Errorf("tavily marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return ai.SearchOutput{}, fmt.Errorf("tavily build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ai.SearchOutput{}, fmt.Errorf("tavily request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return ai.SearchOutput{}, fmt.Errorf("tavily read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return ai.SearchOutput{}, fmt.Errorf("tavily http status %d", resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ai.SearchOutput{}, fmt.Errorf("tavily parse response: %w", err)
	}

	out := ai.SearchOutput{NumSearches: 1}
	for _, r := range parsed.Results {
		out.Results = append(out.Results, ai.SearchResult{
			Title:   r.Title,
			URL:     r.URL,
			Content: r.Content,
			Score:   r.Score,
		})
	}
	return out, nil
}
