package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tender-backend/internal/ai"
	"tender-backend/internal/budget"
)

// marketData aggregates the research step's findings plus the billable
// search count for cost tracking.
type marketData struct {
	SimilarTenders []ai.SearchResult `json:"similar_tenders"`
	Suppliers      []ai.SearchResult `json:"suppliers"`
	NumSearches    int               `json:"num_searches"`
}

// searchFn runs one paid search. The orchestrator injects a closure
// that authorizes the spend before calling the provider.
type searchFn func(ctx context.Context, query string, maxResults int) (ai.SearchOutput, error)

func similarTendersQuery(tenderName, activity string) string {
	subject := strings.TrimSpace(tenderName)
	if subject == "" {
		subject = strings.TrimSpace(activity)
	}
	return fmt.Sprintf("Saudi Arabia government tender similar projects %s", truncate(subject, 100))
}

func suppliersQuery(tenderName, activity string) string {
	subject := strings.TrimSpace(activity)
	if subject == "" {
		subject = strings.TrimSpace(tenderName)
	}
	return fmt.Sprintf("Saudi Arabia suppliers vendors %s", truncate(subject, 100))
}

// researchMarket runs the similar-tenders and suppliers searches. A
// failed query degrades the research instead of failing the job;
// context cancellation and budget denial abort.
func researchMarket(ctx context.Context, search searchFn, tenderName, activity string) (marketData, error) {
	var data marketData
	if search == nil {
		return data, nil
	}

	queries := []struct {
		query string
		sink  *[]ai.SearchResult
	}{
		{similarTendersQuery(tenderName, activity), &data.SimilarTenders},
		{suppliersQuery(tenderName, activity), &data.Suppliers},
	}

	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return data, err
		}
		out, err := search(ctx, q.query, 5)
		if err != nil {
			if errors.Is(err, budget.ErrExceeded) {
				return data, err
			}
			continue
		}
		*q.sink = out.Results
		data.NumSearches += out.NumSearches
	}
	return data, nil
}
