package search

import (
	"context"
	"fmt"

	"diderot/internal/logger"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// GoogleProvider implements Provider using the Google Custom Search JSON API
type GoogleProvider struct {
	service  *customsearch.Service
	searchID string
}

// NewGoogleProvider creates a new Google Custom Search provider. Extra client options
// are passed to the service, e.g. option.WithEndpoint in tests.
func NewGoogleProvider(ctx context.Context, apiKey, searchID string, opts ...option.ClientOption) (*GoogleProvider, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create custom search service: %w", err)
	}
	return &GoogleProvider{service: service, searchID: searchID}, nil
}

// GetName returns the name of this provider
func (g *GoogleProvider) GetName() string {
	return "Google Custom Search"
}

// Search performs a search using Google Custom Search API
func (g *GoogleProvider) Search(ctx context.Context, query string, config Config) ([]Result, error) {
	num := config.MaxResults
	// Google CSE allows max 10 results per request
	if num <= 0 || num > 10 {
		num = 10
	}

	call := g.service.Cse.List().Cx(g.searchID).Q(query).Num(int64(num)).Context(ctx)
	if config.Site != "" {
		call = call.SiteSearch(config.Site).SiteSearchFilter("i")
	}
	if config.Language != "" {
		call = call.Lr("lang_" + config.Language)
	}
	if config.SinceTime > 0 {
		days := int(config.SinceTime.Hours()/24) + 1
		call = call.DateRestrict(fmt.Sprintf("d%d", days))
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("google custom search failed: %w", err)
	}

	results := make([]Result, 0, len(resp.Items))
	for i, item := range resp.Items {
		results = append(results, Result{
			URL:     item.Link,
			Title:   item.Title,
			Snippet: item.Snippet,
			Domain:  extractDomain(item.Link),
			Source:  "Google",
			Rank:    i + 1,
		})
	}

	logger.Debug("Google search completed", "query", query, "results_found", len(results))
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}
