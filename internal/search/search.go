// Package search finds outlet coverage of a headline through a web search backend.
package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"diderot/internal/config"
)

// Provider defines the interface for search providers
type Provider interface {
	// Search performs a search with configuration
	Search(ctx context.Context, query string, config Config) ([]Result, error)

	// GetName returns the name of the search provider
	GetName() string
}

// Config holds configuration for search requests
type Config struct {
	MaxResults int           // Maximum number of results to return
	SinceTime  time.Duration // Only return results newer than this duration
	Language   string        // Language preference (e.g., "en", "es")
	Site       string        // Restrict results to this domain when set
}

// Result represents a unified search result
type Result struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Domain  string `json:"domain"`
	Source  string `json:"source"` // Provider-specific source identifier
	Rank    int    `json:"rank"`   // Position in search results
}

// ProviderType represents the type of search provider
type ProviderType string

const (
	ProviderTypeNone       ProviderType = "none"
	ProviderTypeDuckDuckGo ProviderType = "duckduckgo"
	ProviderTypeGoogle     ProviderType = "google"
)

// NewProvider creates the configured provider. ProviderTypeNone returns a nil Provider
// and no error.
func NewProvider(ctx context.Context, cfg config.Search, timeout time.Duration) (Provider, error) {
	switch ProviderType(cfg.Provider) {
	case ProviderTypeNone, "":
		return nil, nil
	case ProviderTypeDuckDuckGo:
		interval, _ := time.ParseDuration(cfg.Providers.DuckDuckGo.RateLimit)
		return NewDuckDuckGoProvider(WithTimeout(timeout), WithInterval(interval)), nil
	case ProviderTypeGoogle:
		if cfg.Providers.Google.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		if cfg.Providers.Google.SearchID == "" {
			return nil, ErrMissingSearchID
		}
		return NewGoogleProvider(ctx, cfg.Providers.Google.APIKey, cfg.Providers.Google.SearchID)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedProvider, cfg.Provider)
	}
}

// SiteQuery restricts a query to a domain using the site: operator.
func SiteQuery(query, site string) string {
	if site == "" {
		return query
	}
	return fmt.Sprintf("%s site:%s", query, site)
}

// extractDomain returns the host of a URL without a leading "www."
func extractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
