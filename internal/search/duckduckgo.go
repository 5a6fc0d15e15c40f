package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"diderot/internal/logger"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const duckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGoProvider implements the Provider interface using the DuckDuckGo HTML endpoint
type DuckDuckGoProvider struct {
	client    *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter
}

// DuckDuckGoOption configures a DuckDuckGoProvider
type DuckDuckGoOption func(*DuckDuckGoProvider)

// WithTimeout sets the HTTP client timeout
func WithTimeout(d time.Duration) DuckDuckGoOption {
	return func(p *DuckDuckGoProvider) {
		if d > 0 {
			p.client.Timeout = d
		}
	}
}

// WithInterval sets the minimum spacing between requests
func WithInterval(d time.Duration) DuckDuckGoOption {
	return func(p *DuckDuckGoProvider) {
		if d > 0 {
			p.limiter = rate.NewLimiter(rate.Every(d), 1)
		}
	}
}

// WithBaseURL points the provider at another endpoint
func WithBaseURL(u string) DuckDuckGoOption {
	return func(p *DuckDuckGoProvider) { p.baseURL = u }
}

// NewDuckDuckGoProvider creates a new DuckDuckGo search provider
func NewDuckDuckGoProvider(opts ...DuckDuckGoOption) *DuckDuckGoProvider {
	p := &DuckDuckGoProvider{
		client:    &http.Client{Timeout: 30 * time.Second},
		baseURL:   duckDuckGoURL,
		userAgent: "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetName returns the name of this provider
func (d *DuckDuckGoProvider) GetName() string {
	return "DuckDuckGo"
}

// Search performs a search using DuckDuckGo and returns results
func (d *DuckDuckGoProvider) Search(ctx context.Context, query string, config Config) ([]Result, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.buildSearchURL(query, config), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search request failed with status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	if doc.Find(".anomaly-modal__title, #challenge-form").Length() > 0 {
		logger.Debug("DuckDuckGo CAPTCHA detected", "query", query)
		return nil, ErrBlocked
	}

	results := parseResults(doc, config.MaxResults)
	logger.Debug("DuckDuckGo search completed", "query", query, "results_found", len(results))
	if len(results) == 0 {
		return nil, ErrNoResults
	}
	return results, nil
}

// buildSearchURL constructs the DuckDuckGo search URL with parameters
func (d *DuckDuckGoProvider) buildSearchURL(query string, config Config) string {
	params := url.Values{}

	if config.SinceTime > 0 {
		days := int(config.SinceTime.Hours() / 24)
		switch {
		case days <= 1:
			params.Set("df", "d")
		case days <= 7:
			params.Set("df", "w")
		case days <= 30:
			params.Set("df", "m")
		default:
			params.Set("df", "y")
		}
	}

	params.Set("q", SiteQuery(query, config.Site))
	params.Set("kl", "us-en")

	return d.baseURL + "?" + params.Encode()
}

// parseResults extracts results from the DuckDuckGo HTML result page
func parseResults(doc *goquery.Document, maxResults int) []Result {
	var results []Result

	doc.Find(".result").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if maxResults > 0 && len(results) >= maxResults {
			return false
		}

		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}
		finalURL := extractFinalURL(href)
		if finalURL == "" {
			return true
		}

		results = append(results, Result{
			URL:     finalURL,
			Title:   strings.TrimSpace(link.Text()),
			Snippet: strings.TrimSpace(s.Find(".result__snippet").First().Text()),
			Domain:  extractDomain(finalURL),
			Source:  "DuckDuckGo",
			Rank:    len(results) + 1,
		})
		return true
	})

	return results
}

// extractFinalURL extracts the actual URL from DuckDuckGo's redirect URL
func extractFinalURL(redirectURL string) string {
	// DuckDuckGo uses URLs like: //duckduckgo.com/l/?uddg=https%3A//example.com/...&rut=...
	if strings.Contains(redirectURL, "/l/?") {
		parsed, err := url.Parse(redirectURL)
		if err != nil {
			return ""
		}
		// Query() already unescapes the value
		return parsed.Query().Get("uddg")
	}
	if strings.HasPrefix(redirectURL, "http://") || strings.HasPrefix(redirectURL, "https://") {
		return redirectURL
	}
	return ""
}
