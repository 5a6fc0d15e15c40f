// Package fetch downloads article pages and extracts their readable text.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"diderot/internal/logger"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// DefaultContentLimit is the maximum number of characters kept from an article body.
const DefaultContentLimit = 2000

const maxPageBytes = 5 << 20

var blankLines = regexp.MustCompile(`\n\s*\n+`)

// Fetcher downloads pages and extracts article text.
type Fetcher struct {
	client    *http.Client
	userAgent string
	limit     int
}

// NewFetcher creates a fetcher. A non-positive limit uses DefaultContentLimit.
func NewFetcher(timeout time.Duration, userAgent string, limit int) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if limit <= 0 {
		limit = DefaultContentLimit
	}
	if userAgent == "" {
		userAgent = "Diderot/1.0"
	}
	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		limit:     limit,
	}
}

// Extract returns the readable text of the page at rawURL, truncated to the limit.
// Readability is tried first; pages it cannot handle fall back to selector-based
// extraction.
func (f *Fetcher) Extract(ctx context.Context, rawURL string) (string, error) {
	pageURL, err := url.ParseRequestURI(rawURL)
	if err != nil || (pageURL.Scheme != "http" && pageURL.Scheme != "https") {
		return "", fmt.Errorf("invalid article URL %q", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch URL %s: %w", rawURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to fetch URL %s: status code %d", rawURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read response body from %s: %w", rawURL, err)
	}

	text := ""
	if article, err := readability.FromReader(bytes.NewReader(body), pageURL); err == nil {
		text = normalize(article.TextContent)
	} else {
		logger.Debug("Readability extraction failed, using selectors", "url", rawURL, "error", err.Error())
	}

	if text == "" {
		text, err = extractWithSelectors(body)
		if err != nil {
			return "", err
		}
	}

	return Truncate(text, f.limit), nil
}

// extractWithSelectors pulls paragraph text out of common article containers.
func extractWithSelectors(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find("script, style, nav, footer, header, aside, form, iframe, noscript, .sidebar, #sidebar, .ad, .advertisement, .popup, .modal, .cookie-banner").Remove()

	mainContentSelectors := []string{
		"article", "main", ".main-content", ".entry-content", ".post-content", ".post-body", ".article-body",
		"[role='main']",
		".content", "#content",
	}

	var sb strings.Builder
	collect := func(s *goquery.Selection) {
		s.Find("p, h1, h2, h3, h4, h5, h6, li, blockquote, pre").Each(func(_ int, item *goquery.Selection) {
			if t := strings.TrimSpace(item.Text()); t != "" {
				sb.WriteString(t)
				sb.WriteString("\n\n")
			}
		})
	}

	for _, selector := range mainContentSelectors {
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) { collect(s) })
		if sb.Len() > 0 {
			break
		}
	}
	if sb.Len() == 0 {
		collect(doc.Find("body"))
	}

	return normalize(sb.String()), nil
}

func normalize(text string) string {
	return strings.TrimSpace(blankLines.ReplaceAllString(text, "\n\n"))
}

// Truncate cuts text to at most limit characters without splitting a rune.
func Truncate(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
