// Package feeds provides RSS/Atom headline feed parsing
package feeds

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"diderot/internal/core"
	"diderot/internal/logger"
	"diderot/internal/metrics"

	"github.com/google/uuid"
)

// UnknownSource is used for entries whose feed does not name an outlet.
const UnknownSource = "Unknown"

const maxFeedBytes = 5 << 20

// RSS represents an RSS feed structure
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Channel Channel  `xml:"channel"`
}

// Atom represents an Atom feed structure
type Atom struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Link    []AtomLink  `xml:"link"`
	Entries []AtomEntry `xml:"entry"`
}

// Channel represents an RSS channel
type Channel struct {
	Title       string    `xml:"title"`
	Description string    `xml:"description"`
	Link        string    `xml:"link"`
	Items       []RSSItem `xml:"item"`
}

// RSSItem represents an RSS item. Google News names the outlet in <source>.
type RSSItem struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	PubDate     string    `xml:"pubDate"`
	GUID        string    `xml:"guid"`
	Source      RSSSource `xml:"source"`
}

// RSSSource is the <source url="...">Name</source> element
type RSSSource struct {
	URL  string `xml:"url,attr"`
	Name string `xml:",chardata"`
}

// AtomLink represents an Atom link element
type AtomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

// AtomEntry represents an Atom entry
type AtomEntry struct {
	Title     string     `xml:"title"`
	Link      []AtomLink `xml:"link"`
	Summary   string     `xml:"summary"`
	Published string     `xml:"published"`
	Updated   string     `xml:"updated"`
	ID        string     `xml:"id"`
	Author    struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

// Entry is one validated feed item.
type Entry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Published time.Time `json:"published"`
	Source    string    `json:"source"`
}

// FeedManager fetches and parses headline feeds
type FeedManager struct {
	client    *http.Client
	userAgent string
	maxItems  int
	metrics   *metrics.Metrics
}

// Option configures a FeedManager
type Option func(*FeedManager)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(fm *FeedManager) { fm.client = c }
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(fm *FeedManager) {
		if ua != "" {
			fm.userAgent = ua
		}
	}
}

// WithMaxItems caps the entries kept per feed. Zero keeps all.
func WithMaxItems(n int) Option {
	return func(fm *FeedManager) { fm.maxItems = n }
}

// WithMetrics records fetch outcomes
func WithMetrics(m *metrics.Metrics) Option {
	return func(fm *FeedManager) { fm.metrics = m }
}

// NewFeedManager creates a new feed manager
func NewFeedManager(timeout time.Duration, opts ...Option) *FeedManager {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	fm := &FeedManager{
		client:    &http.Client{Timeout: timeout},
		userAgent: "Diderot/1.0",
	}
	for _, opt := range opts {
		opt(fm)
	}
	return fm
}

// FetchFeed fetches and parses a single RSS or Atom feed
func (fm *FeedManager) FetchFeed(ctx context.Context, feedURL string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", fm.userAgent)

	resp, err := fm.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch feed: %v", core.ErrSourceUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: feed returned status %d", core.ErrSourceUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read feed: %v", core.ErrSourceUnavailable, err)
	}

	entries, err := Parse(body)
	if err != nil {
		return nil, err
	}
	if fm.maxItems > 0 && len(entries) > fm.maxItems {
		entries = entries[:fm.maxItems]
	}
	return entries, nil
}

// FetchAll fetches every feed in order and concatenates their entries. Failing feeds
// are logged and skipped; an error is returned only when no feed could be read.
func (fm *FeedManager) FetchAll(ctx context.Context, feedURLs []string) ([]Entry, error) {
	var (
		all      []Entry
		failures int
		lastErr  error
	)
	for _, u := range feedURLs {
		entries, err := fm.FetchFeed(ctx, u)
		fm.metrics.FeedFetch(err)
		if err != nil {
			failures++
			lastErr = err
			logger.Warn("Feed fetch failed", "feed", u, "error", err.Error())
			continue
		}
		logger.Debug("Fetched feed", "feed", u, "entries", len(entries))
		all = append(all, entries...)
	}

	if len(feedURLs) > 0 && failures == len(feedURLs) {
		return nil, fmt.Errorf("%w: all %d feeds failed, last error: %v", core.ErrSourceUnavailable, failures, lastErr)
	}
	return all, nil
}

// Parse decodes an RSS or Atom document into entries.
func Parse(data []byte) ([]Entry, error) {
	var rss RSS
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&rss); err == nil && rss.XMLName.Local == "rss" {
		return parseRSS(rss), nil
	}

	var atom Atom
	if err := xml.NewDecoder(bytes.NewReader(data)).Decode(&atom); err == nil && atom.XMLName.Local == "feed" {
		return parseAtom(atom), nil
	}

	return nil, fmt.Errorf("%w: unable to parse as RSS or Atom feed", core.ErrSourceUnavailable)
}

func parseRSS(rss RSS) []Entry {
	entries := make([]Entry, 0, len(rss.Channel.Items))
	for _, item := range rss.Channel.Items {
		entries = append(entries, Entry{
			ID:        generateItemID(item.GUID, item.Link),
			Title:     strings.TrimSpace(item.Title),
			Link:      strings.TrimSpace(item.Link),
			Published: parseRSSDate(item.PubDate),
			Source:    sourceOrUnknown(item.Source.Name),
		})
	}
	return entries
}

func parseAtom(atom Atom) []Entry {
	entries := make([]Entry, 0, len(atom.Entries))
	for _, entry := range atom.Entries {
		var link string
		for _, l := range entry.Link {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}

		published := parseAtomDate(entry.Published)
		if published.IsZero() {
			published = parseAtomDate(entry.Updated)
		}

		entries = append(entries, Entry{
			ID:        generateItemID(entry.ID, link),
			Title:     strings.TrimSpace(entry.Title),
			Link:      strings.TrimSpace(link),
			Published: published,
			Source:    sourceOrUnknown(entry.Author.Name),
		})
	}
	return entries
}

func sourceOrUnknown(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return UnknownSource
	}
	return name
}

// generateItemID creates a deterministic ID for a feed item
func generateItemID(guid, link string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(guid+link)).String()
}

// parseRSSDate parses RSS date formats
func parseRSSDate(dateStr string) time.Time {
	if dateStr == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC1123,
		time.RFC1123Z,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, strings.TrimSpace(dateStr)); err == nil {
			return t.UTC()
		}
	}

	return time.Time{}
}

// parseAtomDate parses Atom date formats
func parseAtomDate(dateStr string) time.Time {
	if dateStr == "" {
		return time.Time{}
	}

	if t, err := time.Parse(time.RFC3339, strings.TrimSpace(dateStr)); err == nil {
		return t.UTC()
	}

	return parseRSSDate(dateStr)
}
