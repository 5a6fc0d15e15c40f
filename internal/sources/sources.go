// Package sources discovers outlet coverage of a headline across the political spectrum.
package sources

import (
	"context"
	"fmt"
	"strings"

	"diderot/internal/core"
	"diderot/internal/extract"
	"diderot/internal/llm"
	"diderot/internal/logger"
	"diderot/internal/search"
)

// Default article bounds per headline.
const (
	DefaultMinArticles = 3
	DefaultMaxArticles = 6
)

// ContentFetcher extracts the body text of an article.
type ContentFetcher interface {
	Extract(ctx context.Context, url string) (string, error)
}

// Finder discovers articles through search and text generation, falling back to the roster.
type Finder struct {
	gen         llm.TextGenerator
	search      search.Provider
	fetcher     ContentFetcher
	minArticles int
	maxArticles int
}

// Option configures a Finder
type Option func(*Finder)

// WithSearch enables per-outlet web search
func WithSearch(p search.Provider) Option {
	return func(f *Finder) { f.search = p }
}

// WithContent enables article body extraction
func WithContent(c ContentFetcher) Option {
	return func(f *Finder) { f.fetcher = c }
}

// WithBounds sets the article count bounds
func WithBounds(minArticles, maxArticles int) Option {
	return func(f *Finder) {
		if minArticles > 0 {
			f.minArticles = minArticles
		}
		if maxArticles >= f.minArticles {
			f.maxArticles = maxArticles
		}
	}
}

// NewFinder creates a Finder. gen may be nil to skip generated discovery.
func NewFinder(gen llm.TextGenerator, opts ...Option) *Finder {
	f := &Finder{
		gen:         gen,
		minArticles: DefaultMinArticles,
		maxArticles: DefaultMaxArticles,
	}
	for _, opt := range opts {
		opt(f)
	}
	// every bucket needs room for one article
	if f.maxArticles < len(core.Positions) {
		f.maxArticles = len(core.Positions)
	}
	if f.minArticles > f.maxArticles {
		f.minArticles = f.maxArticles
	}
	return f
}

type rawArticle struct {
	Source      string `json:"source"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Perspective string `json:"perspective"`
}

// FindSources returns between the configured minimum and maximum articles, with at
// least one per bucket. The returned articles are always usable. A non-nil error
// (wrapping core.ErrSourceUnavailable) reports that nothing was discovered and the
// articles are roster placeholders.
func (f *Finder) FindSources(ctx context.Context, h core.Headline) ([]core.SourcedArticle, error) {
	var discovered []core.SourcedArticle

	if f.search != nil {
		discovered = append(discovered, f.searchOutlets(ctx, h.Title)...)
	}

	if f.gen != nil && len(discovered) < f.maxArticles {
		generated, err := f.generate(ctx, h.Title)
		if err != nil {
			logger.Warn("Generated article discovery failed", "stage", "sources", "headline", h.Title, "error", err.Error())
		}
		discovered = append(discovered, generated...)
	}

	discovered = dedup(discovered)
	articles := Balance(discovered, h.Title, f.minArticles, f.maxArticles)

	if f.fetcher != nil {
		f.enrich(ctx, articles)
	}

	if len(discovered) == 0 {
		return articles, fmt.Errorf("%w: no articles discovered for %q", core.ErrSourceUnavailable, h.Title)
	}
	return articles, nil
}

// searchOutlets queries each roster outlet for the headline, stopping at the maximum.
func (f *Finder) searchOutlets(ctx context.Context, headline string) []core.SourcedArticle {
	var out []core.SourcedArticle
	for _, o := range interleaved() {
		if len(out) >= f.maxArticles || ctx.Err() != nil {
			break
		}
		results, err := f.search.Search(ctx, headline, search.Config{MaxResults: 1, Site: o.Domain, Language: "en"})
		if err != nil {
			logger.Debug("Outlet search failed", "outlet", o.Name, "provider", f.search.GetName(), "error", err.Error())
			continue
		}
		for _, r := range results {
			if r.URL == "" {
				continue
			}
			title := r.Title
			if title == "" {
				title = headline
			}
			out = append(out, core.SourcedArticle{Source: o.Name, Title: title, URL: r.URL, Perspective: o.Position})
			break
		}
	}
	return out
}

func (f *Finder) generate(ctx context.Context, headline string) ([]core.SourcedArticle, error) {
	req := llm.Prompt("sources", buildFindPrompt(f.minArticles, f.maxArticles), "Headline: "+headline, 0.5, 800)
	text, err := f.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	var raw []rawArticle
	if err := extract.Decode(text, &raw); err != nil {
		return nil, err
	}

	out := make([]core.SourcedArticle, 0, len(raw))
	for _, r := range raw {
		a, ok := normalizeArticle(r)
		if !ok {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

// normalizeArticle validates a generated article. Roster outlets get their static
// perspective; other outlets keep a valid generated label or are dropped.
func normalizeArticle(r rawArticle) (core.SourcedArticle, bool) {
	source := strings.TrimSpace(r.Source)
	if source == "" {
		return core.SourcedArticle{}, false
	}

	a := core.SourcedArticle{
		Source: source,
		Title:  strings.TrimSpace(r.Title),
		URL:    strings.TrimSpace(r.URL),
	}

	if o, ok := LookupOutlet(source); ok {
		a.Source = o.Name
		a.Perspective = o.Position
	} else if p, ok := ParsePerspective(r.Perspective); ok {
		a.Perspective = p
	} else {
		return core.SourcedArticle{}, false
	}
	return a, true
}

// ParsePerspective accepts "left", "center" or "right" in any case.
func ParsePerspective(label string) (core.Position, bool) {
	return core.ParsePosition(label)
}

// dedup drops repeated (source, url) pairs and repeated URLs.
func dedup(articles []core.SourcedArticle) []core.SourcedArticle {
	seen := make(map[string]bool, len(articles))
	out := make([]core.SourcedArticle, 0, len(articles))
	for _, a := range articles {
		key := strings.ToLower(a.Source) + "|" + a.URL
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return core.DedupByURL(out)
}

// Balance selects up to maxArticles articles round-robin across buckets, reserving a
// slot for a placeholder in every empty bucket, then pads to minArticles from the
// roster.
func Balance(articles []core.SourcedArticle, headline string, minArticles, maxArticles int) []core.SourcedArticle {
	buckets := make(map[core.Position][]core.SourcedArticle)
	for _, a := range articles {
		buckets[a.Perspective] = append(buckets[a.Perspective], a)
	}

	missing := 0
	for _, p := range core.Positions {
		if len(buckets[p]) == 0 {
			missing++
		}
	}

	limit := maxArticles - missing
	out := make([]core.SourcedArticle, 0, maxArticles)
	for i := 0; len(out) < limit; i++ {
		added := false
		for _, p := range core.Positions {
			if i < len(buckets[p]) && len(out) < limit {
				out = append(out, buckets[p][i])
				added = true
			}
		}
		if !added {
			break
		}
	}

	for _, p := range core.Positions {
		if len(buckets[p]) == 0 {
			out = append(out, Placeholder(Canonical(p), headline))
		}
	}

	if len(out) < minArticles {
		present := make(map[string]bool, len(out))
		for _, a := range out {
			present[a.Source] = true
		}
		for _, o := range interleaved() {
			if len(out) >= minArticles {
				break
			}
			if present[o.Name] {
				continue
			}
			out = append(out, Placeholder(o, headline))
			present[o.Name] = true
		}
	}

	return out
}

// enrich fills Content for discovered articles. Placeholders are skipped.
func (f *Finder) enrich(ctx context.Context, articles []core.SourcedArticle) {
	for i := range articles {
		if ctx.Err() != nil {
			return
		}
		if articles[i].Content != "" || isPlaceholderURL(articles[i].URL) {
			continue
		}
		content, err := f.fetcher.Extract(ctx, articles[i].URL)
		if err != nil {
			logger.Debug("Article content extraction failed", "url", articles[i].URL, "error", err.Error())
			continue
		}
		articles[i].Content = content
	}
}

func isPlaceholderURL(u string) bool {
	for _, o := range Roster {
		if u == "https://"+o.Domain+"/article" {
			return true
		}
	}
	return false
}
