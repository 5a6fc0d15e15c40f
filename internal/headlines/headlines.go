// Package headlines produces the fixed-size list of headlines analysed each day.
package headlines

import (
	"context"
	"fmt"
	"strings"

	"diderot/internal/core"
	"diderot/internal/extract"
	"diderot/internal/feeds"
	"diderot/internal/llm"
	"diderot/internal/logger"
)

// DefaultCount is the number of headlines in a daily report.
const DefaultCount = 10

// FeedFetcher retrieves raw feed entries.
type FeedFetcher interface {
	FetchAll(ctx context.Context, feedURLs []string) ([]feeds.Entry, error)
}

// Source selects headlines from feeds or, without feeds, asks the generator for them.
type Source struct {
	gen      llm.TextGenerator
	feeds    FeedFetcher
	feedURLs []string
	count    int
}

// NewSource creates a headline source. fetcher may be nil to skip feeds.
func NewSource(gen llm.TextGenerator, fetcher FeedFetcher, feedURLs []string, count int) *Source {
	if count <= 0 {
		count = DefaultCount
	}
	return &Source{gen: gen, feeds: fetcher, feedURLs: feedURLs, count: count}
}

type rawHeadline struct {
	Title    string `json:"title"`
	Category string `json:"category"`
}

// FetchHeadlines always returns exactly s.count headlines. Short results are padded
// from Fallback in order and long ones truncated; a failed retrieval yields the
// fallback list itself.
func (s *Source) FetchHeadlines(ctx context.Context) []core.Headline {
	primary, err := s.primary(ctx)
	if err != nil {
		logger.Warn("Headline retrieval failed, using fallback headlines", "stage", "headlines", "error", err.Error())
		return Pad(nil, s.count)
	}
	if len(primary) < s.count {
		logger.Info("Padding headlines from fallback list", "retrieved", len(primary), "wanted", s.count)
	}
	return Pad(primary, s.count)
}

func (s *Source) primary(ctx context.Context) ([]core.Headline, error) {
	var entries []feeds.Entry
	if s.feeds != nil && len(s.feedURLs) > 0 {
		var err error
		entries, err = s.feeds.FetchAll(ctx, s.feedURLs)
		if err != nil {
			logger.Warn("Headline feeds unavailable", "error", err.Error())
		}
	}

	if len(entries) > 0 {
		selected, err := s.selectFromFeed(ctx, entries)
		if err == nil && len(selected) > 0 {
			return selected, nil
		}
		if err != nil {
			logger.Warn("Headline selection failed, classifying feed titles locally", "stage", "headlines", "error", err.Error())
		}
		return fromEntries(entries, s.count), nil
	}

	return s.generate(ctx)
}

func (s *Source) selectFromFeed(ctx context.Context, entries []feeds.Entry) ([]core.Headline, error) {
	req := llm.Prompt("headlines", selectSystemPrompt, buildSelectPrompt(entries, s.count), 0.3, 1000)
	text, err := s.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return parse(text)
}

func (s *Source) generate(ctx context.Context) ([]core.Headline, error) {
	req := llm.Prompt("headlines", fmt.Sprintf(generateSystemPrompt, s.count), "", 0.7, 1000)
	text, err := s.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return parse(text)
}

// parse validates generated headlines. Entries without a title are dropped and
// unknown categories become "other".
func parse(text string) ([]core.Headline, error) {
	var raw []rawHeadline
	if err := extract.Decode(text, &raw); err != nil {
		return nil, err
	}

	out := make([]core.Headline, 0, len(raw))
	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		out = append(out, core.Headline{Title: title, Category: core.NormalizeCategory(r.Category)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no usable headlines", core.ErrMalformedGeneration)
	}
	return out, nil
}

// fromEntries turns feed entries into headlines with heuristically inferred categories.
func fromEntries(entries []feeds.Entry, count int) []core.Headline {
	out := make([]core.Headline, 0, count)
	for _, e := range entries {
		title := CleanTitle(e.Title, e.Source)
		if title == "" {
			continue
		}
		out = append(out, core.Headline{Title: title, Category: InferCategory(title)})
		if len(out) == count {
			break
		}
	}
	return out
}

// CleanTitle strips the " - Outlet" suffix aggregators append to titles.
func CleanTitle(title, source string) string {
	title = strings.TrimSpace(title)
	if source != "" && source != feeds.UnknownSource {
		title = strings.TrimSpace(strings.TrimSuffix(title, " - "+source))
	}
	return title
}

// Pad returns exactly count headlines: duplicates by title are removed, then the list
// is filled from Fallback in order and truncated.
func Pad(primary []core.Headline, count int) []core.Headline {
	out := make([]core.Headline, 0, count)
	seen := make(map[string]bool, count)

	add := func(h core.Headline) {
		key := strings.ToLower(h.Title)
		if len(out) >= count || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, h)
	}

	for _, h := range primary {
		add(h)
	}
	for _, h := range Fallback {
		add(h)
	}
	// count exceeds the fallback list: repeat it rather than return short
	for i := 0; len(out) < count; i++ {
		out = append(out, Fallback[i%len(Fallback)])
	}
	return out
}

var (
	politicsKeywords = []string{
		"senate", "congress", "president", "election", "vote", "bill", "supreme court",
		"governor", "white house", "parliament", "minister", "democrat", "republican",
		"campaign", "legislat", "policy", "federal", "administration", "lawmaker", "impeach",
	}
	worldKeywords = []string{
		" un ", "united nations", "nato", "global", "international", " war ", "summit",
		"treaty", "embassy", "ceasefire", "refugee", "foreign", "border", "sanction",
		"china", "russia", "ukraine", "europe", "middle east", "africa", "india",
	}
)

// InferCategory classifies a title by keyword when no generated category is available.
func InferCategory(title string) core.Category {
	lower := " " + strings.ToLower(title) + " "
	for _, kw := range politicsKeywords {
		if strings.Contains(lower, kw) {
			return core.CategoryPolitics
		}
	}
	for _, kw := range worldKeywords {
		if strings.Contains(lower, kw) {
			return core.CategoryWorld
		}
	}
	return core.CategoryOther
}
