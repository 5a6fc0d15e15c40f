// Package summarize writes the neutral summary of a headline.
package summarize

import (
	"context"
	"fmt"
	"time"

	"diderot/internal/core"
	"diderot/internal/llm"
	"diderot/internal/logger"
	"diderot/internal/store"
)

// TopicCache stores generated summaries between runs.
type TopicCache interface {
	GetCachedTopic(key string, maxAge time.Duration) (*store.Topic, error)
	CacheTopic(key, text string) error
}

// Summarizer handles neutral summaries using an LLM
type Summarizer struct {
	gen     llm.TextGenerator
	cache   TopicCache
	options SummarizerOptions
}

// SummarizerOptions configures the summarizer behavior
type SummarizerOptions struct {
	Temperature  float64
	MaxTokens    int
	MaxSentences int
	// CacheTTL bounds how old a cached summary may be before it is regenerated.
	CacheTTL time.Duration
}

// DefaultSummarizerOptions returns sensible defaults
func DefaultSummarizerOptions() SummarizerOptions {
	return SummarizerOptions{
		Temperature:  0.3,
		MaxTokens:    300,
		MaxSentences: 3,
		CacheTTL:     168 * time.Hour,
	}
}

// NewSummarizer creates a summarizer. cache may be nil.
func NewSummarizer(gen llm.TextGenerator, cache TopicCache, options SummarizerOptions) *Summarizer {
	return &Summarizer{
		gen:     gen,
		cache:   cache,
		options: options,
	}
}

// Input is what a neutral summary may draw on.
type Input struct {
	Headline   core.Headline
	Sources    []core.SourcedArticle
	SolidFacts []string
	// Date keys the cached summary. Empty disables the cache.
	Date string
	// Force skips the cache lookup. The new summary still replaces the cached one.
	Force bool
}

// Summary is a neutral summary and where it came from.
type Summary struct {
	Text   string
	Cached bool
}

// Summarize returns a 2-3 sentence neutral summary. A cached summary for the same
// headline and date is reused unless in.Force is set.
func (s *Summarizer) Summarize(ctx context.Context, in Input) (Summary, error) {
	key := ""
	if s.cache != nil && in.Date != "" {
		key = store.TopicKey(in.Headline.Title, in.Date)
	}

	if key != "" && !in.Force {
		topic, err := s.cache.GetCachedTopic(key, s.options.CacheTTL)
		if err != nil {
			logger.Warn("Summary cache lookup failed", "key", key, "error", err.Error())
		} else if topic != nil && topic.Text != "" {
			logger.Debug("Using cached summary", "key", key)
			return Summary{Text: topic.Text, Cached: true}, nil
		}
	}

	req := llm.Prompt("summary", neutralSystemPrompt,
		BuildSummaryPrompt(in.Headline.Title, in.Sources, in.SolidFacts),
		s.options.Temperature, s.options.MaxTokens)

	response, err := s.gen.Generate(ctx, req)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to generate summary: %w", err)
	}

	text := LimitSentences(ParseSummaryResponse(response), s.options.MaxSentences)
	if text == "" {
		return Summary{}, fmt.Errorf("%w: empty summary", core.ErrMalformedGeneration)
	}

	if key != "" {
		if err := s.cache.CacheTopic(key, text); err != nil {
			logger.Warn("Failed to cache summary", "key", key, "error", err.Error())
		}
	}

	return Summary{Text: text}, nil
}
