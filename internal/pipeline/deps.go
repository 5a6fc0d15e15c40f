package pipeline

import (
	"context"
	"fmt"

	"diderot/internal/config"
	"diderot/internal/core"
	"diderot/internal/feeds"
	"diderot/internal/fetch"
	"diderot/internal/headlines"
	"diderot/internal/llm"
	"diderot/internal/logger"
	"diderot/internal/metrics"
	"diderot/internal/perspectives"
	"diderot/internal/research"
	"diderot/internal/search"
	"diderot/internal/sources"
	"diderot/internal/store"
	"diderot/internal/summarize"
)

// NewDeps wires the production stage implementations from configuration. cache and
// m may be nil.
func NewDeps(ctx context.Context, cfg *config.Config, gen llm.TextGenerator, cache *store.Store, m *metrics.Metrics) (Deps, error) {
	if gen == nil {
		return Deps{}, fmt.Errorf("%w: text generator is required", core.ErrConfiguration)
	}

	var fetcher headlines.FeedFetcher
	if len(cfg.Feeds.URLs) > 0 {
		fetcher = feeds.NewFeedManager(cfg.FeedTimeout(),
			feeds.WithUserAgent(cfg.Feeds.UserAgent),
			feeds.WithMaxItems(cfg.Feeds.MaxItemsPerFeed),
			feeds.WithMetrics(m),
		)
	}

	finderOpts := []sources.Option{
		sources.WithBounds(cfg.Pipeline.MinArticles, cfg.Pipeline.MaxArticles),
	}

	provider, err := search.NewProvider(ctx, cfg.Search, cfg.SearchTimeout())
	if err != nil {
		return Deps{}, fmt.Errorf("failed to create search provider: %w", err)
	}
	if provider != nil {
		logger.Info("Outlet search enabled", "provider", provider.GetName())
		finderOpts = append(finderOpts, sources.WithSearch(provider))
	}

	if cfg.Pipeline.FetchContent {
		var extractor fetch.Extractor = fetch.NewFetcher(cfg.FeedTimeout(), cfg.Feeds.UserAgent, cfg.Pipeline.ContentLimit)
		if cache != nil {
			extractor = fetch.NewCachedExtractor(extractor, cache, cfg.ArticleTTL())
		}
		finderOpts = append(finderOpts, sources.WithContent(extractor))
	}

	summaryOpts := summarize.DefaultSummarizerOptions()
	summaryOpts.CacheTTL = cfg.SummaryTTL()

	var topics summarize.TopicCache
	if cache != nil {
		topics = cache
	}

	return Deps{
		Headlines:    headlines.NewSource(gen, fetcher, cfg.Feeds.URLs, cfg.Pipeline.MaxHeadlines),
		Sources:      sources.NewFinder(gen, finderOpts...),
		Research:     research.NewCompiler(gen),
		Perspectives: perspectives.NewSynthesizer(gen, perspectives.WithThreshold(cfg.Pipeline.CorroborationThreshold)),
		Summarizer:   summarize.NewSummarizer(gen, topics, summaryOpts),
		Metrics:      m,
	}, nil
}

// ConfigFrom extracts the pipeline configuration.
func ConfigFrom(cfg *config.Config) *Config {
	return &Config{
		MaxHeadlines:           cfg.Pipeline.MaxHeadlines,
		CorroborationThreshold: cfg.Pipeline.CorroborationThreshold,
	}
}
