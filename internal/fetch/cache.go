package fetch

import (
	"context"
	"time"

	"diderot/internal/logger"
)

// Extractor returns the readable text of an article.
type Extractor interface {
	Extract(ctx context.Context, url string) (string, error)
}

// ArticleCache persists extracted article bodies.
type ArticleCache interface {
	GetCachedArticle(url string, maxAge time.Duration) (string, bool, error)
	CacheArticle(url, content string) error
}

// CachedExtractor serves article text from a cache before downloading it.
type CachedExtractor struct {
	next   Extractor
	cache  ArticleCache
	maxAge time.Duration
}

// NewCachedExtractor wraps next with cache lookups valid for maxAge.
func NewCachedExtractor(next Extractor, cache ArticleCache, maxAge time.Duration) *CachedExtractor {
	return &CachedExtractor{next: next, cache: cache, maxAge: maxAge}
}

// Extract returns cached text when fresh, otherwise extracts and caches it. Cache
// errors are logged and never fail the extraction.
func (c *CachedExtractor) Extract(ctx context.Context, url string) (string, error) {
	if content, ok, err := c.cache.GetCachedArticle(url, c.maxAge); err != nil {
		logger.Warn("Article cache lookup failed", "url", url, "error", err.Error())
	} else if ok {
		return content, nil
	}

	content, err := c.next.Extract(ctx, url)
	if err != nil {
		return "", err
	}
	if err := c.cache.CacheArticle(url, content); err != nil {
		logger.Warn("Failed to cache article", "url", url, "error", err.Error())
	}
	return content, nil
}
