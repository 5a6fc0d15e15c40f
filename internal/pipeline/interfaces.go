package pipeline

import (
	"context"

	"diderot/internal/core"
	"diderot/internal/perspectives"
	"diderot/internal/summarize"
)

// HeadlineSource produces the day's headlines
type HeadlineSource interface {
	// FetchHeadlines never fails; short results are padded from a fixed list
	FetchHeadlines(ctx context.Context) []core.Headline
}

// SourceFinder discovers coverage of a headline across the spectrum
type SourceFinder interface {
	// FindSources always returns usable articles; the error reports that they are
	// roster placeholders
	FindSources(ctx context.Context, h core.Headline) ([]core.SourcedArticle, error)
}

// ResearchCompiler splits each source's coverage into facts and opinions
type ResearchCompiler interface {
	Compile(ctx context.Context, articles []core.SourcedArticle) (core.ResearchEntry, error)
}

// PerspectiveSynthesizer runs determine, find flaws and consolidate
type PerspectiveSynthesizer interface {
	Synthesize(ctx context.Context, h core.Headline, articles []core.SourcedArticle, entry core.ResearchEntry) perspectives.Result
}

// NeutralSummarizer writes the neutral summary of a headline
type NeutralSummarizer interface {
	Summarize(ctx context.Context, in summarize.Input) (summarize.Summary, error)
}
