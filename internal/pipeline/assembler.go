package pipeline

import (
	"context"

	"diderot/internal/core"
	"diderot/internal/perspectives"
	"diderot/internal/summarize"
)

// Assembler merges a headline's stage outputs into a HeadlineReport.
type Assembler struct {
	summarizer NeutralSummarizer
	threshold  int
}

// NewAssembler creates an Assembler. threshold applies when no solid facts were
// determined and facts are cross-referenced from the research instead.
func NewAssembler(summarizer NeutralSummarizer, threshold int) *Assembler {
	if threshold < 1 {
		threshold = perspectives.DefaultThreshold
	}
	return &Assembler{summarizer: summarizer, threshold: threshold}
}

// AssembleInput holds the stage outputs for one headline.
type AssembleInput struct {
	Headline     core.Headline
	Sources      []core.SourcedArticle
	Research     core.ResearchEntry
	SolidFacts   []string
	Perspectives []core.Perspective
	Date         string
	Force        bool
}

// Assembly is an assembled report plus how its summary was produced.
type Assembly struct {
	Report core.HeadlineReport
	// Generated is true when the summary needed a generative call.
	Generated bool
	// Err is the summary failure, if any. Report is complete regardless.
	Err error
}

// Assemble builds the report. Sources are deduplicated by URL, perspectives are
// ordered left to right and dropped for categories without perspective analysis.
// A failed summary becomes the fixed placeholder.
func (a *Assembler) Assemble(ctx context.Context, in AssembleInput) Assembly {
	report := core.HeadlineReport{
		Title:        in.Headline.Title,
		Category:     in.Headline.Category,
		Sources:      core.DedupByURL(in.Sources),
		Perspectives: []core.Perspective{},
	}
	if in.Headline.Category.NeedsPerspectives() && len(in.Perspectives) > 0 {
		report.Perspectives = core.SortPerspectives(in.Perspectives)
	}

	facts := in.SolidFacts
	if len(facts) == 0 {
		facts = perspectives.Corroborate(in.Research, a.threshold)
	}

	summary, err := a.summarizer.Summarize(ctx, summarize.Input{
		Headline:   in.Headline,
		Sources:    report.Sources,
		SolidFacts: facts,
		Date:       in.Date,
		Force:      in.Force,
	})
	if err != nil {
		report.NeutralSummary = core.PlaceholderSummary(in.Headline.Title)
		return Assembly{Report: report, Generated: true, Err: err}
	}

	report.NeutralSummary = summary.Text
	return Assembly{Report: report, Generated: !summary.Cached}
}
