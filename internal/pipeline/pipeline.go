// Package pipeline orchestrates daily report generation.
package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"diderot/internal/core"
	"diderot/internal/headlines"
	"diderot/internal/llm"
	"diderot/internal/logger"
	"diderot/internal/metrics"

	"github.com/google/uuid"
)

// Pipeline runs every headline through discovery, research, synthesis and assembly.
type Pipeline struct {
	headlines    HeadlineSource
	sources      SourceFinder
	research     ResearchCompiler
	perspectives PerspectiveSynthesizer
	assembler    *Assembler
	metrics      *metrics.Metrics

	config *Config
}

// Config holds pipeline configuration
type Config struct {
	MaxHeadlines           int
	CorroborationThreshold int
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() *Config {
	return &Config{
		MaxHeadlines:           headlines.DefaultCount,
		CorroborationThreshold: 2,
	}
}

// Deps are the stage implementations a Pipeline runs. Metrics may be nil.
type Deps struct {
	Headlines    HeadlineSource
	Sources      SourceFinder
	Research     ResearchCompiler
	Perspectives PerspectiveSynthesizer
	Summarizer   NeutralSummarizer
	Metrics      *metrics.Metrics
}

// NewPipeline creates a new pipeline with all dependencies
func NewPipeline(deps Deps, config *Config) *Pipeline {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxHeadlines <= 0 {
		config.MaxHeadlines = headlines.DefaultCount
	}

	return &Pipeline{
		headlines:    deps.Headlines,
		sources:      deps.Sources,
		research:     deps.Research,
		perspectives: deps.Perspectives,
		assembler:    NewAssembler(deps.Summarizer, config.CorroborationThreshold),
		metrics:      deps.Metrics,
		config:       config,
	}
}

// Options configures a single report run
type Options struct {
	// Date keys cached summaries. Defaults to today.
	Date string
	// Force regenerates summaries even when cached ones exist.
	Force bool
}

// GenerateDailyReport produces a report with exactly Config.MaxHeadlines entries.
// Headline failures yield degraded entries; the only error is cancellation of ctx,
// in which case no report is returned.
func (p *Pipeline) GenerateDailyReport(ctx context.Context, opts Options) (*core.DailyReport, error) {
	start := time.Now()
	if opts.Date == "" {
		opts.Date = core.Today()
	}
	runID := uuid.NewString()

	logger.Info("Generating daily report", "run_id", runID, "date", opts.Date, "force", opts.Force)

	hs := headlines.Pad(p.headlines.FetchHeadlines(ctx), p.config.MaxHeadlines)

	report := &core.DailyReport{
		RunID:     runID,
		Headlines: make([]core.HeadlineReport, 0, len(hs)),
	}

	degraded := 0
	for i, h := range hs {
		if err := ctx.Err(); err != nil {
			p.metrics.ReportRun(time.Since(start), err)
			return nil, fmt.Errorf("report generation cancelled: %w", err)
		}

		logger.Info("Processing headline", "run_id", runID, "index", i+1, "total", len(hs), "title", h.Title, "category", h.Category)
		hr, ok := p.processHeadline(ctx, h, opts)
		if !ok {
			degraded++
		}
		p.metrics.HeadlineProcessed(!ok)
		report.Headlines = append(report.Headlines, hr)
	}

	report.TotalHeadlines = len(report.Headlines)
	report.GeneratedAt = time.Now()
	p.metrics.ReportRun(time.Since(start), nil)

	logger.Info("Daily report generated", "run_id", runID, "headlines", report.TotalHeadlines, "degraded", degraded, "duration", time.Since(start).String())
	return report, nil
}

// stageTally counts generative calls and the ones that failed for reasons other
// than malformed output.
type stageTally struct {
	attempted int
	failed    int
}

func (t *stageTally) record(err error) {
	t.attempted++
	if llm.IsUnavailable(err) {
		t.failed++
	}
}

// allFailed reports whether every attempted call failed outright.
func (t *stageTally) allFailed() bool {
	return t.attempted > 0 && t.failed == t.attempted
}

// processHeadline runs one headline. ok is false when the entry is degraded: a
// stage panicked or every generative call failed.
func (p *Pipeline) processHeadline(ctx context.Context, h core.Headline, opts Options) (report core.HeadlineReport, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Headline processing panicked", fmt.Errorf("%w: %v", core.ErrStageFailure, r), "title", h.Title, "stack", string(debug.Stack()))
			report, ok = Degraded(h), false
		}
	}()

	var tally stageTally

	articles, err := p.sources.FindSources(ctx, h)
	tally.record(err)

	entry := core.ResearchEntry{}
	if len(articles) > 0 {
		entry, err = p.research.Compile(ctx, articles)
		tally.record(err)
	}

	var (
		facts []string
		named []core.Perspective
	)
	if h.Category.NeedsPerspectives() {
		res := p.perspectives.Synthesize(ctx, h, articles, entry)
		tally.attempted += res.Attempted
		for _, e := range res.Errors {
			if llm.IsUnavailable(e) {
				tally.failed++
			}
		}
		facts = res.Determination.SolidFacts
		named = res.Perspectives
	}

	assembly := p.assembler.Assemble(ctx, AssembleInput{
		Headline:     h,
		Sources:      articles,
		Research:     entry,
		SolidFacts:   facts,
		Perspectives: named,
		Date:         opts.Date,
		Force:        opts.Force,
	})
	if assembly.Generated {
		tally.record(assembly.Err)
	}
	if assembly.Err != nil {
		logger.Warn("Neutral summary unavailable", "stage", "summary", "headline", h.Title, "error", assembly.Err.Error())
	}

	if tally.allFailed() {
		logger.Warn("All generative stages failed, emitting degraded entry", "headline", h.Title, "calls", tally.attempted)
		return Degraded(h), false
	}
	return assembly.Report, true
}

// Degraded returns the entry used when a headline could not be analysed.
func Degraded(h core.Headline) core.HeadlineReport {
	return core.HeadlineReport{
		Title:          h.Title,
		Category:       h.Category,
		Sources:        []core.SourcedArticle{},
		NeutralSummary: core.PlaceholderSummary(h.Title),
		Perspectives:   []core.Perspective{},
	}
}
