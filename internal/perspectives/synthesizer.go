// Package perspectives turns compiled research into named, ordered perspectives.
//
// Synthesis runs three generative stages (determine, find flaws, consolidate). Each
// stage validates its output and falls back to a deterministic derivation from the
// previous stage when the output is unusable, so a failing stage never aborts the
// others.
package perspectives

import (
	"context"
	"sort"

	"diderot/internal/core"
	"diderot/internal/llm"
	"diderot/internal/sources"
)

// DefaultThreshold is the number of sources that must report a fact for it to be solid.
const DefaultThreshold = 2

const (
	temperature = 0.6
	maxTokens   = 800
)

// FallbackNames name the perspectives derived without a consolidation call.
var FallbackNames = map[core.Position]string{
	core.PositionLeft:   "Progressive Reform Perspective",
	core.PositionCenter: "Centrist Pragmatic Perspective",
	core.PositionRight:  "Conservative Traditional Perspective",
}

// Synthesizer runs the perspective stages against a text generator.
type Synthesizer struct {
	gen       llm.TextGenerator
	threshold int
}

// Option configures a Synthesizer
type Option func(*Synthesizer)

// WithThreshold sets the corroboration threshold for solid facts
func WithThreshold(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.threshold = n
		}
	}
}

// NewSynthesizer creates a Synthesizer.
func NewSynthesizer(gen llm.TextGenerator, opts ...Option) *Synthesizer {
	s := &Synthesizer{gen: gen, threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the outcome of a full synthesis run.
type Result struct {
	Determination core.Determination
	Flaws         map[core.Position]core.Flaws
	Perspectives  []core.Perspective
	// Errors holds one entry per generative stage that failed, in stage order.
	Errors []error
	// Attempted counts the generative calls made.
	Attempted int
}

// Synthesize runs determine, find flaws and consolidate for a headline. Headlines
// outside world and politics get an empty result without any generative call.
func (s *Synthesizer) Synthesize(ctx context.Context, h core.Headline, articles []core.SourcedArticle, entry core.ResearchEntry) Result {
	res := Result{Perspectives: []core.Perspective{}}
	if !h.Category.NeedsPerspectives() {
		return res
	}

	// count the calls each stage actually makes; stages with nothing to analyse skip them
	run := *s
	run.gen = llm.GeneratorFunc(func(ctx context.Context, req llm.Request) (string, error) {
		res.Attempted++
		return s.gen.Generate(ctx, req)
	})

	det, err := run.Determine(ctx, entry, articles)
	if err != nil {
		res.Errors = append(res.Errors, err)
	}
	res.Determination = det

	flaws, err := run.FindFlaws(ctx, det)
	if err != nil {
		res.Errors = append(res.Errors, err)
	}
	res.Flaws = flaws

	ps, err := run.Consolidate(ctx, det, flaws)
	if err != nil {
		res.Errors = append(res.Errors, err)
	}
	res.Perspectives = ps

	return res
}

func sortedSources(entry core.ResearchEntry) []string {
	names := make([]string, 0, len(entry))
	for name := range entry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// positionOf resolves a source's bucket from the articles first, then the roster.
func positionOf(source string, articles []core.SourcedArticle) core.Position {
	for _, a := range articles {
		if a.Source == source && a.Perspective != "" {
			return a.Perspective
		}
	}
	if o, ok := sources.LookupOutlet(source); ok {
		return o.Position
	}
	return ""
}
