package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"diderot/internal/core"
	"diderot/internal/llm"
	"diderot/internal/perspectives"
	"diderot/internal/research"
	"diderot/internal/sources"
	"diderot/internal/store"
	"diderot/internal/summarize"
)

// MockGenerator answers each stage with a canned response and counts calls.
type MockGenerator struct {
	mu        sync.Mutex
	responses map[string]string
	err       error
	calls     map[string]int
}

func NewMockGenerator(responses map[string]string) *MockGenerator {
	return &MockGenerator{responses: responses, calls: make(map[string]int)}
}

func (m *MockGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[req.Stage]++
	if m.err != nil {
		return "", m.err
	}
	return m.responses[req.Stage], nil
}

func (m *MockGenerator) total() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// MockHeadlines returns a fixed list
type MockHeadlines struct {
	headlines []core.Headline
}

func (m *MockHeadlines) FetchHeadlines(ctx context.Context) []core.Headline {
	return m.headlines
}

// PanickingFinder fails hard for one title
type PanickingFinder struct {
	SourceFinder
	title string
}

func (p *PanickingFinder) FindSources(ctx context.Context, h core.Headline) ([]core.SourcedArticle, error) {
	if h.Title == p.title {
		panic("boom")
	}
	return p.SourceFinder.FindSources(ctx, h)
}

var senate = core.Headline{Title: "Senate Votes on Budget Bill", Category: core.CategoryPolitics}

func validResponses() map[string]string {
	return map[string]string{
		"sources": `[
			{"source": "CNN", "title": "Senate passes budget", "url": "https://cnn.com/budget", "perspective": "left"},
			{"source": "Reuters", "title": "Senate approves budget bill 51-49", "url": "https://reuters.com/budget", "perspective": "center"},
			{"source": "Fox News", "title": "Spending bill clears Senate", "url": "https://foxnews.com/budget", "perspective": "right"}
		]`,
		"research": `{
			"CNN": {"facts": ["The Senate voted 51-49"], "opinions": ["A win for families"]},
			"Reuters": {"facts": ["The Senate voted 51-49"], "opinions": []},
			"Fox News": {"facts": ["The bill adds $1.2 trillion"], "opinions": ["Reckless spending"]}
		}`,
		"determine": `{"solid_facts": ["The Senate voted 51-49"], "perspectives": {
			"left": {"sources": ["CNN"], "justification": "Expands support"},
			"center": {"sources": ["Reuters"], "justification": "Procedural step"},
			"right": {"sources": ["Fox News"], "justification": "Deficit concerns"}}}`,
		"flaws": `{"left_perspective": {"flaws": ["Ignores cost"], "missing_context": "CBO score"},
			"right_perspective": {"flaws": ["Overstates deficit"], "missing_context": ""}}`,
		"consolidate": `{"perspectives": [
			{"name": "Fiscal Conservative Perspective", "justification": "Deficit concerns", "flaws": ["Overstates deficit"], "position": "right"},
			{"name": "Progressive Investment Perspective", "justification": "Expands support", "flaws": ["Ignores cost"], "position": "left"},
			{"name": "Institutional Pragmatist Perspective", "justification": "Procedural step", "flaws": ["Thin analysis"], "position": "center"}
		]}`,
		"summary": "The Senate passed the budget bill by a 51-49 vote. The measure now moves to the House.",
	}
}

func newTestPipeline(gen llm.TextGenerator, hs []core.Headline, topics summarize.TopicCache) *Pipeline {
	return NewPipeline(Deps{
		Headlines:    &MockHeadlines{headlines: hs},
		Sources:      sources.NewFinder(gen),
		Research:     research.NewCompiler(gen),
		Perspectives: perspectives.NewSynthesizer(gen),
		Summarizer:   summarize.NewSummarizer(gen, topics, summarize.DefaultSummarizerOptions()),
	}, nil)
}

func TestGenerateDailyReport_EndToEnd(t *testing.T) {
	gen := NewMockGenerator(validResponses())
	p := newTestPipeline(gen, []core.Headline{senate}, nil)

	report, err := p.GenerateDailyReport(context.Background(), Options{Date: "2024-01-15"})
	if err != nil {
		t.Fatalf("GenerateDailyReport failed: %v", err)
	}

	if report.TotalHeadlines != 10 || len(report.Headlines) != 10 {
		t.Fatalf("expected 10 headlines, got %d/%d", report.TotalHeadlines, len(report.Headlines))
	}
	if report.RunID == "" || report.GeneratedAt.IsZero() {
		t.Error("expected run id and generation time")
	}

	hr := report.Headlines[0]
	if hr.Title != senate.Title {
		t.Fatalf("expected first headline %q, got %q", senate.Title, hr.Title)
	}
	if len(hr.Sources) == 0 {
		t.Error("expected sources")
	}
	if hr.NeutralSummary == "" || strings.HasPrefix(hr.NeutralSummary, core.UnavailablePrefix) {
		t.Errorf("expected generated summary, got %q", hr.NeutralSummary)
	}
	if len(hr.Perspectives) < 2 {
		t.Fatalf("expected at least 2 perspectives, got %d", len(hr.Perspectives))
	}
	for _, ps := range hr.Perspectives {
		if ps.Name == "" || ps.Justification == "" || len(ps.Flaws) == 0 {
			t.Errorf("incomplete perspective: %+v", ps)
		}
	}
	assertOrdered(t, hr.Perspectives)
}

func TestGenerateDailyReport_AllStagesFail(t *testing.T) {
	gen := NewMockGenerator(nil)
	gen.err = errors.New("connection refused")
	p := newTestPipeline(gen, []core.Headline{senate}, nil)

	report, err := p.GenerateDailyReport(context.Background(), Options{})
	if err != nil {
		t.Fatalf("stage failures must not fail the report: %v", err)
	}
	if len(report.Headlines) != 10 {
		t.Fatalf("expected 10 headlines, got %d", len(report.Headlines))
	}

	for _, hr := range report.Headlines {
		if hr.Sources == nil || len(hr.Sources) != 0 {
			t.Errorf("%q: expected empty sources, got %v", hr.Title, hr.Sources)
		}
		if hr.Perspectives == nil || len(hr.Perspectives) != 0 {
			t.Errorf("%q: expected empty perspectives, got %v", hr.Title, hr.Perspectives)
		}
		if !strings.Contains(hr.NeutralSummary, hr.Title) {
			t.Errorf("expected placeholder containing title, got %q", hr.NeutralSummary)
		}
	}
}

func TestGenerateDailyReport_PartialFailureKeepsFallbacks(t *testing.T) {
	responses := validResponses()
	delete(responses, "summary")
	gen := NewMockGenerator(responses)
	p := newTestPipeline(gen, []core.Headline{senate}, nil)

	report, err := p.GenerateDailyReport(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	hr := report.Headlines[0]
	if hr.NeutralSummary != core.PlaceholderSummary(senate.Title) {
		t.Errorf("expected placeholder summary, got %q", hr.NeutralSummary)
	}
	if len(hr.Sources) == 0 || len(hr.Perspectives) == 0 {
		t.Error("a malformed summary alone must not discard sources or perspectives")
	}
}

func TestGenerateDailyReport_OtherCategory(t *testing.T) {
	gen := NewMockGenerator(validResponses())
	other := core.Headline{Title: "New Smartphone Released", Category: core.CategoryOther}
	p := newTestPipeline(gen, []core.Headline{other}, nil)

	report, err := p.GenerateDailyReport(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}

	for _, hr := range report.Headlines {
		if hr.Category == core.CategoryOther && len(hr.Perspectives) != 0 {
			t.Errorf("%q: other category must have no perspectives, got %v", hr.Title, hr.Perspectives)
		}
	}
	if report.Headlines[0].NeutralSummary == "" {
		t.Error("expected summary for other category")
	}
}

func TestGenerateDailyReport_CachedSummary(t *testing.T) {
	gen := NewMockGenerator(validResponses())
	topics := &memoryTopics{entries: map[string]string{"Senate Votes on Budget Bill-2024-01-15": "Cached summary."}}
	p := newTestPipeline(gen, []core.Headline{senate}, topics)

	report, err := p.GenerateDailyReport(context.Background(), Options{Date: "2024-01-15"})
	if err != nil {
		t.Fatal(err)
	}
	if got := report.Headlines[0].NeutralSummary; got != "Cached summary." {
		t.Errorf("expected cached summary, got %q", got)
	}

	before := gen.calls["summary"]
	report, _ = p.GenerateDailyReport(context.Background(), Options{Date: "2024-01-15", Force: true})
	if gen.calls["summary"] <= before {
		t.Error("forced run should regenerate summaries")
	}
	if got := report.Headlines[0].NeutralSummary; got == "Cached summary." {
		t.Error("forced run should not reuse the cached summary")
	}
}

func TestGenerateDailyReport_PanicIsContained(t *testing.T) {
	gen := NewMockGenerator(validResponses())
	p := newTestPipeline(gen, []core.Headline{senate}, nil)
	p.sources = &PanickingFinder{SourceFinder: p.sources, title: senate.Title}

	report, err := p.GenerateDailyReport(context.Background(), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Headlines) != 10 {
		t.Fatalf("expected 10 headlines, got %d", len(report.Headlines))
	}
	if got := report.Headlines[0]; got.NeutralSummary != core.PlaceholderSummary(senate.Title) || len(got.Sources) != 0 {
		t.Errorf("expected degraded entry, got %+v", got)
	}
	if strings.HasPrefix(report.Headlines[1].NeutralSummary, core.UnavailablePrefix) {
		t.Error("later headlines should still be processed")
	}
}

func TestGenerateDailyReport_Cancelled(t *testing.T) {
	gen := NewMockGenerator(validResponses())
	p := newTestPipeline(gen, []core.Headline{senate}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := p.GenerateDailyReport(ctx, Options{})
	if !errors.Is(err, context.Canceled) || report != nil {
		t.Errorf("expected cancellation error, got %v, %v", report, err)
	}
}

func TestGenerateDailyReport_HeadlineCount(t *testing.T) {
	var many []core.Headline
	for i := 0; i < 14; i++ {
		many = append(many, core.Headline{Title: strings.Repeat("x", i+1), Category: core.CategoryOther})
	}

	tests := []struct {
		name string
		hs   []core.Headline
	}{
		{"none", nil},
		{"short", []core.Headline{senate}},
		{"long", many},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPipeline(NewMockGenerator(validResponses()), tt.hs, nil)
			report, err := p.GenerateDailyReport(context.Background(), Options{})
			if err != nil {
				t.Fatal(err)
			}
			if len(report.Headlines) != 10 || report.TotalHeadlines != 10 {
				t.Errorf("expected 10 headlines, got %d", len(report.Headlines))
			}
		})
	}
}

func TestAssemble(t *testing.T) {
	gen := NewMockGenerator(validResponses())
	a := NewAssembler(summarize.NewSummarizer(gen, nil, summarize.DefaultSummarizerOptions()), 2)

	in := AssembleInput{
		Headline: senate,
		Sources: []core.SourcedArticle{
			{Source: "CNN", URL: "https://cnn.com/a"},
			{Source: "CNN", URL: "https://cnn.com/a"},
			{Source: "Reuters", URL: "https://reuters.com/a"},
		},
		Perspectives: []core.Perspective{
			{Name: "Unlabeled", Flaws: []string{"x"}},
			{Name: "R", Position: core.PositionRight, Flaws: []string{"x"}},
			{Name: "L", Position: core.PositionLeft, Flaws: []string{"x"}},
		},
	}

	got := a.Assemble(context.Background(), in)
	if got.Err != nil || !got.Generated {
		t.Fatalf("unexpected assembly state: %+v", got)
	}
	if len(got.Report.Sources) != 2 {
		t.Errorf("expected sources deduplicated by url, got %v", got.Report.Sources)
	}
	names := []string{}
	for _, p := range got.Report.Perspectives {
		names = append(names, p.Name)
	}
	if strings.Join(names, ",") != "L,R,Unlabeled" {
		t.Errorf("unexpected order %v", names)
	}
}

func assertOrdered(t *testing.T, ps []core.Perspective) {
	t.Helper()
	for i := 1; i < len(ps); i++ {
		if ps[i-1].Position.Rank() > ps[i].Position.Rank() {
			t.Errorf("perspectives out of order: %v before %v", ps[i-1].Position, ps[i].Position)
		}
	}
}

type memoryTopics struct {
	entries map[string]string
}

func (m *memoryTopics) GetCachedTopic(key string, maxAge time.Duration) (*store.Topic, error) {
	text, ok := m.entries[key]
	if !ok {
		return nil, nil
	}
	return &store.Topic{Key: key, Text: text}, nil
}

func (m *memoryTopics) CacheTopic(key, text string) error {
	m.entries[key] = text
	return nil
}
