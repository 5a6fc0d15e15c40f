package perspectives

import (
	"context"
	"errors"
	"testing"

	"diderot/internal/core"
	"diderot/internal/llm"
)

// MockGenerator answers per stage and records the stages it was called for.
type MockGenerator struct {
	responses map[string]string
	errs      map[string]error
	stages    []string
}

func (m *MockGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.stages = append(m.stages, req.Stage)
	if err := m.errs[req.Stage]; err != nil {
		return "", err
	}
	return m.responses[req.Stage], nil
}

var (
	budget = core.Headline{Title: "Senate Votes on Budget Bill", Category: core.CategoryPolitics}

	budgetArticles = []core.SourcedArticle{
		{Source: "CNN", URL: "https://cnn.com/a", Perspective: core.PositionLeft},
		{Source: "Reuters", URL: "https://reuters.com/a", Perspective: core.PositionCenter},
		{Source: "Fox News", URL: "https://foxnews.com/a", Perspective: core.PositionRight},
	}

	budgetResearch = core.ResearchEntry{
		"CNN":      {Facts: []string{"The Senate voted 51-49.", "The bill funds childcare"}, Opinions: []string{"A win for working families"}},
		"Reuters":  {Facts: []string{"the senate voted 51-49"}, Opinions: []string{}},
		"Fox News": {Facts: []string{"The bill adds $1.2 trillion in spending"}, Opinions: []string{"Reckless spending"}},
	}
)

const (
	determineJSON = `{"solid_facts": ["The bill funds childcare."],
		"perspectives": {
			"left": {"sources": ["CNN"], "justification": "Expands social support"},
			"centre": {"sources": ["reuters"], "justification": "Procedural milestone"},
			"right": {"sources": ["Fox News", "Breitbart"], "justification": "Deficit concerns"},
			"libertarian": {"sources": ["Reason"], "justification": "ignored"}
		}}`
	flawsJSON = `{
		"left_perspective": {"flaws": ["Ignores cost"], "missing_context": "CBO score"},
		"center_perspective": {"flaws": ["Too little analysis"], "missing_context": ""},
		"right_perspective": {"flaws": ["Overstates deficit impact"], "missing_context": "Revenue offsets"}
	}`
	consolidateJSON = `Result: {"perspectives": [
		{"name": "Fiscal Conservative Perspective", "justification": "Deficit concerns", "flaws": ["Overstates deficit impact"], "position": "right"},
		{"name": "Institutional Perspective", "justification": "Process", "flaws": ["Narrow"]},
		{"name": "Progressive Investment Perspective", "justification": "Social support", "flaws": ["Ignores cost"], "position": "left"},
		{"name": "", "justification": "nameless", "flaws": []},
		{"name": "Centrist Process Perspective", "justification": "Milestone", "flaws": ["Thin"], "position": "center"}
	]}`
)

func validMock() *MockGenerator {
	return &MockGenerator{responses: map[string]string{
		"determine":   determineJSON,
		"flaws":       flawsJSON,
		"consolidate": consolidateJSON,
	}}
}

func TestSynthesize(t *testing.T) {
	gen := validMock()
	res := NewSynthesizer(gen).Synthesize(context.Background(), budget, budgetArticles, budgetResearch)

	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if res.Attempted != 3 {
		t.Errorf("expected 3 generative calls, got %d", res.Attempted)
	}

	want := []struct {
		name string
		pos  core.Position
	}{
		{"Progressive Investment Perspective", core.PositionLeft},
		{"Centrist Process Perspective", core.PositionCenter},
		{"Fiscal Conservative Perspective", core.PositionRight},
		{"Institutional Perspective", ""},
	}
	if len(res.Perspectives) != len(want) {
		t.Fatalf("expected %d perspectives, got %d: %+v", len(want), len(res.Perspectives), res.Perspectives)
	}
	for i, w := range want {
		p := res.Perspectives[i]
		if p.Name != w.name || p.Position != w.pos {
			t.Errorf("perspective %d: got %q/%q, want %q/%q", i, p.Name, p.Position, w.name, w.pos)
		}
		if len(p.Flaws) == 0 {
			t.Errorf("perspective %q has no flaws", p.Name)
		}
	}
}

func TestSynthesizeOtherCategory(t *testing.T) {
	gen := validMock()
	h := core.Headline{Title: "New Phone Released", Category: core.CategoryOther}

	res := NewSynthesizer(gen).Synthesize(context.Background(), h, budgetArticles, budgetResearch)
	if res.Perspectives == nil || len(res.Perspectives) != 0 {
		t.Errorf("expected empty perspectives, got %v", res.Perspectives)
	}
	if len(gen.stages) != 0 {
		t.Errorf("expected no generative calls, got %v", gen.stages)
	}
}

func TestDetermine(t *testing.T) {
	det, err := NewSynthesizer(validMock()).Determine(context.Background(), budgetResearch, budgetArticles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(det.Perspectives) != 3 {
		t.Fatalf("expected 3 buckets, got %v", det.Perspectives)
	}
	if got := det.Perspectives[core.PositionCenter].Sources; len(got) != 1 || got[0] != "Reuters" {
		t.Errorf("expected canonical Reuters in center, got %v", got)
	}
	if got := det.Perspectives[core.PositionRight].Sources; len(got) != 1 || got[0] != "Fox News" {
		t.Errorf("expected unknown sources dropped, got %v", got)
	}

	// generated fact plus the cross-referenced one
	if len(det.SolidFacts) != 2 {
		t.Errorf("expected 2 solid facts, got %v", det.SolidFacts)
	}
}

func TestDetermineRejectsUnsupportedFacts(t *testing.T) {
	tests := []struct {
		name  string
		facts string
	}{
		{"opinions", `["Reckless spending", "A win for working families"]`},
		{"unreported", `["The bill was vetoed"]`},
		{"opinion with different case", `["reckless   SPENDING!"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &MockGenerator{responses: map[string]string{
				"determine": `{"solid_facts": ` + tt.facts + `, "perspectives": {}}`,
			}}
			det, err := NewSynthesizer(gen).Determine(context.Background(), budgetResearch, budgetArticles)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(det.SolidFacts) != 1 || det.SolidFacts[0] != "The Senate voted 51-49." {
				t.Errorf("expected only the corroborated fact, got %v", det.SolidFacts)
			}
		})
	}
}

func TestDetermineFallback(t *testing.T) {
	tests := []struct {
		name    string
		gen     *MockGenerator
		wantErr error
	}{
		{"service down", &MockGenerator{errs: map[string]error{"determine": core.ErrSourceUnavailable}}, core.ErrSourceUnavailable},
		{"malformed", &MockGenerator{responses: map[string]string{"determine": "no json here"}}, core.ErrMalformedGeneration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			det, err := NewSynthesizer(tt.gen).Determine(context.Background(), budgetResearch, budgetArticles)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			if len(det.SolidFacts) != 1 || det.SolidFacts[0] != "The Senate voted 51-49." {
				t.Errorf("expected corroborated fact, got %v", det.SolidFacts)
			}
			left := det.Perspectives[core.PositionLeft]
			if len(left.Sources) != 1 || left.Justification != "A win for working families" {
				t.Errorf("unexpected left bucket: %+v", left)
			}
		})
	}
}

func TestCorroborate(t *testing.T) {
	tests := []struct {
		name      string
		threshold int
		want      int
	}{
		{"two sources", 2, 1},
		{"single source", 1, 3},
		{"three sources", 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Corroborate(budgetResearch, tt.threshold)
			if len(got) != tt.want {
				t.Errorf("Corroborate(threshold=%d) = %v, want %d facts", tt.threshold, got, tt.want)
			}
		})
	}
}

func TestCorroborateSameSourceRepeats(t *testing.T) {
	entry := core.ResearchEntry{"CNN": {Facts: []string{"X happened", "x happened!"}}}
	if got := Corroborate(entry, 2); len(got) != 0 {
		t.Errorf("a repeated fact from one source is not corroboration, got %v", got)
	}
}

func TestFindFlaws(t *testing.T) {
	det := core.Determination{Perspectives: map[core.Position]core.BucketView{
		core.PositionLeft: {Sources: []string{"CNN"}},
	}}
	flaws, err := NewSynthesizer(validMock()).FindFlaws(context.Background(), det)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(flaws) != 3 || flaws[core.PositionRight].MissingContext != "Revenue offsets" {
		t.Errorf("unexpected flaws: %+v", flaws)
	}

	gen := &MockGenerator{}
	empty, err := NewSynthesizer(gen).FindFlaws(context.Background(), core.Determination{})
	if err != nil || len(empty) != 0 || len(gen.stages) != 0 {
		t.Errorf("expected no call for empty determination, got %v, %v, %v", empty, err, gen.stages)
	}
}

func TestConsolidateFallback(t *testing.T) {
	det := core.Determination{Perspectives: map[core.Position]core.BucketView{
		core.PositionRight: {Sources: []string{"Fox News"}, Justification: "Deficit concerns"},
		core.PositionLeft:  {Sources: []string{"CNN"}},
	}}
	flaws := map[core.Position]core.Flaws{
		core.PositionLeft: {Flaws: []string{"Ignores cost"}, MissingContext: "CBO score"},
	}
	gen := &MockGenerator{responses: map[string]string{"consolidate": `{"perspectives": []}`}}

	ps, err := NewSynthesizer(gen).Consolidate(context.Background(), det, flaws)
	if !errors.Is(err, core.ErrMalformedGeneration) {
		t.Errorf("expected malformed generation, got %v", err)
	}
	if len(ps) != 2 {
		t.Fatalf("expected 2 derived perspectives, got %+v", ps)
	}
	if ps[0].Name != "Progressive Reform Perspective" || ps[1].Name != "Conservative Traditional Perspective" {
		t.Errorf("unexpected order or names: %+v", ps)
	}
	if ps[0].Justification != "Reported by CNN." {
		t.Errorf("unexpected justification %q", ps[0].Justification)
	}
	if len(ps[0].Flaws) != 2 || ps[0].Flaws[1] != "Missing context: CBO score" {
		t.Errorf("unexpected flaws %v", ps[0].Flaws)
	}
}

func TestSynthesizeAllFailing(t *testing.T) {
	down := errors.New("connection refused")
	gen := &MockGenerator{errs: map[string]error{"determine": down, "flaws": down, "consolidate": down}}

	res := NewSynthesizer(gen).Synthesize(context.Background(), budget, budgetArticles, budgetResearch)
	if res.Attempted != 3 || len(res.Errors) != 3 {
		t.Errorf("expected 3 failed calls, got attempted=%d errors=%v", res.Attempted, res.Errors)
	}
	// still derived from the cross-reference
	if len(res.Perspectives) != 3 {
		t.Errorf("expected derived perspectives, got %+v", res.Perspectives)
	}
}
