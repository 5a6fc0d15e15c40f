package headlines

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"diderot/internal/core"
	"diderot/internal/feeds"
	"diderot/internal/llm"
)

// MockGenerator returns a fixed response or error and records calls.
type MockGenerator struct {
	response  string
	err       error
	callCount int
	lastReq   llm.Request
}

func (m *MockGenerator) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.callCount++
	m.lastReq = req
	return m.response, m.err
}

// MockFeeds returns fixed entries.
type MockFeeds struct {
	entries []feeds.Entry
	err     error
}

func (m *MockFeeds) FetchAll(ctx context.Context, urls []string) ([]feeds.Entry, error) {
	return m.entries, m.err
}

func generatedHeadlines(n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf(`{"title": "Generated %d", "category": "world"}`, i)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func TestFetchHeadlinesAlwaysReturnsTen(t *testing.T) {
	tests := []struct {
		name     string
		response string
		err      error
	}{
		{"exact", generatedHeadlines(10), nil},
		{"short", generatedHeadlines(3), nil},
		{"long", generatedHeadlines(14), nil},
		{"empty array", "[]", nil},
		{"malformed", "I cannot help with that", nil},
		{"service error", "", errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &MockGenerator{response: tt.response, err: tt.err}
			src := NewSource(gen, nil, nil, 10)

			got := src.FetchHeadlines(context.Background())
			if len(got) != 10 {
				t.Fatalf("expected 10 headlines, got %d", len(got))
			}
		})
	}
}

func TestFetchHeadlinesPadsInOrder(t *testing.T) {
	gen := &MockGenerator{response: generatedHeadlines(3)}
	got := NewSource(gen, nil, nil, 10).FetchHeadlines(context.Background())

	if got[0].Title != "Generated 0" || got[2].Title != "Generated 2" {
		t.Errorf("expected generated headlines first, got %+v", got[:3])
	}
	for i := 3; i < 10; i++ {
		if got[i] != Fallback[i-3] {
			t.Errorf("position %d: expected fallback %q, got %q", i, Fallback[i-3].Title, got[i].Title)
		}
	}
}

func TestFetchHeadlinesFailureUsesFallback(t *testing.T) {
	gen := &MockGenerator{err: errors.New("boom")}
	got := NewSource(gen, nil, nil, 10).FetchHeadlines(context.Background())

	for i := range got {
		if got[i] != Fallback[i] {
			t.Errorf("position %d: expected %q, got %q", i, Fallback[i].Title, got[i].Title)
		}
	}
}

func TestFetchHeadlinesCoercesCategories(t *testing.T) {
	gen := &MockGenerator{response: `[
		{"title": "A", "category": "sports"},
		{"title": "B", "category": "POLITICS"},
		{"title": "", "category": "world"},
		{"title": "C"}
	]`}
	got := NewSource(gen, nil, nil, 10).FetchHeadlines(context.Background())

	if got[0].Category != core.CategoryOther {
		t.Errorf("expected unknown label to become other, got %s", got[0].Category)
	}
	if got[1].Category != core.CategoryPolitics {
		t.Errorf("expected politics, got %s", got[1].Category)
	}
	if got[2].Title != "C" || got[2].Category != core.CategoryOther {
		t.Errorf("expected untitled entry dropped and missing category coerced, got %+v", got[2])
	}
}

func TestFetchHeadlinesFromFeeds(t *testing.T) {
	mockFeeds := &MockFeeds{entries: []feeds.Entry{
		{Title: "Senate Votes on Budget Bill - Reuters", Source: "Reuters"},
		{Title: "Storm Hits Coast", Source: "AP"},
	}}
	gen := &MockGenerator{response: `[{"title": "Senate Votes on Budget Bill", "category": "politics"}]`}

	got := NewSource(gen, mockFeeds, []string{"https://feed"}, 10).FetchHeadlines(context.Background())
	if len(got) != 10 {
		t.Fatalf("expected 10 headlines, got %d", len(got))
	}
	if got[0].Title != "Senate Votes on Budget Bill" {
		t.Errorf("unexpected first headline %q", got[0].Title)
	}
	if !strings.Contains(gen.lastReq.Messages[1].Content, "Storm Hits Coast") {
		t.Error("expected feed titles in the selection prompt")
	}
}

func TestFetchHeadlinesFeedSelectionFails(t *testing.T) {
	mockFeeds := &MockFeeds{entries: []feeds.Entry{
		{Title: "Senate Votes on Budget Bill - Reuters", Source: "Reuters"},
		{Title: "Local Bakery Wins Award", Source: "Unknown"},
	}}
	gen := &MockGenerator{err: errors.New("timeout")}

	got := NewSource(gen, mockFeeds, []string{"https://feed"}, 10).FetchHeadlines(context.Background())
	if got[0].Title != "Senate Votes on Budget Bill" || got[0].Category != core.CategoryPolitics {
		t.Errorf("expected cleaned, inferred feed headline, got %+v", got[0])
	}
	if got[1].Category != core.CategoryOther {
		t.Errorf("expected other category, got %s", got[1].Category)
	}
	if got[2] != Fallback[0] {
		t.Errorf("expected padding after feed entries, got %+v", got[2])
	}
}

func TestFetchHeadlinesFeedsDownGenerates(t *testing.T) {
	mockFeeds := &MockFeeds{err: core.ErrSourceUnavailable}
	gen := &MockGenerator{response: generatedHeadlines(10)}

	got := NewSource(gen, mockFeeds, []string{"https://feed"}, 10).FetchHeadlines(context.Background())
	if got[0].Title != "Generated 0" {
		t.Errorf("expected generated headlines when feeds are down, got %q", got[0].Title)
	}
	if gen.callCount != 1 {
		t.Errorf("expected 1 generation call, got %d", gen.callCount)
	}
}

func TestPadRemovesDuplicates(t *testing.T) {
	got := Pad([]core.Headline{Fallback[1], Fallback[1]}, 10)
	if len(got) != 10 {
		t.Fatalf("expected 10, got %d", len(got))
	}
	seen := map[string]bool{}
	for _, h := range got {
		if seen[h.Title] {
			t.Errorf("duplicate headline %q", h.Title)
		}
		seen[h.Title] = true
	}
}

func TestPadBeyondFallback(t *testing.T) {
	if got := Pad(nil, 12); len(got) != 12 {
		t.Errorf("expected 12 headlines, got %d", len(got))
	}
}

func TestInferCategory(t *testing.T) {
	tests := map[string]core.Category{
		"Senate Votes on Budget Bill":           core.CategoryPolitics,
		"UN Security Council Meets on Crisis":   core.CategoryWorld,
		"Local Team Wins Championship":          core.CategoryOther,
		"Actor Wins Award at Festival":          core.CategoryOther,
		"Russia and Ukraine Resume Peace Talks": core.CategoryWorld,
	}
	for title, want := range tests {
		if got := InferCategory(title); got != want {
			t.Errorf("InferCategory(%q) = %s, want %s", title, got, want)
		}
	}
}
