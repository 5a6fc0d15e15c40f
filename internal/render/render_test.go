package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"diderot/internal/core"
)

func testReport() *core.DailyReport {
	return &core.DailyReport{
		GeneratedAt: time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC),
		Headlines: []core.HeadlineReport{
			{
				Title:          "Senate Votes on Budget Bill",
				Category:       core.CategoryPolitics,
				NeutralSummary: "The Senate passed the bill 51-49.",
				Sources: []core.SourcedArticle{
					{Source: "Reuters", Title: "Senate [live] passes bill", URL: "https://reuters.com/a", Perspective: core.PositionCenter},
				},
				Perspectives: []core.Perspective{
					{Name: "Progressive Reform Perspective", Justification: "Expands support", Flaws: []string{"Ignores cost"}, Position: core.PositionLeft},
					{Name: "Institutional View", Justification: "Process", Flaws: []string{"Thin"}},
				},
			},
			{
				Title:          "New Smartphone Released",
				Category:       core.CategoryOther,
				NeutralSummary: core.PlaceholderSummary("New Smartphone Released"),
				Sources:        []core.SourcedArticle{},
				Perspectives:   []core.Perspective{},
			},
		},
		TotalHeadlines: 2,
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown("2024-01-15", testReport())

	expected := []string{
		"# Daily News Report - 2024-01-15",
		"*Generated 2024-01-15 08:30 UTC · 2 headlines*",
		"## 1. Senate Votes on Budget Bill",
		"**Category:** politics",
		"The Senate passed the bill 51-49.",
		`- **Reuters** (center): [Senate \[live\] passes bill](https://reuters.com/a)`,
		"#### Progressive Reform Perspective (left)",
		"#### Institutional View\n",
		"- Ignores cost",
		"## 2. New Smartphone Released",
		"Analysis unavailable for: New Smartphone Released",
	}
	for _, want := range expected {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}

	second := md[strings.Index(md, "## 2."):]
	if strings.Contains(second, "### Sources") || strings.Contains(second, "### Perspectives") {
		t.Error("empty sections should be omitted")
	}
}

func TestMarkdownEmpty(t *testing.T) {
	for _, r := range []*core.DailyReport{nil, {}} {
		if md := Markdown("2024-01-15", r); !strings.Contains(md, "No report found") {
			t.Errorf("expected empty notice, got %q", md)
		}
	}
}

func TestWriteToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := WriteToFile("# hi\n", dir, "2024-01-15.md")
	if err != nil {
		t.Fatalf("WriteToFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "# hi\n" {
		t.Errorf("unexpected file content %q, %v", data, err)
	}
}
