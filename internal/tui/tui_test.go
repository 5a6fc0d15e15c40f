package tui

import (
	"errors"
	"strings"
	"testing"

	"diderot/internal/core"

	tea "github.com/charmbracelet/bubbletea"
)

type mockLoader struct {
	reports map[string]*core.DailyReport
	dates   []string
	listErr error
}

func (m *mockLoader) List() ([]string, error) {
	return m.dates, m.listErr
}

func (m *mockLoader) Load(date string) (*core.DailyReport, error) {
	return m.reports[date], nil
}

func report(titles ...string) *core.DailyReport {
	r := &core.DailyReport{}
	for _, t := range titles {
		r.Headlines = append(r.Headlines, core.HeadlineReport{
			Title:          t,
			Category:       core.CategoryWorld,
			NeutralSummary: "Summary of " + t,
			Perspectives: []core.Perspective{
				{Name: "Progressive Reform Perspective", Justification: "j", Flaws: []string{"f"}, Position: core.PositionLeft},
			},
		})
	}
	r.TotalHeadlines = len(r.Headlines)
	return r
}

func newLoader() *mockLoader {
	return &mockLoader{
		dates: []string{"2024-01-16", "2024-01-15"},
		reports: map[string]*core.DailyReport{
			"2024-01-16": report("Newest A", "Newest B"),
			"2024-01-15": report("Older A"),
		},
	}
}

func press(m tea.Model, key string) tea.Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
	return next
}

func TestInitialModelSelectsDate(t *testing.T) {
	m := InitialModel(newLoader(), "2024-01-15")
	if m.currentDate() != "2024-01-15" || m.report.Headlines[0].Title != "Older A" {
		t.Errorf("expected requested date loaded, got %s", m.currentDate())
	}

	m = InitialModel(newLoader(), "")
	if m.currentDate() != "2024-01-16" {
		t.Errorf("expected newest date by default, got %s", m.currentDate())
	}
}

func TestNavigation(t *testing.T) {
	var m tea.Model = InitialModel(newLoader(), "")

	m = press(m, "j")
	if got := m.(model).selectedIdx; got != 1 {
		t.Errorf("expected selection 1, got %d", got)
	}
	m = press(m, "j")
	if got := m.(model).selectedIdx; got != 1 {
		t.Errorf("selection should stop at last headline, got %d", got)
	}
	if !strings.Contains(m.View(), "Summary of Newest B") {
		t.Error("detail pane should show the selected headline")
	}

	m = press(m, "h")
	mm := m.(model)
	if mm.currentDate() != "2024-01-15" || mm.selectedIdx != 0 {
		t.Errorf("expected older report with reset selection, got %s/%d", mm.currentDate(), mm.selectedIdx)
	}
	m = press(m, "h")
	if m.(model).currentDate() != "2024-01-15" {
		t.Error("should not move past the oldest report")
	}
	m = press(m, "l")
	if m.(model).currentDate() != "2024-01-16" {
		t.Error("expected newer report")
	}

	m = press(m, "q")
	if !m.(model).quitting {
		t.Error("expected quitting")
	}
}

func TestViewEmptyAndError(t *testing.T) {
	empty := InitialModel(&mockLoader{}, "")
	if !strings.Contains(empty.View(), "No report found") {
		t.Error("expected empty notice")
	}

	broken := InitialModel(&mockLoader{listErr: errors.New("disk gone")}, "")
	if !strings.Contains(broken.View(), "disk gone") {
		t.Error("expected error in view")
	}
}

func TestRenderReport(t *testing.T) {
	out := RenderReport("2024-01-16", report("Newest A"), 80)
	for _, want := range []string{"Daily News Report - 2024-01-16", "Newest A", "Progressive Reform Perspective", "f"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
	if !strings.Contains(RenderReport("2024-01-16", nil, 80), "No report found") {
		t.Error("expected empty notice")
	}
}
