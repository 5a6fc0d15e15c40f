package tui

import (
	"fmt"
	"strings"

	"diderot/internal/core"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headingStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	degradedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))

	positionColors = map[core.Position]lipgloss.Color{
		core.PositionLeft:   lipgloss.Color("4"),
		core.PositionCenter: lipgloss.Color("7"),
		core.PositionRight:  lipgloss.Color("1"),
	}
)

func positionLabel(p core.Position) string {
	if p == "" {
		return ""
	}
	style := lipgloss.NewStyle().Foreground(positionColors[p])
	return style.Render("[" + string(p) + "]")
}

// RenderHeadline formats one headline report for a terminal of the given width.
func RenderHeadline(h core.HeadlineReport, width int) string {
	wrap := lipgloss.NewStyle()
	if width > 0 {
		wrap = wrap.Width(width)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(h.Title))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(string(h.Category)))
	b.WriteString("\n\n")

	if strings.HasPrefix(h.NeutralSummary, core.UnavailablePrefix) {
		b.WriteString(degradedStyle.Render(wrap.Render(h.NeutralSummary)))
	} else {
		b.WriteString(wrap.Render(h.NeutralSummary))
	}
	b.WriteString("\n")

	if len(h.Sources) > 0 {
		b.WriteString("\n" + headingStyle.Render("Sources") + "\n")
		for _, s := range h.Sources {
			fmt.Fprintf(&b, "• %s %s %s\n", s.Source, positionLabel(s.Perspective), dimStyle.Render(s.URL))
		}
	}

	if len(h.Perspectives) > 0 {
		b.WriteString("\n" + headingStyle.Render("Perspectives") + "\n")
		for _, p := range h.Perspectives {
			fmt.Fprintf(&b, "\n%s %s\n", lipgloss.NewStyle().Bold(true).Render(p.Name), positionLabel(p.Position))
			if p.Justification != "" {
				b.WriteString(wrap.Render(p.Justification) + "\n")
			}
			for _, f := range p.Flaws {
				b.WriteString(dimStyle.Render("  ✗ "+f) + "\n")
			}
		}
	}

	return b.String()
}

// RenderReport formats a whole daily report for terminal output.
func RenderReport(date string, report *core.DailyReport, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Daily News Report - "+date) + "\n")

	if report == nil || len(report.Headlines) == 0 {
		b.WriteString("\nNo report found for this date.\n")
		return b.String()
	}
	if !report.GeneratedAt.IsZero() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("Generated %s · %d headlines", report.GeneratedAt.Format("2006-01-02 15:04"), report.TotalHeadlines)) + "\n")
	}

	for i, h := range report.Headlines {
		fmt.Fprintf(&b, "\n%s\n", dimStyle.Render(fmt.Sprintf("── %d/%d ──", i+1, len(report.Headlines))))
		b.WriteString(RenderHeadline(h, width))
	}
	return b.String()
}
