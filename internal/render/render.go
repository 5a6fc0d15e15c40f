// Package render formats daily reports as markdown.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"diderot/internal/core"
)

// Markdown renders a daily report for date.
func Markdown(date string, report *core.DailyReport) string {
	var md strings.Builder

	fmt.Fprintf(&md, "# Daily News Report - %s\n\n", date)

	if report == nil || len(report.Headlines) == 0 {
		md.WriteString("No report found for this date.\n")
		return md.String()
	}

	if !report.GeneratedAt.IsZero() {
		fmt.Fprintf(&md, "*Generated %s · %d headlines*\n\n", report.GeneratedAt.Format("2006-01-02 15:04 MST"), report.TotalHeadlines)
	}

	for i, h := range report.Headlines {
		md.WriteString(Headline(i+1, h))
		md.WriteString("---\n\n")
	}

	return md.String()
}

// Headline renders one headline section.
func Headline(n int, h core.HeadlineReport) string {
	var md strings.Builder

	fmt.Fprintf(&md, "## %d. %s\n\n", n, h.Title)
	fmt.Fprintf(&md, "**Category:** %s\n\n", h.Category)

	md.WriteString("### Neutral Summary\n\n")
	md.WriteString(h.NeutralSummary + "\n\n")

	if len(h.Sources) > 0 {
		md.WriteString("### Sources\n\n")
		for _, s := range h.Sources {
			title := s.Title
			if title == "" {
				title = s.URL
			}
			fmt.Fprintf(&md, "- **%s** (%s): [%s](%s)\n", s.Source, s.Perspective, escapeLinkText(title), s.URL)
		}
		md.WriteString("\n")
	}

	if len(h.Perspectives) > 0 {
		md.WriteString("### Perspectives\n\n")
		for _, p := range h.Perspectives {
			if p.Position != "" {
				fmt.Fprintf(&md, "#### %s (%s)\n\n", p.Name, p.Position)
			} else {
				fmt.Fprintf(&md, "#### %s\n\n", p.Name)
			}
			if p.Justification != "" {
				md.WriteString(p.Justification + "\n\n")
			}
			if len(p.Flaws) > 0 {
				md.WriteString("**Potential flaws:**\n\n")
				for _, f := range p.Flaws {
					fmt.Fprintf(&md, "- %s\n", f)
				}
				md.WriteString("\n")
			}
		}
	}

	return md.String()
}

func escapeLinkText(s string) string {
	return strings.NewReplacer("[", `\[`, "]", `\]`).Replace(s)
}

// WriteToFile writes content to outputDir/filename, creating the directory.
func WriteToFile(content, outputDir, filename string) (string, error) {
	if outputDir == "" {
		outputDir = "."
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	filePath := filepath.Join(outputDir, filename)
	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file %s: %w", filePath, err)
	}

	return filePath, nil
}
