package handlers

import (
	"encoding/json"
	"fmt"

	"diderot/internal/render"
	"diderot/internal/tui"

	"github.com/spf13/cobra"
)

// NewShowCmd creates the show command
func NewShowCmd() *cobra.Command {
	var (
		date   string
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print a stored report",
		Long: `Print the stored report for a date (default today) without generating it.

Formats: text (styled terminal output), markdown, json.

Examples:
  diderot show --date 2024-01-15
  diderot show --format markdown --output reports/`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(date, format, output)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "report date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, markdown or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write markdown to this directory instead of stdout")

	return cmd
}

func runShow(date, format, output string) error {
	date, err := resolveDate(date)
	if err != nil {
		return err
	}

	a, err := readArchive()
	if err != nil {
		return err
	}
	report, err := a.Load(date)
	if err != nil {
		return err
	}

	var content string
	switch format {
	case "text":
		if report == nil {
			fmt.Printf("No report found for %s. Run 'diderot generate --date %s' to create it.\n", date, date)
			return nil
		}
		content = tui.RenderReport(date, report, 100)
	case "markdown", "md":
		content = render.Markdown(date, report)
	case "json":
		if report == nil {
			return fmt.Errorf("no report found for %s", date)
		}
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		content = string(data) + "\n"
	default:
		return fmt.Errorf("unknown format %q (use text, markdown or json)", format)
	}

	if output != "" {
		path, err := render.WriteToFile(content, output, date+".md")
		if err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", path)
		return nil
	}

	fmt.Print(content)
	return nil
}
