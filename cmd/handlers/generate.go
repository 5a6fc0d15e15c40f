package handlers

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"diderot/internal/archive"
	"diderot/internal/logger"
	"diderot/internal/render"

	"github.com/spf13/cobra"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var (
		date  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the report for a date, reusing a stored one",
		Long: `Generate the daily report for a date (default today).

A stored report is returned as-is unless --force is given. A failed run
leaves any previously stored report untouched.

Examples:
  diderot generate
  diderot generate --date 2024-01-15 --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runGenerate(ctx, date, force)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "report date YYYY-MM-DD (default today)")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "regenerate even when a report is stored")

	return cmd
}

func runGenerate(ctx context.Context, date string, force bool) error {
	date, err := resolveDate(date)
	if err != nil {
		return err
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	start := time.Now()
	report, state, err := a.reports.Get(ctx, date, force)
	if err != nil {
		return interrupted(ctx, fmt.Errorf("generate report for %s: %w", date, err))
	}

	switch state {
	case archive.StateCached:
		fmt.Printf("Report for %s already stored (use --force to regenerate)\n", date)
	default:
		logger.Info("Report generated", "date", date, "state", string(state), "duration", time.Since(start).String())
		fmt.Printf("Generated report for %s with %d headlines\n", date, report.TotalHeadlines)
	}
	fmt.Printf("Stored at %s\n\n", a.reports.Archive().Path(date))
	fmt.Print(render.Markdown(date, report))

	return nil
}
