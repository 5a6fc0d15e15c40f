package handlers

import (
	"diderot/internal/tui"

	"github.com/spf13/cobra"
)

// NewBrowseCmd creates the terminal browser command
func NewBrowseCmd() *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse stored reports in the terminal",
		Long: `Open an interactive terminal view of stored reports.

Keys: j/k move between headlines, h/l switch to an older/newer report, q quits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readArchive()
			if err != nil {
				return err
			}
			if date != "" {
				if date, err = resolveDate(date); err != nil {
					return err
				}
			}
			return tui.StartTUI(a, date)
		},
	}

	cmd.Flags().StringVarP(&date, "date", "d", "", "report date to open (default newest)")
	return cmd
}
