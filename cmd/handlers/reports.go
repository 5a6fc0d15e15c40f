package handlers

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewReportsCmd creates the reports command
func NewReportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List stored report dates, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := readArchive()
			if err != nil {
				return err
			}
			dates, err := a.List()
			if err != nil {
				return err
			}
			if len(dates) == 0 {
				fmt.Printf("No reports stored in %s\n", a.Dir())
				return nil
			}
			for _, d := range dates {
				fmt.Println(d)
			}
			return nil
		},
	}
}
