package handlers

import (
	"fmt"

	"diderot/internal/config"
	"diderot/internal/core"

	"github.com/spf13/cobra"
)

// NewCheckCmd creates the configuration check command
func NewCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check configuration and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Read(cfgFile)
			if err != nil {
				return err
			}

			status := config.Check(cfg)
			fmt.Printf("AI provider:     %s (model %s)\n", status.Provider, cfg.AI.Model)
			fmt.Printf("Search provider: %s\n", status.SearchProvider)
			fmt.Printf("Feeds:           %d\n", len(cfg.Feeds.URLs))
			fmt.Printf("Reports dir:     %s\n", cfg.Cache.ReportsDir)
			if cfg.Schedule.Cron != "" {
				fmt.Printf("Schedule:        %s\n", cfg.Schedule.Cron)
			}

			for _, w := range status.Warnings {
				fmt.Printf("warning: %s\n", w)
			}
			for _, e := range status.Errors {
				fmt.Printf("error: %s\n", e)
			}
			if len(status.Errors) > 0 {
				return fmt.Errorf("%w: %d problem(s) found", core.ErrConfiguration, len(status.Errors))
			}

			fmt.Println("Configuration OK")
			return nil
		},
	}
}
