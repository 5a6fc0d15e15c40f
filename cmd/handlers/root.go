package handlers

import (
	"errors"
	"fmt"
	"os"

	"diderot/internal/config"
	"diderot/internal/logger"

	"github.com/spf13/cobra"
)

var cfgFile string

// NewRootCmd creates the diderot root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "diderot",
		Short: "Generate a daily multi-perspective news report",
		Long: `Diderot - Daily Multi-Perspective News Digest

Collects the day's top headlines, finds coverage from outlets across the
political spectrum, separates facts from opinions and writes a neutral
summary for each story. Reports are stored per date and reused.

Examples:
  # Generate today's report (reuses a stored one)
  diderot generate

  # Regenerate a past report
  diderot generate --date 2024-01-15 --force

  # Read a stored report
  diderot show --date 2024-01-15 --format markdown

  # Browse stored reports in the terminal
  diderot browse

  # Start the web interface with scheduled generation
  diderot serve --port 8080`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .diderot.yaml)")

	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewShowCmd())
	rootCmd.AddCommand(NewReportsCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewBrowseCmd())
	rootCmd.AddCommand(NewCacheCmd())
	rootCmd.AddCommand(NewCheckCmd())

	cobra.OnInitialize(initConfig)

	return rootCmd
}

// initConfig applies logging settings once the config file is known. Credentials
// are not required here so read-only commands honour the logging section too.
func initConfig() {
	cfg, err := config.Read(cfgFile)
	if err != nil {
		// commands report an unreadable config themselves
		return
	}
	level := cfg.Logging.Level
	if cfg.App.Debug {
		level = "debug"
	}
	logger.Configure(level, cfg.Logging.Format)
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return exitCode(err)
	}
	return 0
}

// exitCode is 1 for every failure; a cancelled run exits with 130.
func exitCode(err error) int {
	if errors.Is(err, errInterrupted) {
		return 130
	}
	return 1
}
