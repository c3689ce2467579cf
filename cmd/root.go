// Package cmd defines and implements the CLI commands for the movie-scraper
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/R41CY/movie-scraper/internal/config"
	"github.com/R41CY/movie-scraper/internal/logging"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "movie-scraper",
		Short: "A concurrent scraper for IMDb ranked movie charts.",
		Long: `movie-scraper fetches IMDb chart pages and per-title detail pages
through a chunked, rate-limited fetch engine, ranks the results, and
exports them as a styled Excel workbook plus a JSON run summary.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default uses built-in defaults and SCRAPER_* env vars)")

	cmd.AddCommand(newScrapeCmd())

	return cmd
}

// loadServices builds the config and logger shared by subcommands.
func loadServices() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("build logger: %w", err)
	}
	return cfg, logger, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
