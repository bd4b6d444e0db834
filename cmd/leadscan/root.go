package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yad2bot/leadscan/internal/config"
	"github.com/yad2bot/leadscan/internal/log"
)

// NewRootCmd creates the root command for leadscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leadscan",
		Short: "Property-listing lead scanner",
		Long: `leadscan crawls a classifieds site for fresh private-owner property
listings, enriches them with contact phone numbers from the listing
detail pages, and exports the result as CSV.

The run command drives the whole pipeline; crawl and extract are the
underlying stages, each running as its own process.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewExtractCmd())
	cmd.AddCommand(NewCancelCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// addConfigFlags registers the flags every pipeline command shares.
func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .leadscan in current, XDG config, or home directory)")
	cmd.Flags().StringP("data-dir", "D", "",
		"Data directory for snapshots, flags, and CSV files (default: XDG data directory)")
	cmd.Flags().StringP("api-key", "k", "",
		"Render-service API key (default: config file, then "+config.EnvAPIKey+")")
}

// addRunParamFlags registers the crawl-selection flags.
func addRunParamFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("mode", "m", "rent", "Listing market: rent or sale")
	cmd.Flags().StringP("recency", "r", "all", "Date filter: recent (last 24 hours) or all")
	cmd.Flags().String("city", "", "City code to restrict the crawl to (e.g. 4000)")
	cmd.Flags().IntP("pages", "p", 0, "Maximum list pages to crawl (default from config)")
}

// buildConfig creates a Config from the config file and flags. Flags win
// over the file, the file wins over defaults, and the environment fills
// the API key last.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if found := config.FindConfigFile(configPath); found != "" {
		cf, err := config.LoadConfigFile(found)
		if err != nil && !errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("failed to load config file %s: %w", found, err)
		}
		if cf != nil {
			if err := cf.Apply(cfg); err != nil {
				return nil, fmt.Errorf("invalid config file %s: %w", found, err)
			}
		}
	}

	if dataDir, err := cmd.Flags().GetString("data-dir"); err == nil && dataDir != "" {
		cfg.DataDir = dataDir
	}
	if apiKey, err := cmd.Flags().GetString("api-key"); err == nil && apiKey != "" {
		cfg.RenderAPIKey = apiKey
	}
	config.ResolveAPIKey(cfg)

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// runParams reads the crawl-selection flags and validates the enums.
func runParams(cmd *cobra.Command, cfg *config.Config) (mode, recency, city string, pages int, err error) {
	mode, err = cmd.Flags().GetString("mode")
	if err != nil {
		return "", "", "", 0, err
	}
	if _, ok := config.BaseURLs[mode]; !ok {
		return "", "", "", 0, fmt.Errorf("%w: %q", config.ErrUnknownMode, mode)
	}

	recency, err = cmd.Flags().GetString("recency")
	if err != nil {
		return "", "", "", 0, err
	}
	if recency != "recent" && recency != "all" {
		return "", "", "", 0, fmt.Errorf("%w: %q", config.ErrUnknownRecency, recency)
	}

	city, err = cmd.Flags().GetString("city")
	if err != nil {
		return "", "", "", 0, err
	}
	pages, err = cmd.Flags().GetInt("pages")
	if err != nil {
		return "", "", "", 0, err
	}
	if pages < 1 {
		pages = cfg.PageBudget
	}
	return mode, recency, city, pages, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// setupLogger builds the sanitizing logger and installs it as default.
func setupLogger(verbose bool) *slog.Logger {
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	return logger
}

// signalContext returns a context cancelled on SIGINT/SIGTERM, plus a
// channel delivering the first signal for commands that react to it
// themselves.
func signalContext() (context.Context, context.CancelFunc, <-chan os.Signal) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	relay := make(chan os.Signal, 1)
	go func() {
		sig := <-sigCh
		relay <- sig
		cancel()
	}()
	return ctx, cancel, relay
}
