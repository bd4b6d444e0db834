package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/yad2bot/leadscan/internal/cancel"
	"github.com/yad2bot/leadscan/internal/config"
	"github.com/yad2bot/leadscan/internal/crawler"
	"github.com/yad2bot/leadscan/internal/fetch"
	"github.com/yad2bot/leadscan/internal/model"
	"github.com/yad2bot/leadscan/internal/pipeline"
	"github.com/yad2bot/leadscan/internal/progress"
	"github.com/yad2bot/leadscan/internal/report"
	"github.com/yad2bot/leadscan/internal/store"
)

// NewCrawlCmd creates the crawl command: the first pipeline stage as a
// standalone process.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Crawl list pages and export kept listings",
		Long: `Crawl walks the site's list pages, keeps fresh private-owner listings
that are not already in the lead store, and writes them to the run's CSV
file. When listings were kept, the extraction stage is started on the
result.

Progress is continuously written to the run's snapshot file so a monitor
in another process can follow along. Cancellation is requested by
creating the run's cancel-flag file (see the cancel command).

Examples:
  # Crawl today's rental listings in Haifa
  leadscan crawl --mode rent --recency recent --city 4000

  # Crawl up to 3 pages of sale listings countrywide
  leadscan crawl --mode sale --pages 3`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	addConfigFlags(cmd)
	addRunParamFlags(cmd)
	cmd.Flags().Bool("no-extract", false, "Do not start the extraction stage after the crawl")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	mode, recency, city, pages, err := runParams(cmd, cfg)
	if err != nil {
		return err
	}
	noExtract, err := cmd.Flags().GetBool("no-extract")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancelCtx, _ := signalContext()
	defer cancelCtx()

	params := model.RunParams{Mode: mode, Recency: recency, CityCode: city, PageBudget: pages}
	runName := config.RunName(city, mode, recency, time.Now())
	files := progress.NewFiles(cfg.DataDir, runName)

	client := fetch.NewClient(cfg.RenderAPIURL, cfg.RenderAPIKey,
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithDelay(cfg.ItemDelay),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithLogger(logger),
	)

	// One writer owns the snapshot file's sequence numbers; the crawler
	// and the final-step writes share it.
	writer := progress.NewWriter(files.CrawlSnapshot())

	crawlOpts := []crawler.Option{
		crawler.WithProgressWriter(writer),
		crawler.WithCancelToken(cancel.NewFileToken(files.CancelFlag(), "process")),
		crawler.WithLogger(logger),
	}
	st, err := store.Open(cfg.DataDir, store.DefaultOptions())
	if err != nil {
		// The crawl still works without dedup; duplicates just reach the
		// extraction stage, which re-checks.
		logger.Warn("lead store unavailable, dedup disabled", "error", err)
	} else {
		defer st.Close()
		crawlOpts = append(crawlOpts, crawler.WithKnownChecker(st))
	}

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(&pipeline.CrawlStep{
		Crawler:  crawler.New(client, crawlOpts...),
		Files:    files,
		Progress: writer,
		Logger:   logger,
	})

	rep := &model.RunReport{RunName: runName, Params: params, StartedAt: time.Now()}
	if err := p.Execute(ctx, rep); err != nil {
		return err
	}
	rep.FinishedAt = time.Now()

	if _, err := report.NewSimpleWriter(cmd.OutOrStdout()).Write(rep); err != nil {
		return err
	}

	if rep.Status == model.StatusCompleted && rep.Kept > 0 && !noExtract {
		return startExtraction(ctx, cfg, files, logger)
	}
	return nil
}

// startExtraction launches the extraction stage on the crawl output as
// its own process, mirroring how the supervisor launches the crawl.
func startExtraction(ctx context.Context, cfg *config.Config, files progress.Files, logger *slog.Logger) error {
	self, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to resolve own binary: %w", err)
	}

	args := []string{
		"extract",
		"--input", files.Intermediate(),
		"--data-dir", cfg.DataDir,
	}
	extractCmd := exec.CommandContext(ctx, self, args...)
	extractCmd.Env = append(os.Environ(), config.EnvAPIKey+"="+cfg.RenderAPIKey)
	extractCmd.Stdout = os.Stdout
	extractCmd.Stderr = os.Stderr

	logger.Info("starting extraction stage", "input", files.Intermediate())
	if err := extractCmd.Run(); err != nil {
		return fmt.Errorf("extraction stage failed: %w", err)
	}
	return nil
}
