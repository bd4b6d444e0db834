package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/yad2bot/leadscan/internal/cancel"
	"github.com/yad2bot/leadscan/internal/fetch"
	"github.com/yad2bot/leadscan/internal/model"
	"github.com/yad2bot/leadscan/internal/phone"
	"github.com/yad2bot/leadscan/internal/pipeline"
	"github.com/yad2bot/leadscan/internal/progress"
	"github.com/yad2bot/leadscan/internal/report"
	"github.com/yad2bot/leadscan/internal/store"
)

// NewExtractCmd creates the extract command: the second pipeline stage
// as a standalone process.
func NewExtractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Enrich a crawl export file with phone numbers",
		Long: `Extract visits the detail page of every listing in a crawl export file,
reveals and extracts the contact phone number, and writes the enriched
CSV next to the input. Listings already captured by an earlier run are
skipped.

Example:
  leadscan extract --input ~/.local/share/leadscan/Haifa_rent_recent_2026-08-27.csv`,
		Args: cobra.NoArgs,
		RunE: runExtractCmd,
	}

	addConfigFlags(cmd)
	cmd.Flags().StringP("input", "i", "", "Crawl export file to enrich (required)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// runExtractCmd executes the extract command.
func runExtractCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	input, err := cmd.Flags().GetString("input")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancelCtx, _ := signalContext()
	defer cancelCtx()

	// The run identity is the input file's base name; every coordination
	// file derives from it.
	runName := strings.TrimSuffix(filepath.Base(input), ".csv")
	files := progress.NewFiles(filepath.Dir(input), runName)

	client := fetch.NewClient(cfg.RenderAPIURL, cfg.RenderAPIKey,
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithDelay(cfg.ItemDelay),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithLogger(logger),
	)

	workerOpts := []phone.WorkerOption{
		phone.WithProgressWriter(progress.NewWriter(files.ExtractSnapshot())),
		phone.WithCancelToken(cancel.NewFileToken(files.CancelFlag(), "process")),
		phone.WithLogger(logger),
	}

	p := pipeline.New(pipeline.WithLogger(logger))
	st, err := store.Open(cfg.DataDir, store.DefaultOptions())
	if err != nil {
		logger.Warn("lead store unavailable, dedup and recording disabled", "error", err)
	} else {
		defer st.Close()
		workerOpts = append(workerOpts, phone.WithKnownChecker(st))
	}

	p.AddSteps(&pipeline.ExtractStep{
		Worker: phone.NewWorker(client, workerOpts...),
		Files:  files,
	})
	if st != nil {
		p.AddSteps(&pipeline.RecordStep{Store: st, Files: files, Logger: logger})
	}

	rep := &model.RunReport{RunName: runName, StartedAt: time.Now()}
	if err := p.Execute(ctx, rep); err != nil {
		return err
	}
	rep.FinishedAt = time.Now()

	_, err = report.NewSimpleWriter(cmd.OutOrStdout()).Write(rep)
	return err
}
