package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yad2bot/leadscan/internal/model"
	"github.com/yad2bot/leadscan/internal/report"
	"github.com/yad2bot/leadscan/internal/store"
	"github.com/yad2bot/leadscan/internal/supervisor"
)

// NewRunCmd creates the run command: supervisor plus progress monitor in
// one event loop.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline and stream progress",
		Long: `Run starts the crawl process, monitors both pipeline stages, streams
progress to the terminal, and prints the final report when the run
reaches a terminal state (completed, cancelled, or timed out).

Interrupting with Ctrl-C cancels the run; partial results are kept.

Examples:
  # Fresh rental listings in Tel Aviv
  leadscan run --mode rent --recency recent --city 5000

  # Everything currently listed for sale, first 5 pages
  leadscan run --mode sale --pages 5 --markdown`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	addConfigFlags(cmd)
	addRunParamFlags(cmd)
	cmd.Flags().Bool("markdown", false, "Print the final report as markdown")
	cmd.Flags().String("requester", "cli", "Requester identity for the single-active-run rule")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, _ []string) error {
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
	asMarkdown, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	requester, err := cmd.Flags().GetString("requester")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)
	ctx, cancelCtx, sigCh := signalContext()
	defer cancelCtx()

	out := cmd.OutOrStdout()
	done := make(chan *model.RunReport, 1)

	supOpts := []supervisor.Option{
		supervisor.WithLogger(logger),
		supervisor.WithOnUpdate(func(_ string, snap model.ProgressSnapshot) {
			printProgress(out, snap)
		}),
		supervisor.WithOnFinish(func(_ string, rep *model.RunReport) {
			done <- rep
		}),
	}
	st, err := store.Open(cfg.DataDir, store.DefaultOptions())
	if err != nil {
		logger.Warn("lead store unavailable, run results will not be recorded", "error", err)
	} else {
		defer st.Close()
		supOpts = append(supOpts, supervisor.WithStore(st))
	}

	sup := supervisor.New(cfg, supOpts...)

	params := model.RunParams{Mode: mode, Recency: recency, CityCode: city, PageBudget: pages}
	session, err := sup.StartRun(ctx, requester, params)
	if err != nil {
		if errors.Is(err, supervisor.ErrRunActive) {
			return err
		}
		return fmt.Errorf("failed to start run: %w", err)
	}
	fmt.Fprintf(out, "run started: %s\n", session.RunName)

	// Relay the first interrupt into a cancellation; the monitor then
	// winds the run down and still delivers a final report.
	go func() {
		if _, ok := <-sigCh; ok {
			logger.Info("interrupt received, cancelling run")
			sup.CancelRun(requester)
		}
	}()

	rep := <-done

	var writer report.Writer = report.NewSimpleWriter(out)
	if asMarkdown {
		writer = report.NewMarkdownWriter(out)
	}
	if _, err := writer.Write(rep); err != nil {
		return err
	}
	if rep.Status == model.StatusFailed && rep.Err != nil {
		return rep.Err
	}
	return nil
}

// printProgress renders one snapshot as a progress line.
func printProgress(out io.Writer, snap model.ProgressSnapshot) {
	switch snap.Stage {
	case model.StageChecking:
		fmt.Fprintf(out, "[crawl]   page %d/%d, checked %d, kept %d, duplicates %d  %s\n",
			snap.Page, snap.TotalPages, snap.Current, snap.Found, snap.Duplicates, snap.Label)
	case model.StageExtracting:
		fmt.Fprintf(out, "[extract] %d/%d, phones %d  %s\n",
			snap.Current, snap.Total, snap.PhonesFound, snap.Label)
	case model.StageStarting:
		fmt.Fprintf(out, "[%s]\n", snap.Stage)
	}
}
