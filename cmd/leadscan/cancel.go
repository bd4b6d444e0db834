package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yad2bot/leadscan/internal/supervisor"
)

// NewCancelCmd creates the cancel command: the cross-process half of run
// cancellation, for when the run was started from another process that
// is no longer reachable.
func NewCancelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel any run in progress",
		Long: `Cancel writes cancellation flags for every run that could be live today
and kills stray pipeline processes. The crawl and extraction processes
notice the flag at their next checkpoint and stop, keeping partial
results.

Safe to call when nothing is running.`,
		Args: cobra.NoArgs,
		RunE: runCancelCmd,
	}

	addConfigFlags(cmd)
	cmd.Flags().String("requester", "cli", "Requester identity recorded in the flag files")

	return cmd
}

// runCancelCmd executes the cancel command.
func runCancelCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	requester, err := cmd.Flags().GetString("requester")
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)

	if err := supervisor.FlagAllRuns(cfg.DataDir, time.Now(), requester); err != nil {
		return fmt.Errorf("failed to write cancellation flags: %w", err)
	}
	supervisor.KillByName(logger)

	fmt.Fprintln(cmd.OutOrStdout(), "cancellation requested; running stages will stop at their next checkpoint")
	return nil
}
