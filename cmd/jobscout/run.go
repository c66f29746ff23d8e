package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobscout/internal/llm"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run one monitoring cycle end-to-end",
	Long: `Checks the inbox for unread messages, harvests job links, classifies and
extracts each page, and sends a summary email when new postings were found.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runCycleCmd,
}

var runFlags cycleFlags

func init() {
	runFlags.register(runCommand)
	rootCmd.AddCommand(runCommand)
}

func runCycleCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := runFlags.settings(cmd)
	if err != nil {
		return err
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	st := openStore(ctx, cfg)
	if st != nil {
		defer st.Close()
	}

	result, err := runCycle(ctx, cfg, client, st)
	if err != nil {
		return err
	}

	fmt.Printf("Done: %d email(s), %d link(s), %d posting(s), %d skipped (run %s)\n",
		result.EmailCount, result.LinkCount, len(result.Postings), len(result.Skipped), result.RunID)
	return nil
}
