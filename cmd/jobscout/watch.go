package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobscout/internal/llm"
)

var watchCommand = &cobra.Command{
	Use:   "watch",
	Short: "Monitor the inbox on an interval",
	Long: `Runs monitoring cycles forever: one immediately, then one per interval.
Per-cycle errors are logged and the loop continues; Ctrl-C exits cleanly.`,
	RunE: watchCmd,
}

var (
	watchFlags    cycleFlags
	watchInterval int
)

func init() {
	watchFlags.register(watchCommand)
	watchCommand.Flags().IntVar(&watchInterval, "interval", 0, "Seconds between cycles (default 43200)")
	rootCmd.AddCommand(watchCommand)
}

func watchCmd(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := watchFlags.settings(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("interval") {
		cfg.IntervalSeconds = watchInterval
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

	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	fmt.Printf("Watching inbox every %s (Ctrl-C to stop)\n", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if result, err := runCycle(ctx, cfg, client, st); err != nil {
			log.Printf("[WATCH] cycle failed: %v", err)
		} else {
			log.Printf("[WATCH] cycle %s: %d posting(s), %d skipped",
				result.RunID, len(result.Postings), len(result.Skipped))
		}

		select {
		case <-ctx.Done():
			fmt.Println("Shutting down")
			return nil
		case <-ticker.C:
		}
	}
}
