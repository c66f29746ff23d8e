package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobscout/internal/config"
	"github.com/jonathan/jobscout/internal/report"
	"github.com/jonathan/jobscout/internal/store"
)

var listCommand = &cobra.Command{
	Use:   "list",
	Short: "List recently stored job postings",
	Long:  "Prints the most recently stored postings from the database. Requires persistence to be configured (--db-url, config file, or DATABASE_URL).",
	RunE:  listCmd,
}

var (
	listConfigPath  string
	listDatabaseURL string
	listLimit       int
)

func init() {
	listCommand.Flags().StringVar(&listConfigPath, "config", "", "Path to config.json file")
	listCommand.Flags().StringVar(&listDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	listCommand.Flags().IntVar(&listLimit, "limit", 20, "Maximum postings to list")
	rootCmd.AddCommand(listCommand)
}

func listCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	var cfg config.Config
	if listConfigPath != "" {
		loaded, err := config.LoadConfig(listConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = listDatabaseURL
	}
	cfg.FillFromEnv()

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("no database configured: set --db-url, database_url in the config file, or DATABASE_URL")
	}

	st, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	postings, err := st.ListRecentPostings(ctx, listLimit)
	if err != nil {
		return err
	}

	if len(postings) == 0 {
		fmt.Println("No postings stored yet.")
		return nil
	}
	fmt.Print(report.Summary(postings))
	return nil
}
