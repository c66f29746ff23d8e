package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobscout/internal/config"
)

// cycleFlags holds the flags shared by the run and watch commands. Flag
// values override config file values only when explicitly set.
type cycleFlags struct {
	configPath string

	imapAddr     string
	imapUsername string
	imapPassword string
	smtpAddr     string
	recipient    string

	keywords        []string
	harvestStrategy string
	filterEmails    bool

	apiKey      string
	useBrowser  bool
	verbose     bool
	workers     int
	urlTimeout  int
	databaseURL string
}

func (f *cycleFlags) register(cmd *cobra.Command) {
	// Config file flag (processed first)
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	cmd.Flags().StringVar(&f.imapAddr, "imap-addr", "", "IMAP server host:port (implicit TLS)")
	cmd.Flags().StringVar(&f.imapUsername, "imap-username", "", "IMAP account username")
	cmd.Flags().StringVar(&f.imapPassword, "imap-password", "", "IMAP account password")
	cmd.Flags().StringVar(&f.smtpAddr, "smtp-addr", "", "SMTP server host:port (STARTTLS)")
	cmd.Flags().StringVar(&f.recipient, "recipient", "", "Summary email recipient")

	cmd.Flags().StringSliceVar(&f.keywords, "keywords", nil, "Link keywords for harvesting (default job,career,recruiting,hiring,apply)")
	cmd.Flags().StringVar(&f.harvestStrategy, "harvest-strategy", "", "Link harvesting strategy: static or llm")
	cmd.Flags().BoolVar(&f.filterEmails, "filter-emails", false, "Ask the model whether each email is job-related before harvesting")

	cmd.Flags().BoolVar(&f.useBrowser, "use-browser", false, "Use headless browser for SPA sites and portal logins (requires Chrome)")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "Concurrent page workers (default 1)")
	cmd.Flags().IntVar(&f.urlTimeout, "url-timeout", 0, "Per-URL processing timeout in seconds")

	// API key can be passed as a flag, or read from env var GEMINI_API_KEY
	cmd.Flags().StringVar(&f.apiKey, "api-key", "", "Gemini API Key (optional, defaults to GEMINI_API_KEY env var)")

	// Database URL for run persistence
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
}

// settings loads the config file, applies explicit flag overrides and
// environment fallbacks, fills defaults, and validates the result.
func (f *cycleFlags) settings(cmd *cobra.Command) (*config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if f.verbose {
			fmt.Printf("Loaded config from: %s\n", f.configPath)
		}
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("imap-addr") {
		cfg.IMAPAddr = f.imapAddr
	}
	if cmd.Flags().Changed("imap-username") {
		cfg.IMAPUsername = f.imapUsername
	}
	if cmd.Flags().Changed("imap-password") {
		cfg.IMAPPassword = f.imapPassword
	}
	if cmd.Flags().Changed("smtp-addr") {
		cfg.SMTPAddr = f.smtpAddr
	}
	if cmd.Flags().Changed("recipient") {
		cfg.Recipient = f.recipient
	}
	if cmd.Flags().Changed("keywords") {
		cfg.Keywords = f.keywords
	}
	if cmd.Flags().Changed("harvest-strategy") {
		cfg.HarvestStrategy = f.harvestStrategy
	}
	if cmd.Flags().Changed("filter-emails") {
		cfg.FilterEmails = f.filterEmails
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = f.apiKey
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = f.useBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if cmd.Flags().Changed("workers") {
		cfg.Workers = f.workers
	}
	if cmd.Flags().Changed("url-timeout") {
		cfg.URLTimeoutSeconds = f.urlTimeout
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}

	cfg.FillFromEnv()
	cfg = cfg.MergeWithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
