package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/jobscout/internal/browser"
	"github.com/jonathan/jobscout/internal/classify"
	"github.com/jonathan/jobscout/internal/config"
	"github.com/jonathan/jobscout/internal/extract"
	"github.com/jonathan/jobscout/internal/fetch"
	"github.com/jonathan/jobscout/internal/harvest"
	"github.com/jonathan/jobscout/internal/llm"
	"github.com/jonathan/jobscout/internal/login"
	"github.com/jonathan/jobscout/internal/mail"
	"github.com/jonathan/jobscout/internal/pipeline"
	"github.com/jonathan/jobscout/internal/store"
)

// runCycle executes one full monitoring cycle. The IMAP connection is opened
// per cycle; with the default 12h interval a held connection would not
// survive between cycles anyway.
func runCycle(ctx context.Context, cfg *config.Config, client llm.Client, st *store.Store) (*pipeline.RunResult, error) {
	mailbox, err := mail.Dial(ctx, cfg.IMAPAddr, cfg.IMAPUsername, cfg.IMAPPassword)
	if err != nil {
		return nil, err
	}
	defer mailbox.Close()
	mailbox.SetVerbose(cfg.Verbose)

	notifier, err := mail.NewNotifier(cfg.SMTPAddr, cfg.SMTPUsername, cfg.SMTPPassword, cfg.Sender, cfg.Recipient)
	if err != nil {
		return nil, err
	}

	var harvester *harvest.Harvester
	if cfg.HarvestStrategy == "llm" {
		harvester = harvest.NewLLMAssisted(client)
	} else {
		harvester = harvest.NewStatic(cfg.Keywords)
	}

	monitor := &pipeline.Monitor{
		Mailbox:    mailbox,
		Harvester:  harvester,
		Notifier:   notifier,
		NewWorker:  workerFactory(cfg, client),
		Workers:    cfg.Workers,
		URLTimeout: time.Duration(cfg.URLTimeoutSeconds) * time.Second,
		MaxEmails:  cfg.MaxEmails,
		Verbose:    cfg.Verbose,
	}
	if cfg.FilterEmails {
		monitor.Filter = client
	}
	// Assign only a live store: a typed-nil *store.Store inside the
	// interface would defeat the Monitor's nil checks.
	if st != nil {
		monitor.Store = st
	}

	return monitor.Run(ctx)
}

// workerFactory returns the per-worker constructor. In browser mode each
// worker owns its own chromedp session so logins cannot interleave.
func workerFactory(cfg *config.Config, client llm.Client) func(ctx context.Context) (*pipeline.Worker, func(), error) {
	return func(ctx context.Context) (*pipeline.Worker, func(), error) {
		worker := &pipeline.Worker{
			Classifier: classify.NewClassifier(client),
			Extractor:  extract.NewExtractor(client),
			Verbose:    cfg.Verbose,
		}

		if !cfg.UseBrowser {
			worker.Fetcher = fetch.NewClient(nil)
			return worker, func() {}, nil
		}

		opts := browser.DefaultOptions()
		opts.Verbose = cfg.Verbose
		session, err := browser.NewSession(ctx, opts)
		if err != nil {
			return nil, nil, fmt.Errorf("start browser: %w", err)
		}

		executor := login.NewExecutor(session,
			login.Credentials{Username: cfg.Generic.Username, Password: cfg.Generic.Password},
			login.Credentials{Username: cfg.LinkedIn.Username, Password: cfg.LinkedIn.Password},
		)
		executor.SetVerbose(cfg.Verbose)

		worker.Fetcher = session
		worker.Login = executor
		return worker, session.Close, nil
	}
}

// openStore connects to PostgreSQL when configured. Persistence is optional;
// connection failure downgrades to running without it.
func openStore(ctx context.Context, cfg *config.Config) *store.Store {
	if cfg.DatabaseURL == "" {
		return nil
	}
	st, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Printf("[STORE] disabled: %v", err)
		return nil
	}
	if err := st.EnsureSchema(ctx); err != nil {
		log.Printf("[STORE] disabled: %v", err)
		st.Close()
		return nil
	}
	return st
}
