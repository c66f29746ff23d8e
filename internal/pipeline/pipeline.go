// Package pipeline orchestrates one monitoring cycle: list unread email,
// harvest job links, classify and extract each page, and send the summary.
// Everything below the cycle boundary degrades per-URL; only collaborator
// construction and inbox access can fail the cycle itself.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/jobscout/internal/extract"
	"github.com/jonathan/jobscout/internal/llm"
	"github.com/jonathan/jobscout/internal/mail"
	"github.com/jonathan/jobscout/internal/prompts"
	"github.com/jonathan/jobscout/internal/report"
)

// filterCap bounds how much of an email body the relevance filter sees.
const filterCap = 4000

// Mailbox lists unread messages and marks them read.
type Mailbox interface {
	ListUnread(ctx context.Context, max int) ([]mail.Message, error)
	MarkRead(ctx context.Context, uid imap.UID) error
}

// Harvester extracts candidate job URLs from one email body.
type Harvester interface {
	Harvest(ctx context.Context, emailBody string) []string
}

// Notifier delivers the summary email.
type Notifier interface {
	Send(subject, body string) error
}

// RunStore persists cycle records and postings. *store.Store implements it;
// a nil RunStore disables persistence.
type RunStore interface {
	CreateRun(ctx context.Context, runID uuid.UUID) error
	CompleteRun(ctx context.Context, runID uuid.UUID, status string, emailCount, linkCount, jobCount int) error
	SavePosting(ctx context.Context, runID uuid.UUID, posting extract.JobPosting) error
	HasPosting(ctx context.Context, applicationURL string) (bool, error)
}

// Skip records one URL that produced no posting and why.
type Skip struct {
	URL    string
	Reason string
}

// RunResult is the outcome of one monitoring cycle.
type RunResult struct {
	RunID      uuid.UUID
	Postings   []extract.JobPosting
	Skipped    []Skip
	EmailCount int
	LinkCount  int
}

// Monitor runs monitoring cycles. Mailbox, Harvester, Notifier, and
// NewWorker are required; Filter and Store are optional.
type Monitor struct {
	Mailbox   Mailbox
	Harvester Harvester
	Notifier  Notifier

	// NewWorker builds one page-processing worker plus its cleanup func.
	// Called once per concurrent worker so each owns its browser session.
	NewWorker func(ctx context.Context) (*Worker, func(), error)

	// Filter, when set, drops emails the model says are not job-related
	// before link harvesting. Filter failures keep the email.
	Filter llm.Client

	// Store persists runs and postings when non-nil, and drops URLs whose
	// posting a previous cycle already stored. Store failures are logged
	// and never fail the cycle.
	Store RunStore

	Workers    int
	URLTimeout time.Duration
	MaxEmails  int
	Verbose    bool

	// now is swapped in tests.
	now func() time.Time
}

// Run executes one full cycle and returns its result. The returned error is
// non-nil only for cycle-level failures (inbox access, worker construction,
// summary delivery); per-URL failures land in RunResult.Skipped.
func (m *Monitor) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{RunID: uuid.New()}

	if m.Store != nil {
		if err := m.Store.CreateRun(ctx, result.RunID); err != nil {
			log.Printf("[STORE] create run: %v", err)
		}
	}

	fmt.Printf("Step 1: Checking inbox for unread messages...\n")
	messages, err := m.Mailbox.ListUnread(ctx, m.MaxEmails)
	if err != nil {
		m.completeRun(ctx, result, "failed")
		return nil, fmt.Errorf("list unread messages: %w", err)
	}
	result.EmailCount = len(messages)
	fmt.Printf("  Found %d unread message(s)\n", len(messages))

	fmt.Printf("Step 2: Harvesting job links...\n")
	urls := m.harvestAll(ctx, messages)
	result.LinkCount = len(urls)
	fmt.Printf("  Found %d candidate link(s)\n", len(urls))
	urls = m.dropStored(ctx, urls, result)

	fmt.Printf("Step 3: Processing pages...\n")
	if err := m.processURLs(ctx, urls, result); err != nil {
		m.completeRun(ctx, result, "failed")
		return nil, err
	}

	m.markAllRead(ctx, messages)

	// Persist before notifying: the emails are consumed at this point, so a
	// failed send must not also lose the extracted postings.
	m.savePostings(ctx, result)

	fmt.Printf("Step 4: Reporting...\n")
	if len(result.Postings) > 0 {
		subject := report.Subject(m.timeNow())
		body := report.Summary(result.Postings)
		if err := m.Notifier.Send(subject, body); err != nil {
			m.completeRun(ctx, result, "failed")
			return result, fmt.Errorf("send summary: %w", err)
		}
		fmt.Printf("  Sent summary with %d posting(s)\n", len(result.Postings))
	} else {
		fmt.Printf("  No new job postings found\n")
	}

	m.completeRun(ctx, result, "completed")

	return result, nil
}

// dropStored filters out URLs whose posting is already in the store, so a
// link that reappears across cycles is not refetched. Store errors keep the
// URL in play.
func (m *Monitor) dropStored(ctx context.Context, urls []string, result *RunResult) []string {
	if m.Store == nil || len(urls) == 0 {
		return urls
	}

	kept := urls[:0]
	for _, u := range urls {
		exists, err := m.Store.HasPosting(ctx, u)
		if err != nil {
			log.Printf("[STORE] posting lookup for %s: %v", u, err)
			kept = append(kept, u)
			continue
		}
		if exists {
			if m.Verbose {
				log.Printf("[STORE] Skipping %s: posting already stored", u)
			}
			result.Skipped = append(result.Skipped, Skip{URL: u, Reason: "posting already stored"})
			continue
		}
		kept = append(kept, u)
	}
	return kept
}

// harvestAll collects candidate URLs from every message, filtered and
// deduplicated, preserving first-seen order.
func (m *Monitor) harvestAll(ctx context.Context, messages []mail.Message) []string {
	seen := make(map[string]struct{})
	var urls []string

	for _, msg := range messages {
		if m.Filter != nil && !m.isJobEmail(ctx, msg) {
			if m.Verbose {
				log.Printf("[FILTER] Skipping email uid=%d subject=%q", msg.UID, msg.Subject)
			}
			continue
		}

		for _, u := range m.Harvester.Harvest(ctx, msg.Body) {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			urls = append(urls, u)
		}
	}
	return urls
}

// isJobEmail asks the model whether the email is job-related. Any failure
// keeps the email in play.
func (m *Monitor) isJobEmail(ctx context.Context, msg mail.Message) bool {
	template, err := prompts.Get("harvest.json", "is-job-email")
	if err != nil {
		return true
	}
	prompt := prompts.Format(template, map[string]string{
		"EmailBody": llm.Truncate(msg.Subject+"\n"+msg.Body, filterCap),
	})

	resp, err := m.Filter.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		log.Printf("[FILTER] email relevance check failed: %v", err)
		return true
	}
	return !strings.HasPrefix(strings.ToLower(strings.TrimSpace(resp)), "no")
}

// processURLs fans the queue out over Workers workers, collecting postings
// and skips. A worker that cannot be constructed fails the cycle.
func (m *Monitor) processURLs(ctx context.Context, urls []string, result *RunResult) error {
	if len(urls) == 0 {
		return nil
	}

	workers := m.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(urls) {
		workers = len(urls)
	}

	queue := make(chan string)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			worker, cleanup, err := m.NewWorker(gctx)
			if err != nil {
				return fmt.Errorf("start worker: %w", err)
			}
			defer cleanup()

			for url := range queue {
				posting, err := m.processOne(gctx, worker, url)
				mu.Lock()
				if err != nil {
					log.Printf("[PIPELINE] Skipping %s: %v", url, err)
					result.Skipped = append(result.Skipped, Skip{URL: url, Reason: err.Error()})
				} else {
					result.Postings = append(result.Postings, *posting)
				}
				mu.Unlock()
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(queue)
		for _, url := range urls {
			select {
			case queue <- url:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	return g.Wait()
}

// processOne applies the per-URL timeout around the worker state machine.
func (m *Monitor) processOne(ctx context.Context, worker *Worker, url string) (*extract.JobPosting, error) {
	if m.URLTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.URLTimeout)
		defer cancel()
	}
	return worker.Process(ctx, url)
}

// markAllRead sets \Seen on every processed message. Failures are logged;
// a message left unread is re-examined next cycle, which dedupe absorbs.
func (m *Monitor) markAllRead(ctx context.Context, messages []mail.Message) {
	for _, msg := range messages {
		if err := m.Mailbox.MarkRead(ctx, msg.UID); err != nil {
			log.Printf("[IMAP] mark read uid=%d: %v", msg.UID, err)
		}
	}
}

func (m *Monitor) savePostings(ctx context.Context, result *RunResult) {
	if m.Store == nil {
		return
	}
	for _, p := range result.Postings {
		if err := m.Store.SavePosting(ctx, result.RunID, p); err != nil {
			log.Printf("[STORE] save posting: %v", err)
		}
	}
}

func (m *Monitor) completeRun(ctx context.Context, result *RunResult, status string) {
	if m.Store == nil {
		return
	}
	err := m.Store.CompleteRun(ctx, result.RunID, status,
		result.EmailCount, result.LinkCount, len(result.Postings))
	if err != nil {
		log.Printf("[STORE] complete run: %v", err)
	}
}

func (m *Monitor) timeNow() time.Time {
	if m.now != nil {
		return m.now()
	}
	return time.Now()
}
