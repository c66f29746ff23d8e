package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/jobscout/internal/classify"
	"github.com/jonathan/jobscout/internal/extract"
	"github.com/jonathan/jobscout/internal/fetch"
)

// Fetcher retrieves the rendered HTML of a page. Implemented by the browser
// session and by the plain HTTP fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Classifier labels a page as job posting, login gate, or neither.
type Classifier interface {
	Classify(ctx context.Context, url, pageText string) (classify.Result, error)
}

// Extractor pulls a structured posting out of job page text.
type Extractor interface {
	Extract(ctx context.Context, currentURL, pageText string) (*extract.JobPosting, error)
}

// LoginExecutor submits a login form with configured credentials.
type LoginExecutor interface {
	HasCredentialsFor(pageURL string) bool
	Login(ctx context.Context, pageURL string, selectors classify.LoginSelectors) error
}

// ErrLoginUnavailable marks a login-gated page reached without an
// interactive browser session.
var ErrLoginUnavailable = errors.New("login required but browser mode is disabled")

// Worker processes one URL at a time through fetch, classify, and extract.
// Login is nil when pages are fetched over plain HTTP.
type Worker struct {
	Fetcher    Fetcher
	Classifier Classifier
	Extractor  Extractor
	Login      LoginExecutor
	Verbose    bool
}

// Process runs the state machine for one URL. A nil error means a posting
// was extracted; every other outcome is an error describing the skip.
func (w *Worker) Process(ctx context.Context, url string) (*extract.JobPosting, error) {
	result, text, err := w.fetchAndClassify(ctx, url)
	if err != nil {
		return nil, err
	}

	switch result.Kind {
	case classify.KindJobPage:
		return w.Extractor.Extract(ctx, url, text)

	case classify.KindLoginPage:
		return w.processLoginGate(ctx, url, *result.Selectors)

	default:
		return nil, fmt.Errorf("page is not job-related")
	}
}

// processLoginGate logs in and retries the page once. The page behind the
// gate must classify as a job page; a second login gate is a dead end.
func (w *Worker) processLoginGate(ctx context.Context, url string, selectors classify.LoginSelectors) (*extract.JobPosting, error) {
	if w.Login == nil {
		return nil, ErrLoginUnavailable
	}
	if !w.Login.HasCredentialsFor(url) {
		return nil, fmt.Errorf("login required but no credentials configured")
	}

	if w.Verbose {
		log.Printf("[LOGIN] Attempting login for %s", url)
	}
	if err := w.Login.Login(ctx, url, selectors); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	result, text, err := w.fetchAndClassify(ctx, url)
	if err != nil {
		return nil, err
	}
	if result.Kind != classify.KindJobPage {
		return nil, fmt.Errorf("page is not a job posting after login")
	}
	return w.Extractor.Extract(ctx, url, text)
}

// fetchAndClassify retrieves the page, reduces it to main text, and labels
// it. Classification failure surfaces as an error with the page already
// labeled neither.
func (w *Worker) fetchAndClassify(ctx context.Context, url string) (classify.Result, string, error) {
	html, err := w.Fetcher.Fetch(ctx, url)
	if err != nil {
		return classify.Result{Kind: classify.KindNeither}, "", fmt.Errorf("fetch: %w", err)
	}

	text, err := fetch.ExtractMainText(html, fetch.JobPostingSelectors())
	if err != nil {
		return classify.Result{Kind: classify.KindNeither}, "", fmt.Errorf("extract text: %w", err)
	}

	result, err := w.Classifier.Classify(ctx, url, text)
	if err != nil {
		return result, text, fmt.Errorf("classify: %w", err)
	}
	return result, text, nil
}
