// Package browser owns a headless Chrome session used to render pages and
// drive login forms. A Session has exactly one logical owner at a time;
// concurrent workers must each create their own Session.
package browser

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultNavigateTimeout bounds a single page load.
const DefaultNavigateTimeout = 30 * time.Second

// DefaultSettle is the post-ready delay that lets client-side rendering
// finish. Tunable, not correctness-bearing; the readyState poll does the
// real waiting.
const DefaultSettle = 2 * time.Second

// Error represents a navigation or rendering failure for one URL.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("browser error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("browser error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures a Session.
type Options struct {
	NavigateTimeout time.Duration
	Settle          time.Duration
	UserAgent       string
	Verbose         bool
}

// DefaultOptions returns sensible defaults for a headless session.
func DefaultOptions() *Options {
	return &Options{
		NavigateTimeout: DefaultNavigateTimeout,
		Settle:          DefaultSettle,
	}
}

// Session wraps a chromedp browser context. The browser process is started
// once and reused across fetches; Close releases it.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	opts    *Options
}

// NewSession starts a headless browser. The session is bound to parent: when
// parent is cancelled the browser shuts down.
func NewSession(parent context.Context, opts *Options) (*Session, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.NavigateTimeout <= 0 {
		opts.NavigateTimeout = DefaultNavigateTimeout
	}
	if opts.Settle <= 0 {
		opts.Settle = DefaultSettle
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:     browserCtx,
		cancels: []context.CancelFunc{browserCancel, allocCancel},
		opts:    opts,
	}

	// Start the browser now so startup failures surface here, not mid-run.
	if err := chromedp.Run(browserCtx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return s, nil
}

// Close shuts down the browser process. Safe to call more than once.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// Fetch navigates to the URL and returns the fully rendered document HTML.
// It waits for document.readyState to reach "complete", then applies the
// settle delay for late client-side rendering.
func (s *Session) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &Error{URL: url, Message: "context cancelled", Cause: err}
	}

	if s.opts.Verbose {
		log.Printf("[BROWSER] Fetching: %s", url)
	}

	opCtx, cancel := context.WithTimeout(s.ctx, s.opts.NavigateTimeout)
	defer cancel()

	var html string
	err := chromedp.Run(opCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
		chromedp.Poll(`document.readyState === "complete"`, nil),
		chromedp.Sleep(s.opts.Settle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", &Error{URL: url, Message: "navigation failed", Cause: err}
	}

	if s.opts.Verbose {
		log.Printf("[BROWSER] Rendered HTML: %d bytes", len(html))
	}

	return html, nil
}

// Navigate loads the URL and waits for the body element.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return &Error{URL: url, Message: "context cancelled", Cause: err}
	}

	opCtx, cancel := context.WithTimeout(s.ctx, s.opts.NavigateTimeout)
	defer cancel()

	err := chromedp.Run(opCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return &Error{URL: url, Message: "navigation failed", Cause: err}
	}
	return nil
}

// WaitVisible blocks until the selector matches a visible element or the
// timeout expires.
func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	if err := chromedp.Run(opCtx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("element %q not visible: %w", selector, err)
	}
	return nil
}

// SendKeys types text into the first element matching the selector.
func (s *Session) SendKeys(ctx context.Context, selector, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(s.ctx, s.opts.NavigateTimeout)
	defer cancel()

	if err := chromedp.Run(opCtx, chromedp.SendKeys(selector, text, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to fill %q: %w", selector, err)
	}
	return nil
}

// Click clicks the first element matching the selector.
func (s *Session) Click(ctx context.Context, selector string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	opCtx, cancel := context.WithTimeout(s.ctx, s.opts.NavigateTimeout)
	defer cancel()

	if err := chromedp.Run(opCtx, chromedp.Click(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to click %q: %w", selector, err)
	}
	return nil
}

// CountMatches returns how many elements match the selector. Used to probe
// for error banners after a login attempt.
func (s *Session) CountMatches(ctx context.Context, selector string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	opCtx, cancel := context.WithTimeout(s.ctx, s.opts.NavigateTimeout)
	defer cancel()

	var count int
	expr := fmt.Sprintf(`document.querySelectorAll(%q).length`, selector)
	if err := chromedp.Run(opCtx, chromedp.Evaluate(expr, &count)); err != nil {
		return 0, fmt.Errorf("failed to count %q: %w", selector, err)
	}
	return count, nil
}
