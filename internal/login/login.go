// Package login drives credentialed login on a rendered page: fill username,
// fill password, submit, then probe for error banners. Absence of an error
// banner is a heuristic success signal, not proof.
package login

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/jobscout/internal/classify"
)

// FieldTimeout is the bounded wait for the username field to appear.
const FieldTimeout = 10 * time.Second

// SubmitSettle is the wait after clicking submit before probing for errors.
const SubmitSettle = 5 * time.Second

// ErrorMarkerSelector matches the error banners a failed login commonly
// renders.
const ErrorMarkerSelector = ".error, .alert-error"

// linkedinLoginURL and the fixed selectors below special-case the one
// professional-network site whose login form we know outright.
const linkedinLoginURL = "https://www.linkedin.com/login"

var linkedinSelectors = classify.LoginSelectors{
	Username: "#username",
	Password: "#password",
	Submit:   "button[type='submit']",
}

// Credentials is one username/password pair.
type Credentials struct {
	Username string
	Password string
}

// Empty reports whether either half of the pair is missing.
func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// Error represents a failed login attempt. The URL it belongs to is skipped;
// the run continues.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("login error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("login error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Driver is the subset of browser session operations login needs.
// *browser.Session implements it.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	SendKeys(ctx context.Context, selector, text string) error
	Click(ctx context.Context, selector string) error
	CountMatches(ctx context.Context, selector string) (int, error)
}

// Executor runs the login state machine on a browser session.
type Executor struct {
	driver       Driver
	generic      Credentials
	linkedin     Credentials
	fieldTimeout time.Duration
	settle       time.Duration
	verbose      bool
}

// NewExecutor creates a login executor. Either credential pair may be empty;
// HasCredentialsFor reports per-URL availability.
func NewExecutor(driver Driver, generic, linkedin Credentials) *Executor {
	return &Executor{
		driver:       driver,
		generic:      generic,
		linkedin:     linkedin,
		fieldTimeout: FieldTimeout,
		settle:       SubmitSettle,
	}
}

// WithTimeouts overrides the field wait and post-submit settle. Used by tests.
func (e *Executor) WithTimeouts(fieldTimeout, settle time.Duration) *Executor {
	e.fieldTimeout = fieldTimeout
	e.settle = settle
	return e
}

// SetVerbose enables step logging.
func (e *Executor) SetVerbose(v bool) {
	e.verbose = v
}

// HasCredentialsFor reports whether a login on this URL could be attempted.
func (e *Executor) HasCredentialsFor(pageURL string) bool {
	if isLinkedIn(pageURL) {
		return !e.linkedin.Empty()
	}
	return !e.generic.Empty()
}

// Login executes one login attempt on pageURL using the given selectors.
// For LinkedIn the selectors are ignored in favor of the known form. Success
// means no known error marker was found after submit.
func (e *Executor) Login(ctx context.Context, pageURL string, selectors classify.LoginSelectors) error {
	target := pageURL
	creds := e.generic
	if isLinkedIn(pageURL) {
		target = linkedinLoginURL
		selectors = linkedinSelectors
		creds = e.linkedin
	}

	if creds.Empty() {
		return &Error{URL: pageURL, Message: "credentials not configured"}
	}

	if e.verbose {
		log.Printf("[LOGIN] Attempting login at %s", target)
	}

	if err := e.driver.Navigate(ctx, target); err != nil {
		return &Error{URL: pageURL, Message: "navigation to login page failed", Cause: err}
	}

	if err := e.driver.WaitVisible(ctx, selectors.Username, e.fieldTimeout); err != nil {
		return &Error{URL: pageURL, Message: "username field not found", Cause: err}
	}
	if err := e.driver.SendKeys(ctx, selectors.Username, creds.Username); err != nil {
		return &Error{URL: pageURL, Message: "failed to enter username", Cause: err}
	}
	if err := e.driver.SendKeys(ctx, selectors.Password, creds.Password); err != nil {
		return &Error{URL: pageURL, Message: "failed to enter password", Cause: err}
	}
	if err := e.driver.Click(ctx, selectors.Submit); err != nil {
		return &Error{URL: pageURL, Message: "failed to click submit", Cause: err}
	}

	select {
	case <-ctx.Done():
		return &Error{URL: pageURL, Message: "cancelled while waiting for login", Cause: ctx.Err()}
	case <-time.After(e.settle):
	}

	count, err := e.driver.CountMatches(ctx, ErrorMarkerSelector)
	if err != nil {
		return &Error{URL: pageURL, Message: "failed to probe for error markers", Cause: err}
	}
	if count > 0 {
		return &Error{URL: pageURL, Message: fmt.Sprintf("login rejected: %d error marker(s) present", count)}
	}

	if e.verbose {
		log.Printf("[LOGIN] Login at %s succeeded", target)
	}
	return nil
}

// isLinkedIn matches the LinkedIn host, including subdomains.
func isLinkedIn(pageURL string) bool {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Host)
	return host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com")
}
