// Package classify labels a fetched page as a job listing, a login gate, or
// neither, using the LLM as the oracle. The model's answer is parsed as
// schema-validated JSON; any failure degrades to Neither so a bad answer can
// never take the run down.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/jobscout/internal/llm"
	"github.com/jonathan/jobscout/internal/prompts"
	"github.com/jonathan/jobscout/internal/schemas"
)

// ContentCap bounds how much page text the classification prompt sees.
const ContentCap = 1000

// Kind is the tri-state page label.
type Kind string

const (
	// KindJobPage means the page is directly a job listing.
	KindJobPage Kind = "job_page"
	// KindLoginPage means the page is a login gate in front of content.
	KindLoginPage Kind = "login_page"
	// KindNeither covers everything else, including classification failure.
	KindNeither Kind = "neither"
)

// LoginSelectors holds the CSS selectors for the login controls. The strings
// are opaque here; only the browser session interprets them.
type LoginSelectors struct {
	Username string `json:"username_selector"`
	Password string `json:"password_selector"`
	Submit   string `json:"submit_selector"`
}

// Result is one page classification. Selectors is non-nil iff Kind is
// KindLoginPage.
type Result struct {
	Kind      Kind
	Selectors *LoginSelectors
}

// Error represents a failed classification. The page it belongs to is still
// labeled Neither; the error exists so callers can log the cause.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("classification error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("classification error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// responseSchema validates the raw model answer before any field is trusted.
const responseSchema = `{
	"type": "object",
	"required": ["is_job_page", "is_login_page"],
	"properties": {
		"is_job_page": {"type": "boolean"},
		"is_login_page": {"type": "boolean"},
		"login_fields": {
			"type": "object",
			"required": ["username_selector", "password_selector", "submit_selector"],
			"properties": {
				"username_selector": {"type": "string", "minLength": 1},
				"password_selector": {"type": "string", "minLength": 1},
				"submit_selector": {"type": "string", "minLength": 1}
			}
		}
	}
}`

// pageAnalysis mirrors the JSON shape the model is asked to produce.
type pageAnalysis struct {
	IsJobPage   bool            `json:"is_job_page"`
	IsLoginPage bool            `json:"is_login_page"`
	LoginFields *LoginSelectors `json:"login_fields,omitempty"`
}

// Classifier asks the LLM what a page is.
type Classifier struct {
	client llm.Client
}

// NewClassifier creates a classifier backed by the given LLM client.
func NewClassifier(client llm.Client) *Classifier {
	return &Classifier{client: client}
}

// Classify labels url given its rendered page text. The returned error is
// informational: whenever it is non-nil the Result is Neither and the caller
// should log and move on.
func (c *Classifier) Classify(ctx context.Context, url, pageText string) (Result, error) {
	neither := Result{Kind: KindNeither}

	prompt := buildPrompt(url, pageText)

	responseText, err := c.client.GenerateJSON(ctx, prompt, llm.TierLite)
	if err != nil {
		return neither, &Error{URL: url, Message: "LLM call failed", Cause: err}
	}

	analysis, err := parseResponse(responseText)
	if err != nil {
		return neither, &Error{URL: url, Message: "unparseable response", Cause: err}
	}

	// A page gated behind a login still renders mostly login chrome, so a
	// job-page answer wins when the model claims both.
	switch {
	case analysis.IsJobPage:
		return Result{Kind: KindJobPage}, nil
	case analysis.IsLoginPage:
		if analysis.LoginFields == nil {
			return neither, &Error{URL: url, Message: "login page without selectors"}
		}
		return Result{Kind: KindLoginPage, Selectors: analysis.LoginFields}, nil
	default:
		return neither, nil
	}
}

// buildPrompt constructs the classification prompt with a bounded content prefix.
func buildPrompt(url, pageText string) string {
	template := prompts.MustGet("classify.json", "analyze-page")
	return prompts.Format(template, map[string]string{
		"URL":         url,
		"PageContent": llm.Truncate(pageText, ContentCap),
	})
}

// parseResponse strictly parses and schema-validates the model output.
// The text is data, never code.
func parseResponse(responseText string) (*pageAnalysis, error) {
	responseText = llm.CleanJSONBlock(responseText)
	if strings.TrimSpace(responseText) == "" {
		return nil, fmt.Errorf("empty response")
	}

	if err := schemas.ValidateJSONString(responseSchema, responseText); err != nil {
		return nil, err
	}

	var analysis pageAnalysis
	if err := json.Unmarshal([]byte(responseText), &analysis); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis JSON: %w", err)
	}

	if analysis.LoginFields != nil {
		if analysis.LoginFields.Username == "" ||
			analysis.LoginFields.Password == "" ||
			analysis.LoginFields.Submit == "" {
			analysis.LoginFields = nil
		}
	}

	return &analysis, nil
}
