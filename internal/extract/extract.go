package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/jobscout/internal/llm"
	"github.com/jonathan/jobscout/internal/prompts"
	"github.com/jonathan/jobscout/internal/schemas"
)

// ContentCap bounds how much page text the extraction prompt sees. Larger
// than the classification cap: extraction needs the full listing body.
const ContentCap = 10000

// Error represents a failed extraction. The URL it belongs to yields no
// posting; the run continues.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// responseSchema enforces field types on the raw model answer. Presence is
// not required here: missing fields get explicit defaults after decoding.
const responseSchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"company": {"type": "string"},
		"location": {"type": "string"},
		"description": {"type": "string"},
		"requirements": {"type": "array", "items": {"type": "string"}},
		"salary": {"type": ["string", "null"]},
		"application_deadline": {"type": ["string", "null"]},
		"application_url": {"type": "string"},
		"source": {"type": "string"}
	}
}`

// Extractor asks the LLM for structured job fields.
type Extractor struct {
	client llm.Client
}

// NewExtractor creates an extractor backed by the given LLM client.
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract produces a JobPosting from page text. currentURL is the URL being
// processed; it backfills application_url and source when the model omits
// them. Any parse or validation failure returns a typed error and no posting.
func (e *Extractor) Extract(ctx context.Context, currentURL, pageText string) (*JobPosting, error) {
	prompt := buildPrompt(pageText)

	responseText, err := e.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, &Error{URL: currentURL, Message: "LLM call failed", Cause: err}
	}

	posting, err := parseResponse(responseText, currentURL)
	if err != nil {
		return nil, &Error{URL: currentURL, Message: "invalid extraction response", Cause: err}
	}

	return posting, nil
}

// buildPrompt constructs the extraction prompt with a bounded content prefix.
func buildPrompt(pageText string) string {
	template := prompts.MustGet("extract.json", "extract-job-posting")
	return prompts.Format(template, map[string]string{
		"PageContent": llm.Truncate(pageText, ContentCap),
	})
}

// parseResponse strictly parses, schema-validates, and defaults the model
// output into an immutable JobPosting.
func parseResponse(responseText, currentURL string) (*JobPosting, error) {
	responseText = llm.CleanJSONBlock(responseText)
	if strings.TrimSpace(responseText) == "" {
		return nil, fmt.Errorf("empty response")
	}

	if err := schemas.ValidateJSONString(responseSchema, responseText); err != nil {
		return nil, err
	}

	var posting JobPosting
	if err := json.Unmarshal([]byte(responseText), &posting); err != nil {
		return nil, fmt.Errorf("failed to unmarshal posting JSON: %w", err)
	}

	applyDefaults(&posting, currentURL)
	return &posting, nil
}

// applyDefaults backfills the always-populated fields.
func applyDefaults(p *JobPosting, currentURL string) {
	if p.Requirements == nil {
		p.Requirements = []string{}
	}
	if strings.TrimSpace(p.ApplicationURL) == "" {
		p.ApplicationURL = currentURL
	}
	if strings.TrimSpace(p.Source) == "" {
		p.Source = currentURL
	}
}
