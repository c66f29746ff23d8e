package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/jobscout/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticClient struct {
	response string
	err      error
}

func (s staticClient) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return s.response, s.err
}

func (s staticClient) GenerateJSON(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return s.response, s.err
}

func (s staticClient) Close() error { return nil }

const fullResponse = `{
	"title": "Senior Software Engineer",
	"company": "TechCorp",
	"location": "Zurich",
	"description": "Build distributed systems.",
	"requirements": ["Go", "5 years experience"],
	"salary": "120k-140k CHF",
	"application_deadline": "2026-09-30",
	"application_url": "https://techcorp.example/apply/42",
	"source": "techcorp.example"
}`

func TestExtract_FullResponse(t *testing.T) {
	e := NewExtractor(staticClient{response: fullResponse})

	posting, err := e.Extract(context.Background(), "https://x.com/jobs/1", "page text")
	require.NoError(t, err)
	assert.Equal(t, "Senior Software Engineer", posting.Title)
	assert.Equal(t, "TechCorp", posting.Company)
	assert.Equal(t, []string{"Go", "5 years experience"}, posting.Requirements)
	assert.Equal(t, "https://techcorp.example/apply/42", posting.ApplicationURL)
	assert.Equal(t, "techcorp.example", posting.Source)
}

func TestExtract_DefaultsURLAndSource(t *testing.T) {
	e := NewExtractor(staticClient{response: `{
		"title": "Engineer",
		"company": "Acme",
		"location": "Remote",
		"description": "Do things."
	}`})

	posting, err := e.Extract(context.Background(), "https://x.com/jobs/1", "page text")
	require.NoError(t, err)
	assert.Equal(t, "https://x.com/jobs/1", posting.ApplicationURL)
	assert.Equal(t, "https://x.com/jobs/1", posting.Source)
	assert.Empty(t, posting.Salary)
	assert.Empty(t, posting.ApplicationDeadline)
	assert.NotNil(t, posting.Requirements)
	assert.Empty(t, posting.Requirements)
}

func TestExtract_MissingRequiredFieldsDefaultToEmpty(t *testing.T) {
	e := NewExtractor(staticClient{response: `{}`})

	posting, err := e.Extract(context.Background(), "https://x.com/jobs/2", "page text")
	require.NoError(t, err)
	assert.Empty(t, posting.Title)
	assert.Empty(t, posting.Company)
	assert.Equal(t, "https://x.com/jobs/2", posting.ApplicationURL)
	assert.Equal(t, "https://x.com/jobs/2", posting.Source)
}

func TestExtract_MarkdownFence(t *testing.T) {
	e := NewExtractor(staticClient{response: "```json\n" + fullResponse + "\n```"})

	posting, err := e.Extract(context.Background(), "https://x.com/jobs/1", "page text")
	require.NoError(t, err)
	assert.Equal(t, "TechCorp", posting.Company)
}

func TestExtract_WrongTypeFails(t *testing.T) {
	e := NewExtractor(staticClient{response: `{"title": "x", "requirements": "not a list"}`})

	_, err := e.Extract(context.Background(), "https://x.com/jobs/1", "page text")
	require.Error(t, err)

	var extractErr *Error
	assert.ErrorAs(t, err, &extractErr)
	assert.Equal(t, "https://x.com/jobs/1", extractErr.URL)
}

func TestExtract_NotJSONFails(t *testing.T) {
	e := NewExtractor(staticClient{response: "Here is the job posting you asked for..."})

	_, err := e.Extract(context.Background(), "https://x.com/jobs/1", "page text")
	assert.Error(t, err)
}

func TestExtract_LLMFailure(t *testing.T) {
	e := NewExtractor(staticClient{err: errors.New("deadline exceeded")})

	_, err := e.Extract(context.Background(), "https://x.com/jobs/1", "page text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LLM call failed")
}

func TestExtract_IdempotentRequiredFields(t *testing.T) {
	e := NewExtractor(staticClient{response: fullResponse})

	first, err := e.Extract(context.Background(), "https://x.com/jobs/1", "identical text")
	require.NoError(t, err)
	second, err := e.Extract(context.Background(), "https://x.com/jobs/1", "identical text")
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Company, second.Company)
	assert.Equal(t, first.ApplicationURL, second.ApplicationURL)
	assert.Equal(t, first.Source, second.Source)
}

func TestBuildPrompt_TruncatesContent(t *testing.T) {
	long := strings.Repeat("y", ContentCap*2)
	prompt := buildPrompt(long)
	assert.LessOrEqual(t, strings.Count(prompt, "y"), ContentCap)
}
