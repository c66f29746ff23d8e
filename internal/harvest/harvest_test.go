package harvest

import (
	"context"
	"errors"
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

func TestMatchLinks_DefaultKeywords(t *testing.T) {
	body := `<a href="https://x.com/careers/9">Apply</a><a href="https://x.com/about">About</a>`

	links := MatchLinks(body, DefaultKeywords)
	assert.Equal(t, []string{"https://x.com/careers/9"}, links)
}

func TestMatchLinks_CaseInsensitive(t *testing.T) {
	body := `<a href="https://x.com/CAREERS/9">Apply</a>`

	links := MatchLinks(body, DefaultKeywords)
	assert.Equal(t, []string{"https://x.com/CAREERS/9"}, links)
}

func TestMatchLinks_BareURLsInPlainText(t *testing.T) {
	body := "Check out this role: https://example.com/jobs/123 and tell me what you think."

	links := MatchLinks(body, DefaultKeywords)
	assert.Equal(t, []string{"https://example.com/jobs/123"}, links)
}

func TestMatchLinks_Deduplicates(t *testing.T) {
	body := `<a href="https://x.com/jobs/1">first</a><a href="https://x.com/jobs/1">again</a>`

	links := MatchLinks(body, DefaultKeywords)
	assert.Equal(t, []string{"https://x.com/jobs/1"}, links)
}

func TestMatchLinks_DocumentOrder(t *testing.T) {
	body := `<a href="https://x.com/jobs/2">b</a><a href="https://x.com/jobs/1">a</a>`

	links := MatchLinks(body, DefaultKeywords)
	assert.Equal(t, []string{"https://x.com/jobs/2", "https://x.com/jobs/1"}, links)
}

func TestMatchLinks_NoMatches(t *testing.T) {
	body := `<a href="https://x.com/about">About</a>`

	links := MatchLinks(body, DefaultKeywords)
	assert.Empty(t, links)
}

func TestHarvest_Static(t *testing.T) {
	h := NewStatic(nil)

	links := h.Harvest(context.Background(), `<a href="https://x.com/hiring/42">role</a>`)
	assert.Equal(t, []string{"https://x.com/hiring/42"}, links)
}

func TestHarvest_StaticCustomKeywords(t *testing.T) {
	h := NewStatic([]string{"vacancy"})

	body := `<a href="https://x.com/vacancy/1">v</a><a href="https://x.com/jobs/2">j</a>`
	links := h.Harvest(context.Background(), body)
	assert.Equal(t, []string{"https://x.com/vacancy/1"}, links)
}

func TestHarvest_LLMAssisted(t *testing.T) {
	h := NewLLMAssisted(staticClient{response: `["posting"]`})

	body := `<a href="https://x.com/posting/7">p</a><a href="https://x.com/jobs/2">j</a>`
	links := h.Harvest(context.Background(), body)
	assert.Equal(t, []string{"https://x.com/posting/7"}, links)
}

func TestHarvest_LLMFailureReturnsEmpty(t *testing.T) {
	h := NewLLMAssisted(staticClient{err: errors.New("unavailable")})

	links := h.Harvest(context.Background(), `<a href="https://x.com/jobs/1">j</a>`)
	assert.Empty(t, links)
}

func TestHarvest_LLMUnparseableReturnsEmpty(t *testing.T) {
	h := NewLLMAssisted(staticClient{response: "sure! the keywords are job and career"})

	links := h.Harvest(context.Background(), `<a href="https://x.com/jobs/1">j</a>`)
	assert.Empty(t, links)
}

func TestHarvest_LLMEmptyKeywordsFallsBackToDefaults(t *testing.T) {
	h := NewLLMAssisted(staticClient{response: `[]`})

	links := h.Harvest(context.Background(), `<a href="https://x.com/jobs/1">j</a>`)
	require.Equal(t, []string{"https://x.com/jobs/1"}, links)
}
