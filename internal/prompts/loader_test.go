package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ExistingPrompt(t *testing.T) {
	prompt, err := Get("classify.json", "analyze-page")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.URL}}")
	assert.Contains(t, prompt, "{{.PageContent}}")
}

func TestGet_MissingKey(t *testing.T) {
	_, err := Get("classify.json", "nope")
	assert.Error(t, err)
}

func TestGet_MissingFile(t *testing.T) {
	_, err := Get("missing.json", "analyze-page")
	assert.Error(t, err)
}

func TestMustGet_PanicsOnMissing(t *testing.T) {
	assert.Panics(t, func() {
		MustGet("classify.json", "does-not-exist")
	})
}

func TestFormat(t *testing.T) {
	template := "URL: {{.URL}}\nContent: {{.PageContent}}"
	result := Format(template, map[string]string{
		"URL":         "https://example.com",
		"PageContent": "hello",
	})
	assert.Equal(t, "URL: https://example.com\nContent: hello", result)
}

func TestFormat_UnknownPlaceholderLeftIntact(t *testing.T) {
	result := Format("{{.Missing}}", map[string]string{"Other": "x"})
	assert.Equal(t, "{{.Missing}}", result)
}

func TestAllPromptFilesParse(t *testing.T) {
	for _, f := range []string{"classify.json", "extract.json", "harvest.json"} {
		prompts, err := loadFile(f)
		require.NoError(t, err, f)
		assert.NotEmpty(t, prompts, f)
	}
}
