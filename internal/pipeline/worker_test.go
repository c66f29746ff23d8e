package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobscout/internal/classify"
	"github.com/jonathan/jobscout/internal/extract"
)

// countingExtractor records how often extraction was attempted.
type countingExtractor struct {
	calls int
}

func (c *countingExtractor) Extract(_ context.Context, currentURL, _ string) (*extract.JobPosting, error) {
	c.calls++
	return &extract.JobPosting{Title: "t", ApplicationURL: currentURL, Source: currentURL}, nil
}

func loginSelectors() *classify.LoginSelectors {
	return &classify.LoginSelectors{Username: "#user", Password: "#pass", Submit: "#submit"}
}

func TestProcessNeitherNeverExtracts(t *testing.T) {
	const url = "https://example.com/blog"
	extractor := &countingExtractor{}
	login := &fakeLogin{hasCreds: true}

	w := &Worker{
		Fetcher: &fakeFetcher{pages: map[string]string{url: page("a blog post")}},
		Classifier: &fakeClassifier{results: map[string][]classify.Result{
			url: {{Kind: classify.KindNeither}},
		}},
		Extractor: extractor,
		Login:     login,
	}

	_, err := w.Process(context.Background(), url)
	require.Error(t, err)
	assert.Zero(t, extractor.calls)
	assert.Empty(t, login.logins)
}

func TestProcessLoginExactlyOnceBeforeExtraction(t *testing.T) {
	const url = "https://portal.example.com/jobs/1"
	extractor := &countingExtractor{}
	login := &fakeLogin{hasCreds: true}

	w := &Worker{
		Fetcher: &fakeFetcher{pages: map[string]string{url: page("gate then job")}},
		Classifier: &fakeClassifier{results: map[string][]classify.Result{
			url: {
				{Kind: classify.KindLoginPage, Selectors: loginSelectors()},
				{Kind: classify.KindJobPage},
			},
		}},
		Extractor: extractor,
		Login:     login,
	}

	posting, err := w.Process(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, url, posting.ApplicationURL)
	assert.Equal(t, []string{url}, login.logins)
	assert.Equal(t, 1, extractor.calls)
}

func TestProcessLoginFailureSkips(t *testing.T) {
	const url = "https://portal.example.com/jobs/1"
	extractor := &countingExtractor{}
	login := &fakeLogin{hasCreds: true, loginErr: errors.New("error banner present")}

	w := &Worker{
		Fetcher: &fakeFetcher{pages: map[string]string{url: page("gate")}},
		Classifier: &fakeClassifier{results: map[string][]classify.Result{
			url: {{Kind: classify.KindLoginPage, Selectors: loginSelectors()}},
		}},
		Extractor: extractor,
		Login:     login,
	}

	_, err := w.Process(context.Background(), url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "login failed")
	assert.Zero(t, extractor.calls)
}

func TestProcessStillGatedAfterLoginSkips(t *testing.T) {
	const url = "https://portal.example.com/jobs/1"
	extractor := &countingExtractor{}
	login := &fakeLogin{hasCreds: true}

	w := &Worker{
		Fetcher: &fakeFetcher{pages: map[string]string{url: page("gate")}},
		Classifier: &fakeClassifier{results: map[string][]classify.Result{
			url: {
				{Kind: classify.KindLoginPage, Selectors: loginSelectors()},
				{Kind: classify.KindLoginPage, Selectors: loginSelectors()},
			},
		}},
		Extractor: extractor,
		Login:     login,
	}

	_, err := w.Process(context.Background(), url)
	require.Error(t, err)
	// One attempt only; a second gate is a dead end, not a retry.
	assert.Equal(t, []string{url}, login.logins)
	assert.Zero(t, extractor.calls)
}
